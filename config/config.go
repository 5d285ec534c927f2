package config

import (
	"time"

	"github.com/kbukum/avisowatch/logger"
	"github.com/kbukum/avisowatch/validation"
)

// Config is the application configuration for the avisowatch CLI.
type Config struct {
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Watch        WatchConfig        `yaml:"watch" mapstructure:"watch"`
	Subscription SubscriptionConfig `yaml:"subscription" mapstructure:"subscription"`
	Logging      logger.Config      `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig identifies the notification server.
type ServerConfig struct {
	// URL is the base URL of the notification server.
	URL string `yaml:"url" mapstructure:"url" validate:"required,url"`
	// APIKey is sent in the X-API-Key header when set.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Token is sent as a Bearer token when set (takes precedence over APIKey).
	Token string `yaml:"token" mapstructure:"token"`
}

// WatchConfig tunes the reconnect loop.
type WatchConfig struct {
	// RetryInterval is the fixed wait between reconnect attempts.
	RetryInterval time.Duration `yaml:"retry_interval" mapstructure:"retry_interval"`
	// ConnectTimeout bounds stream establishment.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// SubscriptionConfig is the default subscription sent on connect.
// CLI flags override individual fields.
type SubscriptionConfig struct {
	EventType  string         `yaml:"event_type" mapstructure:"event_type"`
	Identifier map[string]any `yaml:"identifier" mapstructure:"identifier"`
	FromID     string         `yaml:"from_id" mapstructure:"from_id"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Watch.RetryInterval <= 0 {
		c.Watch.RetryInterval = 5 * time.Second
	}
	if c.Watch.ConnectTimeout <= 0 {
		c.Watch.ConnectTimeout = 30 * time.Second
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c.Server); err != nil {
		return err
	}
	return c.Logging.Validate()
}
