package watch

import (
	"time"

	"github.com/kbukum/avisowatch/httpclient"
	"github.com/kbukum/avisowatch/logger"
	"github.com/kbukum/avisowatch/validation"
)

const (
	defaultRetryInterval  = 5 * time.Second
	defaultConnectTimeout = 30 * time.Second

	// watchPath is the server's subscription endpoint.
	watchPath = "/api/v1/watch"
)

// Config configures the watch client.
type Config struct {
	// ServerURL is the base URL of the notification server.
	ServerURL string `yaml:"server_url" mapstructure:"server_url" validate:"required,url"`

	// RetryInterval is the fixed wait between reconnect attempts.
	// Defaults to 5s.
	RetryInterval time.Duration `yaml:"retry_interval" mapstructure:"retry_interval"`

	// ConnectTimeout bounds how long the client waits for the stream to
	// be established. Defaults to 30s. Reads from an open stream are not
	// subject to it.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`

	// Auth is optional authentication applied to the subscribe call.
	Auth *httpclient.AuthConfig `yaml:"-" mapstructure:"-"`

	// Registry supplies the event handlers. Defaults to DefaultRegistry.
	Registry *Registry `yaml:"-" mapstructure:"-"`

	// Logger is the structured logger. Defaults to the global logger
	// tagged with the "watch" component.
	Logger *logger.Logger `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.RetryInterval <= 0 {
		c.RetryInterval = defaultRetryInterval
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.WithComponent("watch")
	}
	if c.Registry == nil {
		c.Registry = DefaultRegistry(c.Logger)
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
