package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// AVISOWATCH_SERVER_URL overrides server.url.
const envPrefix = "AVISOWATCH"

// LoaderConfig controls where configuration is read from.
type LoaderConfig struct {
	// ConfigFile is an explicit config file path. When empty, standard
	// locations are searched.
	ConfigFile string
	// EnvFile is an explicit .env file path. When empty, ./.env is
	// loaded if present.
	EnvFile string
}

// Load reads the application configuration. A missing config file is
// not an error: defaults plus environment variables still apply.
func Load(opts LoaderConfig) (*Config, error) {
	return LoadWith(opts, nil)
}

// LoadWith reads the application configuration and applies overlay
// (e.g. command-line flag overrides) before defaults and validation.
func LoadWith(opts LoaderConfig, overlay func(*Config) error) (*Config, error) {
	loadEnvFile(opts.EnvFile)

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env values for keys viper knows about, so
	// bind the overridable ones explicitly.
	for _, key := range []string{
		"server.url", "server.api_key", "server.token",
		"watch.retry_interval", "watch.connect_timeout",
		"subscription.event_type", "subscription.from_id",
		"logging.level", "logging.format", "logging.output",
	} {
		_ = v.BindEnv(key)
	}

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if overlay != nil {
		if err := overlay(&cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile loads an explicit .env file, or ./.env when present.
func loadEnvFile(path string) {
	if path != "" {
		_ = godotenv.Load(path)
		return
	}
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// findConfigFile searches standard locations for config.yml.
func findConfigFile() string {
	searchPaths := []string{
		"./config.yml",
		"./config/config.yml",
		"./cmd/avisowatch/config.yml",
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
