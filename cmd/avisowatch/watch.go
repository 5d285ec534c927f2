package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/avisowatch/bootstrap"
	"github.com/kbukum/avisowatch/config"
	"github.com/kbukum/avisowatch/httpclient"
	"github.com/kbukum/avisowatch/logger"
	"github.com/kbukum/avisowatch/version"
	"github.com/kbukum/avisowatch/watch"
)

type watchFlags struct {
	configFile     string
	envFile        string
	server         string
	eventType      string
	identifier     []string
	fromID         string
	retryInterval  time.Duration
	connectTimeout time.Duration
	logLevel       string
	logFormat      string
}

func newWatchCommand() *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Subscribe to the notification feed and process events until interrupted",
		Long: `Watch opens a streaming subscription against the server's watch endpoint
and processes events until interrupted (Ctrl-C). Lost connections are
re-established indefinitely with a fixed retry interval.

Example:
  avisowatch watch --server https://aviso-server.example.int \
      --event-type test_polygon --from-id 0 \
      --identifier time=1200 --identifier polygon="(52.5,13.4,...)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "config file path")
	cmd.Flags().StringVar(&flags.envFile, "env-file", "", ".env file path")
	cmd.Flags().StringVarP(&flags.server, "server", "s", "", "notification server base URL")
	cmd.Flags().StringVarP(&flags.eventType, "event-type", "e", "", "event type to watch")
	cmd.Flags().StringArrayVarP(&flags.identifier, "identifier", "i", nil, "identifier field as key=value (repeatable)")
	cmd.Flags().StringVar(&flags.fromID, "from-id", "", "resume token to (re)start delivery from")
	cmd.Flags().DurationVar(&flags.retryInterval, "retry-interval", 0, "fixed wait between reconnect attempts")
	cmd.Flags().DurationVar(&flags.connectTimeout, "connect-timeout", 0, "timeout for establishing the stream")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "", "log format (console, json)")

	return cmd
}

func runWatch(flags *watchFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger.Init(cfg.Logging)

	req := watch.SubscriptionRequest{
		EventType:  cfg.Subscription.EventType,
		Identifier: cfg.Subscription.Identifier,
		FromID:     cfg.Subscription.FromID,
	}

	comp := watch.NewComponent(watch.Config{
		ServerURL:      cfg.Server.URL,
		RetryInterval:  cfg.Watch.RetryInterval,
		ConnectTimeout: cfg.Watch.ConnectTimeout,
		Auth:           serverAuth(cfg.Server),
	}, req)

	// Ctrl-C / SIGTERM requests a cooperative stop; the loop exits
	// within one event or one retry wait.
	app := bootstrap.NewApp("avisowatch", version.GetShortVersion(), logger.GetGlobalLogger())
	if err := app.Register(comp); err != nil {
		return err
	}
	return app.Run(context.Background())
}

// loadConfig merges file/env config with command-line flag overrides.
func loadConfig(flags *watchFlags) (*config.Config, error) {
	// Flag overrides land before validation, so a server URL given only
	// on the command line still passes the required check.
	overlay := func(cfg *config.Config) error {
		if flags.server != "" {
			cfg.Server.URL = flags.server
		}
		if flags.eventType != "" {
			cfg.Subscription.EventType = flags.eventType
		}
		if flags.fromID != "" {
			cfg.Subscription.FromID = flags.fromID
		}
		if len(flags.identifier) > 0 {
			id, err := parseIdentifier(flags.identifier)
			if err != nil {
				return err
			}
			cfg.Subscription.Identifier = id
		}
		if flags.retryInterval > 0 {
			cfg.Watch.RetryInterval = flags.retryInterval
		}
		if flags.connectTimeout > 0 {
			cfg.Watch.ConnectTimeout = flags.connectTimeout
		}
		if flags.logLevel != "" {
			cfg.Logging.Level = flags.logLevel
		}
		if flags.logFormat != "" {
			cfg.Logging.Format = flags.logFormat
		}
		return nil
	}

	cfg, err := config.LoadWith(config.LoaderConfig{
		ConfigFile: flags.configFile,
		EnvFile:    flags.envFile,
	}, overlay)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func serverAuth(server config.ServerConfig) *httpclient.AuthConfig {
	switch {
	case server.Token != "":
		return httpclient.BearerAuth(server.Token)
	case server.APIKey != "":
		return httpclient.APIKeyAuth(server.APIKey)
	default:
		return nil
	}
}

// parseIdentifier converts key=value pairs into an identifier map.
func parseIdentifier(pairs []string) (map[string]any, error) {
	id := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid identifier %q, expected key=value", pair)
		}
		id[key] = value
	}
	return id, nil
}
