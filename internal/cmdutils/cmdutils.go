// Package cmdutils carries the wiring shared by the fbgraph subcommands:
// configuration loading, logger initialisation, and assembly of a session
// from the resolved config.
package cmdutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/BobDickinson/lib-facebook/internal/config"
	"github.com/BobDickinson/lib-facebook/internal/device"
	"github.com/BobDickinson/lib-facebook/internal/graph"
	"github.com/BobDickinson/lib-facebook/pkg/facebook"
	"github.com/BobDickinson/lib-facebook/pkg/facebook/tokenstore/yamlfile"
)

// CobraCommand wraps a business function into a cobra command that loads
// the configuration and initialises the logger before running it.
func CobraCommand(use, short, long, buildInfo string, businessFunc func(context.Context, *config.Config) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if err := run(cmd.Context(), businessFunc, cfg); err != nil {
				return fmt.Errorf("running %s: %w", use, err)
			}

			return nil
		},
	}
}

func run(ctx context.Context, fn func(context.Context, *config.Config) error, cfg *config.Config) error {
	if err := logger.InitAsDefault(cfg.Logger, cfg.Application); err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}
	slogctx.Debug(ctx, "Starting the application", slog.Any("config", cfg))

	if err := fn(ctx, cfg); err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to run the command")
	}

	return nil
}

func LoadConfig(buildInfo string) (*config.Config, error) {
	defaultValues := map[string]any{}
	cfg := &config.Config{}

	if err := commoncfg.LoadConfig(
		cfg,
		defaultValues,
		"/etc/fbgraph",
		"$HOME/.fbgraph",
		".",
	); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if err := commoncfg.UpdateConfigVersion(
		&cfg.BaseConfig,
		buildInfo,
	); err != nil {
		return nil, fmt.Errorf("updating the version configuration: %w", err)
	}

	return cfg, nil
}

// BuildSession assembles a session backed by the Graph HTTP connector from
// the resolved configuration. onCode presents a device login code to the
// user when device login is enabled.
func BuildSession(ctx context.Context, cfg *config.Config, onCode func(device.Code)) (*facebook.Session, error) {
	graphClient := graph.NewClient(
		graph.WithVersion(cfg.Facebook.GraphVersion),
		graph.WithCacheTTL(cfg.Facebook.CacheTTL),
	)

	var connectorOpts []facebook.GraphConnectorOption

	accessToken, err := commoncfg.LoadValueFromSourceRef(cfg.Facebook.AccessToken)
	if err == nil && len(accessToken) > 0 {
		connectorOpts = append(connectorOpts, facebook.WithAccessToken(string(accessToken)))
	}

	if cfg.Facebook.DeviceLogin.Enabled {
		clientToken, err := commoncfg.LoadValueFromSourceRef(cfg.Facebook.ClientToken)
		if err != nil {
			return nil, fmt.Errorf("loading client token from source ref: %w", err)
		}

		flow := device.NewFlow(
			graphClient,
			cfg.Facebook.AppID,
			string(clientToken),
			device.WithPollInterval(cfg.Facebook.DeviceLogin.PollInterval),
		)
		connectorOpts = append(connectorOpts, facebook.WithDeviceFlow(flow, onCode))
	}

	connector := facebook.NewGraphConnector(graphClient, connectorOpts...)

	var sessionOpts []facebook.Option
	if cfg.TokenStore.Path != "" {
		sessionOpts = append(sessionOpts, facebook.WithTokenRepository(yamlfile.NewRepository(cfg.TokenStore.Path)))
	}

	session := facebook.NewSession(cfg.Facebook.AppID, connector, sessionOpts...)

	if _, err := session.Resume(ctx); err != nil {
		slogctx.Warn(ctx, "Could not resume a persisted session", "error", err)
	}

	return session, nil
}
