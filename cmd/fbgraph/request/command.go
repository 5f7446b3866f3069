package request

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BobDickinson/lib-facebook/internal/cmdutils"
	"github.com/BobDickinson/lib-facebook/internal/config"
	"github.com/BobDickinson/lib-facebook/pkg/facebook"
)

var (
	path   string
	method string
	params []string
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"request",
		"Perform a Graph API call",
		"Perform a Graph API call against the active session and print the response body.",
		buildInfo,
		run,
	)
	cmd.Flags().StringVar(&path, "path", "me", "Graph API path, relative to the versioned root")
	cmd.Flags().StringVar(&method, "method", "GET", "HTTP method")
	cmd.Flags().StringArrayVar(&params, "param", nil, "request parameter as key=value, repeatable")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	session, err := cmdutils.BuildSession(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("building session: %w", err)
	}

	requestParams := map[string]string{}
	for _, p := range params {
		key, value, found := strings.Cut(p, "=")
		if !found {
			return fmt.Errorf("invalid parameter %q, expected key=value", p)
		}
		requestParams[key] = value
	}

	events := make(chan facebook.ResponseEvent, 1)
	if err := session.Request(ctx, path, method, requestParams, func(ev facebook.ResponseEvent) {
		events <- ev
	}); err != nil {
		return fmt.Errorf("starting graph request: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-events:
		if ev.IsError {
			return fmt.Errorf("graph request failed: %s", ev.ResponseRaw)
		}
		fmt.Println(ev.ResponseRaw)
	}

	return nil
}
