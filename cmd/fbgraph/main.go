package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/BobDickinson/lib-facebook/cmd/fbgraph/login"
	"github.com/BobDickinson/lib-facebook/cmd/fbgraph/logout"
	"github.com/BobDickinson/lib-facebook/cmd/fbgraph/request"
	"github.com/BobDickinson/lib-facebook/cmd/fbgraph/validatetoken"
)

var (
	// BuildInfo will be set by the build system
	BuildInfo = "{}"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "fbgraph version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		slog.InfoContext(cmd.Context(), BuildInfo)
		return nil
	},
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fbgraph",
		Short: "Facebook Graph API client",
		Long:  "fbgraph logs in to the Facebook Graph API and performs Graph calls from the command line.",
	}

	cmd.AddCommand(
		versionCmd,
		login.Cmd(BuildInfo),
		logout.Cmd(BuildInfo),
		request.Cmd(BuildInfo),
		validatetoken.Cmd(BuildInfo),
	)

	return cmd
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Error(ctx, "failed to run the command", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return err
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
