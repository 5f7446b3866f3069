package login

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/BobDickinson/lib-facebook/internal/cmdutils"
	"github.com/BobDickinson/lib-facebook/internal/config"
	"github.com/BobDickinson/lib-facebook/internal/device"
	"github.com/BobDickinson/lib-facebook/pkg/facebook"
)

var permissions []string

func Cmd(buildInfo string) *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"login",
		"Log in to Facebook",
		"Log in to Facebook with the configured access token, or interactively via device login.",
		buildInfo,
		run,
	)
	cmd.Flags().StringSliceVar(&permissions, "permissions", []string{"public_profile"}, "permissions to request")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Facebook.DeviceLogin.Enabled && cfg.Facebook.DeviceLogin.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Facebook.DeviceLogin.Timeout)
		defer cancel()
	}

	session, err := cmdutils.BuildSession(ctx, cfg, presentCode)
	if err != nil {
		return fmt.Errorf("building session: %w", err)
	}

	if session.IsLoggedIn() {
		fmt.Println("Already logged in.")
		return nil
	}

	events := make(chan facebook.ResponseEvent, 1)
	if err := session.Login(ctx, permissions, func(ev facebook.ResponseEvent) {
		events <- ev
	}); err != nil {
		return fmt.Errorf("starting login: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-events:
		if ev.IsError {
			return fmt.Errorf("login failed: %s", ev.ResponseRaw)
		}
		if ev.Phase == facebook.PhaseLoginCancelled {
			fmt.Println("Login cancelled.")
			return nil
		}

		slogctx.Info(ctx, "Logged in", "phase", ev.Phase)
		fmt.Println("Logged in.")
	}

	return nil
}

func presentCode(code device.Code) {
	_, _ = fmt.Fprintf(os.Stderr, "Visit %s on another device and enter the code %s\n",
		code.VerificationURI, code.UserCode)
}
