package logout

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BobDickinson/lib-facebook/internal/cmdutils"
	"github.com/BobDickinson/lib-facebook/internal/config"
	"github.com/BobDickinson/lib-facebook/internal/fberr"
	"github.com/BobDickinson/lib-facebook/pkg/facebook"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"logout",
		"Log out of Facebook",
		"Terminate the active session and discard the persisted access token.",
		buildInfo,
		run,
	)
}

func run(ctx context.Context, cfg *config.Config) error {
	session, err := cmdutils.BuildSession(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("building session: %w", err)
	}

	events := make(chan facebook.ResponseEvent, 1)
	if err := session.Logout(ctx, func(ev facebook.ResponseEvent) {
		events <- ev
	}); err != nil {
		if errors.Is(err, fberr.ErrNotLoggedIn) {
			fmt.Println("Not logged in.")
			return nil
		}
		return fmt.Errorf("starting logout: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-events:
		if ev.IsError {
			return fmt.Errorf("logout failed: %s", ev.ResponseRaw)
		}
		fmt.Println("Logged out.")
	}

	return nil
}
