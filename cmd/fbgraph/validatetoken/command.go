package validatetoken

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/BobDickinson/lib-facebook/internal/cmdutils"
	"github.com/BobDickinson/lib-facebook/internal/config"
	"github.com/BobDickinson/lib-facebook/internal/limitedlogin"
)

var (
	token string
	nonce string
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"validate-token",
		"Validate a Limited Login authentication token",
		"Verify the signature and claims of a Limited Login authentication token and print the profile it carries.",
		buildInfo,
		run,
	)
	cmd.Flags().StringVar(&token, "token", "", "the authentication token (JWT)")
	cmd.Flags().StringVar(&nonce, "nonce", "", "the nonce the token was requested with")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	validator := limitedlogin.NewValidator(cfg.Facebook.AppID)

	profile, err := validator.Validate(ctx, token, nonce)
	if err != nil {
		return fmt.Errorf("validating authentication token: %w", err)
	}

	slogctx.Info(ctx, "Authentication token is valid", "user_id", profile.UserID)
	fmt.Printf("user_id: %s\nname: %s\nemail: %s\n", profile.UserID, profile.Name, profile.Email)

	return nil
}
