package auth

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/snipbox/snipbox/cmd/snipctl/internal/config"
	"github.com/snipbox/snipbox/pkg/sdk"
	"github.com/spf13/cobra"
)

// AuthCmd is the parent command for auth operations
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Commands for registering, signing in and managing your session.`,
}

func init() {
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(oauthCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
	AuthCmd.AddCommand(refreshCmd)
	AuthCmd.AddCommand(registerCmd)
	AuthCmd.AddCommand(verifyEmailCmd)
	AuthCmd.AddCommand(resendOTPCmd)
	AuthCmd.AddCommand(forgotPasswordCmd)
	AuthCmd.AddCommand(resetPasswordCmd)
	AuthCmd.AddCommand(exportCmd)
}

func sdkClient(ctx context.Context) (*sdk.Client, error) {
	cfg := config.MustFromContext(ctx)
	return cfg.ClientProvider.SDKClient()
}

// valueOrPrompt returns value, or asks for it when it is empty and prompts
// are allowed.
func valueOrPrompt(ctx context.Context, value, label, flag string, secret bool) (string, error) {
	if value != "" {
		return value, nil
	}
	if config.MustFromContext(ctx).NonInteractive {
		return "", fmt.Errorf("--%s is required in non-interactive mode", flag)
	}

	input := pterm.DefaultInteractiveTextInput
	if secret {
		input = *input.WithMask("*")
	}
	answer, err := input.Show(label)
	if err != nil {
		return "", fmt.Errorf("failed to show interactive prompt: %w", err)
	}
	if answer == "" {
		return "", fmt.Errorf("%s is required", flag)
	}
	return answer, nil
}

// landAfterLogin sends the user to the command a guard interrupted, or to
// the dashboard.
func landAfterLogin(ctx context.Context, client *sdk.Client) {
	nav := config.MustFromContext(ctx).ClientProvider.Navigator()
	store := client.Auth().Store()

	target := sdk.RouteDashboard
	if redirect := store.Get(sdk.KeyRedirectURL); redirect != "" {
		target = redirect
		if err := store.Remove(sdk.KeyRedirectURL); err != nil {
			pterm.Warning.Printf("Failed to clear remembered command: %v\n", err)
		}
	}
	nav.Navigate(target)
}

// signedInAs describes the current session owner.
func signedInAs(client *sdk.Client) string {
	snap := client.State().Snapshot()
	if snap.Username != nil {
		return *snap.Username
	}
	if snap.UserID != nil {
		return fmt.Sprintf("user #%d", *snap.UserID)
	}
	return "unknown user"
}
