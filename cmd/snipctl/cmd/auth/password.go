package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	forgotEmail string

	resetEmail    string
	resetToken    string
	resetPassword string
)

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset email",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		email, err := valueOrPrompt(ctx, forgotEmail, "Email", "email", false)
		if err != nil {
			return err
		}
		client, err := sdkClient(ctx)
		if err != nil {
			return err
		}

		res, err := client.Auth().ForgotPassword(ctx, email)
		if err != nil {
			return err
		}
		printResult(res, "If the account exists, a reset email is on its way")
		pterm.Info.Println("Then run 'snipctl auth reset-password --token <token>'.")
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with the emailed reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		email, err := valueOrPrompt(ctx, resetEmail, "Email", "email", false)
		if err != nil {
			return err
		}
		token, err := valueOrPrompt(ctx, resetToken, "Reset token", "token", false)
		if err != nil {
			return err
		}
		password, err := valueOrPrompt(ctx, resetPassword, "New password", "password", true)
		if err != nil {
			return err
		}
		client, err := sdkClient(ctx)
		if err != nil {
			return err
		}

		res, err := client.Auth().ResetPassword(ctx, email, token, password)
		if err != nil {
			return err
		}
		printResult(res, "Password updated")
		pterm.Info.Println("Sign in with 'snipctl auth login'.")
		return nil
	},
}

func init() {
	forgotPasswordCmd.Flags().StringVar(&forgotEmail, "email", "", "Email address")
	resetPasswordCmd.Flags().StringVar(&resetEmail, "email", "", "Email address")
	resetPasswordCmd.Flags().StringVar(&resetToken, "token", "", "Reset token from the email")
	resetPasswordCmd.Flags().StringVar(&resetPassword, "password", "", "New password (prompted when omitted)")
}
