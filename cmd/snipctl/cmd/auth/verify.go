package auth

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/snipbox/snipbox/pkg/sdk"
	"github.com/spf13/cobra"
)

var (
	verifyEmail string
	verifyOTP   string
	resendEmail string
)

var verifyEmailCmd = &cobra.Command{
	Use:   "verify-email",
	Short: "Verify your account with the emailed one-time code",
	Long: `Verifies a new account. The email defaults to the address of the last
'snipctl auth register'. When the server signs you in on verification the
session is stored just like after 'snipctl auth login'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := sdkClient(ctx)
		if err != nil {
			return err
		}

		email, err := pendingEmail(ctx, client, verifyEmail)
		if err != nil {
			return err
		}
		otp, err := valueOrPrompt(ctx, verifyOTP, "Verification code", "otp", false)
		if err != nil {
			return err
		}

		res, err := client.VerifyEmail(ctx, email, otp)
		if err != nil {
			return err
		}
		printResult(res, "Email verified")

		if client.State().Snapshot().LoggedIn {
			pterm.Success.Printf("Signed in as %s\n", signedInAs(client))
			landAfterLogin(ctx, client)
			return nil
		}
		pterm.Info.Println("You can now sign in with 'snipctl auth login'.")
		return nil
	},
}

var resendOTPCmd = &cobra.Command{
	Use:   "resend-otp",
	Short: "Send a new verification code",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := sdkClient(ctx)
		if err != nil {
			return err
		}
		email, err := pendingEmail(ctx, client, resendEmail)
		if err != nil {
			return err
		}

		res, err := client.Auth().ResendOTP(ctx, email)
		if err != nil {
			return err
		}
		printResult(res, fmt.Sprintf("A new code was sent to %s", email))
		return nil
	},
}

func init() {
	verifyEmailCmd.Flags().StringVar(&verifyEmail, "email", "", "Email address (defaults to the last registration)")
	verifyEmailCmd.Flags().StringVar(&verifyOTP, "otp", "", "One-time verification code")
	resendOTPCmd.Flags().StringVar(&resendEmail, "email", "", "Email address (defaults to the last registration)")
}

// pendingEmail prefers the flag, then the address remembered at
// registration, then a prompt.
func pendingEmail(ctx context.Context, client *sdk.Client, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if pending := client.Auth().PendingVerificationEmail(); pending != "" {
		return pending, nil
	}
	return valueOrPrompt(ctx, "", "Email", "email", false)
}

func printResult(res *sdk.Result, fallback string) {
	if res != nil && res.Message != "" {
		pterm.Success.Println(res.Message)
		return
	}
	pterm.Success.Println(fallback)
}
