package auth

import (
	"github.com/pterm/pterm"
	"github.com/snipbox/snipbox/pkg/sdk"
	"github.com/spf13/cobra"
)

var registerInput sdk.RegisterInput

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Creates an account on the snippet platform. The account must be verified
with the one-time code sent by email before you can sign in:

  snipctl auth verify-email --otp <code>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := registerInput

		var err error
		if input.Email, err = valueOrPrompt(ctx, input.Email, "Email", "email", false); err != nil {
			return err
		}
		if input.Username, err = valueOrPrompt(ctx, input.Username, "Username", "username", false); err != nil {
			return err
		}
		if input.FullName, err = valueOrPrompt(ctx, input.FullName, "Full name", "full-name", false); err != nil {
			return err
		}
		if input.Password, err = valueOrPrompt(ctx, input.Password, "Password", "password", true); err != nil {
			return err
		}
		if input.ConfirmPassword, err = valueOrPrompt(ctx, input.ConfirmPassword, "Confirm password", "confirm-password", true); err != nil {
			return err
		}

		client, err := sdkClient(ctx)
		if err != nil {
			return err
		}
		res, err := client.Auth().Register(ctx, input)
		if err != nil {
			return err
		}

		if res.Message != "" {
			pterm.Success.Println(res.Message)
		} else {
			pterm.Success.Printf("Account %s created\n", input.Username)
		}
		pterm.Info.Printf("Check %s for a verification code, then run 'snipctl auth verify-email --otp <code>'.\n", input.Email)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerInput.Email, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registerInput.Username, "username", "", "Username")
	registerCmd.Flags().StringVar(&registerInput.FullName, "full-name", "", "Full name")
	registerCmd.Flags().StringVar(&registerInput.Password, "password", "", "Password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerInput.ConfirmPassword, "confirm-password", "", "Password again (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerInput.ImageProfile, "image-profile", "", "Profile image URL")
	registerCmd.Flags().StringVar(&registerInput.Role, "role", "", "Requested role")
}
