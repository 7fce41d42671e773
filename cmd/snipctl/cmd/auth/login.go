package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	loginIdentifier string
	loginPassword   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your email or username",
	Long: `Signs in with an email or username and a password and stores the
session in ~/.snipbox/session.json.

To sign in with an external identity provider use 'snipctl auth oauth'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		identifier, err := valueOrPrompt(ctx, loginIdentifier, "Email or username", "identifier", false)
		if err != nil {
			return err
		}
		password, err := valueOrPrompt(ctx, loginPassword, "Password", "password", true)
		if err != nil {
			return err
		}

		client, err := sdkClient(ctx)
		if err != nil {
			return err
		}
		if err := client.Login(ctx, identifier, password); err != nil {
			return err
		}

		pterm.Success.Printf("Signed in as %s\n", signedInAs(client))
		landAfterLogin(ctx, client)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginIdentifier, "identifier", "u", "", "Email or username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")
}
