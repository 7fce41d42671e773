package auth

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/snipbox/snipbox/pkg/sdk"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"whoami"},
	Short:   "Display authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}
		svc := client.Auth()

		if svc.AccessToken() == "" {
			return sdk.ErrNotLoggedIn
		}

		pterm.DefaultSection.Println("Authentication Status")
		pterm.Info.Printf("User: %s\n", signedInAs(client))
		if role, ok := svc.Role(); ok {
			pterm.Info.Printf("Role: %s\n", role)
		}
		if exp, ok := svc.ExpiresAt(); ok {
			pterm.Info.Printf("Token expires at: %s\n", exp.Local().Format(time.RFC1123))
		}

		if !svc.IsAuthenticated() {
			pterm.Warning.Println("The access token has expired or expires within five minutes.")
			pterm.Warning.Println("Run 'snipctl auth refresh' or 'snipctl auth login'.")
		}
		return nil
	},
}
