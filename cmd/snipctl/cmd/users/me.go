package users

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}
		user, err := client.Me(cmd.Context())
		if err != nil {
			return err
		}

		pterm.DefaultSection.Println("Profile")
		pterm.Info.Printf("Username: %s\n", user.Username)
		pterm.Info.Printf("Email: %s\n", user.Email)
		if user.FullName != "" {
			pterm.Info.Printf("Name: %s\n", user.FullName)
		}
		if user.Role != "" {
			pterm.Info.Printf("Role: %s\n", user.Role)
		}
		if !user.CreatedAt.IsZero() {
			pterm.Info.Printf("Member since: %s\n", user.CreatedAt.Local().Format(time.DateOnly))
		}
		return nil
	},
}
