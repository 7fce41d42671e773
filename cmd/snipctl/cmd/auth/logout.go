package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Logout(); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		pterm.Success.Println("Logged out successfully")
		return nil
	},
}
