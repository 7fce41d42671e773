package users

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <new-username>",
	Short: "Change your username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}
		user, err := client.UpdateUsername(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		pterm.Success.Printf("Username changed to %s\n", user.Username)
		return nil
	},
}
