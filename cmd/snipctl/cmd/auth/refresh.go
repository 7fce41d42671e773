package auth

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/snipbox/snipbox/pkg/sdk"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the stored refresh token for a new token pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Refresh(cmd.Context()); err != nil {
			if errors.Is(err, sdk.ErrNoRefreshToken) {
				return fmt.Errorf("no session to refresh; run 'snipctl auth login'")
			}
			return err
		}

		pterm.Success.Printf("Session refreshed for %s\n", signedInAs(client))
		return nil
	},
}
