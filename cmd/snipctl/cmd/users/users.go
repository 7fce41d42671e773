package users

import (
	"context"

	"github.com/snipbox/snipbox/cmd/snipctl/internal/config"
	"github.com/snipbox/snipbox/cmd/snipctl/internal/guard"
	"github.com/snipbox/snipbox/pkg/sdk"
	"github.com/spf13/cobra"
)

// UsersCmd is the parent command for account operations. Every subcommand
// requires a session; list additionally requires the admin role.
var UsersCmd = &cobra.Command{
	Use:         "users",
	Short:       "Manage your account and, for admins, all accounts",
	Annotations: guard.Require(guard.LevelAuth),
}

func init() {
	UsersCmd.AddCommand(meCmd)
	UsersCmd.AddCommand(renameCmd)
	UsersCmd.AddCommand(listCmd)
}

func sdkClient(ctx context.Context) (*sdk.Client, error) {
	cfg := config.MustFromContext(ctx)
	return cfg.ClientProvider.SDKClient()
}
