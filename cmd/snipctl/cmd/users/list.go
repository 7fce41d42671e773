package users

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/snipbox/snipbox/cmd/snipctl/internal/guard"
	"github.com/snipbox/snipbox/pkg/sdk"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:         "list",
	Short:       "List all accounts (admin only)",
	Annotations: guard.Require(guard.LevelAdmin),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}
		users, err := client.ListUsers(cmd.Context())
		if err != nil {
			return err
		}

		if len(users) == 0 {
			pterm.Info.Println("No accounts to show.")
			return nil
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(userTable(users)).Render()
		pterm.Info.Printf("%d account(s)\n", len(users))
		return nil
	},
}

func userTable(users []sdk.User) pterm.TableData {
	table := pterm.TableData{{"ID", "USERNAME", "EMAIL", "ROLE", "CREATED"}}
	for _, u := range users {
		created := ""
		if !u.CreatedAt.IsZero() {
			created = u.CreatedAt.Format("2006-01-02")
		}
		table = append(table, []string{strconv.FormatInt(u.ID, 10), u.Username, u.Email, u.Role, created})
	}
	return table
}
