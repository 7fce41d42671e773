package cmd

import (
	"fmt"
	"os"

	"github.com/snipbox/snipbox/cmd/snipctl/cmd/auth"
	"github.com/snipbox/snipbox/cmd/snipctl/cmd/users"
	"github.com/snipbox/snipbox/cmd/snipctl/internal/client"
	"github.com/snipbox/snipbox/cmd/snipctl/internal/config"
	"github.com/snipbox/snipbox/cmd/snipctl/internal/guard"
	"github.com/spf13/cobra"
)

var (
	serverURL      string
	nonInteractive bool
	configPath     string
)

var rootCmd = &cobra.Command{
	Use:   "snipctl",
	Short: "snipctl - snippet platform CLI",
	Long: `snipctl is the command-line client for the snippet platform. Use it to
register, sign in (with a password or an OAuth provider) and manage your account.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := globalConfig(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(config.InjectConfig(cmd.Context(), cfg))

		if guard.Level(cmd) == "" {
			return nil
		}
		sdkClient, err := cfg.ClientProvider.SDKClient()
		if err != nil {
			return err
		}
		return guard.Enforce(cmd, args, sdkClient, cfg.ClientProvider.Navigator())
	},
}

// globalConfig merges the config file, SNIPBOX_* variables and flags.
// Flags set on the command line win.
func globalConfig(cmd *cobra.Command) (*config.GlobalConfig, error) {
	path := configPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	fileCfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	cfg := &config.GlobalConfig{
		ServerURL:      fileCfg.ServerURL,
		NonInteractive: fileCfg.NonInteractive,
		CallbackPort:   fileCfg.CallbackPort,
		CallbackWait:   fileCfg.CallbackWait,
	}
	if f := cmd.Flag("server"); f != nil && f.Changed {
		cfg.ServerURL = serverURL
	}
	if f := cmd.Flag("non-interactive"); f != nil && f.Changed {
		cfg.NonInteractive = nonInteractive
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = config.DefaultServerURL
	}
	cfg.ClientProvider = client.NewProvider(cfg.ServerURL)
	return cfg, nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", config.DefaultServerURL, "Snippet platform API URL (also set via SNIPBOX_SERVER)")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Disable interactive prompts (also set via SNIPBOX_NON_INTERACTIVE=true)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.snipbox/config.yaml)")
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(users.UsersCmd)
}
