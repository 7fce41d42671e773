package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/snipbox/snipbox/cmd/snipctl/internal/guard"
	"github.com/spf13/cobra"
)

const tokenEnvVar = "SNIPBOX_ACCESS_TOKEN"

var (
	shellFormat string
)

var exportCmd = &cobra.Command{
	Use:         "export",
	Short:       "Export the access token as a shell variable",
	Annotations: guard.Require(guard.LevelAuth),
	Long: `Export the stored access token as SNIPBOX_ACCESS_TOKEN for scripts that
call the snippet platform API directly.

Supported shells:
  - posix (bash, zsh, sh) - default
  - fish
  - powershell

Usage:
  # POSIX shells (bash/zsh/sh)
  eval $(snipctl auth export)

  # Fish shell
  eval (snipctl auth export --shell fish)

  # PowerShell
  snipctl auth export --shell powershell | Invoke-Expression

If you are not signed in, or the token has expired, run 'snipctl auth login'.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&shellFormat, "shell", "", "Shell format: posix, fish, powershell (auto-detected if not specified)")
}

func runExport(cmd *cobra.Command, args []string) error {
	client, err := sdkClient(cmd.Context())
	if err != nil {
		return err
	}
	accessToken := client.Auth().AccessToken()

	format := shellFormat
	if format == "" {
		format = detectShell()
	}

	line, hint, err := exportLine(strings.ToLower(format), accessToken)
	if err != nil {
		return err
	}
	// Instructions only when a human is looking, not when piped into eval.
	if isTerminal(os.Stdout) {
		fmt.Fprintln(os.Stderr, "# Run this command to configure your environment:")
		fmt.Fprintf(os.Stderr, "#   %s\n\n", hint)
	}
	fmt.Println(line)
	return nil
}

// exportLine renders the assignment for shell and the command that evals it.
func exportLine(shell, accessToken string) (line, hint string, err error) {
	switch shell {
	case "posix", "bash", "zsh", "sh":
		return fmt.Sprintf("export %s=%q", tokenEnvVar, accessToken), "eval $(snipctl auth export)", nil
	case "fish":
		return fmt.Sprintf("set -x %s %q", tokenEnvVar, accessToken), "eval (snipctl auth export --shell fish)", nil
	case "powershell", "pwsh", "ps1":
		return fmt.Sprintf("$env:%s=%q", tokenEnvVar, accessToken), "snipctl auth export --shell powershell | Invoke-Expression", nil
	default:
		return "", "", fmt.Errorf("unsupported shell format: %s\n\nSupported formats: posix, fish, powershell", shell)
	}
}

// detectShell attempts to detect the current shell from the SHELL environment variable
func detectShell() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return "posix"
	}

	switch filepath.Base(shell) {
	case "fish":
		return "fish"
	case "pwsh", "powershell":
		return "powershell"
	default:
		return "posix"
	}
}

// isTerminal checks if the given file is a terminal (TTY)
func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
