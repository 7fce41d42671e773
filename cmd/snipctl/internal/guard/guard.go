package guard

import (
	"fmt"
	"strings"

	"github.com/snipbox/snipbox/pkg/sdk"
	"github.com/spf13/cobra"
)

// Annotation marks a command as protected. Its value is a level.
const Annotation = "snipctl.io/guard"

// Guard levels.
const (
	LevelAuth  = "auth"
	LevelAdmin = "admin"
)

// Require returns command annotations protecting a command at level.
func Require(level string) map[string]string {
	return map[string]string{Annotation: level}
}

// Level returns the guard level of cmd or its nearest annotated parent.
func Level(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if level, ok := c.Annotations[Annotation]; ok {
			return level
		}
	}
	return ""
}

// For builds the guard for level. Unknown levels deny access.
func For(level string, svc *sdk.AuthService) (sdk.Guard, error) {
	switch level {
	case LevelAuth:
		return sdk.AuthGuard(svc), nil
	case LevelAdmin:
		return sdk.Chain(sdk.AuthGuard(svc), sdk.AdminGuard(svc)), nil
	default:
		return nil, fmt.Errorf("unknown guard level %q", level)
	}
}

// BlockedError is returned when a guard redirects a command.
type BlockedError struct {
	Command  string
	Redirect string
}

func (e *BlockedError) Error() string {
	if e.Redirect == sdk.RouteDashboard {
		return fmt.Sprintf("%s requires the admin role", e.Command)
	}
	return fmt.Sprintf("%s requires you to be signed in", e.Command)
}

// Enforce evaluates the guard of cmd. When it redirects to login the
// command line is remembered so the next login can point back to it.
func Enforce(cmd *cobra.Command, args []string, client *sdk.Client, navigator sdk.Navigator) error {
	level := Level(cmd)
	if level == "" {
		return nil
	}
	g, err := For(level, client.Auth())
	if err != nil {
		return err
	}

	decision := g()
	if decision.Allow {
		return nil
	}

	commandLine := strings.Join(append([]string{cmd.CommandPath()}, args...), " ")
	if decision.Redirect == sdk.RouteLogin {
		if err := client.Auth().Store().Set(sdk.KeyRedirectURL, commandLine); err != nil {
			return fmt.Errorf("failed to remember command: %w", err)
		}
	}
	if navigator != nil {
		navigator.Navigate(decision.Redirect)
	}
	return &BlockedError{Command: cmd.CommandPath(), Redirect: decision.Redirect}
}
