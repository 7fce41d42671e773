package client

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/snipbox/snipbox/pkg/sdk"
)

// TerminalNavigator renders client routes as guidance on the terminal.
type TerminalNavigator struct{}

var _ sdk.Navigator = TerminalNavigator{}

// Navigate prints what the user should do next to reach target.
func (TerminalNavigator) Navigate(target string) {
	msg := Guidance(target)
	switch target {
	case sdk.RouteLoginExpired:
		pterm.Warning.Println(msg)
	case sdk.RouteDashboard:
		pterm.Success.Println(msg)
	default:
		pterm.Info.Println(msg)
	}
}

// Guidance maps a route to a terminal hint. Unknown targets are command
// lines remembered by a guard and are echoed back.
func Guidance(target string) string {
	switch target {
	case sdk.RouteLoginExpired:
		return "Your session has expired. Run 'snipctl auth login' to sign in again."
	case sdk.RouteLogin:
		return "You are not signed in. Run 'snipctl auth login' to sign in."
	case sdk.RouteDashboard:
		return "You are signed in. Run 'snipctl users me' to see your profile."
	default:
		return fmt.Sprintf("Continue with '%s'.", target)
	}
}
