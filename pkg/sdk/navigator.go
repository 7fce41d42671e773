package sdk

import "sync"

// Client-side routes the session subsystem navigates to.
const (
	RouteLogin        = "/login"
	RouteLoginExpired = "/login?expired=true"
	RouteDashboard    = "/dashboard"
)

// Navigator moves the user to another surface of the client.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string)

func (f NavigatorFunc) Navigate(target string) { f(target) }

// RecordingNavigator remembers every navigation. Useful for embedding
// clients that poll for the next surface, and for tests.
type RecordingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *RecordingNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
}

// Targets returns the navigations so far, oldest first.
func (n *RecordingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

// Last returns the most recent target, or "".
func (n *RecordingNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.targets) == 0 {
		return ""
	}
	return n.targets[len(n.targets)-1]
}
