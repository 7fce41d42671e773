package sdk

// Decision is the outcome of a route guard.
type Decision struct {
	Allow    bool
	Redirect string
}

// Allowed lets navigation proceed.
func Allowed() Decision { return Decision{Allow: true} }

// RedirectTo blocks navigation and sends the user to target.
func RedirectTo(target string) Decision { return Decision{Redirect: target} }

// Guard decides whether navigation to a protected route may proceed.
// Guards are a convenience only: the server enforces authorization on its own.
type Guard func() Decision

// AuthGuard allows authenticated users and sends everyone else to login.
func AuthGuard(svc *AuthService) Guard {
	return func() Decision {
		if svc.IsAuthenticated() {
			return Allowed()
		}
		return RedirectTo(RouteLogin)
	}
}

// AdminGuard allows authenticated admins. Authenticated users without the
// admin role go to the dashboard rather than to login.
func AdminGuard(svc *AuthService) Guard {
	return func() Decision {
		if !svc.IsAuthenticated() {
			return RedirectTo(RouteLogin)
		}
		if !svc.IsAdmin() {
			return RedirectTo(RouteDashboard)
		}
		return Allowed()
	}
}

// Chain evaluates guards in order and returns the first redirect.
func Chain(guards ...Guard) Guard {
	return func() Decision {
		for _, g := range guards {
			if d := g(); !d.Allow {
				return d
			}
		}
		return Allowed()
	}
}
