package sdk

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

// RedirectDelay is how long a failed callback shows its message before
// returning the user to login.
const RedirectDelay = 3 * time.Second

// CallbackState is a state of the OAuth callback flow.
type CallbackState string

const (
	CallbackLoading       CallbackState = "loading"
	CallbackError         CallbackState = "error"
	CallbackMissingTokens CallbackState = "missing-tokens"
	CallbackSuccess       CallbackState = "success"
)

// Terminal reports whether no further transition can happen.
func (s CallbackState) Terminal() bool {
	return s != CallbackLoading
}

// CallbackParams are the values delivered by the identity provider redirect.
type CallbackParams struct {
	AccessToken  string
	RefreshToken string
	Error        string
	State        string
}

// ReadCallbackParams reads accessToken, refreshToken, error and state from
// the query string, falling back to same-named cookies for each field
// missing from the query.
func ReadCallbackParams(r *http.Request) CallbackParams {
	query := r.URL.Query()
	value := func(name string) string {
		if v := query.Get(name); v != "" {
			return v
		}
		if c, err := r.Cookie(name); err == nil {
			return c.Value
		}
		return ""
	}
	return CallbackParams{
		AccessToken:  value("accessToken"),
		RefreshToken: value("refreshToken"),
		Error:        value("error"),
		State:        query.Get("state"),
	}
}

// CallbackOutcome describes where the flow ended.
type CallbackOutcome struct {
	State   CallbackState
	Message string
	// Target is where the user is sent: immediately on success, after
	// RedirectDelay otherwise.
	Target string
}

// OAuthCallback drives loading → {error, missing-tokens, success}. Tokens
// received on success are written straight into the store, since they
// were already issued by the server.
type OAuthCallback struct {
	state         *AuthState
	navigator     Navigator
	expectedState string
	after         func(time.Duration) <-chan time.Time

	mu        sync.Mutex
	handled   bool
	finished  bool
	outcome   CallbackOutcome
	nextID    int
	listeners map[int]func(CallbackOutcome)
}

// OAuthCallbackOption configures an OAuthCallback.
type OAuthCallbackOption func(*OAuthCallback)

// WithExpectedState rejects callbacks that do not echo the anti-forgery
// state, including callbacks without one.
func WithExpectedState(state string) OAuthCallbackOption {
	return func(c *OAuthCallback) {
		c.expectedState = state
	}
}

// WithCountdown replaces time.After for the redirect countdown.
func WithCountdown(after func(time.Duration) <-chan time.Time) OAuthCallbackOption {
	return func(c *OAuthCallback) {
		if after != nil {
			c.after = after
		}
	}
}

// NewOAuthCallback creates a callback flow in the loading state.
func NewOAuthCallback(state *AuthState, navigator Navigator, opts ...OAuthCallbackOption) *OAuthCallback {
	c := &OAuthCallback{
		state:     state,
		navigator: navigator,
		after:     time.After,
		outcome:   CallbackOutcome{State: CallbackLoading},
		listeners: make(map[int]func(CallbackOutcome)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Outcome returns the current state of the flow.
func (c *OAuthCallback) Outcome() CallbackOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// Subscribe is called on every transition.
func (c *OAuthCallback) Subscribe(fn func(CallbackOutcome)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Handle processes the callback parameters. Only the first call has an
// effect; later calls return the settled outcome.
func (c *OAuthCallback) Handle(params CallbackParams) CallbackOutcome {
	c.mu.Lock()
	if c.handled {
		current := c.outcome
		c.mu.Unlock()
		return current
	}
	c.handled = true
	c.mu.Unlock()

	switch {
	case params.Error != "":
		return c.transition(CallbackOutcome{
			State:   CallbackError,
			Message: "Authentication failed: " + params.Error,
			Target:  RouteLogin,
		})
	case c.expectedState != "" && params.State != c.expectedState:
		return c.transition(CallbackOutcome{
			State:   CallbackError,
			Message: "Authentication failed: state mismatch",
			Target:  RouteLogin,
		})
	case params.AccessToken == "" || params.RefreshToken == "":
		return c.transition(CallbackOutcome{
			State:   CallbackMissingTokens,
			Message: "Authentication failed: no tokens received",
			Target:  RouteLogin,
		})
	}

	store := c.state.svc.Store()
	if err := SetTokens(store, TokenPair{AccessToken: params.AccessToken, RefreshToken: params.RefreshToken}); err != nil {
		log.Printf("failed to store oauth tokens: %v", err)
		return c.transition(CallbackOutcome{
			State:   CallbackError,
			Message: "Authentication failed: could not save session",
			Target:  RouteLogin,
		})
	}
	c.state.Login()

	target := RouteDashboard
	if redirect := store.Get(KeyRedirectURL); redirect != "" {
		target = redirect
		if err := store.Remove(KeyRedirectURL); err != nil {
			log.Printf("failed to clear redirect url: %v", err)
		}
	}

	outcome := c.transition(CallbackOutcome{
		State:   CallbackSuccess,
		Message: "Signed in",
		Target:  target,
	})
	if c.navigator != nil {
		c.navigator.Navigate(target)
	}
	return outcome
}

// Finish completes navigation for a settled flow. Failed flows wait
// RedirectDelay before navigating to login; a cancelled ctx stops the
// countdown without navigating. Once a countdown completes, later calls
// do nothing.
func (c *OAuthCallback) Finish(ctx context.Context) error {
	c.mu.Lock()
	outcome := c.outcome
	if outcome.State == CallbackSuccess || !outcome.State.Terminal() || c.finished {
		c.mu.Unlock()
		return nil
	}
	c.finished = true
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		c.mu.Lock()
		c.finished = false
		c.mu.Unlock()
		return ctx.Err()
	case <-c.after(RedirectDelay):
	}
	if c.navigator != nil {
		c.navigator.Navigate(outcome.Target)
	}
	return nil
}

func (c *OAuthCallback) transition(outcome CallbackOutcome) CallbackOutcome {
	c.mu.Lock()
	c.outcome = outcome
	fns := make([]func(CallbackOutcome), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(outcome)
	}
	return outcome
}
