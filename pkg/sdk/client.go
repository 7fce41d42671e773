package sdk

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Client bundles the session subsystem for one client installation: the
// AuthService, the observable AuthState and an HTTP client whose transport
// is the Authorizer.
type Client struct {
	baseURL string
	auth    *AuthService
	state   *AuthState
	http    *http.Client
	api     apiTransport
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient *http.Client
	Store      SessionStore
	Navigator  Navigator
	Clock      Clock
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient sets the HTTP client whose transport the Authorizer wraps.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithStore sets the SessionStore. A MemoryStore is used when none is given.
func WithStore(store SessionStore) ClientOption {
	return func(opts *ClientOptions) {
		opts.Store = store
	}
}

// WithNavigator sets where session expiry and guards navigate to.
func WithNavigator(navigator Navigator) ClientOption {
	return func(opts *ClientOptions) {
		opts.Navigator = navigator
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(clock Clock) ClientOption {
	return func(opts *ClientOptions) {
		opts.Clock = clock
	}
}

// NewClient creates a client for the platform API at baseURL and
// synchronises its AuthState from the store.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Navigator == nil {
		opts.Navigator = &RecordingNavigator{}
	}

	authOpts := []AuthServiceOption{}
	if opts.Clock != nil {
		authOpts = append(authOpts, WithAuthClock(opts.Clock))
	}
	auth := NewAuthService(baseURL, opts.Store, authOpts...)
	state := NewAuthState(auth)

	authorized := *opts.HTTPClient
	authorized.Transport = NewAuthorizer(opts.HTTPClient.Transport, state, opts.Navigator)
	// Public auth endpoints pass through the Authorizer untouched.
	auth.api.httpClient = &authorized

	state.Init()

	return &Client{
		baseURL: baseURL,
		auth:    auth,
		state:   state,
		http:    &authorized,
		api:     apiTransport{baseURL: baseURL, httpClient: &authorized},
	}
}

// Auth returns the AuthService.
func (c *Client) Auth() *AuthService { return c.auth }

// State returns the AuthState.
func (c *Client) State() *AuthState { return c.state }

// HTTPClient returns the authorized HTTP client for calls outside this SDK.
func (c *Client) HTTPClient() *http.Client { return c.http }

// BaseURL returns the platform API URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Login authenticates and resynchronises the AuthState.
func (c *Client) Login(ctx context.Context, identifier, password string) error {
	if _, err := c.auth.Login(ctx, identifier, password); err != nil {
		return err
	}
	c.state.Login()
	return nil
}

// VerifyEmail verifies the account and, when the server issued tokens,
// resynchronises the AuthState.
func (c *Client) VerifyEmail(ctx context.Context, email, otp string) (*Result, error) {
	res, err := c.auth.VerifyEmail(ctx, email, otp)
	if err != nil {
		return nil, err
	}
	if c.auth.AccessToken() != "" {
		c.state.Login()
	}
	return res, nil
}

// Refresh rotates the token pair and resynchronises the AuthState.
func (c *Client) Refresh(ctx context.Context) error {
	if _, err := c.auth.Refresh(ctx); err != nil {
		return err
	}
	c.state.Login()
	return nil
}

// Logout ends the session.
func (c *Client) Logout() error {
	return c.state.Logout()
}

// User is a platform account as returned by the users endpoints.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Me returns the profile of the logged-in user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	env, err := c.api.do(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	var user User
	if err := env.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUsername renames the logged-in user and reflects the new name in
// the AuthState without refreshing the session.
func (c *Client) UpdateUsername(ctx context.Context, username string) (*User, error) {
	env, err := c.api.do(ctx, http.MethodPatch, "/users/me", map[string]string{"username": username})
	if err != nil {
		return nil, fmt.Errorf("failed to update username: %w", err)
	}
	var user User
	if err := env.Decode(&user); err != nil {
		return nil, err
	}
	c.state.UpdateUsername(username)
	return &user, nil
}

// ListUsers returns all accounts. It is an admin-only endpoint; a 403 is
// reported as an empty list so non-admins see no data rather than an error.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	env, err := c.api.do(ctx, http.MethodGet, "/admin/users", nil)
	if err != nil {
		if IsForbidden(err) {
			return []User{}, nil
		}
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	var users []User
	if err := env.Decode(&users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}
