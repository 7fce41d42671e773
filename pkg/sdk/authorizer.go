package sdk

import (
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

// publicAuthPath matches the endpoints that must never carry a bearer token,
// relative to the API base path.
var publicAuthPath = regexp.MustCompile(`^/auth/(login|register|refresh|verify-email|resend-otp|forgot-password|reset-password)/?$`)

// IsPublicAuthPath reports whether path, relative to the API base path, is
// one of the public auth endpoints.
func IsPublicAuthPath(path string) bool {
	return publicAuthPath.MatchString(path)
}

// Authorizer is an http.RoundTripper that attaches the stored access token
// to outgoing requests and ends the session when the server rejects it.
//
// A 401 on an authorized request clears the tokens through AuthState,
// navigates to RouteLoginExpired and hands the response back to the caller.
// It does not retry or refresh.
type Authorizer struct {
	base      http.RoundTripper
	basePath  string
	store     SessionStore
	state     *AuthState
	navigator Navigator

	// mu orders 401 handling so a session is expired at most once.
	mu sync.Mutex
}

var _ http.RoundTripper = (*Authorizer)(nil)

// NewAuthorizer wraps base. A nil base uses http.DefaultTransport.
func NewAuthorizer(base http.RoundTripper, state *AuthState, navigator Navigator) *Authorizer {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Authorizer{
		base:      base,
		basePath:  basePath(state.svc.api.baseURL),
		store:     state.svc.Store(),
		state:     state,
		navigator: navigator,
	}
}

// RoundTrip implements http.RoundTripper.
func (a *Authorizer) RoundTrip(req *http.Request) (*http.Response, error) {
	token := a.store.Get(KeyAccessToken)
	if token == "" || a.isPublic(req.URL.Path) {
		return a.base.RoundTrip(req)
	}

	authReq := req.Clone(req.Context())
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(authReq)

	resp, err := a.base.RoundTrip(authReq)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		a.expire(token)
	}
	return resp, nil
}

func (a *Authorizer) isPublic(path string) bool {
	rel, ok := strings.CutPrefix(path, a.basePath)
	if !ok {
		return false
	}
	return IsPublicAuthPath(rel)
}

// basePath is the path component of baseURL without a trailing slash.
func basePath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}

// expire ends the session that sent token, unless it has already ended or
// been replaced by a newer login.
func (a *Authorizer) expire(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store.Get(KeyAccessToken) != token {
		return
	}

	log.Printf("server rejected access token; ending session")
	if err := a.state.Expire(); err != nil {
		log.Printf("failed to clear expired session: %v", err)
	}
	if a.navigator != nil {
		a.navigator.Navigate(RouteLoginExpired)
	}
}
