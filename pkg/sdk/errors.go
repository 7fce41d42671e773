package sdk

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoRefreshToken is returned by Refresh when the store holds no refresh token.
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrNotLoggedIn is returned by operations that require a session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// APIError is a non-2xx response from the platform API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

// ValidationError is a client-side form validation failure. It never touches the session.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsUnauthorized reports whether err is a 401 APIError.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is a 403 APIError.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
