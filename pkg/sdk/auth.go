package sdk

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// Paths of the public authentication endpoints, relative to the server URL.
const (
	PathRegister       = "/auth/register"
	PathVerifyEmail    = "/auth/verify-email"
	PathResendOTP      = "/auth/resend-otp"
	PathLogin          = "/auth/login"
	PathRefresh        = "/auth/refresh"
	PathForgotPassword = "/auth/forgot-password"
	PathResetPassword  = "/auth/reset-password"
)

// Clock returns the current time.
type Clock func() time.Time

// RegisterInput is the registration form.
type RegisterInput struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	FullName        string `json:"fullName"`
	ImageProfile    string `json:"imageProfile,omitempty"`
	Role            string `json:"role,omitempty"`
}

// Result carries the server's message for operations without a payload.
type Result struct {
	Message string
}

// AuthService performs the authentication exchanges with the server and
// answers identity queries from the SessionStore.
type AuthService struct {
	api   apiTransport
	store SessionStore
	now   Clock
}

// AuthServiceOption configures an AuthService.
type AuthServiceOption func(*AuthService)

// WithAuthHTTPClient sets the HTTP client used for auth calls.
func WithAuthHTTPClient(client *http.Client) AuthServiceOption {
	return func(s *AuthService) {
		s.api.httpClient = client
	}
}

// WithAuthClock overrides the time source used for expiry checks.
func WithAuthClock(clock Clock) AuthServiceOption {
	return func(s *AuthService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewAuthService creates an AuthService for the server at baseURL.
func NewAuthService(baseURL string, store SessionStore, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		api:   apiTransport{baseURL: baseURL, httpClient: http.DefaultClient},
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying SessionStore.
func (s *AuthService) Store() SessionStore {
	return s.store
}

// Register creates an account. No session is established: the account must
// be verified by email first. The email is remembered for VerifyEmail.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	if input.ConfirmPassword != "" && input.ConfirmPassword != input.Password {
		return nil, &ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}

	env, err := s.api.do(ctx, http.MethodPost, PathRegister, input)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	if err := s.store.Set(KeyPendingVerificationEmail, input.Email); err != nil {
		log.Printf("failed to remember pending verification email: %v", err)
	}
	return &Result{Message: env.Message}, nil
}

// PendingVerificationEmail returns the email of the last registration awaiting verification.
func (s *AuthService) PendingVerificationEmail() string {
	return s.store.Get(KeyPendingVerificationEmail)
}

// VerifyEmail submits the one-time password. When the response carries a
// token pair the session is established.
func (s *AuthService) VerifyEmail(ctx context.Context, email, otp string) (*Result, error) {
	env, err := s.api.do(ctx, http.MethodPost, PathVerifyEmail, map[string]string{
		"email": email,
		"otp":   otp,
	})
	if err != nil {
		return nil, fmt.Errorf("email verification failed: %w", err)
	}

	if pair, ok := env.TokenPair(); ok {
		if err := SetTokens(s.store, pair); err != nil {
			return nil, err
		}
	}
	if err := s.store.Remove(KeyPendingVerificationEmail); err != nil {
		log.Printf("failed to clear pending verification email: %v", err)
	}
	return &Result{Message: env.Message}, nil
}

// ResendOTP asks the server to send a new verification code.
func (s *AuthService) ResendOTP(ctx context.Context, email string) (*Result, error) {
	env, err := s.api.do(ctx, http.MethodPost, PathResendOTP, map[string]string{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to resend verification code: %w", err)
	}
	return &Result{Message: env.Message}, nil
}

// Login exchanges credentials for a token pair and stores it.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	env, err := s.api.do(ctx, http.MethodPost, PathLogin, map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return s.establish(env)
}

// Refresh rotates both tokens using the stored refresh token. It fails
// without a network call when no refresh token is stored.
func (s *AuthService) Refresh(ctx context.Context) (*TokenPair, error) {
	refreshToken := s.store.Get(KeyRefreshToken)
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	env, err := s.api.do(ctx, http.MethodPost, PathRefresh, map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return s.establish(env)
}

// ForgotPassword requests a reset email. The server answers with the same
// message whether or not the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*Result, error) {
	env, err := s.api.do(ctx, http.MethodPost, PathForgotPassword, map[string]string{"email": email})
	if err != nil {
		return nil, fmt.Errorf("password reset request failed: %w", err)
	}
	return &Result{Message: env.Message}, nil
}

// ResetPassword sets a new password using the emailed reset token.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) (*Result, error) {
	env, err := s.api.do(ctx, http.MethodPost, PathResetPassword, map[string]string{
		"email":       email,
		"token":       token,
		"newPassword": newPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("password reset failed: %w", err)
	}
	return &Result{Message: env.Message}, nil
}

func (s *AuthService) establish(env Envelope) (*TokenPair, error) {
	pair, ok := env.TokenPair()
	if !ok {
		return nil, fmt.Errorf("response did not contain a token pair")
	}
	if err := SetTokens(s.store, pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// AccessToken returns the stored access token, or "".
func (s *AuthService) AccessToken() string {
	return s.store.Get(KeyAccessToken)
}

// RefreshToken returns the stored refresh token, or "".
func (s *AuthService) RefreshToken() string {
	return s.store.Get(KeyRefreshToken)
}

func (s *AuthService) claims() (Claims, bool) {
	token := s.AccessToken()
	if token == "" {
		return nil, false
	}
	return Decode(token)
}

// Username returns the username claim of the stored access token.
func (s *AuthService) Username() (string, bool) {
	claims, ok := s.claims()
	if !ok {
		return "", false
	}
	return claims.Username()
}

// UserID returns the user identifier claim of the stored access token.
func (s *AuthService) UserID() (int64, bool) {
	claims, ok := s.claims()
	if !ok {
		return 0, false
	}
	return claims.UserID()
}

// Role returns the role claim of the stored access token.
func (s *AuthService) Role() (string, bool) {
	claims, ok := s.claims()
	if !ok {
		return "", false
	}
	return claims.Role()
}

// IsAdmin reports whether the stored token carries the admin role, in any casing.
func (s *AuthService) IsAdmin() bool {
	role, ok := s.Role()
	return ok && strings.EqualFold(role, "admin")
}

// ExpiresAt returns the exp claim of the stored access token.
func (s *AuthService) ExpiresAt() (time.Time, bool) {
	claims, ok := s.claims()
	if !ok {
		return time.Time{}, false
	}
	return claims.ExpiresAt()
}

// IsAuthenticated reports whether an access token is stored and not expired.
func (s *AuthService) IsAuthenticated() bool {
	token := s.AccessToken()
	return token != "" && !IsExpired(token, s.now())
}

// Logout clears the session slots. It is safe to call when already logged out.
func (s *AuthService) Logout() error {
	return ClearSession(s.store)
}
