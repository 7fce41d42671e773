package callback

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/snipbox/snipbox/pkg/sdk"
)

// Path is where the identity provider redirects back to.
const Path = "/oauth/callback"

var page = template.Must(template.New("callback").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>snipctl</title></head>
<body>
{{if .Success}}<h1>Signed in</h1>
<p>You can close this window and return to the terminal.</p>
{{else}}<h1>Sign-in failed</h1>
<p>{{.Message}}</p>
<p>Return to the terminal to try again.</p>
{{end}}</body>
</html>
`))

// Server is the local listener that plays the OAuth callback route for the
// CLI. The first request on Path settles the flow; Done delivers its outcome.
type Server struct {
	flow *sdk.OAuthCallback
	done chan sdk.CallbackOutcome

	srv         *http.Server
	redirectURI string
}

// NewServer creates a server that settles flow.
func NewServer(flow *sdk.OAuthCallback) *Server {
	return &Server{
		flow: flow,
		done: make(chan sdk.CallbackOutcome, 1),
	}
}

// Handler returns the callback router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(Path, s.handleCallback)
	return r
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	outcome := s.flow.Handle(sdk.ReadCallbackParams(r))

	select {
	case s.done <- outcome:
	default:
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if outcome.State != sdk.CallbackSuccess {
		w.WriteHeader(http.StatusBadRequest)
	}
	if err := page.Execute(w, struct {
		Success bool
		Message string
	}{outcome.State == sdk.CallbackSuccess, outcome.Message}); err != nil {
		log.Printf("failed to render callback page: %v", err)
	}
}

// Start listens on 127.0.0.1:port and serves in the background. Port 0
// picks a free port.
func (s *Server) Start(port int) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", fmt.Sprint(port)))
	if err != nil {
		return fmt.Errorf("failed to start callback listener: %w", err)
	}
	s.redirectURI = "http://" + ln.Addr().String() + Path
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("callback listener stopped: %v", err)
		}
	}()
	return nil
}

// RedirectURI is the absolute callback URL once Start has returned.
func (s *Server) RedirectURI() string {
	return s.redirectURI
}

// Done delivers the outcome of the first callback request.
func (s *Server) Done() <-chan sdk.CallbackOutcome {
	return s.done
}

// Wait blocks until the flow settles or ctx ends.
func (s *Server) Wait(ctx context.Context) (sdk.CallbackOutcome, error) {
	select {
	case outcome := <-s.done:
		return outcome, nil
	case <-ctx.Done():
		return sdk.CallbackOutcome{}, fmt.Errorf("waiting for oauth callback: %w", ctx.Err())
	}
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
