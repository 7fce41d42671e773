package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/snipbox/snipbox/cmd/snipctl/internal/callback"
	"github.com/snipbox/snipbox/cmd/snipctl/internal/config"
	"github.com/snipbox/snipbox/pkg/sdk"
	"github.com/spf13/cobra"
	"github.com/zitadel/oidc/v3/pkg/client/rp/cli"
)

var (
	oauthProvider  string
	oauthPort      int
	oauthNoBrowser bool
)

var oauthCmd = &cobra.Command{
	Use:   "oauth",
	Short: "Sign in with an external identity provider",
	Long: `Signs in through an OAuth identity provider configured on the server
(for example google or github).

A listener on 127.0.0.1 receives the provider redirect. The browser is
opened on the server's OAuth entry point; once the provider sends you back
the session is stored just like after 'snipctl auth login'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.MustFromContext(ctx)
		if oauthProvider == "" {
			return fmt.Errorf("--provider is required")
		}

		client, err := sdkClient(ctx)
		if err != nil {
			return err
		}

		state := uuid.NewString()
		flow := sdk.NewOAuthCallback(client.State(), cfg.ClientProvider.Navigator(), sdk.WithExpectedState(state))
		srv := callback.NewServer(flow)

		port := cfg.CallbackPort
		if cmd.Flags().Changed("port") {
			port = oauthPort
		}
		if err := srv.Start(port); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		authURL, err := authorizationURL(cfg.ServerURL, oauthProvider, srv.RedirectURI(), state)
		if err != nil {
			return err
		}

		pterm.Info.Printf("Sign in with %s at:\n\n  %s\n\n", oauthProvider, authURL)
		if !oauthNoBrowser && !cfg.NonInteractive {
			cli.OpenBrowser(authURL)
		}

		waitCtx, cancel := context.WithTimeout(ctx, cfg.CallbackWait)
		defer cancel()
		spinner, _ := pterm.DefaultSpinner.Start("Waiting for the identity provider...")
		outcome, err := srv.Wait(waitCtx)
		if spinner != nil {
			_ = spinner.Stop()
		}
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("timed out after %s waiting for the identity provider", cfg.CallbackWait)
			}
			return err
		}

		if outcome.State == sdk.CallbackSuccess {
			pterm.Success.Printf("Signed in as %s\n", signedInAs(client))
			return nil
		}

		pterm.Error.Println(outcome.Message)
		pterm.Info.Printf("Returning to login in %s...\n", sdk.RedirectDelay)
		if err := flow.Finish(ctx); err != nil {
			return err
		}
		return fmt.Errorf("oauth sign-in with %s failed", oauthProvider)
	},
}

// authorizationURL is <server>/auth/oauth/<provider>?redirect_uri=...&state=...
func authorizationURL(serverURL, provider, redirectURI, state string) (string, error) {
	raw, err := url.JoinPath(serverURL, "auth", "oauth", provider)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	q := u.Query()
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func init() {
	oauthCmd.Flags().StringVar(&oauthProvider, "provider", "", "Identity provider name, e.g. google or github")
	oauthCmd.Flags().IntVar(&oauthPort, "port", 0, "Local callback port (default from config, 8085)")
	oauthCmd.Flags().BoolVar(&oauthNoBrowser, "no-browser", false, "Print the sign-in URL without opening a browser")
}
