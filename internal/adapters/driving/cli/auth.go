package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/labonzique/comcast-asrs-handler/internal/adapters/driving/oauth"
	"github.com/labonzique/comcast-asrs-handler/internal/connectors/google"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
)

const (
	callbackPortStart = 18080
	callbackPortEnd   = 18090
	callbackTimeout   = 5 * time.Minute
)

var authNoBrowser bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize mail sources",
}

var authGmailCmd = &cobra.Command{
	Use:   "gmail",
	Short: "Authorize read-only access to a Gmail mailbox",
	Long: `Runs the Google consent flow in a browser and stores the resulting
refresh token as gmail.refresh_token. The OAuth client must be set first:

  asrs settings set gmail.client_id <id>
  asrs settings set gmail.client_secret`,
	Args: cobra.NoArgs,
	RunE: runAuthGmail,
}

func init() {
	authGmailCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "print the consent URL instead of opening a browser")
	authCmd.AddCommand(authGmailCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthGmail(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.Gmail.ClientID == "" || settings.Gmail.ClientSecret == "" {
		return errors.New("gmail.client_id and gmail.client_secret must be set first")
	}

	token, err := authorize(cmd.Context(), cmd.OutOrStdout(), settings.Gmail.ClientID, settings.Gmail.ClientSecret, !authNoBrowser)
	if err != nil {
		return err
	}
	if token.RefreshToken == "" {
		return errors.New("google did not return a refresh token; revoke the app's access and try again")
	}

	if err := settingsService.Set("gmail.refresh_token", token.RefreshToken); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	if err := settingsService.Set("gmail.enabled", "true"); err != nil {
		return fmt.Errorf("failed to enable gmail source: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Gmail authorized. The mailbox is read on the next run.")
	return nil
}

// authorize runs the loopback consent flow with PKCE and exchanges the
// code for a token.
func authorize(ctx context.Context, out io.Writer, clientID, clientSecret string, openBrowser bool) (*oauth2.Token, error) {
	port, err := oauth.FindAvailablePort(callbackPortStart, callbackPortEnd)
	if err != nil {
		return nil, err
	}
	state, err := oauth.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	server := oauth.NewCallbackServer(port, state)
	if err := server.Start(); err != nil {
		return nil, err
	}
	defer func() {
		if err := server.Stop(); err != nil {
			logger.Debug("stop callback server: %v", err)
		}
	}()

	cfg := google.NewOAuthConfig(clientID, clientSecret, server.RedirectURI())
	verifier := oauth2.GenerateVerifier()
	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintf(out, "Open this URL to authorize asrs:\n\n  %s\n\n", authURL)
	if openBrowser {
		if err := oauth.OpenBrowser(authURL); err != nil {
			logger.Warn("Could not open browser: %v", err)
		}
	}

	code, err := server.WaitForCode(ctx, callbackTimeout)
	if err != nil {
		return nil, err
	}

	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}
