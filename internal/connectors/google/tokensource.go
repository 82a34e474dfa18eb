package google

import (
	"context"

	"golang.org/x/oauth2"
)

// Endpoint is Google's OAuth2 endpoint for installed applications.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// ScopeGmailReadOnly is the only scope the mail source needs.
const ScopeGmailReadOnly = "https://www.googleapis.com/auth/gmail.readonly"

// Credentials are the OAuth2 client and refresh token of a mailbox.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// NewOAuthConfig returns the installed-app client configuration used both
// to authorize a mailbox and to refresh its token.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{ScopeGmailReadOnly},
	}
}

// NewTokenSource creates a refreshing oauth2.TokenSource from stored
// credentials. The returned TokenSource can be used with
// option.WithTokenSource() when creating Google API services.
func NewTokenSource(ctx context.Context, creds Credentials) oauth2.TokenSource {
	cfg := NewOAuthConfig(creds.ClientID, creds.ClientSecret, "")
	// Expired forces a refresh on first use.
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
}
