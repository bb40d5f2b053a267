package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL     = "https://accounts.spotify.com/authorize"
	DefaultTokenURL    = "https://accounts.spotify.com/api/token"
	DefaultRedirectURI = "http://127.0.0.1:3000"
)

var requiredScopes = []string{
	"user-read-currently-playing",
	"user-read-recently-played",
	"user-top-read",
}

// ErrMissingCredentials means client id, secret or refresh token is not configured.
var ErrMissingCredentials = errors.New("spotify credentials are not configured")

// Credentials are obtained out of band; RefreshToken comes from the spotify-token command.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Complete reports whether all three values are present.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// oauth2Config sends client_id:client_secret as HTTP Basic auth, as the token endpoint expects.
func oauth2Config(clientID, clientSecret, authURL, tokenURL, redirectURI string) *oauth2.Config {
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       requiredScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func withHTTPClient(ctx context.Context, hc *http.Client) context.Context {
	if hc == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, hc)
}

// Authorizer runs the one-time authorization code flow that yields a refresh token.
type Authorizer struct {
	cfg        *oauth2.Config
	httpClient *http.Client
}

// NewAuthorizer builds the flow for a registered app. Empty URLs use Spotify's endpoints.
func NewAuthorizer(clientID, clientSecret, authURL, tokenURL, redirectURI string, hc *http.Client) (*Authorizer, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", ErrMissingCredentials)
	}
	return &Authorizer{
		cfg:        oauth2Config(clientID, clientSecret, authURL, tokenURL, redirectURI),
		httpClient: hc,
	}, nil
}

// AuthCodeURL is the page the operator opens to grant access.
func (a *Authorizer) AuthCodeURL() string {
	return a.cfg.AuthCodeURL("")
}

// RedirectURI returns the redirect the app registration must list.
func (a *Authorizer) RedirectURI() string { return a.cfg.RedirectURL }

// Exchange trades an authorization code for tokens and returns the refresh token.
func (a *Authorizer) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := a.cfg.Exchange(withHTTPClient(ctx, a.httpClient), code)
	if err != nil {
		return "", fmt.Errorf("exchanging authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return "", errors.New("token response did not include a refresh token")
	}
	return tok.RefreshToken, nil
}

// ExtractCode accepts either a bare code or the full redirect URL pasted from the browser.
func ExtractCode(input string) string {
	code := strings.TrimSpace(input)
	if !strings.Contains(code, "http") && !strings.Contains(code, "?") {
		return code
	}
	u, err := url.Parse(code)
	if err != nil {
		return code
	}
	if c := u.Query().Get("code"); c != "" {
		return c
	}
	return code
}

// ErrorCode pulls the OAuth error code (e.g. invalid_grant) out of a failed exchange.
func ErrorCode(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return re.ErrorCode
	}
	return ""
}
