package spotify_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Tiliavir/portfolio-api/internal/spotify"
)

func TestExtractCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AQBx123", "AQBx123"},
		{"  AQBx123\n", "AQBx123"},
		{"http://127.0.0.1:3000/?code=AQBx123", "AQBx123"},
		{"http://127.0.0.1:3000/?state=&code=abc%2Fdef", "abc/def"},
		{"?code=xyz", "xyz"},
		{"http://127.0.0.1:3000/?error=access_denied", "http://127.0.0.1:3000/?error=access_denied"},
	}
	for _, tt := range tests {
		if got := spotify.ExtractCode(tt.input); got != tt.want {
			t.Errorf("ExtractCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAuthCodeURL(t *testing.T) {
	a, err := spotify.NewAuthorizer("id", "secret", "", "", "", nil)
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}
	u, err := url.Parse(a.AuthCodeURL())
	if err != nil {
		t.Fatalf("parsing auth url: %v", err)
	}
	if u.Host != "accounts.spotify.com" || u.Path != "/authorize" {
		t.Errorf("auth url = %s", u)
	}
	q := u.Query()
	if q.Get("client_id") != "id" || q.Get("response_type") != "code" {
		t.Errorf("query = %v", q)
	}
	if q.Get("redirect_uri") != spotify.DefaultRedirectURI {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if scope := q.Get("scope"); !strings.Contains(scope, "user-top-read") {
		t.Errorf("scope = %q", scope)
	}
}

func TestNewAuthorizerRequiresCredentials(t *testing.T) {
	if _, err := spotify.NewAuthorizer("", "secret", "", "", "", nil); !errors.Is(err, spotify.ErrMissingCredentials) {
		t.Errorf("error = %v, want ErrMissingCredentials", err)
	}
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("code") {
		case "good":
			if r.PostForm.Get("grant_type") != "authorization_code" {
				t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
			}
			_, _ = w.Write([]byte(`{"access_token":"a","token_type":"Bearer","refresh_token":"r-123","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid authorization code"}`))
		}
	}))
	defer srv.Close()

	a, err := spotify.NewAuthorizer("id", "secret", "", srv.URL, "", srv.Client())
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}
	rt, err := a.Exchange(context.Background(), "good")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if rt != "r-123" {
		t.Errorf("refresh token = %q, want r-123", rt)
	}

	_, err = a.Exchange(context.Background(), "bad")
	if spotify.ErrorCode(err) != "invalid_grant" {
		t.Errorf("ErrorCode(%v) = %q, want invalid_grant", err, spotify.ErrorCode(err))
	}
}
