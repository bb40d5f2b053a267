package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/portfolio-api/internal/cache"
	"github.com/Tiliavir/portfolio-api/internal/config"
	"github.com/Tiliavir/portfolio-api/internal/github"
	"github.com/Tiliavir/portfolio-api/internal/spotify"
	"github.com/Tiliavir/portfolio-api/internal/storage"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GITHUB_TOKEN", "GITHUB_USERNAME", "SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET",
		"SPOTIFY_REFRESH_TOKEN", "PORTFOLIO_ADDR", "BLOGS_DIR", "CACHE_BACKEND", "REDIS_ADDR",
		"REDIS_DB", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := config.Default()
	if cfg.Server.Addr != want.Server.Addr || cfg.Blogs.Dir != "blogs" || cfg.Blogs.Extension != ".txt" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.GitHub.CacheTTL != time.Hour || cfg.Cache.Backend != cache.BackendMemory {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestDefaultsMatchAdapters(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"blogs.extension", cfg.Blogs.Extension, storage.DefaultExtension},
		{"github.endpoint", cfg.GitHub.Endpoint, github.DefaultEndpoint},
		{"github.cache_ttl", cfg.GitHub.CacheTTL.String(), github.DefaultCacheTTL.String()},
		{"spotify.token_url", cfg.Spotify.TokenURL, spotify.DefaultTokenURL},
		{"spotify.auth_url", cfg.Spotify.AuthURL, spotify.DefaultAuthURL},
		{"spotify.api_base_url", cfg.Spotify.APIBaseURL, spotify.DefaultAPIBaseURL},
		{"spotify.time_range", cfg.Spotify.TimeRange, spotify.DefaultTimeRange},
		{"spotify.redirect_uri", cfg.Spotify.RedirectURI, spotify.DefaultRedirectURI},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server:
  addr: ":9090"
  shutdown_timeout: 3s
blogs:
  dir: /srv/blogs
github:
  username: octocat
  cache_ttl: 15m
cache:
  backend: sqlite
  path: /tmp/c.db
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Server.ReadTimeout != 10*time.Second || cfg.Blogs.Extension != ".txt" {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
	if cfg.GitHub.Username != "octocat" || cfg.GitHub.CacheTTL != 15*time.Minute {
		t.Errorf("github = %+v", cfg.GitHub)
	}
	if cfg.Cache.Backend != cache.BackendSQLite || cfg.Cache.Path != "/tmp/c.db" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	clearEnv(t)
	if _, err := config.Load(writeFile(t, "")); err != nil {
		t.Fatalf("Load of empty file: %v", err)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	clearEnv(t)
	_, err := config.Load(writeFile(t, "server:\n  adress: \":1\"\n"))
	if err == nil || !strings.Contains(err.Error(), "adress") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_env")
	t.Setenv("SPOTIFY_REFRESH_TOKEN", "rt_env")
	t.Setenv("PORTFOLIO_ADDR", "127.0.0.1:3001")
	t.Setenv("CACHE_BACKEND", "REDIS")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_FORMAT", "json")

	path := writeFile(t, "github:\n  token: from-file\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GitHub.Token != "ghp_env" {
		t.Errorf("GitHub.Token = %q, want env value", cfg.GitHub.Token)
	}
	if cfg.Spotify.RefreshToken != "rt_env" || cfg.Server.Addr != "127.0.0.1:3001" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestMissingCredentialsAreValid(t *testing.T) {
	cfg := config.Default()
	cfg.GitHub.Token = ""
	cfg.Spotify = config.SpotifyConfig{TimeRange: "short_term"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"empty addr", func(c *config.Config) { c.Server.Addr = " " }, "server.addr"},
		{"zero shutdown", func(c *config.Config) { c.Server.ShutdownTimeout = 0 }, "server.shutdown_timeout"},
		{"negative ttl", func(c *config.Config) { c.GitHub.CacheTTL = -time.Second }, "github.cache_ttl"},
		{"extension without dot", func(c *config.Config) { c.Blogs.Extension = "txt" }, "blogs.extension"},
		{"unknown backend", func(c *config.Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"bolt without path", func(c *config.Config) { c.Cache.Backend = cache.BackendBolt; c.Cache.Path = "" }, "cache.path"},
		{"redis without addr", func(c *config.Config) { c.Cache.Backend = cache.BackendRedis }, "cache.redis_addr"},
		{"bad time range", func(c *config.Config) { c.Spotify.TimeRange = "forever" }, "spotify.time_range"},
		{"limit too large", func(c *config.Config) { c.Spotify.Limit = 51 }, "spotify.limit"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("Validate = %v, want ErrInvalid", err)
			}
			var verr config.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %T is not a ValidationError", err)
			}
			if len(verr.Items) != 1 || verr.Items[0].Field != tt.field {
				t.Errorf("items = %+v, want single %s", verr.Items, tt.field)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = ""
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	var verr config.ValidationError
	if !errors.As(err, &verr) || len(verr.Items) != 2 {
		t.Fatalf("Validate = %v, want two items", err)
	}
	if verr.Items[0].Field != "log.format" || verr.Items[1].Field != "server.addr" {
		t.Errorf("items not sorted by field: %+v", verr.Items)
	}
}

func TestWriteDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "portfolio.yaml")
	if err := config.WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if err := config.WriteDefault(path, false); err == nil {
		t.Error("expected error when file exists without force")
	}
	if err := config.WriteDefault(path, true); err != nil {
		t.Errorf("WriteDefault with force: %v", err)
	}

	// The template must round-trip to the defaults.
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of template: %v", err)
	}
	want := config.Default()
	if cfg != want {
		t.Errorf("template config = %+v\nwant %+v", cfg, want)
	}
}
