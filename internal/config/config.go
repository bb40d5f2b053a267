package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/portfolio-api/internal/cache"
	"github.com/Tiliavir/portfolio-api/internal/github"
	"github.com/Tiliavir/portfolio-api/internal/spotify"
	"github.com/Tiliavir/portfolio-api/internal/storage"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "portfolio.yaml"

// Config is the root configuration for the portfolio API.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Blogs   BlogsConfig   `yaml:"blogs"`
	GitHub  GitHubConfig  `yaml:"github"`
	Spotify SpotifyConfig `yaml:"spotify"`
	Cache   CacheConfig   `yaml:"cache"`
	Catalog CatalogConfig `yaml:"catalog"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type BlogsConfig struct {
	Dir       string `yaml:"dir"`
	Extension string `yaml:"extension"`
}

// GitHubConfig holds the GraphQL endpoint and credentials. Token is a personal access token.
type GitHubConfig struct {
	Username string        `yaml:"username"`
	Token    string        `yaml:"token"`
	Endpoint string        `yaml:"endpoint"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	TokenURL     string `yaml:"token_url"`
	AuthURL      string `yaml:"auth_url"`
	APIBaseURL   string `yaml:"api_base_url"`
	TimeRange    string `yaml:"time_range"`
	Limit        int    `yaml:"limit"`
	RedirectURI  string `yaml:"redirect_uri"`
}

type CacheConfig struct {
	Backend       cache.Backend `yaml:"backend"`
	Path          string        `yaml:"path"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	DefaultAddr        = ":8080"
	DefaultBlogsDir    = "blogs"
	DefaultUsername    = "Vikranth-jagdish"
	DefaultCatalogPath = "content/catalog.yaml"
)

// Default returns a Config pre-filled with values that work without a config file.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Blogs: BlogsConfig{
			Dir:       DefaultBlogsDir,
			Extension: storage.DefaultExtension,
		},
		GitHub: GitHubConfig{
			Username: DefaultUsername,
			Endpoint: github.DefaultEndpoint,
			CacheTTL: github.DefaultCacheTTL,
		},
		Spotify: SpotifyConfig{
			TokenURL:    spotify.DefaultTokenURL,
			AuthURL:     spotify.DefaultAuthURL,
			APIBaseURL:  spotify.DefaultAPIBaseURL,
			TimeRange:   spotify.DefaultTimeRange,
			RedirectURI: spotify.DefaultRedirectURI,
		},
		Cache: CacheConfig{
			Backend: cache.BackendMemory,
			Path:    "data/cache.db",
		},
		Catalog: CatalogConfig{
			Path: DefaultCatalogPath,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// configTemplate is the annotated config written by `portfolio init`.
const configTemplate = `# portfolio-api configuration
#
# All settings are optional; the defaults shown below work out of the box.
# Secrets are usually supplied through the environment instead:
#   GITHUB_TOKEN, SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, SPOTIFY_REFRESH_TOKEN

server:
  addr: ":8080"
  read_timeout: 10s
  write_timeout: 30s
  # Time allowed for in-flight requests on SIGINT/SIGTERM.
  shutdown_timeout: 10s

blogs:
  # Flat directory of posts; the file name without extension is the slug.
  dir: blogs
  extension: .txt

github:
  username: Vikranth-jagdish
  # Personal access token. Without it /github-stats answers 500.
  token: ""
  endpoint: https://api.github.com/graphql
  cache_ttl: 1h

spotify:
  client_id: ""
  client_secret: ""
  # Obtain one with: portfolio spotify-token
  refresh_token: ""
  # short_term (~4 weeks), medium_term (~6 months) or long_term.
  time_range: short_term
  # 0 keeps the API default of 20.
  limit: 0
  redirect_uri: http://127.0.0.1:3000

cache:
  # memory | bolt | redis | sqlite | none
  backend: memory
  # File used by the bolt and sqlite backends.
  path: data/cache.db
  redis_addr: ""
  redis_password: ""
  redis_db: 0

catalog:
  path: content/catalog.yaml
  # Reload the catalog when the file changes.
  watch: false

log:
  # debug | info | warn | error
  level: info
  # text | json
  format: text
`

// Load reads the YAML file at path over Default(), applies environment
// overrides and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parsing config file %s: %w\nTip: run `portfolio init --force` to regenerate defaults", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides file values with non-empty environment variables.
func applyEnv(cfg *Config) {
	cfg.GitHub.Token = envDefault("GITHUB_TOKEN", cfg.GitHub.Token)
	cfg.GitHub.Username = envDefault("GITHUB_USERNAME", cfg.GitHub.Username)
	cfg.Spotify.ClientID = envDefault("SPOTIFY_CLIENT_ID", cfg.Spotify.ClientID)
	cfg.Spotify.ClientSecret = envDefault("SPOTIFY_CLIENT_SECRET", cfg.Spotify.ClientSecret)
	cfg.Spotify.RefreshToken = envDefault("SPOTIFY_REFRESH_TOKEN", cfg.Spotify.RefreshToken)
	cfg.Server.Addr = envDefault("PORTFOLIO_ADDR", cfg.Server.Addr)
	cfg.Blogs.Dir = envDefault("BLOGS_DIR", cfg.Blogs.Dir)
	cfg.Cache.Backend = cache.Backend(strings.ToLower(envDefault("CACHE_BACKEND", string(cfg.Cache.Backend))))
	cfg.Cache.RedisAddr = envDefault("REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisDB = envInt("REDIS_DB", cfg.Cache.RedisDB)
	cfg.Log.Level = envDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envDefault("LOG_FORMAT", cfg.Log.Format)
}

func envDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

// Validate reports malformed values. Missing credentials are allowed; the
// affected endpoints degrade at request time.
func (c Config) Validate() error {
	var verr ValidationError

	if strings.TrimSpace(c.Server.Addr) == "" {
		verr.Add("server.addr", "must not be empty")
	}
	for field, d := range map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"github.cache_ttl":        c.GitHub.CacheTTL,
	} {
		if d <= 0 {
			verr.Add(field, "must be a positive duration")
		}
	}
	if c.Blogs.Dir == "" {
		verr.Add("blogs.dir", "must not be empty")
	}
	if !strings.HasPrefix(c.Blogs.Extension, ".") || len(c.Blogs.Extension) < 2 {
		verr.Add("blogs.extension", "must start with a dot, e.g. .txt")
	}
	if c.Spotify.Limit < 0 || c.Spotify.Limit > 50 {
		verr.Add("spotify.limit", "must be between 0 and 50")
	}
	switch c.Spotify.TimeRange {
	case "short_term", "medium_term", "long_term":
	default:
		verr.Add("spotify.time_range", "must be short_term, medium_term or long_term")
	}
	if !c.Cache.Backend.Valid() {
		verr.Add("cache.backend", fmt.Sprintf("unknown backend %q", c.Cache.Backend))
	}
	if (c.Cache.Backend == cache.BackendBolt || c.Cache.Backend == cache.BackendSQLite) && c.Cache.Path == "" {
		verr.Add("cache.path", "required for the "+string(c.Cache.Backend)+" backend")
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		verr.Add("cache.redis_addr", "required for the redis backend")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		verr.Add("log.level", "must be debug, info, warn or error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		verr.Add("log.format", "must be text or json")
	}

	if verr.HasAny() {
		verr.sort()
		return verr
	}
	return nil
}

// CacheOptions converts the cache section for cache.Open.
func (c CacheConfig) CacheOptions() cache.Config {
	return cache.Config{
		Backend:       c.Backend,
		Path:          c.Path,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
	}
}

// WriteDefault writes the annotated template to path. Existing files are kept
// unless force is set.
func WriteDefault(path string, force bool) error {
	if path == "" {
		path = DefaultPath
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	// The file may end up holding secrets.
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
