package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/portfolio-api/internal/cache"
	"github.com/Tiliavir/portfolio-api/internal/catalog"
	"github.com/Tiliavir/portfolio-api/internal/config"
	"github.com/Tiliavir/portfolio-api/internal/github"
	"github.com/Tiliavir/portfolio-api/internal/httpserver"
	"github.com/Tiliavir/portfolio-api/internal/logx"
	"github.com/Tiliavir/portfolio-api/internal/render"
	"github.com/Tiliavir/portfolio-api/internal/spotify"
	"github.com/Tiliavir/portfolio-api/internal/storage"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	log := logx.For("serve")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := cache.Open(cfg.Cache.CacheOptions())
	if err != nil {
		return fmt.Errorf("opening %s cache: %w", cfg.Cache.Backend, err)
	}
	defer c.Close()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	if cfg.Catalog.Watch {
		if err := cat.Watch(ctx); err != nil {
			log.WithError(err).Warn("catalog watch disabled")
		}
	}

	if cfg.GitHub.Token == "" {
		log.Warn("no GitHub token configured, /github-stats will answer 500")
	}
	if !spotifyCredentials(cfg).Complete() {
		log.Warn("Spotify credentials incomplete, /top-tracks will be empty")
	}

	srv := httpserver.New(httpserver.Options{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpserver.Deps{
		Blogs:          storage.NewBlogStore(cfg.Blogs.Dir, cfg.Blogs.Extension),
		Stats:          newGitHubClient(cfg, c),
		Tracks:         newSpotifyClient(cfg),
		Catalog:        cat,
		Markdown:       render.NewMarkdownRenderer(),
		GitHubUsername: cfg.GitHub.Username,
	})

	log.WithField("blogs", cfg.Blogs.Dir).WithField("cache", cfg.Cache.Backend).Info("starting")
	return srv.ListenAndServe(ctx)
}

func newGitHubClient(cfg config.Config, c cache.Cache) *github.Client {
	return github.NewClient(github.Options{
		Token:    cfg.GitHub.Token,
		Endpoint: cfg.GitHub.Endpoint,
		CacheTTL: cfg.GitHub.CacheTTL,
		Cache:    c,
	})
}

func spotifyCredentials(cfg config.Config) spotify.Credentials {
	return spotify.Credentials{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RefreshToken: cfg.Spotify.RefreshToken,
	}
}

func newSpotifyClient(cfg config.Config) *spotify.Client {
	return spotify.NewClient(spotify.Options{
		Credentials: spotifyCredentials(cfg),
		TokenURL:    cfg.Spotify.TokenURL,
		APIBaseURL:  cfg.Spotify.APIBaseURL,
		TimeRange:   cfg.Spotify.TimeRange,
		Limit:       cfg.Spotify.Limit,
	})
}
