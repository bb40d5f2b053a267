package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Tiliavir/portfolio-api/internal/logx"
	"github.com/Tiliavir/portfolio-api/internal/model"
)

// BlogSource lists and reads blog posts.
type BlogSource interface {
	ListBlogs(ctx context.Context) ([]model.BlogSummary, error)
	GetBlog(ctx context.Context, slug string) (model.BlogPost, error)
}

// StatsSource fetches the GitHub contribution calendar and repositories of a user.
type StatsSource interface {
	FetchStats(ctx context.Context, username string) (*model.GithubStats, error)
}

// TrackSource returns the listener's top tracks. It never fails; problems
// yield an empty list.
type TrackSource interface {
	FetchTopTracks(ctx context.Context) []model.TopTrack
}

// CatalogSource serves the static portfolio datasets.
type CatalogSource interface {
	Root() []model.CatalogItem
	Items(name string) ([]model.CatalogItem, error)
}

// Renderer converts blog content to HTML for ?render=html.
type Renderer interface {
	Render(src string) (string, error)
}

// Deps are the data sources behind the routes.
type Deps struct {
	Blogs    BlogSource
	Stats    StatsSource
	Tracks   TrackSource
	Catalog  CatalogSource
	Markdown Renderer
	// GitHubUsername is the only account /github-stats reports on.
	GitHubUsername string
}

// Options configures the listener.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps the HTTP server configuration and dependencies.
type Server struct {
	opts    Options
	handler http.Handler
}

// New builds the routes and middleware.
func New(opts Options, deps Deps) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{opts: opts, handler: newHandler(deps)}
}

// Handler exposes the full middleware chain, mostly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until ctx is done, then drains in-flight requests
// for at most ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := logx.For("http")
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", ln.Addr().String()).Info("listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
