package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Tiliavir/portfolio-api/internal/catalog"
	"github.com/Tiliavir/portfolio-api/internal/logx"
	"github.com/Tiliavir/portfolio-api/internal/model"
	"github.com/Tiliavir/portfolio-api/internal/storage"
	"github.com/Tiliavir/portfolio-api/internal/timecalc"
)

const (
	cacheStats   = "public, s-maxage=3600"
	cacheNoStore = "no-store"
)

type api struct {
	deps Deps
}

func newHandler(deps Deps) http.Handler {
	a := &api{deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/blogs", getOnly(a.handleListBlogs))
	mux.Handle("/blogs/{slug}", getOnly(a.handleGetBlog))
	mux.Handle("/github-stats", getOnly(a.handleGithubStats))
	mux.Handle("/github-stats/summary", getOnly(a.handleGithubSummary))
	mux.Handle("/top-tracks", getOnly(a.handleTopTracks))
	mux.Handle("/categories", getOnly(a.handleCategories))
	mux.Handle("/categories/{name}", getOnly(a.handleCategory))
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return requestID(accessLog(recoverer(mux)))
}

// getOnly answers anything but GET and HEAD with a JSON 405.
func getOnly(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *api) handleListBlogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", cacheNoStore)
	blogs, err := a.deps.Blogs.ListBlogs(r.Context())
	if err != nil {
		logx.For("http").WithError(err).Error("listing blogs")
		writeError(w, http.StatusInternalServerError, "Failed to fetch blogs")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.BlogSummary{"blogs": blogs})
}

func (a *api) handleGetBlog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", cacheNoStore)
	slug := r.PathValue("slug")
	post, err := a.deps.Blogs.GetBlog(r.Context(), slug)
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidSlug):
		logx.For("http").WithField("slug", slug).Debug("blog not found")
		writeError(w, http.StatusNotFound, "Blog not found")
		return
	case err != nil:
		logx.For("http").WithError(err).WithField("slug", slug).Error("reading blog")
		writeError(w, http.StatusInternalServerError, "Failed to fetch blog content")
		return
	}

	if r.URL.Query().Get("render") == "html" && a.deps.Markdown != nil {
		html, err := a.deps.Markdown.Render(post.Content)
		if err != nil {
			logx.For("http").WithError(err).WithField("slug", slug).Error("rendering blog")
			writeError(w, http.StatusInternalServerError, "Failed to fetch blog content")
			return
		}
		post.HTML = html
	}
	writeJSON(w, http.StatusOK, post)
}

func (a *api) fetchStats(w http.ResponseWriter, r *http.Request) (*model.GithubStats, bool) {
	stats, err := a.deps.Stats.FetchStats(r.Context(), a.deps.GitHubUsername)
	if err != nil {
		logx.For("http").WithError(err).Error("fetching github stats")
		writeError(w, http.StatusInternalServerError, "Failed to fetch Github stats")
		return nil, false
	}
	return stats, true
}

func (a *api) handleGithubStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := a.fetchStats(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", cacheStats)
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) handleGithubSummary(w http.ResponseWriter, r *http.Request) {
	stats, ok := a.fetchStats(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", cacheStats)
	writeJSON(w, http.StatusOK, timecalc.Summarize(stats))
}

func (a *api) handleTopTracks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", cacheNoStore)
	tracks := a.deps.Tracks.FetchTopTracks(r.Context())
	if tracks == nil {
		tracks = []model.TopTrack{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.TopTrack{"tracks": tracks})
}

func (a *api) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]model.CatalogItem{"categories": a.deps.Catalog.Root()})
}

func (a *api) handleCategory(w http.ResponseWriter, r *http.Request) {
	items, err := a.deps.Catalog.Items(r.PathValue("name"))
	if errors.Is(err, catalog.ErrUnknownCategory) {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		logx.For("http").WithError(err).Error("reading catalog")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.CatalogItem{"items": items})
}
