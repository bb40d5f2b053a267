package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Tiliavir/portfolio-api/internal/logx"
	"github.com/Tiliavir/portfolio-api/internal/model"
)

// DefaultExtension is the suffix of blog files.
const DefaultExtension = ".txt"

const previewLimit = 150

var (
	// ErrNotFound is returned when no file exists for a slug.
	ErrNotFound = errors.New("blog not found")
	// ErrInvalidSlug is returned for slugs that could escape the blog directory.
	ErrInvalidSlug = errors.New("invalid blog slug")
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// BlogStore is a read-only view over a directory of blog files.
type BlogStore struct {
	dir string
	ext string
}

// NewBlogStore returns a store reading <dir>/<slug><ext>. An empty ext means DefaultExtension.
func NewBlogStore(dir, ext string) *BlogStore {
	if ext == "" {
		ext = DefaultExtension
	}
	return &BlogStore{dir: dir, ext: ext}
}

// ValidSlug reports whether slug is a single safe path segment.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug) && !strings.Contains(slug, "..")
}

// ListBlogs returns summaries of all blog files, newest modification first.
// A missing directory yields an empty list.
func (s *BlogStore) ListBlogs(ctx context.Context) ([]model.BlogSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []model.BlogSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.ext) {
			continue
		}
		if slug := strings.TrimSuffix(e.Name(), s.ext); !ValidSlug(slug) {
			logx.For("storage").WithField("file", e.Name()).Warn("blog file name is not a safe slug and cannot be fetched, rename it")
		}
		names = append(names, e.Name())
	}

	blogs, err := s.readSummaries(ctx, names)
	if err != nil {
		return nil, err
	}

	sort.Slice(blogs, func(i, j int) bool {
		if !blogs[i].ModifiedAt.Equal(blogs[j].ModifiedAt) {
			return blogs[i].ModifiedAt.After(blogs[j].ModifiedAt)
		}
		return blogs[i].Slug < blogs[j].Slug
	})
	return blogs, nil
}

type summaryResult struct {
	summary model.BlogSummary
	err     error
}

// readSummaries reads files with a bounded worker pool.
func (s *BlogStore) readSummaries(ctx context.Context, names []string) ([]model.BlogSummary, error) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(names) {
		workers = len(names)
	}
	jobs := make(chan string)
	results := make(chan summaryResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				if err := ctx.Err(); err != nil {
					results <- summaryResult{err: err}
					continue
				}
				sum, err := s.readSummary(name)
				results <- summaryResult{summary: sum, err: err}
			}
		}()
	}

	go func() {
		for _, n := range names {
			jobs <- n
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	out := make([]model.BlogSummary, 0, len(names))
	var firstErr error
	for r := range results {
		if os.IsNotExist(r.err) {
			// Removed while listing.
			continue
		}
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		out = append(out, r.summary)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (s *BlogStore) readSummary(name string) (model.BlogSummary, error) {
	path := filepath.Join(s.dir, name)
	content, created, modified, err := readFile(path)
	if err != nil {
		return model.BlogSummary{}, err
	}
	slug := strings.TrimSuffix(name, s.ext)
	return model.BlogSummary{
		Slug:       slug,
		Title:      Title(content, slug),
		Preview:    Preview(content),
		FileName:   name,
		CreatedAt:  created,
		ModifiedAt: modified,
	}, nil
}

// GetBlog returns the post stored as <slug><ext>.
func (s *BlogStore) GetBlog(ctx context.Context, slug string) (model.BlogPost, error) {
	if !ValidSlug(slug) {
		return model.BlogPost{}, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	if err := ctx.Err(); err != nil {
		return model.BlogPost{}, err
	}

	name := slug + s.ext
	path := filepath.Join(s.dir, name)
	fi, err := os.Stat(path)
	if os.IsNotExist(err) || (err == nil && fi.IsDir()) {
		return model.BlogPost{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	if err != nil {
		return model.BlogPost{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	content, created, modified, err := readFile(path)
	if os.IsNotExist(err) {
		// Removed between stat and read.
		return model.BlogPost{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	if err != nil {
		return model.BlogPost{}, err
	}
	return model.BlogPost{
		Slug:       slug,
		Title:      Title(content, slug),
		Content:    content,
		FileName:   name,
		CreatedAt:  created,
		ModifiedAt: modified,
	}, nil
}

func readFile(path string) (content string, created, modified time.Time, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", time.Time{}, time.Time{}, err
		}
		return "", time.Time{}, time.Time{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return "", time.Time{}, time.Time{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	modified = fi.ModTime()
	created = birthTime(path, fi)
	return string(data), created, modified, nil
}

// nonBlankLines splits content on newlines and drops lines that are blank after trimming.
func nonBlankLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Title is the first non-blank line with one leading '#' removed, or slug for empty content.
func Title(content, slug string) string {
	lines := nonBlankLines(content)
	if len(lines) == 0 {
		return slug
	}
	title := strings.TrimSpace(lines[0])
	title = strings.TrimSpace(strings.TrimPrefix(title, "#"))
	if title == "" {
		return slug
	}
	return title
}

// Preview joins the 2nd to 4th non-blank lines as they are, cuts them to 150 characters and always appends "...".
func Preview(content string) string {
	lines := nonBlankLines(content)
	if len(lines) > 4 {
		lines = lines[:4]
	}
	var body []string
	if len(lines) > 1 {
		body = lines[1:]
	}
	joined := []rune(strings.Join(body, " "))
	if len(joined) > previewLimit {
		joined = joined[:previewLimit]
	}
	return string(joined) + "..."
}
