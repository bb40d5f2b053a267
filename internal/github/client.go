package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/portfolio-api/internal/cache"
	"github.com/Tiliavir/portfolio-api/internal/logx"
	"github.com/Tiliavir/portfolio-api/internal/model"
)

// DefaultEndpoint is the GitHub GraphQL API.
const DefaultEndpoint = "https://api.github.com/graphql"

// DefaultCacheTTL matches the hourly revalidation of the stats page.
const DefaultCacheTTL = time.Hour

var (
	// ErrMissingToken means no bearer token is configured; no request is made.
	ErrMissingToken = errors.New("github token is not configured")
	// ErrUpstream covers GraphQL error arrays, non-2xx statuses and malformed payloads.
	ErrUpstream = errors.New("failed to fetch GitHub data")
)

const statsQuery = `
query($username: String!) {
  user(login: $username) {
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
            color
          }
        }
      }
    }
    repositories(first: 100, ownerAffiliations: OWNER, orderBy: {field: STARGAZERS, direction: DESC}) {
      nodes {
        name
        stargazerCount
        forkCount
        url
        description
        languages(first: 3, orderBy: {field: SIZE, direction: DESC}) {
          nodes {
            name
            color
          }
        }
      }
    }
  }
}`

// Options configures a Client.
type Options struct {
	Token    string
	Endpoint string
	CacheTTL time.Duration
	// Cache may be nil; results are then fetched on every call.
	Cache      cache.Cache
	HTTPClient *http.Client
}

// Client issues the stats query with a static bearer token.
type Client struct {
	token      string
	endpoint   string
	ttl        time.Duration
	cache      cache.Cache
	httpClient *http.Client
}

// NewClient creates a GitHub client. A missing token is reported by FetchStats, not here.
func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 20 * time.Second}
	}
	c := &Client{
		token:    opts.Token,
		endpoint: endpoint,
		ttl:      opts.CacheTTL,
		cache:    opts.Cache,
	}
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"})
		c.httpClient = oauth2.NewClient(ctx, ts)
	}
	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Path    []any  `json:"path"`
}

type statsResponse struct {
	Data *struct {
		User *model.GithubStats `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

func cacheKey(username string) string { return "github:stats:" + username }

// FetchStats returns the contribution calendar and owned repositories of username.
// A cached copy younger than the configured TTL may be returned instead of a fresh one.
func (c *Client) FetchStats(ctx context.Context, username string) (*model.GithubStats, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}
	log := logx.For("github").WithField("user", username)

	if stats, ok := c.cached(ctx, username); ok {
		log.Debug("serving stats from cache")
		return stats, nil
	}

	body, err := json.Marshal(graphQLRequest{
		Query:     statsQuery,
		Variables: map[string]any{"username": username},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding graphql request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Error("github request failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithField("status", resp.StatusCode).WithField("body", string(raw)).Error("github api error")
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out statsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		log.WithError(err).Error("decoding github response")
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	if len(out.Errors) > 0 {
		log.WithField("errors", out.Errors).Error("github api errors")
		return nil, ErrUpstream
	}
	if out.Data == nil || out.Data.User == nil {
		log.Error("github response has no user")
		return nil, ErrUpstream
	}

	c.store(ctx, username, out.Data.User)
	return out.Data.User, nil
}

// cached treats any cache failure as a miss.
func (c *Client) cached(ctx context.Context, username string) (*model.GithubStats, bool) {
	if c.cache == nil || c.ttl <= 0 {
		return nil, false
	}
	raw, ok, err := c.cache.Get(ctx, cacheKey(username))
	if err != nil {
		logx.For("github").WithError(err).Warn("cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var stats model.GithubStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		logx.For("github").WithError(err).Warn("discarding unreadable cache entry")
		return nil, false
	}
	return &stats, true
}

func (c *Client) store(ctx context.Context, username string, stats *model.GithubStats) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKey(username), raw, c.ttl); err != nil {
		logx.For("github").WithError(err).Warn("cache write failed")
	}
}
