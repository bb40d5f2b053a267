package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/portfolio-api/internal/logx"
	"github.com/Tiliavir/portfolio-api/internal/model"
)

const (
	DefaultAPIBaseURL = "https://api.spotify.com/v1"
	// DefaultTimeRange is roughly the last four weeks.
	DefaultTimeRange = "short_term"
)

// Options configures a Client.
type Options struct {
	Credentials
	TokenURL   string
	APIBaseURL string
	TimeRange  string
	// Limit caps the number of tracks; zero leaves the API default.
	Limit      int
	HTTPClient *http.Client
}

// Client fetches the listener's top tracks.
type Client struct {
	creds      Credentials
	cfg        *oauth2.Config
	apiBase    string
	timeRange  string
	limit      int
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	apiBase := strings.TrimRight(opts.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = DefaultAPIBaseURL
	}
	timeRange := opts.TimeRange
	if timeRange == "" {
		timeRange = DefaultTimeRange
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		creds:      opts.Credentials,
		cfg:        oauth2Config(opts.ClientID, opts.ClientSecret, "", opts.TokenURL, ""),
		apiBase:    apiBase,
		timeRange:  timeRange,
		limit:      opts.Limit,
		httpClient: hc,
	}
}

// accessToken exchanges the stored refresh token for a short-lived access token.
func (c *Client) accessToken(ctx context.Context) (*oauth2.Token, error) {
	ts := c.cfg.TokenSource(withHTTPClient(ctx, c.httpClient), &oauth2.Token{RefreshToken: c.creds.RefreshToken})
	tok, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing access token: %w", err)
	}
	return tok, nil
}

type topTracksResponse struct {
	Items []trackObject `json:"items"`
}

type trackObject struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Album struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

// mapTrack flattens a track; the first album image is the largest.
func mapTrack(t trackObject) model.TopTrack {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	track := model.TopTrack{
		Artist:  strings.Join(names, ", "),
		Title:   t.Name,
		SongURL: t.ExternalURLs.Spotify,
	}
	if len(t.Album.Images) > 0 {
		track.AlbumImageURL = t.Album.Images[0].URL
	}
	return track
}

func (c *Client) topTracksURL() string {
	q := url.Values{"time_range": {c.timeRange}}
	if c.limit > 0 {
		q.Set("limit", strconv.Itoa(c.limit))
	}
	return c.apiBase + "/me/top/tracks?" + q.Encode()
}

// TopTracks returns the top tracks in ranking order, or the first error encountered.
func (c *Client) TopTracks(ctx context.Context) ([]model.TopTrack, error) {
	if !c.creds.Complete() {
		return nil, ErrMissingCredentials
	}
	tok, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.topTracksURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	tok.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify api error %d: %s", resp.StatusCode, string(body))
	}

	var page topTracksResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decoding spotify response: %w", err)
	}
	tracks := make([]model.TopTrack, 0, len(page.Items))
	for _, item := range page.Items {
		tracks = append(tracks, mapTrack(item))
	}
	return tracks, nil
}

// FetchTopTracks never fails: any problem is logged and yields an empty list.
func (c *Client) FetchTopTracks(ctx context.Context) []model.TopTrack {
	tracks, err := c.TopTracks(ctx)
	if err != nil {
		logx.For("spotify").WithError(err).Warn("top tracks unavailable, returning empty list")
		return []model.TopTrack{}
	}
	return tracks
}
