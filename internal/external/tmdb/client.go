// Package tmdb implements external.Client against The Movie Database API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Rrens/movie-catalog/internal/external"
	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout  = 5 * time.Second
	suggestionImage = "w200"
	detailImage     = "w500"
)

// Config holds TMDb client settings
type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Timeout      time.Duration
}

// Client implements external.Client for TMDb
type Client struct {
	cfg    Config
	client *http.Client
}

var _ external.Client = (*Client)(nil)

// NewClient creates a new TMDb client. A nil httpClient gets a dedicated
// client bounded by cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.ImageBaseURL = strings.TrimRight(cfg.ImageBaseURL, "/")

	if httpClient == nil {
		httpClient = newHTTPClient(cfg.Timeout)
	}

	return &Client{cfg: cfg, client: httpClient}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   3 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 3 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return "tmdb"
}

type searchResponse struct {
	Results []movieResult `json:"results"`
}

type movieResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
	Tagline     string  `json:"tagline"`
}

// SearchByTitle searches TMDb by title. Failures are logged and yield an
// empty slice.
func (c *Client) SearchByTitle(ctx context.Context, title string) []external.Suggestion {
	suggestions, err := c.search(ctx, title)
	if err != nil {
		log.Warn().Err(err).Str("provider", c.Name()).Str("title", title).Msg("external search failed")
		return []external.Suggestion{}
	}
	return suggestions
}

// FetchDetail loads a TMDb movie. Failures are logged and yield nil.
func (c *Client) FetchDetail(ctx context.Context, id int64) *external.Detail {
	detail, err := c.detail(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("provider", c.Name()).Int64("tmdb_id", id).Msg("external detail failed")
		return nil
	}
	return detail
}

func (c *Client) search(ctx context.Context, title string) ([]external.Suggestion, error) {
	q := url.Values{}
	q.Set("query", title)
	q.Set("language", "en-US")
	q.Set("page", "1")

	var body searchResponse
	if err := c.get(ctx, "/search/movie", q, &body); err != nil {
		return nil, err
	}

	n := len(body.Results)
	if n > external.MaxSuggestions {
		n = external.MaxSuggestions
	}

	suggestions := make([]external.Suggestion, 0, n)
	for _, r := range body.Results[:n] {
		suggestions = append(suggestions, external.Suggestion{
			TMDBID:      r.ID,
			Title:       r.Title,
			ReleaseDate: r.ReleaseDate,
			PosterURL:   c.imageURL(suggestionImage, r.PosterPath),
			Rating:      r.VoteAverage,
			Overview:    r.Overview,
		})
	}

	return suggestions, nil
}

func (c *Client) detail(ctx context.Context, id int64) (*external.Detail, error) {
	var body movieResult
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), url.Values{}, &body); err != nil {
		return nil, err
	}

	return &external.Detail{
		TMDBID:      body.ID,
		PosterURL:   c.imageURL(detailImage, body.PosterPath),
		Tagline:     body.Tagline,
		Overview:    body.Overview,
		Rating:      body.VoteAverage,
		ReleaseDate: body.ReleaseDate,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	q.Set("api_key", c.cfg.APIKey)
	u := fmt.Sprintf("%s%s?%s", c.cfg.BaseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// url.Error embeds the full URL, api_key included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("tmdb returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) imageURL(size, path string) *string {
	if path == "" {
		return nil
	}
	u := fmt.Sprintf("%s/%s%s", c.cfg.ImageBaseURL, size, path)
	return &u
}
