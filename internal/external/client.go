// Package external defines the fail-soft movie metadata lookup used to
// enrich catalog responses.
package external

import "context"

// MaxSuggestions caps the number of suggestions returned by a title search
const MaxSuggestions = 5

// Suggestion is a search hit from the metadata provider
type Suggestion struct {
	TMDBID      int64   `json:"tmdbId"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"releaseDate,omitempty"`
	PosterURL   *string `json:"tmdbPoster"`
	Rating      float64 `json:"tmdbRating"`
	Overview    string  `json:"overview,omitempty"`
}

// Detail is the full metadata record for a single provider movie
type Detail struct {
	TMDBID      int64   `json:"tmdbId"`
	PosterURL   *string `json:"posterUrl"`
	Tagline     string  `json:"tagline,omitempty"`
	Overview    string  `json:"tmdbOverview,omitempty"`
	Rating      float64 `json:"tmdbRating"`
	ReleaseDate string  `json:"releaseDate,omitempty"`
}

// Client looks up movie metadata from a third-party provider. Implementations
// never return errors: any failure yields an empty slice or a nil detail.
type Client interface {
	// Name returns the provider identifier
	Name() string

	// SearchByTitle returns up to MaxSuggestions matches for title
	SearchByTitle(ctx context.Context, title string) []Suggestion

	// FetchDetail returns the provider record for id, or nil
	FetchDetail(ctx context.Context, id int64) *Detail
}

// Noop is used when no provider is configured
type Noop struct{}

// NewNoop creates a client that never returns data
func NewNoop() Client {
	return Noop{}
}

func (Noop) Name() string {
	return "noop"
}

func (Noop) SearchByTitle(ctx context.Context, title string) []Suggestion {
	return []Suggestion{}
}

func (Noop) FetchDetail(ctx context.Context, id int64) *Detail {
	return nil
}
