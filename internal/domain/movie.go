package domain

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Rating bounds
const (
	MinRating = 0
	MaxRating = 10
)

// Listing bounds
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Movie represents a catalog entry
type Movie struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Year      *int      `json:"year,omitempty"`
	Genre     []string  `json:"genre"`
	Synopsis  string    `json:"synopsis,omitempty"`
	Rating    *float64  `json:"rating,omitempty"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MovieCreate represents movie creation data
type MovieCreate struct {
	Title    string   `json:"title" validate:"required,max=500"`
	Year     *int     `json:"year,omitempty"`
	Genre    []string `json:"genre,omitempty"`
	Synopsis string   `json:"synopsis,omitempty"`
	Rating   *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=10"`
}

// MovieUpdate represents a partial movie update; nil fields are left unchanged
type MovieUpdate struct {
	Title    *string   `json:"title,omitempty" validate:"omitempty,max=500"`
	Year     *int      `json:"year,omitempty"`
	Genre    *[]string `json:"genre,omitempty"`
	Synopsis *string   `json:"synopsis,omitempty"`
	Rating   *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=10"`
}

// MovieFilter describes a listing query
type MovieFilter struct {
	Query    string
	Genres   []string
	Page     int
	PageSize int
}

// NewMovieFilter builds a filter from raw query parameters. Missing or
// malformed paging values fall back to the defaults and the page size is
// capped at MaxPageSize.
func NewMovieFilter(query, genre, page, limit string) MovieFilter {
	f := MovieFilter{
		Query:    strings.TrimSpace(query),
		Genres:   ParseGenres(genre),
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
	if n, err := strconv.Atoi(strings.TrimSpace(page)); err == nil && n >= 1 {
		f.Page = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil && n >= 1 {
		f.PageSize = min(n, MaxPageSize)
	}
	return f
}

// Skip returns the number of records before the requested page
func (f MovieFilter) Skip() int {
	return (f.Page - 1) * f.PageSize
}

// ListMeta carries pagination details for a listing
type ListMeta struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"perPage"`
	CurrentPage int   `json:"currentPage"`
}

// MovieRepository defines the interface for movie storage
type MovieRepository interface {
	Create(ctx context.Context, movie *Movie) error
	// GetByID returns nil, nil when no movie matches.
	GetByID(ctx context.Context, id string) (*Movie, error)
	// List returns one page of matches. A non-empty Query orders by relevance,
	// otherwise newest first.
	List(ctx context.Context, filter MovieFilter) ([]Movie, error)
	// Count returns the number of matches ignoring pagination.
	Count(ctx context.Context, filter MovieFilter) (int64, error)
	// UpdateOwned applies update to the movie only when it is owned by ownerID,
	// as a single conditional write. Returns nil, nil when nothing matched.
	UpdateOwned(ctx context.Context, id, ownerID string, update MovieUpdate, updatedAt time.Time) (*Movie, error)
	// DeleteOwned removes the movie only when it is owned by ownerID.
	// Returns false when nothing matched.
	DeleteOwned(ctx context.Context, id, ownerID string) (bool, error)
}

// ValidateRating checks the optional rating against the allowed range
func ValidateRating(rating *float64) error {
	if rating == nil {
		return nil
	}
	if *rating < MinRating || *rating > MaxRating {
		return NewValidationError("rating", "must be between 0 and 10")
	}
	return nil
}

// NormalizeGenres trims tags and drops blanks, keeping order
func NormalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// ParseGenres splits a comma separated genre filter
func ParseGenres(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	genres := NormalizeGenres(strings.Split(raw, ","))
	if len(genres) == 0 {
		return nil
	}
	return genres
}
