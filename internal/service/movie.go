package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/movie-catalog/internal/domain"
	"github.com/Rrens/movie-catalog/internal/external"
	"golang.org/x/sync/errgroup"
)

// MovieList is one page of the catalog plus external suggestions
type MovieList struct {
	Data        []domain.Movie        `json:"data"`
	Meta        domain.ListMeta       `json:"meta"`
	Suggestions []external.Suggestion `json:"suggestions"`
}

// MovieDetail is a catalog entry enriched with provider metadata
type MovieDetail struct {
	domain.Movie
	ExternalDetails *external.Detail `json:"externalDetails"`
}

// MovieService handles catalog operations
type MovieService struct {
	movies domain.MovieRepository
	lookup external.Client
	now    func() time.Time
}

// NewMovieService creates a new movie service
func NewMovieService(movies domain.MovieRepository, lookup external.Client) *MovieService {
	if lookup == nil {
		lookup = external.NewNoop()
	}
	return &MovieService{
		movies: movies,
		lookup: lookup,
		now:    time.Now,
	}
}

// List returns one page of movies. When the filter carries a query, provider
// suggestions are searched alongside the store and merged at the end; a
// provider failure only empties the suggestions.
func (s *MovieService) List(ctx context.Context, filter domain.MovieFilter) (*MovieList, error) {
	var pending chan []external.Suggestion
	if filter.Query != "" {
		pending = make(chan []external.Suggestion, 1)
		go func() {
			pending <- s.lookup.SearchByTitle(ctx, filter.Query)
		}()
	}

	var (
		movies []domain.Movie
		total  int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movies, err = s.movies.List(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list movies: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.movies.Count(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to count movies: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if movies == nil {
		movies = []domain.Movie{}
	}

	return &MovieList{
		Data: movies,
		Meta: domain.ListMeta{
			Total:       total,
			PerPage:     filter.PageSize,
			CurrentPage: filter.Page,
		},
		Suggestions: awaitSuggestions(ctx, pending),
	}, nil
}

func awaitSuggestions(ctx context.Context, pending <-chan []external.Suggestion) []external.Suggestion {
	if pending == nil {
		return []external.Suggestion{}
	}

	select {
	case got := <-pending:
		if got == nil {
			return []external.Suggestion{}
		}
		if len(got) > external.MaxSuggestions {
			got = got[:external.MaxSuggestions]
		}
		return got
	case <-ctx.Done():
		return []external.Suggestion{}
	}
}

// Get returns a movie with provider details for its title
func (s *MovieService) Get(ctx context.Context, id string) (*MovieDetail, error) {
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie %s: %w", id, domain.ErrNotFound)
	}

	return &MovieDetail{
		Movie:           *movie,
		ExternalDetails: s.enrich(ctx, movie.Title),
	}, nil
}

func (s *MovieService) enrich(ctx context.Context, title string) *external.Detail {
	hits := s.lookup.SearchByTitle(ctx, title)
	if len(hits) == 0 {
		return nil
	}
	return s.lookup.FetchDetail(ctx, hits[0].TMDBID)
}

// Create adds a movie owned by ownerID
func (s *MovieService) Create(ctx context.Context, ownerID string, input domain.MovieCreate) (*domain.Movie, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.NewValidationError("title", "is required")
	}
	if err := domain.ValidateRating(input.Rating); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	movie := &domain.Movie{
		Title:     title,
		Year:      input.Year,
		Genre:     domain.NormalizeGenres(input.Genre),
		Synopsis:  input.Synopsis,
		Rating:    input.Rating,
		CreatedBy: ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	return movie, nil
}

// Update changes the provided fields of a movie owned by ownerID. A movie that
// does not exist and one owned by someone else are reported the same way.
func (s *MovieService) Update(ctx context.Context, ownerID, id string, input domain.MovieUpdate) (*domain.Movie, error) {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, domain.NewValidationError("title", "must not be blank")
		}
		input.Title = &title
	}
	if err := domain.ValidateRating(input.Rating); err != nil {
		return nil, err
	}
	if input.Genre != nil {
		genres := domain.NormalizeGenres(*input.Genre)
		input.Genre = &genres
	}

	movie, err := s.movies.UpdateOwned(ctx, id, ownerID, input, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie %s: %w", id, domain.ErrNotFound)
	}

	return movie, nil
}

// Delete removes a movie owned by ownerID
func (s *MovieService) Delete(ctx context.Context, ownerID, id string) error {
	deleted, err := s.movies.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	if !deleted {
		return fmt.Errorf("movie %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
