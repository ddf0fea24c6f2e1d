package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rrens/movie-catalog/internal/domain"
	"github.com/Rrens/movie-catalog/internal/external"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func newMovieService(movies domain.MovieRepository, lookup external.Client) *MovieService {
	svc := NewMovieService(movies, lookup)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func ptr[T any](v T) *T {
	return &v
}

func TestMovieService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("without query skips provider", func(t *testing.T) {
		movies := new(MockMovieRepository)
		lookup := new(MockLookup)
		svc := newMovieService(movies, lookup)

		filter := domain.NewMovieFilter("", "", "2", "10")
		page := make([]domain.Movie, 10)
		movies.On("List", mock.Anything, filter).Return(page, nil)
		movies.On("Count", mock.Anything, filter).Return(int64(25), nil)

		result, err := svc.List(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, result.Data, 10)
		assert.Equal(t, domain.ListMeta{Total: 25, PerPage: 10, CurrentPage: 2}, result.Meta)
		assert.NotNil(t, result.Suggestions)
		assert.Empty(t, result.Suggestions)

		lookup.AssertNotCalled(t, "SearchByTitle", mock.Anything, mock.Anything)
	})

	t.Run("query merges suggestions", func(t *testing.T) {
		movies := new(MockMovieRepository)
		lookup := new(MockLookup)
		svc := newMovieService(movies, lookup)

		filter := domain.NewMovieFilter("dune", "", "", "")
		movies.On("List", mock.Anything, filter).Return([]domain.Movie{{Title: "Dune"}}, nil)
		movies.On("Count", mock.Anything, filter).Return(int64(1), nil)
		lookup.On("SearchByTitle", mock.Anything, "dune").Return([]external.Suggestion{{TMDBID: 438631, Title: "Dune"}})

		result, err := svc.List(ctx, filter)
		require.NoError(t, err)
		require.Len(t, result.Suggestions, 1)
		assert.Equal(t, int64(438631), result.Suggestions[0].TMDBID)
	})

	t.Run("provider failure yields empty suggestions", func(t *testing.T) {
		movies := new(MockMovieRepository)
		lookup := new(MockLookup)
		svc := newMovieService(movies, lookup)

		filter := domain.NewMovieFilter("dune", "", "", "")
		movies.On("List", mock.Anything, filter).Return([]domain.Movie{{Title: "Dune"}}, nil)
		movies.On("Count", mock.Anything, filter).Return(int64(1), nil)
		lookup.On("SearchByTitle", mock.Anything, "dune").Return(nil)

		result, err := svc.List(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, result.Data, 1)
		assert.NotNil(t, result.Suggestions)
		assert.Empty(t, result.Suggestions)
	})

	t.Run("nil page becomes empty array", func(t *testing.T) {
		movies := new(MockMovieRepository)
		svc := newMovieService(movies, external.NewNoop())

		filter := domain.NewMovieFilter("", "", "", "")
		movies.On("List", mock.Anything, filter).Return(nil, nil)
		movies.On("Count", mock.Anything, filter).Return(int64(0), nil)

		result, err := svc.List(ctx, filter)
		require.NoError(t, err)
		assert.NotNil(t, result.Data)
	})

	t.Run("store failure", func(t *testing.T) {
		movies := new(MockMovieRepository)
		svc := newMovieService(movies, external.NewNoop())

		filter := domain.NewMovieFilter("", "", "", "")
		movies.On("List", mock.Anything, filter).Return(nil, errors.New("boom"))
		movies.On("Count", mock.Anything, filter).Return(int64(0), nil)

		_, err := svc.List(ctx, filter)
		assert.Error(t, err)
	})
}

func TestAwaitSuggestions_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pending := make(chan []external.Suggestion)
	got := awaitSuggestions(ctx, pending)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAwaitSuggestions_Capped(t *testing.T) {
	pending := make(chan []external.Suggestion, 1)
	pending <- make([]external.Suggestion, 8)

	assert.Len(t, awaitSuggestions(context.Background(), pending), external.MaxSuggestions)
}

func TestMovieService_Get(t *testing.T) {
	ctx := context.Background()
	movie := &domain.Movie{ID: "m1", Title: "Dune"}

	t.Run("enriched", func(t *testing.T) {
		movies := new(MockMovieRepository)
		lookup := new(MockLookup)
		svc := newMovieService(movies, lookup)

		detail := &external.Detail{TMDBID: 438631, Tagline: "Beyond fear, destiny awaits."}
		movies.On("GetByID", ctx, "m1").Return(movie, nil)
		lookup.On("SearchByTitle", ctx, "Dune").Return([]external.Suggestion{{TMDBID: 438631}, {TMDBID: 841}})
		lookup.On("FetchDetail", ctx, int64(438631)).Return(detail)

		got, err := svc.Get(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
		assert.Equal(t, detail, got.ExternalDetails)
	})

	t.Run("no match", func(t *testing.T) {
		movies := new(MockMovieRepository)
		lookup := new(MockLookup)
		svc := newMovieService(movies, lookup)

		movies.On("GetByID", ctx, "m1").Return(movie, nil)
		lookup.On("SearchByTitle", ctx, "Dune").Return([]external.Suggestion{})

		got, err := svc.Get(ctx, "m1")
		require.NoError(t, err)
		assert.Nil(t, got.ExternalDetails)
		lookup.AssertNotCalled(t, "FetchDetail", mock.Anything, mock.Anything)
	})

	t.Run("missing", func(t *testing.T) {
		movies := new(MockMovieRepository)
		svc := newMovieService(movies, external.NewNoop())
		movies.On("GetByID", ctx, "nope").Return(nil, nil)

		_, err := svc.Get(ctx, "nope")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestMovieService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("owner comes from caller", func(t *testing.T) {
		movies := new(MockMovieRepository)
		svc := newMovieService(movies, external.NewNoop())

		movies.On("Create", ctx, mock.MatchedBy(func(m *domain.Movie) bool {
			return m.CreatedBy == "user-1" && m.Title == "Dune" &&
				assert.ObjectsAreEqual([]string{"sci-fi", "drama"}, m.Genre)
		})).Return(nil)

		movie, err := svc.Create(ctx, "user-1", domain.MovieCreate{
			Title:  " Dune ",
			Genre:  []string{" sci-fi", "", "drama"},
			Rating: ptr(8.0),
		})
		require.NoError(t, err)
		assert.Equal(t, fixedNow, movie.CreatedAt)
		assert.Equal(t, fixedNow, movie.UpdatedAt)
		movies.AssertExpectations(t)
	})

	t.Run("rating out of range never reaches the store", func(t *testing.T) {
		movies := new(MockMovieRepository)
		svc := newMovieService(movies, external.NewNoop())

		_, err := svc.Create(ctx, "user-1", domain.MovieCreate{Title: "Dune", Rating: ptr(11.0)})
		assert.True(t, errors.Is(err, domain.ErrValidation))
		movies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("blank title", func(t *testing.T) {
		movies := new(MockMovieRepository)
		svc := newMovieService(movies, external.NewNoop())

		_, err := svc.Create(ctx, "user-1", domain.MovieCreate{Title: "   "})
		assert.True(t, errors.Is(err, domain.ErrValidation))
		movies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestMovieService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner update", func(t *testing.T) {
		movies := new(MockMovieRepository)
		svc := newMovieService(movies, external.NewNoop())

		update := domain.MovieUpdate{Title: ptr("Dune: Part One")}
		updated := &domain.Movie{ID: "m1", Title: "Dune: Part One", UpdatedAt: fixedNow}
		movies.On("UpdateOwned", ctx, "m1", "user-1", update, fixedNow).Return(updated, nil)

		got, err := svc.Update(ctx, "user-1", "m1", update)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("not owner or missing", func(t *testing.T) {
		movies := new(MockMovieRepository)
		svc := newMovieService(movies, external.NewNoop())

		movies.On("UpdateOwned", ctx, "m1", "user-2", mock.Anything, fixedNow).Return(nil, nil)

		_, err := svc.Update(ctx, "user-2", "m1", domain.MovieUpdate{Synopsis: ptr("x")})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("invalid rating", func(t *testing.T) {
		movies := new(MockMovieRepository)
		svc := newMovieService(movies, external.NewNoop())

		_, err := svc.Update(ctx, "user-1", "m1", domain.MovieUpdate{Rating: ptr(-1.0)})
		assert.True(t, errors.Is(err, domain.ErrValidation))
		movies.AssertNotCalled(t, "UpdateOwned", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank title", func(t *testing.T) {
		movies := new(MockMovieRepository)
		svc := newMovieService(movies, external.NewNoop())

		_, err := svc.Update(ctx, "user-1", "m1", domain.MovieUpdate{Title: ptr(" ")})
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestMovieService_Delete(t *testing.T) {
	ctx := context.Background()
	movies := new(MockMovieRepository)
	svc := newMovieService(movies, external.NewNoop())

	movies.On("DeleteOwned", ctx, "m1", "user-1").Return(true, nil)
	movies.On("DeleteOwned", ctx, "m1", "user-2").Return(false, nil)

	assert.NoError(t, svc.Delete(ctx, "user-1", "m1"))
	assert.True(t, errors.Is(svc.Delete(ctx, "user-2", "m1"), domain.ErrNotFound))
}
