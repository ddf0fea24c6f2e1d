// Package memory provides in-process implementations of the catalog
// repositories. Data lives for the lifetime of the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Rrens/movie-catalog/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository stores accounts in memory
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

var _ domain.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates an empty user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	user.ID = primitive.NewObjectID().Hex()
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type movieEntry struct {
	movie domain.Movie
	seq   uint64
}

// MovieRepository stores movies in memory
type MovieRepository struct {
	mu     sync.RWMutex
	movies map[string]movieEntry
	seq    uint64
}

var _ domain.MovieRepository = (*MovieRepository)(nil)

// NewMovieRepository creates an empty movie repository
func NewMovieRepository() *MovieRepository {
	return &MovieRepository{movies: make(map[string]movieEntry)}
}

func (r *MovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	movie.ID = primitive.NewObjectID().Hex()
	if movie.Genre == nil {
		movie.Genre = []string{}
	}
	r.seq++
	r.movies[movie.ID] = movieEntry{movie: cloneMovie(*movie), seq: r.seq}
	return nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.movies[id]
	if !ok {
		return nil, nil
	}
	m := cloneMovie(e.movie)
	return &m, nil
}

type scoredEntry struct {
	movieEntry
	score int
}

// List ranks by the number of query terms found in the title when a query is
// given, newest first otherwise.
func (r *MovieRepository) List(ctx context.Context, filter domain.MovieFilter) ([]domain.Movie, error) {
	matches := r.match(filter)

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		ci, cj := matches[i].movie.CreatedAt, matches[j].movie.CreatedAt
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return matches[i].seq > matches[j].seq
	})

	skip := filter.Skip()
	if skip >= len(matches) {
		return []domain.Movie{}, nil
	}
	end := skip + filter.PageSize
	if end > len(matches) {
		end = len(matches)
	}

	page := make([]domain.Movie, 0, end-skip)
	for _, m := range matches[skip:end] {
		page = append(page, cloneMovie(m.movie))
	}
	return page, nil
}

func (r *MovieRepository) Count(ctx context.Context, filter domain.MovieFilter) (int64, error) {
	return int64(len(r.match(filter))), nil
}

func (r *MovieRepository) UpdateOwned(ctx context.Context, id, ownerID string, update domain.MovieUpdate, updatedAt time.Time) (*domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.movies[id]
	if !ok || e.movie.CreatedBy != ownerID {
		return nil, nil
	}

	m := e.movie
	if update.Title != nil {
		m.Title = *update.Title
	}
	if update.Year != nil {
		y := *update.Year
		m.Year = &y
	}
	if update.Genre != nil {
		m.Genre = append([]string{}, (*update.Genre)...)
	}
	if update.Synopsis != nil {
		m.Synopsis = *update.Synopsis
	}
	if update.Rating != nil {
		rating := *update.Rating
		m.Rating = &rating
	}
	m.UpdatedAt = updatedAt

	e.movie = m
	r.movies[id] = e

	out := cloneMovie(m)
	return &out, nil
}

func (r *MovieRepository) DeleteOwned(ctx context.Context, id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.movies[id]
	if !ok || e.movie.CreatedBy != ownerID {
		return false, nil
	}
	delete(r.movies, id)
	return true, nil
}

func (r *MovieRepository) match(filter domain.MovieFilter) []scoredEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(filter.Query))

	var out []scoredEntry
	for _, e := range r.movies {
		if len(filter.Genres) > 0 && !hasAnyGenre(e.movie.Genre, filter.Genres) {
			continue
		}
		score := 0
		if len(terms) > 0 {
			score = textScore(e.movie.Title, terms)
			if score == 0 {
				continue
			}
		}
		out = append(out, scoredEntry{movieEntry: e, score: score})
	}
	return out
}

func textScore(title string, terms []string) int {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(title), isSeparator) {
		words[w] = struct{}{}
	}

	score := 0
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := words[t]; ok {
			score++
		}
	}
	return score
}

func isSeparator(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
		return false
	}
	return true
}

func hasAnyGenre(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func cloneMovie(m domain.Movie) domain.Movie {
	out := m
	out.Genre = append([]string{}, m.Genre...)
	if m.Year != nil {
		y := *m.Year
		out.Year = &y
	}
	if m.Rating != nil {
		r := *m.Rating
		out.Rating = &r
	}
	return out
}
