package handler

import (
	"net/http"

	"github.com/Rrens/movie-catalog/internal/api/middleware"
	"github.com/Rrens/movie-catalog/internal/api/response"
	"github.com/Rrens/movie-catalog/internal/domain"
	"github.com/Rrens/movie-catalog/internal/service"
	"github.com/go-chi/chi/v5"
)

const movieNotFound = "movie not found"

// MovieHandler handles catalog endpoints
type MovieHandler struct {
	movieService *service.MovieService
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(movieService *service.MovieService) *MovieHandler {
	return &MovieHandler{movieService: movieService}
}

// List returns a page of movies with provider suggestions for q
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.NewMovieFilter(q.Get("q"), q.Get("genre"), q.Get("page"), q.Get("limit"))

	result, err := h.movieService.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, movieNotFound)
		return
	}

	response.OK(w, result)
}

// Get returns a single movie with external details
func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.movieService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, movieNotFound)
		return
	}

	response.OK(w, detail)
}

// Create adds a movie owned by the caller
func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.MovieCreate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	movie, err := h.movieService.Create(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, r, err, movieNotFound)
		return
	}

	response.Created(w, movie)
}

// Update changes a movie owned by the caller
func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.MovieUpdate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	movie, err := h.movieService.Update(r.Context(), user.ID, chi.URLParam(r, "id"), input)
	if err != nil {
		writeServiceError(w, r, err, movieNotFound)
		return
	}

	response.OK(w, movie)
}

// Delete removes a movie owned by the caller
func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.movieService.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, movieNotFound)
		return
	}

	response.NoContent(w)
}
