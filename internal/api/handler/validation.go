package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/Rrens/movie-catalog/internal/api/response"
	"github.com/Rrens/movie-catalog/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports whether the caller should go on.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			response.BadRequest(w, fieldMessages(validationErrors))
			return false
		}
		response.BadRequest(w, err.Error())
		return false
	}

	return true
}

func fieldMessages(validationErrors validator.ValidationErrors) map[string]string {
	messages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			messages[field] = "field is required"
		case "max":
			messages[field] = "must be at most " + e.Param() + " characters"
		case "gte":
			messages[field] = "must be greater than or equal to " + e.Param()
		case "lte":
			messages[field] = "must be less than or equal to " + e.Param()
		default:
			messages[field] = "validation failed on " + e.Tag()
		}
	}
	return messages
}

// writeServiceError maps domain errors to HTTP responses
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, validationErr.Fields)
	case errors.Is(err, domain.ErrConflict):
		response.Conflict(w, "email already registered")
	case errors.Is(err, domain.ErrUnauthorized):
		response.Unauthorized(w, "invalid credentials")
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, notFoundMessage)
	default:
		log.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		response.InternalError(w, "internal server error")
	}
}
