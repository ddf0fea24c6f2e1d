package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMovieFilter(t *testing.T) {
	tests := []struct {
		name         string
		page, limit  string
		wantPage     int
		wantPageSize int
	}{
		{"defaults", "", "", 1, 10},
		{"explicit", "2", "10", 2, 10},
		{"non numeric", "abc", "xyz", 1, 10},
		{"below one", "0", "-5", 1, 10},
		{"clamped", "3", "500", 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewMovieFilter("", "", tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, f.Page)
			assert.Equal(t, tt.wantPageSize, f.PageSize)
		})
	}
}

func TestNewMovieFilter_QueryAndGenres(t *testing.T) {
	f := NewMovieFilter("  dune ", " sci-fi, ,drama ", "2", "10")

	assert.Equal(t, "dune", f.Query)
	assert.Equal(t, []string{"sci-fi", "drama"}, f.Genres)
	assert.Equal(t, 10, f.Skip())
}

func TestParseGenres(t *testing.T) {
	assert.Nil(t, ParseGenres(""))
	assert.Nil(t, ParseGenres(" , ,"))
	assert.Equal(t, []string{"action"}, ParseGenres("action"))
}

func TestValidateRating(t *testing.T) {
	ok := []float64{0, 5.5, 10}
	for _, r := range ok {
		assert.NoError(t, ValidateRating(&r))
	}

	bad := []float64{-0.1, 10.01, 11}
	for _, r := range bad {
		err := ValidateRating(&r)
		assert.True(t, errors.Is(err, ErrValidation))

		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "rating")
	}

	assert.NoError(t, ValidateRating(nil))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"title": "is required", "rating": "out of range"}}
	assert.Equal(t, "validation failed: rating: out of range, title: is required", err.Error())
}
