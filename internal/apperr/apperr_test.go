package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{Validation("title is required"), http.StatusUnprocessableEntity},
		{InvalidCredentials(), http.StatusUnauthorized},
		{Unauthorized(), http.StatusUnauthorized},
		{Forbidden(""), http.StatusForbidden},
		{NotFound("Recipe"), http.StatusNotFound},
		{TooManyRequests("login"), http.StatusTooManyRequests},
		{Database("create recipe", errors.New("disk full")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestIsMatchesCode(t *testing.T) {
	wrapped := fmt.Errorf("edit recipe: %w", Forbidden("not yours"))

	assert.ErrorIs(t, wrapped, ErrForbidden)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
}

func TestFrom(t *testing.T) {
	cause := errors.New("boom")
	internal := From(cause)
	assert.Equal(t, CodeInternal, internal.Code)
	assert.ErrorIs(t, internal, cause)

	nf := NotFound("Recipe")
	assert.Same(t, nf, From(fmt.Errorf("wrap: %w", nf)))
}

func TestDatabaseKeepsCause(t *testing.T) {
	cause := errors.New("constraint failed")
	err := Database("insert ingredients", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert ingredients")
	assert.NotContains(t, err.Message, "constraint")
}
