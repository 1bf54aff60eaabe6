package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := map[Kind]int{
		Validation:     http.StatusBadRequest,
		Authentication: http.StatusUnauthorized,
		Authorization:  http.StatusForbidden,
		NotFound:       http.StatusNotFound,
		Conflict:       http.StatusConflict,
		Internal:       http.StatusInternalServerError,
	}
	for kind, status := range tests {
		assert.Equal(t, status, New(kind, "x").Status(), kind)
	}
}

func TestAsFindsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewConflict("email already registered"))

	apiErr := As(err)
	assert.Equal(t, Conflict, apiErr.Kind)
	assert.Equal(t, "email already registered", apiErr.Message)
	assert.True(t, Is(err, Conflict))
	assert.False(t, Is(err, NotFound))
}

func TestAsHidesUnclassifiedErrors(t *testing.T) {
	cause := errors.New("connection refused")

	apiErr := As(cause)
	assert.Equal(t, Internal, apiErr.Kind)
	assert.Equal(t, "internal server error", apiErr.Message)
	assert.ErrorIs(t, apiErr, cause)
}

func TestWrapKeepsExistingKind(t *testing.T) {
	inner := NewNotFound("post not found")
	assert.Same(t, inner, Wrap(fmt.Errorf("x: %w", inner), Validation, "ignored"))

	wrapped := Wrap(errors.New("bad json"), Validation, "invalid field value")
	assert.Equal(t, Validation, wrapped.Kind)
	assert.Contains(t, wrapped.Error(), "bad json")
}
