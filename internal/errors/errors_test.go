package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookradio/bookradio-server/internal/errors"
)

func TestErrorIs_MatchesByCode(t *testing.T) {
	err := errors.NotFound("book abc123 not found")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.False(t, errors.Is(err, errors.ErrValidation))
}

func TestErrorIs_ThroughWrapping(t *testing.T) {
	inner := errors.DuplicateSourceID("project 88 already imported")
	wrapped := fmt.Errorf("create book: %w", inner)

	assert.True(t, errors.Is(wrapped, errors.ErrDuplicateSourceID))

	var domainErr *errors.Error
	assert.True(t, errors.As(wrapped, &domainErr))
	assert.Equal(t, errors.CodeDuplicateSourceID, domainErr.Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    *errors.Error
		status int
	}{
		{errors.NotFound("x"), http.StatusNotFound},
		{errors.Validation("x"), http.StatusBadRequest},
		{errors.InvalidIdentifier("x"), http.StatusBadRequest},
		{errors.InvalidFilter("x"), http.StatusBadRequest},
		{errors.DuplicateSourceID("x"), http.StatusConflict},
		{errors.AlreadyExists("x"), http.StatusConflict},
		{errors.Unauthorized("x"), http.StatusUnauthorized},
		{errors.InvalidCredentials("x"), http.StatusUnauthorized},
		{errors.Forbidden("x"), http.StatusForbidden},
		{errors.Internal("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus(), "code %s", tt.err.Code)
	}
}

func TestWithCause_Unwraps(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := errors.ErrInternal.WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestValidationWithDetails(t *testing.T) {
	err := errors.ValidationWithDetails("validation failed", map[string]string{
		"title": "is required",
	})
	assert.Equal(t, errors.CodeValidation, err.Code)
	assert.NotNil(t, err.Details)
}
