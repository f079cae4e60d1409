package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("Post")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Post not found", err.Error())
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed("content", "Missing required fields")
	assert.ErrorIs(t, err, ErrValidation)

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "content", appErr.Field)
	assert.Equal(t, "Missing required fields", appErr.Message)
}

func TestForbidden(t *testing.T) {
	err := Forbidden("Not authorized to edit this post")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpstreamWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("Storage unavailable", cause)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
}

func TestWrappedThroughFmt(t *testing.T) {
	err := fmt.Errorf("loading feed: %w", NotFound("Post"))
	assert.ErrorIs(t, err, ErrNotFound)
}
