package apperrors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidation(t *testing.T) {
	err := Validation("rating", "must be at most %d", 5)

	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "rating: must be at most 5")
	assert.EqualError(t, Validation("", "invalid JSON body"), "invalid JSON body")
}

func TestNotFound(t *testing.T) {
	err := NotFound("survey session", 12)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "survey session 12: not found")
}

func TestPersistence(t *testing.T) {
	assert.NoError(t, Persistence("create session", nil))

	cause := errors.New("disk full")
	err := Persistence("create session", cause)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "create session: disk full")
}

func TestRateLimitedError(t *testing.T) {
	cause := errors.New("Too Many Requests: retry after 17")
	err := fmt.Errorf("deliver: %w", &RateLimitedError{RetryAfter: 17 * time.Second, Err: cause})

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrExport)

	retryAfter, ok := RetryAfter(err)
	assert.True(t, ok)
	assert.Equal(t, 17*time.Second, retryAfter)
}

func TestRetryAfter(t *testing.T) {
	retryAfter, ok := RetryAfter(&RateLimitedError{})
	assert.True(t, ok)
	assert.Equal(t, DefaultRetryAfter, retryAfter, "missing hint falls back to the default")

	_, ok = RetryAfter(errors.New("boom"))
	assert.False(t, ok)
}

func TestExportError(t *testing.T) {
	cause := errors.New("chat not found")
	err := &ExportError{Stage: "deliver", Err: cause}

	assert.ErrorIs(t, err, ErrExport)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrRateLimited)
	assert.EqualError(t, err, "export deliver: chat not found")
}
