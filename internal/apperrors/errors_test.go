package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"not found", NotFoundOrForbidden("post"), http.StatusNotFound},
		{"not owned", NotOwned("post"), http.StatusNotFound},
		{"validation", Validation("content", "too long"), http.StatusBadRequest},
		{"quota", QuotaExceeded("slow down"), http.StatusTooManyRequests},
		{"state conflict", StateConflict("already deleted"), http.StatusConflict},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestNotOwnedIsDistinctFromNotFound(t *testing.T) {
	assert.NotEqual(t, NotFoundOrForbidden("post").Code, NotOwned("post").Code)
	assert.Equal(t, NotFoundOrForbidden("post").StatusCode(), NotOwned("post").StatusCode())
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("service/posts/Create: %w", QuotaExceeded("limit"))

	assert.Equal(t, CodeQuotaExceeded, CodeOf(err))
	assert.True(t, Is(err, CodeQuotaExceeded))
	assert.False(t, Is(err, CodeValidation))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.False(t, Is(nil, CodeInternal))
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "db down")
}
