package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type epochCheck struct {
	current int
}

func (e epochCheck) ValidateSession(_ context.Context, _ uint, epoch int) error {
	if epoch != e.current {
		return apperrors.Unauthorized("session has been revoked")
	}
	return nil
}

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.JSON(apperrors.CodeOf(err).StatusCode(), echo.Map{"code": apperrors.CodeOf(err)})
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := services.NewTokenManager("test-secret", time.Hour, nil)
	valid, err := tokens.Issue(&models.User{ID: 42, Email: "a@example.com", Role: models.RoleUser, SessionEpoch: 3})
	require.NoError(t, err)
	stale, err := tokens.Issue(&models.User{ID: 42, Email: "a@example.com", Role: models.RoleUser, SessionEpoch: 2})
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{"missing header", "", true},
		{"wrong scheme", "Basic " + valid, true},
		{"garbage token", "Bearer not-a-token", true},
		{"revoked epoch", "Bearer " + stale, true},
		{"valid token", "Bearer " + valid, false},
		{"scheme is case insensitive", "bearer " + valid, false},
	}

	mw := JWTAuthMiddleware(tokens, epochCheck{current: 3})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			c, _ := newContext(req)

			var reached bool
			err := mw(func(c echo.Context) error {
				reached = true
				claims, ok := ClaimsFromContext(c)
				require.True(t, ok)
				assert.Equal(t, uint(42), claims.UserID)
				return nil
			})(c)

			if tt.wantErr {
				assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized), "got %v", err)
				assert.False(t, reached)
				return
			}
			require.NoError(t, err)
			assert.True(t, reached)
		})
	}
}

func TestClaimsFromContextWithoutClaims(t *testing.T) {
	c, _ := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	_, ok := ClaimsFromContext(c)
	assert.False(t, ok)
}

func TestRequestID(t *testing.T) {
	t.Run("reuses incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRequestID, "abc-123")
		c, rec := newContext(req)

		require.NoError(t, RequestID()(func(c echo.Context) error { return nil })(c))
		assert.Equal(t, "abc-123", c.Get(RequestIDContextKey))
		assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("generates a uuid", func(t *testing.T) {
		c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))

		require.NoError(t, RequestID()(func(c echo.Context) error { return nil })(c))
		_, err := uuid.Parse(rec.Header().Get(echo.HeaderXRequestID))
		assert.NoError(t, err)
	})
}

func TestRequestLoggerRendersHandlerErrors(t *testing.T) {
	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))

	err := RequestLogger()(func(c echo.Context) error {
		return apperrors.NotFoundOrForbidden("post")
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, c.Response().Committed)
}

func TestMetricsRendersHandlerErrors(t *testing.T) {
	c, rec := newContext(httptest.NewRequest(http.MethodPost, "/", nil))

	err := Metrics()(func(c echo.Context) error {
		return errors.New("boom")
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimitWithMemoryStore(t *testing.T) {
	mw := RateLimit(NewMemoryRateLimiterStore(2, time.Minute), "test")
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = remote
		c, rec := newContext(req)
		require.NoError(t, handler(c))
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("192.0.2.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, call("192.0.2.1:1001").Code)

	rec := call("192.0.2.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), string(apperrors.CodeRateLimited))

	// Budgets are per client address.
	assert.Equal(t, http.StatusNoContent, call("192.0.2.2:1000").Code)
}
