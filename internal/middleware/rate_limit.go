package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/metrics"
	"github.com/anonto42/circle/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RedisRateLimiterStore is a fixed-window limiter shared by every instance
// through Redis. It satisfies echo's RateLimiterStore.
type RedisRateLimiterStore struct {
	client      *redis.Client
	prefix      string
	maxRequests int64
	window      time.Duration
}

func NewRedisRateLimiterStore(client *redis.Client, prefix string, maxRequests int, window time.Duration) *RedisRateLimiterStore {
	return &RedisRateLimiterStore{
		client:      client,
		prefix:      prefix,
		maxRequests: int64(maxRequests),
		window:      window,
	}
}

// Allow counts the request against identifier's current window. Redis failures
// deny the request.
func (s *RedisRateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := fmt.Sprintf("rate_limit:%s:%s", s.prefix, identifier)
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit increment failed: %w", err)
	}

	// Set expiration on first request in this window
	if count == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			logger.Log.Warn("failed to set rate limit expiration",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return count <= s.maxRequests, nil
}

// NewMemoryRateLimiterStore is the single-instance fallback used without Redis.
func NewMemoryRateLimiterStore(maxRequests int, window time.Duration) echomw.RateLimiterStore {
	return echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Every(window / time.Duration(maxRequests)),
		Burst:     maxRequests,
		ExpiresIn: window,
	})
}

// RateLimit limits requests per client IP. Rejections are counted under route.
func RateLimit(store echomw.RateLimiterStore, route string) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.Internal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if err != nil {
				logger.Log.Error("rate limit check failed, rejecting request",
					logger.WithIP(identifier),
					zap.Error(err),
				)
				return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
			}
			metrics.Get().RateLimitExceeded.WithLabelValues(route).Inc()
			logger.Log.Warn("rate limit exceeded", logger.WithIP(identifier), zap.String("route", route))
			return apperrors.RateLimited("too many requests, please try again later")
		},
	})
}
