package middleware

import (
	"time"

	"github.com/anonto42/circle/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const RequestIDContextKey = "request_id"

// RequestID adds a unique request ID to each request. An incoming X-Request-ID
// header is reused; otherwise a new UUID is generated.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Set(RequestIDContextKey, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(c)
		}
	}
}

// RequestLogger writes one line per request once the response is committed.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Render now so the logged status is the one the client gets.
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				logger.WithIP(c.RealIP()),
			}
			if id, ok := c.Get(RequestIDContextKey).(string); ok {
				fields = append(fields, logger.WithRequestID(id))
			}
			if claims, ok := ClaimsFromContext(c); ok {
				fields = append(fields, logger.WithUserID(claims.UserID))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			switch {
			case status >= 500:
				logger.Log.Error("request failed", fields...)
			case status >= 400:
				logger.Log.Info("request rejected", fields...)
			default:
				logger.Log.Debug("request completed", fields...)
			}
			return nil
		}
	}
}
