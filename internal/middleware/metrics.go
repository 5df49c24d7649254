package middleware

import (
	"strconv"
	"time"

	"github.com/anonto42/circle/backend/internal/metrics"
	"github.com/labstack/echo/v4"
)

// Metrics records request counts and latency per route template. Handler
// errors are rendered here so the recorded status matches the response.
func Metrics() echo.MiddlewareFunc {
	m := metrics.Get()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method

			m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
