package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/middleware"
	"github.com/anonto42/circle/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HTTPErrorHandler renders every error as
// {"success": false, "error": {...}, "request_id": "..."}.
// Internal causes are logged and never sent to the client.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	appErr := toAppError(err)
	if appErr.Code == apperrors.CodeInternal {
		logger.Log.Error("unhandled error",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	body := echo.Map{
		"success": false,
		"error":   appErr,
	}
	if id, ok := c.Get(middleware.RequestIDContextKey).(string); ok {
		body["request_id"] = id
	}

	status := appErr.StatusCode()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Log.Warn("failed to write error response", zap.Error(err))
	}
}

func toAppError(err error) *apperrors.Error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		} else if httpErr.Message != nil {
			message = fmt.Sprint(httpErr.Message)
		}
		return &apperrors.Error{Code: codeForStatus(httpErr.Code), Message: message, Err: httpErr.Internal}
	}

	return apperrors.Internal(err)
}

func codeForStatus(status int) apperrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusUnsupportedMediaType:
		return apperrors.CodeValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.CodeUnauthorized
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	case http.StatusConflict:
		return apperrors.CodeConflict
	case http.StatusTooManyRequests:
		return apperrors.CodeRateLimited
	}
	if status >= 500 {
		return apperrors.CodeInternal
	}
	return apperrors.CodeValidation
}
