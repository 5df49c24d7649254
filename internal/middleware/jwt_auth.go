package middleware

import (
	"context"
	"strings"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// UserContextKey is where the authenticated claims are stored on echo.Context.
const UserContextKey = "user"

// TokenParser verifies an access token and returns its claims.
type TokenParser interface {
	Parse(raw string) (*models.JwtCustomClaims, error)
}

// SessionValidator rejects tokens minted before the user's last credential change.
type SessionValidator interface {
	ValidateSession(ctx context.Context, userID uint, epoch int) error
}

// JWTAuthMiddleware checks for a valid JWT and extracts user claims.
func JWTAuthMiddleware(tokens TokenParser, sessions SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return apperrors.Unauthorized("missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperrors.Unauthorized("invalid Authorization header format")
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				return apperrors.Unauthorized("invalid or expired token")
			}

			if sessions != nil {
				if err := sessions.ValidateSession(c.Request().Context(), claims.UserID, claims.SessionEpoch); err != nil {
					return err
				}
			}

			c.Set(UserContextKey, claims)
			return next(c)
		}
	}
}

// ClaimsFromContext returns the claims stored by JWTAuthMiddleware.
func ClaimsFromContext(c echo.Context) (*models.JwtCustomClaims, bool) {
	claims, ok := c.Get(UserContextKey).(*models.JwtCustomClaims)
	return claims, ok && claims != nil
}
