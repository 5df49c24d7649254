package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/middleware"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PageSizes are the default page sizes per listing and the upper bound a
// client may request.
type PageSizes struct {
	Followers     int
	Following     int
	Comments      int
	Posts         int
	Notifications int
	Max           int
}

// getUserIDFromContext returns the authenticated user's ID, or 0 when the
// request carries no claims.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return 0
	}
	return claims.UserID
}

func requireUserID(c echo.Context) (uint, error) {
	id := getUserIDFromContext(c)
	if id == 0 {
		return 0, apperrors.Unauthorized("user not authenticated")
	}
	return id, nil
}

func parseUserIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.Validation(name, "invalid user ID")
	}
	return uint(id), nil
}

// parsePagination reads page and limit. Page defaults to 1; a limit below 1 or
// above max falls back to def.
func parsePagination(c echo.Context, def, max int) services.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > max {
		limit = def
	}
	return services.Page{Number: page, Size: limit}
}

// parseOptionalPagination returns the zero Page, meaning the whole set, when
// neither page nor limit is present.
func parseOptionalPagination(c echo.Context, def, max int) services.Page {
	if c.QueryParam("page") == "" && c.QueryParam("limit") == "" {
		return services.Page{}
	}
	return parsePagination(c, def, max)
}

func paginationMeta(page services.Page, total int64) echo.Map {
	if page.Size <= 0 {
		return echo.Map{
			"currentPage":     1,
			"totalPages":      1,
			"totalItems":      total,
			"itemsPerPage":    total,
			"hasNextPage":     false,
			"hasPreviousPage": false,
		}
	}

	totalPages := int(math.Ceil(float64(total) / float64(page.Size)))
	return echo.Map{
		"currentPage":     page.Number,
		"totalPages":      totalPages,
		"totalItems":      total,
		"itemsPerPage":    page.Size,
		"hasNextPage":     page.Number < totalPages,
		"hasPreviousPage": page.Number > 1,
	}
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("", "invalid request payload")
	}
	return c.Validate(req)
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func paginated(c echo.Context, key string, items interface{}, page services.Page, total int64) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{key: items},
		"meta":    paginationMeta(page, total),
	})
}
