package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	relationships RelationshipService
	pages         PageSizes
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(relationships RelationshipService, pages PageSizes) *FollowHandler {
	return &FollowHandler{relationships: relationships, pages: pages}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/:id/follow-stats", h.GetFollowStats)
	g.GET("/users/:id/follow-status", h.GetFollowStatus)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID, err := requireUserID(c)
	if err != nil {
		return err
	}
	targetID, err := parseUserIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.relationships.Follow(c.Request().Context(), currentUserID, targetID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"following": true})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID, err := requireUserID(c)
	if err != nil {
		return err
	}
	targetID, err := parseUserIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.relationships.Unfollow(c.Request().Context(), currentUserID, targetID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"following": false})
}

// GetFollowers lists who follows the user, most recent first
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := parseUserIDParam(c, "id")
	if err != nil {
		return err
	}

	page := parsePagination(c, h.pages.Followers, h.pages.Max)
	followers, total, err := h.relationships.ListFollowers(c.Request().Context(), userID, page)
	if err != nil {
		return err
	}
	return paginated(c, "followers", followers, page, total)
}

// GetFollowing lists who the user follows, most recent first
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := parseUserIDParam(c, "id")
	if err != nil {
		return err
	}

	page := parsePagination(c, h.pages.Following, h.pages.Max)
	following, total, err := h.relationships.ListFollowing(c.Request().Context(), userID, page)
	if err != nil {
		return err
	}
	return paginated(c, "following", following, page, total)
}

func (h *FollowHandler) GetFollowStats(c echo.Context) error {
	userID, err := parseUserIDParam(c, "id")
	if err != nil {
		return err
	}

	stats, err := h.relationships.Stats(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, stats)
}

// GetFollowStatus reports how the caller and the user are connected.
func (h *FollowHandler) GetFollowStatus(c echo.Context) error {
	currentUserID, err := requireUserID(c)
	if err != nil {
		return err
	}
	targetID, err := parseUserIDParam(c, "id")
	if err != nil {
		return err
	}

	status, err := h.relationships.MutualStatus(c.Request().Context(), currentUserID, targetID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, status)
}
