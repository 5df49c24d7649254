package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	users UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetProfile)
	g.PUT("/users/me", h.UpdateProfile)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
}

// publicProfile is what other users see; contact details stay private.
type publicProfile struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseUserIDParam(c, "id")
	if err != nil {
		return err
	}

	user, err := h.users.GetProfile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if id == getUserIDFromContext(c) {
		return ok(c, http.StatusOK, user)
	}
	return ok(c, http.StatusOK, publicProfile{
		ID:        user.ID,
		Name:      user.Name,
		Avatar:    user.Avatar,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt,
	})
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, user)
}

func (h *UserHandler) SearchUsers(c echo.Context) error {
	users, err := h.users.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"users": users})
}
