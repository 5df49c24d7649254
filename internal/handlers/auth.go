package handlers

import (
	"net/http"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterAuthRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password", h.ResetPassword)
}

// RegisterProtectedAuthRoutes registers routes that need an authenticated user.
func (h *AuthHandler) RegisterProtectedAuthRoutes(g *echo.Group) {
	g.PUT("/auth/password", h.ChangePassword)
}

// Register handles local user registration with email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, result)
}

// Login signs a user in with an email address or phone number.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, result)
}

// FirebaseLogin exchanges a Firebase ID token for a session token.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.auth.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, result)
}

// ForgotPassword always answers the same way so the endpoint cannot be used to
// probe which emails are registered.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"message": "if the email is registered, a reset code has been sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.auth.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"message": "password has been reset"})
}

// ChangePassword rotates the password and returns a fresh token; tokens issued
// before the change stop working.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.auth.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, result)
}
