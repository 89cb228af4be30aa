package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sociogram/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	store repositories.Store
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(store repositories.Store) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterUserRoutes registers profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetCurrentUser)
	g.GET("/users/:username", h.GetUserByUsername)
}

// GetCurrentUser returns the authenticated user's own profile
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	user, err := currentUser(c, h.store)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetUserByUsername returns a public profile
func (h *UserHandler) GetUserByUsername(c echo.Context) error {
	user, err := h.store.Users().GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}
