package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sociogram/backend/internal/models"
	"github.com/sociogram/backend/internal/repositories"
)

// currentUser resolves the authenticated user from the JWT claims set by
// the auth middleware. Handlers pass the returned user explicitly into
// every interaction instead of re-reading ambient context later.
func currentUser(c echo.Context, store repositories.Store) (*models.User, error) {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Missing authentication context")
	}
	user, err := store.Users().GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not found")
	}
	return user, nil
}

// parseID reads a numeric path parameter
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}
