package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/database"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/jwtutil"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/logger"
	"github.com/dadinjaenudin/kiosk-svelte/prometheus"
)

// AuthMiddleware validates the JWT token from the Authorization header and
// loads the acting user, including manager outlet assignments
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		var user model.User
		if err := database.GetDB().WithContext(c.Request().Context()).
			Preload("AccessibleOutlets").
			First(&user, claims.UserID).Error; err != nil {
			log.Warn("Token user not found", zap.Uint("user_id", claims.UserID))
			prometheus.RecordAuthError("user_not_found")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		if !user.IsActive {
			prometheus.RecordAuthError("user_inactive")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account disabled"})
		}

		c.Set("user", &user)
		log.Debug("JWT token validated",
			zap.Uint("user_id", user.ID),
			zap.String("role", user.Role))

		return next(c)
	}
}

// OptionalAuthMiddleware loads the user when a valid token is present and
// proceeds anonymously otherwise. Used on public kiosk routes.
func OptionalAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return next(c)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return next(c)
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			return next(c)
		}

		var user model.User
		if err := database.GetDB().WithContext(c.Request().Context()).
			Preload("AccessibleOutlets").
			First(&user, claims.UserID).Error; err == nil && user.IsActive {
			c.Set("user", &user)
		}
		return next(c)
	}
}

// UserFromEcho returns the authenticated user, or nil for anonymous requests
func UserFromEcho(c echo.Context) *model.User {
	user, _ := c.Get("user").(*model.User)
	return user
}
