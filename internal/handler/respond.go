package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dadinjaenudin/kiosk-svelte/internal/promotion"
	"github.com/dadinjaenudin/kiosk-svelte/internal/scope"
	"github.com/dadinjaenudin/kiosk-svelte/internal/tenancy"
)

// coreError maps core errors to HTTP responses. Scope and ownership failures
// deliberately say no more than "not found"/"forbidden" so a caller cannot
// distinguish another tenant's row from a missing one. Promotion cap failures
// are explicit since nothing sensitive is at stake.
func coreError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, scope.ErrScopeRequired):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant scope required"})
	case errors.Is(err, scope.ErrOutletRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "outlet scope required"})
	case errors.Is(err, tenancy.ErrCrossTenantWrite), errors.Is(err, tenancy.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, promotion.ErrInvalidConfig):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion configuration"})
	case errors.Is(err, promotion.ErrUsageLimitExceeded),
		errors.Is(err, promotion.ErrUsagePerCustomerExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "this offer is no longer available"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
