package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dadinjaenudin/kiosk-svelte/internal/scope"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/logger"
	"github.com/dadinjaenudin/kiosk-svelte/prometheus"
)

// ScopeMiddleware resolves the tenant/outlet scope for the request and stores
// it on the context. Hints come from the ?tenant= and ?outlet= query
// parameters or the X-Tenant-ID / X-Outlet-ID headers. The scope is the only
// tenant context downstream code sees; nothing reads it ambiently.
func ScopeMiddleware(resolver *scope.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			user := UserFromEcho(c)
			tenantHint := uintHint(c, "tenant", "X-Tenant-ID")
			outletHint := uintHint(c, "outlet", "X-Outlet-ID")

			sc, err := resolver.Resolve(c.Request().Context(), user, tenantHint, outletHint)
			if err != nil {
				log.Error("scope resolution failed", zap.Error(err))
				prometheus.RecordScopeResolution("error")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}

			if sc.TenantID != nil {
				prometheus.RecordScopeResolution("tenant")
			} else if sc.Unrestricted() {
				prometheus.RecordScopeResolution("unrestricted")
			} else {
				prometheus.RecordScopeResolution("public")
			}

			c.Set("scope", sc)
			return next(c)
		}
	}
}

// ScopeFromEcho returns the resolved scope for the request
func ScopeFromEcho(c echo.Context) scope.Scope {
	sc, _ := c.Get("scope").(scope.Scope)
	return sc
}

// uintHint reads an optional uint from a query parameter, falling back to a
// header. Malformed values are treated as absent.
func uintHint(c echo.Context, param, header string) *uint {
	raw := c.QueryParam(param)
	if raw == "" {
		raw = c.Request().Header.Get(header)
	}
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(v)
	return &id
}
