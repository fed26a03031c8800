package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dadinjaenudin/kiosk-svelte/internal/middleware"
	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
	"github.com/dadinjaenudin/kiosk-svelte/internal/scope"
	"github.com/dadinjaenudin/kiosk-svelte/internal/tenancy"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/database"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/logger"
	"github.com/dadinjaenudin/kiosk-svelte/prometheus"
)

// CreateTenant handles tenant creation. Admin tier only: tenants sit above
// the scoped hierarchy.
func CreateTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("create")

	sc := middleware.ScopeFromEcho(c)
	if !sc.Role.IsAdminTier() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	tenant := model.Tenant{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsActive:    true,
	}
	if result := database.GetDB().Create(&tenant); result.Error != nil {
		log.Error("Failed to create tenant", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	log.Info("Tenant created",
		zap.String("name", tenant.Name),
		zap.Uint("id", tenant.ID))
	return c.JSON(http.StatusCreated, echo.Map{"tenant": tenant})
}

// ListTenants returns active tenants. Admin tier sees all; other roles see
// only their own tenant.
func ListTenants(c echo.Context) error {
	prometheus.RecordTenantOperation("list")
	sc := middleware.ScopeFromEcho(c)

	var tenants []model.Tenant
	q := database.GetDB().WithContext(c.Request().Context()).Where("is_active = ?", true)
	if !sc.Role.IsAdminTier() {
		if err := sc.RequireTenant(); err != nil {
			return coreError(c, err)
		}
		q = q.Where("id = ?", *sc.TenantID)
	}
	if err := q.Find(&tenants).Error; err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tenants": tenants})
}

// ListOutlets returns the outlets visible in the current scope
func ListOutlets(c echo.Context) error {
	sc := middleware.ScopeFromEcho(c)
	st := tenancy.NewStore(database.GetDB(), logger.FromEcho(c))

	var outlets []model.Outlet
	err := st.List(c.Request().Context(), tenancy.KindOutlet, sc, &outlets,
		func(q *gorm.DB) *gorm.DB { return q.Where("is_active = ?", true) })
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"outlets": outlets})
}

// CreateOutlet creates an outlet under the scope's tenant
func CreateOutlet(c echo.Context) error {
	log := logger.FromEcho(c)
	sc := middleware.ScopeFromEcho(c)
	if !sc.Role.AtLeast(scope.RoleTenantOwner) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req struct {
		TenantID uint   `json:"tenant_id"`
		Name     string `json:"name"`
		Address  string `json:"address"`
		City     string `json:"city"`
		Phone    string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	outlet := model.Outlet{
		TenantID: req.TenantID,
		Name:     req.Name,
		Address:  req.Address,
		City:     req.City,
		Phone:    req.Phone,
		IsActive: true,
	}
	st := tenancy.NewStore(database.GetDB(), log)
	if err := st.Create(c.Request().Context(), sc, &outlet); err != nil {
		return coreError(c, err)
	}

	log.Info("Outlet created",
		zap.Uint("id", outlet.ID),
		zap.Uint("tenant_id", outlet.TenantID))
	return c.JSON(http.StatusCreated, echo.Map{"outlet": outlet})
}

// SwitchOutlet re-resolves the scope with an explicit outlet selection and
// persists it for subsequent requests
func SwitchOutlet(resolver *scope.Resolver) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)
		user := middleware.UserFromEcho(c)
		if user == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		outletID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid outlet ID"})
		}
		hint := uint(outletID)

		sc, err := resolver.Resolve(c.Request().Context(), user, nil, &hint)
		if err != nil {
			return coreError(c, err)
		}
		if sc.OutletID == nil || *sc.OutletID != hint {
			// Role or assignment did not permit the switch; say no more
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}

		log.Info("Outlet switched",
			zap.Uint("user_id", user.ID),
			zap.Uint("outlet_id", hint))
		return c.JSON(http.StatusOK, echo.Map{"outlet_id": hint})
	}
}
