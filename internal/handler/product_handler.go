package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dadinjaenudin/kiosk-svelte/internal/middleware"
	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
	"github.com/dadinjaenudin/kiosk-svelte/internal/scope"
	"github.com/dadinjaenudin/kiosk-svelte/internal/tenancy"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/database"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/logger"
)

// ListProducts returns the catalog visible in the current scope. Products
// are a public kind: anonymous kiosk requests browse all tenants' available
// products, optionally narrowed by a tenant hint.
func ListProducts(c echo.Context) error {
	sc := middleware.ScopeFromEcho(c)
	st := tenancy.NewStore(database.GetDB(), logger.FromEcho(c))

	var products []model.Product
	err := st.List(c.Request().Context(), tenancy.KindProduct, sc, &products,
		func(q *gorm.DB) *gorm.DB { return q.Where("is_available = ?", true) })
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// CreateProduct creates a product under the scope's tenant
func CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	sc := middleware.ScopeFromEcho(c)
	if !sc.Role.AtLeast(scope.RoleManager) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req struct {
		TenantID    uint            `json:"tenant_id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Price       decimal.Decimal `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a non-negative price are required"})
	}

	product := model.Product{
		TenantID:    req.TenantID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		IsAvailable: true,
	}
	st := tenancy.NewStore(database.GetDB(), log)
	if err := st.Create(c.Request().Context(), sc, &product); err != nil {
		return coreError(c, err)
	}

	log.Info("Product created",
		zap.Uint("id", product.ID),
		zap.Uint("tenant_id", product.TenantID))
	return c.JSON(http.StatusCreated, echo.Map{"product": product})
}

// UpdateProduct updates a product after re-validating tenant ownership
func UpdateProduct(c echo.Context) error {
	sc := middleware.ScopeFromEcho(c)
	if !sc.Role.AtLeast(scope.RoleManager) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product ID"})
	}

	st := tenancy.NewStore(database.GetDB(), logger.FromEcho(c))
	var product model.Product
	if err := st.Get(c.Request().Context(), tenancy.KindProduct, sc, &product, uint(id)); err != nil {
		return coreError(c, err)
	}

	var req struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Category    *string          `json:"category"`
		Price       *decimal.Decimal `json:"price"`
		IsAvailable *bool            `json:"is_available"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}

	if err := st.Update(c.Request().Context(), sc, &product, updates); err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

// DeleteProduct removes a product after re-validating tenant ownership
func DeleteProduct(c echo.Context) error {
	sc := middleware.ScopeFromEcho(c)
	if !sc.Role.AtLeast(scope.RoleManager) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product ID"})
	}

	st := tenancy.NewStore(database.GetDB(), logger.FromEcho(c))
	var product model.Product
	if err := st.Get(c.Request().Context(), tenancy.KindProduct, sc, &product, uint(id)); err != nil {
		return coreError(c, err)
	}
	if err := st.Delete(c.Request().Context(), sc, &product); err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": product.ID})
}
