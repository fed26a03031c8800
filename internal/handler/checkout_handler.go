package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dadinjaenudin/kiosk-svelte/internal/middleware"
	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
	"github.com/dadinjaenudin/kiosk-svelte/internal/promotion"
	"github.com/dadinjaenudin/kiosk-svelte/internal/scope"
	"github.com/dadinjaenudin/kiosk-svelte/internal/tenancy"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/database"
	"github.com/dadinjaenudin/kiosk-svelte/pkg/logger"
	"github.com/dadinjaenudin/kiosk-svelte/prometheus"
)

type cartRequest struct {
	TenantID           uint              `json:"tenant_id"`
	OutletID           *uint             `json:"outlet_id"`
	CustomerIdentifier string            `json:"customer_identifier"`
	PromoCode          string            `json:"promo_code"`
	Items              []cartItemRequest `json:"items"`
}

type cartItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// loadCart resolves request lines against the cart tenant's available
// catalog. The tenant filter is explicit rather than relying on the scope:
// anonymous kiosk scopes browse products as a public kind, but an order must
// only ever contain its own tenant's items.
func loadCart(c echo.Context, sc scope.Scope, tenantID uint, req *cartRequest) ([]promotion.CartItem, error) {
	ids := make([]uint, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.ProductID)
	}

	st := tenancy.NewStore(database.GetDB(), logger.FromEcho(c))
	var products []model.Product
	err := st.List(c.Request().Context(), tenancy.KindProduct, sc, &products,
		func(q *gorm.DB) *gorm.DB {
			return q.Where("tenant_id = ? AND id IN ? AND is_available = ?", tenantID, ids, true)
		})
	if err != nil {
		return nil, err
	}

	return buildCart(req.Items, products)
}

// buildCart matches request lines against the resolved catalog slice. A line
// naming a product outside that slice fails the whole cart.
func buildCart(items []cartItemRequest, products []model.Product) ([]promotion.CartItem, error) {
	byID := make(map[uint]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	cart := make([]promotion.CartItem, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		if it.Quantity < 1 {
			return nil, promotion.ErrInvalidConfig
		}
		cart = append(cart, promotion.CartItem{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
		})
	}
	return cart, nil
}

// loadCandidates fetches active promotions for the cart's tenant together
// with their product links
func loadCandidates(c echo.Context, tenantID uint) ([]promotion.Candidate, error) {
	db := database.GetDB().WithContext(c.Request().Context())
	defer prometheus.TrackDBOperation("query")(time.Now())

	var promos []model.Promotion
	err := db.Where("tenant_id = ? AND is_active = ? AND status = ?",
		tenantID, true, model.PromoStatusActive).
		Preload("Products").
		Find(&promos).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]promotion.Candidate, 0, len(promos))
	for i := range promos {
		candidates = append(candidates, promotion.Candidate{
			Promotion: &promos[i],
			Links:     promos[i].Products,
		})
	}
	return candidates, nil
}

// cartTenant resolves which tenant a cart belongs to. Scoped callers use their
// resolved tenant; anonymous kiosk carts must name one explicitly.
func cartTenant(sc scope.Scope, req *cartRequest) (uint, error) {
	if sc.TenantID != nil {
		return *sc.TenantID, nil
	}
	if req.TenantID != 0 {
		return req.TenantID, nil
	}
	return 0, scope.ErrScopeRequired
}

// PreviewCart evaluates the cart against active promotions without writing
// anything. This backs the kiosk's live price display.
func PreviewCart(c echo.Context) error {
	log := logger.FromEcho(c)
	sc := middleware.ScopeFromEcho(c)

	var req cartRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse cart request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
	}

	tenantID, err := cartTenant(sc, &req)
	if err != nil {
		return coreError(c, err)
	}

	cart, err := loadCart(c, sc, tenantID, &req)
	if err != nil {
		return coreError(c, err)
	}
	candidates, err := loadCandidates(c, tenantID)
	if err != nil {
		return coreError(c, err)
	}

	subtotal := promotion.Subtotal(cart)
	sel := promotion.SelectBest(candidates, cart, req.PromoCode, time.Now())

	discount := decimal.Zero
	var applied *model.Promotion
	if sel != nil {
		discount = sel.Discount
		applied = sel.Promotion
		prometheus.RecordPromotionEvaluation("applied")
	} else {
		prometheus.RecordPromotionEvaluation("no_match")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"subtotal":          subtotal,
		"discount_amount":   discount,
		"total":             subtotal.Sub(discount),
		"applied_promotion": applied,
	})
}

// Checkout creates an order from the cart, applies the single best promotion
// and records its usage atomically. When a promotion's cap is exhausted
// between preview and checkout, the order is rolled back and the conflict
// surfaced so the kiosk can re-quote instead of charging full price silently.
func Checkout(c echo.Context) error {
	log := logger.FromEcho(c)
	sc := middleware.ScopeFromEcho(c)

	var req cartRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse checkout request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
	}

	tenantID, err := cartTenant(sc, &req)
	if err != nil {
		return coreError(c, err)
	}

	outletID := sc.OutletID
	if outletID == nil {
		outletID = req.OutletID
	}

	cart, err := loadCart(c, sc, tenantID, &req)
	if err != nil {
		return coreError(c, err)
	}
	candidates, err := loadCandidates(c, tenantID)
	if err != nil {
		return coreError(c, err)
	}

	subtotal := promotion.Subtotal(cart)
	sel := promotion.SelectBest(candidates, cart, req.PromoCode, time.Now())

	discount := decimal.Zero
	if sel != nil {
		discount = sel.Discount
	}

	order := model.Order{
		TenantID:           tenantID,
		OutletID:           outletID,
		CustomerIdentifier: req.CustomerIdentifier,
		Subtotal:           subtotal,
		DiscountAmount:     discount,
		Total:              subtotal.Sub(discount),
		Status:             model.OrderStatusPaid,
	}
	for _, it := range cart {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	recorder := promotion.NewRecorder(database.GetDB(), log)
	usage, err := recorder.PlaceOrder(c.Request().Context(), &order, sel)
	if err != nil {
		switch {
		case errors.Is(err, promotion.ErrUsageLimitExceeded):
			prometheus.RecordPromotionUsage("limit_exceeded")
		case errors.Is(err, promotion.ErrUsagePerCustomerExceeded):
			prometheus.RecordPromotionUsage("per_customer_exceeded")
		default:
			log.Error("Failed to place order", zap.Error(err))
			if sel != nil {
				prometheus.RecordPromotionUsage("error")
			}
		}
		return coreError(c, err)
	}
	if sel != nil {
		prometheus.RecordPromotionUsage("recorded")
		prometheus.RecordPromotionEvaluation("applied")
	} else {
		prometheus.RecordPromotionEvaluation("no_match")
	}

	log.Info("Order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("tenant_id", tenantID),
		zap.String("total", order.Total.String()))

	return c.JSON(http.StatusCreated, echo.Map{
		"order": order,
		"usage": usage,
	})
}

// outletPinned reports whether the scope's role is confined to its resolved
// outlet (cashier and kitchen staff)
func outletPinned(sc scope.Scope) bool {
	return sc.OutletID != nil && !sc.Role.CanSwitchOutlet()
}

// orderInOutletScope applies the outlet restriction for pinned roles; other
// roles see the whole tenant
func orderInOutletScope(sc scope.Scope, order *model.Order) bool {
	if !outletPinned(sc) {
		return true
	}
	return order.OutletID != nil && *order.OutletID == *sc.OutletID
}

// ListOrders returns orders within the resolved scope, newest first. Kitchen
// and cashier roles see their outlet's orders only.
func ListOrders(c echo.Context) error {
	sc := middleware.ScopeFromEcho(c)
	if err := sc.RequireTenant(); err != nil {
		return coreError(c, err)
	}

	st := tenancy.NewStore(database.GetDB(), logger.FromEcho(c))
	mods := []tenancy.QueryMod{
		func(q *gorm.DB) *gorm.DB {
			return q.Preload("Items").Order("created_at DESC").Limit(100)
		},
	}
	if outletPinned(sc) {
		mods = append(mods, func(q *gorm.DB) *gorm.DB {
			return q.Where("outlet_id = ?", *sc.OutletID)
		})
	}
	if status := c.QueryParam("status"); status != "" {
		mods = append(mods, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", status) })
	}

	var orders []model.Order
	if err := st.List(c.Request().Context(), tenancy.KindOrder, sc, &orders, mods...); err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// GetOrder fetches one order within scope
func GetOrder(c echo.Context) error {
	sc := middleware.ScopeFromEcho(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order ID"})
	}

	st := tenancy.NewStore(database.GetDB(), logger.FromEcho(c))
	var order model.Order
	if err := st.Get(c.Request().Context(), tenancy.KindOrder, sc, &order, uint(id)); err != nil {
		return coreError(c, err)
	}
	// Same restriction as ListOrders: pinned roles never see another
	// outlet's order, and the refusal is indistinguishable from a miss
	if !orderInOutletScope(sc, &order) {
		return coreError(c, gorm.ErrRecordNotFound)
	}
	if err := database.GetDB().WithContext(c.Request().Context()).
		Preload("Product").
		Where("order_id = ?", order.ID).
		Find(&order.Items).Error; err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}
