package handler

import (
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

// promotionRequest is the write payload shared by create and update
type promotionRequest struct {
	TenantID          uint             `json:"tenant_id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Code              *string          `json:"code"`
	PromoType         string           `json:"promo_type"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount"`
	BuyQuantity       *int             `json:"buy_quantity"`
	GetQuantity       *int             `json:"get_quantity"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           time.Time        `json:"end_date"`
	Monday            *bool            `json:"monday"`
	Tuesday           *bool            `json:"tuesday"`
	Wednesday         *bool            `json:"wednesday"`
	Thursday          *bool            `json:"thursday"`
	Friday            *bool            `json:"friday"`
	Saturday          *bool            `json:"saturday"`
	Sunday            *bool            `json:"sunday"`
	TimeStart         *string          `json:"time_start"`
	TimeEnd           *string          `json:"time_end"`
	UsageLimit        *int             `json:"usage_limit"`
	UsageLimitPerCust *int             `json:"usage_limit_per_customer"`
	IsFeatured        bool             `json:"is_featured"`

	Products []promotionProductRequest `json:"products"`
}

type promotionProductRequest struct {
	ProductID           uint             `json:"product_id"`
	ProductRole         string           `json:"product_role"`
	CustomDiscountValue *decimal.Decimal `json:"custom_discount_value"`
	Priority            int              `json:"priority"`
}

func dayFlag(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

// ListPromotions returns promotions visible in the current scope. Promotions
// are a public kind so the kiosk can browse active offers.
func ListPromotions(c echo.Context) error {
	sc := middleware.ScopeFromEcho(c)
	st := tenancy.NewStore(database.GetDB(), logger.FromEcho(c))

	mods := []tenancy.QueryMod{
		func(q *gorm.DB) *gorm.DB { return q.Preload("Products").Order("created_at DESC") },
	}
	if sc.Role == scope.RoleAnonymous {
		mods = append(mods, func(q *gorm.DB) *gorm.DB { return q.Where("is_active = ?", true) })
	}
	if status := c.QueryParam("status"); status != "" {
		mods = append(mods, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", status) })
	}

	var promos []model.Promotion
	if err := st.List(c.Request().Context(), tenancy.KindPromotion, sc, &promos, mods...); err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"promotions": promos})
}

// GetPromotion fetches one promotion within scope
func GetPromotion(c echo.Context) error {
	sc := middleware.ScopeFromEcho(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion ID"})
	}

	st := tenancy.NewStore(database.GetDB(), logger.FromEcho(c))
	var promo model.Promotion
	if err := st.Get(c.Request().Context(), tenancy.KindPromotion, sc, &promo, uint(id)); err != nil {
		return coreError(c, err)
	}
	if err := database.GetDB().WithContext(c.Request().Context()).
		Preload("Product").
		Where("promotion_id = ?", promo.ID).
		Find(&promo.Products).Error; err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"promotion": promo})
}

// CreatePromotion creates a promotion with its product set. Configuration is
// validated here, before the promotion becomes visible to evaluation.
func CreatePromotion(c echo.Context) error {
	log := logger.FromEcho(c)
	sc := middleware.ScopeFromEcho(c)
	if !sc.Role.AtLeast(scope.RoleManager) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req promotionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse promotion request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	promo := model.Promotion{
		TenantID:              req.TenantID,
		Name:                  req.Name,
		Description:           req.Description,
		Code:                  req.Code,
		PromoType:             req.PromoType,
		DiscountValue:         req.DiscountValue,
		MaxDiscountAmount:     req.MaxDiscountAmount,
		MinPurchaseAmount:     req.MinPurchaseAmount,
		BuyQuantity:           req.BuyQuantity,
		GetQuantity:           req.GetQuantity,
		StartDate:             req.StartDate,
		EndDate:               req.EndDate,
		Monday:                dayFlag(req.Monday),
		Tuesday:               dayFlag(req.Tuesday),
		Wednesday:             dayFlag(req.Wednesday),
		Thursday:              dayFlag(req.Thursday),
		Friday:                dayFlag(req.Friday),
		Saturday:              dayFlag(req.Saturday),
		Sunday:                dayFlag(req.Sunday),
		TimeStart:             req.TimeStart,
		TimeEnd:               req.TimeEnd,
		UsageLimit:            req.UsageLimit,
		UsageLimitPerCustomer: req.UsageLimitPerCust,
		Status:                model.PromoStatusDraft,
		IsFeatured:            req.IsFeatured,
		CreatedBy:             &sc.UserID,
	}

	links := make([]model.PromotionProduct, 0, len(req.Products))
	for _, p := range req.Products {
		role := p.ProductRole
		if role == "" {
			role = model.ProductRoleBoth
		}
		links = append(links, model.PromotionProduct{
			ProductID:           p.ProductID,
			ProductRole:         role,
			CustomDiscountValue: p.CustomDiscountValue,
			Priority:            p.Priority,
		})
	}

	if err := promotion.ValidateConfig(&promo, links); err != nil {
		return coreError(c, err)
	}

	st := tenancy.NewStore(database.GetDB(), log)
	if err := st.Create(c.Request().Context(), sc, &promo); err != nil {
		return coreError(c, err)
	}
	for i := range links {
		links[i].PromotionID = promo.ID
	}
	if len(links) > 0 {
		if err := database.GetDB().WithContext(c.Request().Context()).Create(&links).Error; err != nil {
			log.Error("Failed to create promotion products", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	promo.Products = links

	log.Info("Promotion created",
		zap.Uint("id", promo.ID),
		zap.String("type", promo.PromoType),
		zap.Uint("tenant_id", promo.TenantID))
	return c.JSON(http.StatusCreated, echo.Map{"promotion": promo})
}

// UpdatePromotion edits a promotion's own fields; product links are managed
// through SetPromotionProducts
func UpdatePromotion(c echo.Context) error {
	log := logger.FromEcho(c)
	sc := middleware.ScopeFromEcho(c)
	if !sc.Role.AtLeast(scope.RoleManager) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion ID"})
	}

	st := tenancy.NewStore(database.GetDB(), log)
	var promo model.Promotion
	if err := st.Get(c.Request().Context(), tenancy.KindPromotion, sc, &promo, uint(id)); err != nil {
		return coreError(c, err)
	}

	var req promotionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Apply onto a copy and re-validate the whole configuration
	next := promo
	next.Name = req.Name
	next.Description = req.Description
	next.Code = req.Code
	next.PromoType = req.PromoType
	next.DiscountValue = req.DiscountValue
	next.MaxDiscountAmount = req.MaxDiscountAmount
	next.MinPurchaseAmount = req.MinPurchaseAmount
	next.BuyQuantity = req.BuyQuantity
	next.GetQuantity = req.GetQuantity
	next.StartDate = req.StartDate
	next.EndDate = req.EndDate
	next.Monday = dayFlag(req.Monday)
	next.Tuesday = dayFlag(req.Tuesday)
	next.Wednesday = dayFlag(req.Wednesday)
	next.Thursday = dayFlag(req.Thursday)
	next.Friday = dayFlag(req.Friday)
	next.Saturday = dayFlag(req.Saturday)
	next.Sunday = dayFlag(req.Sunday)
	next.TimeStart = req.TimeStart
	next.TimeEnd = req.TimeEnd
	next.UsageLimit = req.UsageLimit
	next.UsageLimitPerCustomer = req.UsageLimitPerCust
	next.IsFeatured = req.IsFeatured

	var links []model.PromotionProduct
	if err := database.GetDB().WithContext(c.Request().Context()).
		Where("promotion_id = ?", promo.ID).
		Find(&links).Error; err != nil {
		return coreError(c, err)
	}
	if err := promotion.ValidateConfig(&next, links); err != nil {
		return coreError(c, err)
	}

	updates := map[string]any{
		"name":                     next.Name,
		"description":              next.Description,
		"code":                     next.Code,
		"promo_type":               next.PromoType,
		"discount_value":           next.DiscountValue,
		"max_discount_amount":      next.MaxDiscountAmount,
		"min_purchase_amount":      next.MinPurchaseAmount,
		"buy_quantity":             next.BuyQuantity,
		"get_quantity":             next.GetQuantity,
		"start_date":               next.StartDate,
		"end_date":                 next.EndDate,
		"monday":                   next.Monday,
		"tuesday":                  next.Tuesday,
		"wednesday":                next.Wednesday,
		"thursday":                 next.Thursday,
		"friday":                   next.Friday,
		"saturday":                 next.Saturday,
		"sunday":                   next.Sunday,
		"time_start":               next.TimeStart,
		"time_end":                 next.TimeEnd,
		"usage_limit":              next.UsageLimit,
		"usage_limit_per_customer": next.UsageLimitPerCustomer,
		"is_featured":              next.IsFeatured,
	}
	if err := st.Update(c.Request().Context(), sc, &promo, updates); err != nil {
		return coreError(c, err)
	}

	log.Info("Promotion updated", zap.Uint("id", promo.ID))
	return c.JSON(http.StatusOK, echo.Map{"promotion": promo})
}

// DeletePromotion soft-deletes a promotion; its usage ledger stays intact
func DeletePromotion(c echo.Context) error {
	log := logger.FromEcho(c)
	sc := middleware.ScopeFromEcho(c)
	if !sc.Role.AtLeast(scope.RoleManager) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion ID"})
	}

	st := tenancy.NewStore(database.GetDB(), log)
	var promo model.Promotion
	if err := st.Get(c.Request().Context(), tenancy.KindPromotion, sc, &promo, uint(id)); err != nil {
		return coreError(c, err)
	}
	if err := st.Delete(c.Request().Context(), sc, &promo); err != nil {
		return coreError(c, err)
	}

	log.Info("Promotion deleted", zap.Uint("id", promo.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "promotion deleted"})
}

// SetPromotionProducts replaces a promotion's product set wholesale
func SetPromotionProducts(c echo.Context) error {
	log := logger.FromEcho(c)
	sc := middleware.ScopeFromEcho(c)
	if !sc.Role.AtLeast(scope.RoleManager) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion ID"})
	}

	st := tenancy.NewStore(database.GetDB(), log)
	var promo model.Promotion
	if err := st.Get(c.Request().Context(), tenancy.KindPromotion, sc, &promo, uint(id)); err != nil {
		return coreError(c, err)
	}

	var req struct {
		Products []promotionProductRequest `json:"products"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	links := make([]model.PromotionProduct, 0, len(req.Products))
	for _, p := range req.Products {
		role := p.ProductRole
		if role == "" {
			role = model.ProductRoleBoth
		}
		links = append(links, model.PromotionProduct{
			PromotionID:         promo.ID,
			ProductID:           p.ProductID,
			ProductRole:         role,
			CustomDiscountValue: p.CustomDiscountValue,
			Priority:            p.Priority,
		})
	}
	if err := promotion.ValidateConfig(&promo, links); err != nil {
		return coreError(c, err)
	}

	// Replace wholesale inside one transaction; no partial-diff semantics
	err = database.GetDB().WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", promo.ID).
			Delete(&model.PromotionProduct{}).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		log.Error("Failed to replace promotion products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"products": links})
}

// ActivatePromotion flips a promotion live, rejecting activation outside its
// date range. This is the admin-side lifecycle action; evaluation itself
// never mutates status.
func ActivatePromotion(c echo.Context) error {
	log := logger.FromEcho(c)
	sc := middleware.ScopeFromEcho(c)
	if !sc.Role.AtLeast(scope.RoleManager) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion ID"})
	}

	st := tenancy.NewStore(database.GetDB(), log)
	var promo model.Promotion
	if err := st.Get(c.Request().Context(), tenancy.KindPromotion, sc, &promo, uint(id)); err != nil {
		return coreError(c, err)
	}

	now := time.Now()
	if promo.StartDate.After(now) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot activate promotion before start date"})
	}
	if promo.EndDate.Before(now) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot activate expired promotion"})
	}

	updates := map[string]any{"is_active": true, "status": model.PromoStatusActive}
	if err := st.Update(c.Request().Context(), sc, &promo, updates); err != nil {
		return coreError(c, err)
	}

	log.Info("Promotion activated", zap.Uint("id", promo.ID))
	return c.JSON(http.StatusOK, echo.Map{"promotion": promo})
}

// DeactivatePromotion pauses a promotion
func DeactivatePromotion(c echo.Context) error {
	log := logger.FromEcho(c)
	sc := middleware.ScopeFromEcho(c)
	if !sc.Role.AtLeast(scope.RoleManager) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion ID"})
	}

	st := tenancy.NewStore(database.GetDB(), log)
	var promo model.Promotion
	if err := st.Get(c.Request().Context(), tenancy.KindPromotion, sc, &promo, uint(id)); err != nil {
		return coreError(c, err)
	}

	updates := map[string]any{"is_active": false, "status": model.PromoStatusPaused}
	if err := st.Update(c.Request().Context(), sc, &promo, updates); err != nil {
		return coreError(c, err)
	}

	log.Info("Promotion deactivated", zap.Uint("id", promo.ID))
	return c.JSON(http.StatusOK, echo.Map{"promotion": promo})
}

// PreviewPromotion lists each linked product with its discounted price
func PreviewPromotion(c echo.Context) error {
	sc := middleware.ScopeFromEcho(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid promotion ID"})
	}

	st := tenancy.NewStore(database.GetDB(), logger.FromEcho(c))
	var promo model.Promotion
	if err := st.Get(c.Request().Context(), tenancy.KindPromotion, sc, &promo, uint(id)); err != nil {
		return coreError(c, err)
	}

	var links []model.PromotionProduct
	if err := database.GetDB().WithContext(c.Request().Context()).
		Preload("Product").
		Where("promotion_id = ?", promo.ID).
		Find(&links).Error; err != nil {
		return coreError(c, err)
	}

	type previewRow struct {
		ProductID       uint            `json:"product_id"`
		ProductName     string          `json:"product_name"`
		OriginalPrice   decimal.Decimal `json:"original_price"`
		DiscountAmount  decimal.Decimal `json:"discount_amount"`
		DiscountedPrice decimal.Decimal `json:"discounted_price"`
	}

	rows := make([]previewRow, 0, len(links))
	for _, link := range links {
		discount := promotion.CalculateAmountDiscount(&promo, link.Product.Price)
		rows = append(rows, previewRow{
			ProductID:       link.ProductID,
			ProductName:     link.Product.Name,
			OriginalPrice:   link.Product.Price,
			DiscountAmount:  discount,
			DiscountedPrice: link.Product.Price.Sub(discount),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"promotion": promo,
		"products":  rows,
	})
}

// ActivePromotions returns promotions currently usable, evaluated with the
// engine's validity rules
func ActivePromotions(c echo.Context) error {
	sc := middleware.ScopeFromEcho(c)
	st := tenancy.NewStore(database.GetDB(), logger.FromEcho(c))

	var promos []model.Promotion
	err := st.List(c.Request().Context(), tenancy.KindPromotion, sc, &promos,
		func(q *gorm.DB) *gorm.DB {
			return q.Where("is_active = ? AND status = ?", true, model.PromoStatusActive).
				Preload("Products")
		})
	if err != nil {
		return coreError(c, err)
	}

	now := time.Now()
	valid := promos[:0]
	for _, p := range promos {
		promo := p
		if promotion.IsValidNow(&promo, now) {
			valid = append(valid, promo)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"promotions": valid})
}

// PromotionStats aggregates promotion counts and discount totals for the scope
func PromotionStats(c echo.Context) error {
	sc := middleware.ScopeFromEcho(c)
	if err := sc.RequireTenant(); err != nil {
		return coreError(c, err)
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	db := database.GetDB().WithContext(c.Request().Context())
	base := db.Model(&model.Promotion{})
	if sc.TenantID != nil {
		base = base.Where("tenant_id = ?", *sc.TenantID)
	}

	var total, active, draft, expired int64
	base.Session(&gorm.Session{}).Count(&total)
	base.Session(&gorm.Session{}).Where("is_active = ? AND status = ?", true, model.PromoStatusActive).Count(&active)
	base.Session(&gorm.Session{}).Where("status = ?", model.PromoStatusDraft).Count(&draft)
	base.Session(&gorm.Session{}).Where("status = ?", model.PromoStatusExpired).Count(&expired)

	var totalUsage int64
	var totalDiscount decimal.Decimal
	usageQ := db.Model(&model.PromotionUsage{})
	if sc.TenantID != nil {
		usageQ = usageQ.Joins("JOIN promotions ON promotions.id = promotion_usages.promotion_id").
			Where("promotions.tenant_id = ?", *sc.TenantID)
	}
	usageQ.Count(&totalUsage)
	var sum struct{ Total decimal.Decimal }
	usageQ.Select("COALESCE(SUM(discount_amount), 0) AS total").Scan(&sum)
	totalDiscount = sum.Total

	return c.JSON(http.StatusOK, echo.Map{
		"total_promotions":     total,
		"active_promotions":    active,
		"draft_promotions":     draft,
		"expired_promotions":   expired,
		"total_usage":          totalUsage,
		"total_discount_given": totalDiscount,
	})
}
