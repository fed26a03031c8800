package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Promo types
const (
	PromoTypePercentage = "percentage"
	PromoTypeFixed      = "fixed"
	PromoTypeBuyXGetY   = "buy_x_get_y"
	PromoTypeBundle     = "bundle"
)

// Promotion statuses
const (
	PromoStatusDraft     = "draft"
	PromoStatusScheduled = "scheduled"
	PromoStatusActive    = "active"
	PromoStatusExpired   = "expired"
	PromoStatusPaused    = "paused"
)

// Product roles for buy-x-get-y promotions
const (
	ProductRoleBuy  = "buy"
	ProductRoleGet  = "get"
	ProductRoleBoth = "both"
)

// Promotion is a time- and condition-bounded discount rule owned by one tenant
type Promotion struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	TenantID    uint    `json:"tenant_id" gorm:"index:idx_promotions_tenant_status;not null"`
	Name        string  `json:"name" gorm:"type:varchar(200);not null"`
	Description string  `json:"description" gorm:"type:text"`
	Code        *string `json:"code,omitempty" gorm:"type:varchar(50);uniqueIndex"`

	PromoType         string           `json:"promo_type" gorm:"type:varchar(20);not null;default:'percentage'"`
	DiscountValue     decimal.Decimal  `json:"discount_value" gorm:"type:decimal(10,2);not null"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty" gorm:"type:decimal(10,2)"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount,omitempty" gorm:"type:decimal(10,2)"`

	// For buy_x_get_y promos; required together iff PromoType is buy_x_get_y
	BuyQuantity *int `json:"buy_quantity,omitempty"`
	GetQuantity *int `json:"get_quantity,omitempty"`

	// Schedule: date range plus a per-weekday enable mask
	StartDate time.Time `json:"start_date" gorm:"not null;index:idx_promotions_dates"`
	EndDate   time.Time `json:"end_date" gorm:"not null;index:idx_promotions_dates"`
	Monday    bool      `json:"monday" gorm:"default:true"`
	Tuesday   bool      `json:"tuesday" gorm:"default:true"`
	Wednesday bool      `json:"wednesday" gorm:"default:true"`
	Thursday  bool      `json:"thursday" gorm:"default:true"`
	Friday    bool      `json:"friday" gorm:"default:true"`
	Saturday  bool      `json:"saturday" gorm:"default:true"`
	Sunday    bool      `json:"sunday" gorm:"default:true"`

	// Optional daily time window, "15:04" format
	TimeStart *string `json:"time_start,omitempty" gorm:"type:varchar(5)"`
	TimeEnd   *string `json:"time_end,omitempty" gorm:"type:varchar(5)"`

	// Usage limits
	UsageLimit            *int `json:"usage_limit,omitempty"`
	UsageLimitPerCustomer *int `json:"usage_limit_per_customer,omitempty"`
	UsageCount            int  `json:"usage_count" gorm:"default:0"`

	Status     string `json:"status" gorm:"type:varchar(20);not null;default:'draft';index:idx_promotions_tenant_status"`
	IsActive   bool   `json:"is_active" gorm:"default:false"`
	IsFeatured bool   `json:"is_featured" gorm:"default:false"`

	CreatedBy *uint          `json:"created_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Tenant   Tenant             `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Products []PromotionProduct `json:"products,omitempty" gorm:"foreignKey:PromotionID"`
}

// WeekdayEnabled reports whether the promotion's enable mask covers the given weekday
func (p *Promotion) WeekdayEnabled(d time.Weekday) bool {
	switch d {
	case time.Monday:
		return p.Monday
	case time.Tuesday:
		return p.Tuesday
	case time.Wednesday:
		return p.Wednesday
	case time.Thursday:
		return p.Thursday
	case time.Friday:
		return p.Friday
	case time.Saturday:
		return p.Saturday
	default:
		return p.Sunday
	}
}

// PromotionProduct links a promotion to a product it applies to. The product
// set is replaced wholesale when a promotion is edited.
type PromotionProduct struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	PromotionID uint `json:"promotion_id" gorm:"index;uniqueIndex:idx_promo_product;not null"`
	ProductID   uint `json:"product_id" gorm:"index;uniqueIndex:idx_promo_product;not null"`

	// Role of this product in buy-x-get-y promotions
	ProductRole string `json:"product_role" gorm:"type:varchar(10);not null;default:'both'"`

	// Optional discount override for this specific product
	CustomDiscountValue *decimal.Decimal `json:"custom_discount_value,omitempty" gorm:"type:decimal(10,2)"`

	// Higher priority promos are applied first when several match
	Priority int `json:"priority" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// PromotionUsage is an immutable ledger entry recording one application of a
// promotion to a paid order. Promotion.UsageCount is incremented in lockstep
// with the insert of one of these rows.
type PromotionUsage struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	PromotionID        uint            `json:"promotion_id" gorm:"index:idx_usage_promo_customer;not null"`
	OrderID            uint            `json:"order_id" gorm:"index;not null"`
	CustomerIdentifier string          `json:"customer_identifier" gorm:"type:varchar(255);index:idx_usage_promo_customer"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" gorm:"type:decimal(10,2);not null"`
	CreatedAt          time.Time       `json:"created_at" gorm:"index"`
}
