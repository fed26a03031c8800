package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order represents a checkout owned by a tenant and served by an outlet
type Order struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	TenantID           uint            `json:"tenant_id" gorm:"index;not null"`
	OutletID           *uint           `json:"outlet_id,omitempty" gorm:"index"`
	CustomerIdentifier string          `json:"customer_identifier" gorm:"type:varchar(255);index"`
	Subtotal           decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" gorm:"type:decimal(10,2);default:0"`
	Total              decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Status             string          `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is one product line on an order
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"index;not null"`
	ProductID uint            `json:"product_id" gorm:"index;not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"created_at"`

	// Relations
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
