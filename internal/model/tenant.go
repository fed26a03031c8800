package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tenant represents a restaurant brand that owns outlets, products and promotions.
// This is the root of the multi-tenant hierarchy: every scoped row carries a
// tenant foreign key and is only visible inside that tenant's scope.
type Tenant struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(200);not null"`
	Slug        string          `json:"slug" gorm:"type:varchar(200);uniqueIndex"`
	Description string          `json:"description" gorm:"type:text"`
	Phone       string          `json:"phone" gorm:"type:varchar(20)"`
	Email       string          `json:"email" gorm:"type:varchar(100)"`
	TaxRate     decimal.Decimal `json:"tax_rate" gorm:"type:decimal(5,2);default:10.00"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	Outlets []Outlet `json:"outlets,omitempty" gorm:"foreignKey:TenantID"`
}

// Outlet represents a physical or logical selling point belonging to one tenant
type Outlet struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(200);not null"`
	Address   string         `json:"address" gorm:"type:text"`
	City      string         `json:"city" gorm:"type:varchar(100)"`
	Phone     string         `json:"phone" gorm:"type:varchar(20)"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Tenant Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}
