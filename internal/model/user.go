package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a staff or admin account with a role in the fixed hierarchy.
// TenantID and OutletID are the user's home assignments; managers additionally
// get a set of accessible outlets through the UserOutlet junction.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	FullName  string         `json:"full_name" gorm:"type:varchar(200)"`
	Role      string         `json:"role" gorm:"type:varchar(20);not null;default:'cashier'"`
	TenantID  *uint          `json:"tenant_id,omitempty" gorm:"index"`
	OutletID  *uint          `json:"outlet_id,omitempty" gorm:"index"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Tenant            *Tenant  `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Outlet            *Outlet  `json:"outlet,omitempty" gorm:"foreignKey:OutletID"`
	AccessibleOutlets []Outlet `json:"accessible_outlets,omitempty" gorm:"many2many:user_outlets"`
}

// UserOutlet is the join table behind User.AccessibleOutlets (manager assignments)
type UserOutlet struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey"`
	OutletID  uint      `json:"outlet_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSession remembers the last outlet the user explicitly switched to, so
// subsequent requests reuse the selection without re-specifying the hint.
// Last-writer-wins; convenience only.
type UserSession struct {
	UserID             uint      `json:"user_id" gorm:"primaryKey"`
	RememberedOutletID *uint     `json:"remembered_outlet_id,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}
