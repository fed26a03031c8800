package tenancy

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
)

// OutletLookup implements scope.OutletStore over gorm
type OutletLookup struct {
	db *gorm.DB
}

func NewOutletLookup(db *gorm.DB) *OutletLookup {
	return &OutletLookup{db: db}
}

func (l *OutletLookup) GetOutlet(ctx context.Context, id uint) (*model.Outlet, error) {
	var outlet model.Outlet
	err := l.db.WithContext(ctx).First(&outlet, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &outlet, nil
}

func (l *OutletLookup) FirstActiveOutlet(ctx context.Context, tenantID uint) (*model.Outlet, error) {
	var outlet model.Outlet
	err := l.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("id").
		First(&outlet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &outlet, nil
}

// SessionLookup implements scope.SessionStore over the user_sessions table
type SessionLookup struct {
	db *gorm.DB
}

func NewSessionLookup(db *gorm.DB) *SessionLookup {
	return &SessionLookup{db: db}
}

func (l *SessionLookup) RememberedOutlet(ctx context.Context, userID uint) (*uint, error) {
	var session model.UserSession
	err := l.db.WithContext(ctx).First(&session, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session.RememberedOutletID, nil
}

// RememberOutlet upserts the selection, last writer wins
func (l *SessionLookup) RememberOutlet(ctx context.Context, userID, outletID uint) error {
	session := model.UserSession{
		UserID:             userID,
		RememberedOutletID: &outletID,
		UpdatedAt:          time.Now(),
	}
	return l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"remembered_outlet_id", "updated_at"}),
	}).Create(&session).Error
}
