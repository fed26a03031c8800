package promotion

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
)

// checkCaps re-checks the global and per-customer usage caps against the
// locked promotion row. Called inside the recording transaction so the check
// and the increment are atomic with respect to concurrent recordings.
func checkCaps(p *model.Promotion, perCustomerUses int64) error {
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return ErrUsageLimitExceeded
	}
	if p.UsageLimitPerCustomer != nil && perCustomerUses >= int64(*p.UsageLimitPerCustomer) {
		return ErrUsagePerCustomerExceeded
	}
	return nil
}

// Recorder records promotion applications atomically and enforces caps.
// Concurrent checkouts against the same promotion serialize on a row-level
// lock of the promotion row, so the cap check and the counter increment can
// never interleave into an overshoot.
type Recorder struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRecorder(db *gorm.DB, log *zap.Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

// RecordUsage inserts a PromotionUsage ledger row and increments the
// promotion's usage counter in one transaction. Caps are re-checked inside
// the transaction rather than trusting the caller's earlier validity check,
// which also makes the call safe to retry after a lock timeout.
func (r *Recorder) RecordUsage(ctx context.Context, promotionID, orderID uint, customerIdentifier string, discountAmount decimal.Decimal) (*model.PromotionUsage, error) {
	var usage model.PromotionUsage

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var promo model.Promotion
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&promo, promotionID).Error; err != nil {
			return err
		}

		var perCustomerUses int64
		if promo.UsageLimitPerCustomer != nil && customerIdentifier != "" {
			if err := tx.Model(&model.PromotionUsage{}).
				Where("promotion_id = ? AND customer_identifier = ?", promotionID, customerIdentifier).
				Count(&perCustomerUses).Error; err != nil {
				return err
			}
		}

		if err := checkCaps(&promo, perCustomerUses); err != nil {
			return err
		}

		usage = model.PromotionUsage{
			PromotionID:        promotionID,
			OrderID:            orderID,
			CustomerIdentifier: customerIdentifier,
			DiscountAmount:     discountAmount,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return err
		}

		return tx.Model(&promo).
			UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("promotion usage recorded",
		zap.Uint("promotion_id", promotionID),
		zap.Uint("order_id", orderID),
		zap.String("discount", discountAmount.String()))
	return &usage, nil
}

// PlaceOrder persists the order and, when a promotion was selected, its usage
// ledger row in a single transaction. A cap failure rolls back the order too:
// there is never a committed order carrying a discount without its usage row.
func (r *Recorder) PlaceOrder(ctx context.Context, order *model.Order, sel *Selection) (*model.PromotionUsage, error) {
	var usage *model.PromotionUsage

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if sel == nil {
			return nil
		}

		u, err := NewRecorder(tx, r.log).RecordUsage(ctx,
			sel.Promotion.ID, order.ID, order.CustomerIdentifier, sel.Discount)
		if err != nil {
			return err
		}
		usage = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return usage, nil
}
