// Package promotion implements the discount engine: validity evaluation,
// per-type discount calculation, best-candidate selection and atomic usage
// recording for time- and condition-bounded promotions.
package promotion

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
)

var (
	// ErrInvalidConfig means the promotion's configuration is inconsistent,
	// caught at authoring time before the promotion is visible to evaluation
	ErrInvalidConfig = errors.New("invalid promotion configuration")

	// ErrUsageLimitExceeded means the global usage cap was reached
	ErrUsageLimitExceeded = errors.New("promotion usage limit exceeded")

	// ErrUsagePerCustomerExceeded means the per-customer cap was reached
	ErrUsagePerCustomerExceeded = errors.New("promotion usage limit per customer exceeded")
)

// CartItem is one product line as seen by the engine. Quantity-expanded
// copies are used for buy-x-get-y chunking.
type CartItem struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal sums quantity times unit price over the cart
func Subtotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// IsValidNow reports whether the promotion is currently usable, independent
// of any specific order. All conditions must hold:
// date range (inclusive both ends), weekday mask, daily time window when both
// ends are set, global usage cap, and the active flag plus active status.
// Evaluation never mutates status; lifecycle transitions are an admin or
// scheduled-job concern.
func IsValidNow(p *model.Promotion, now time.Time) bool {
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return false
	}

	if !p.WeekdayEnabled(now.Weekday()) {
		return false
	}

	// A promotion with only one end of the window set carries no time
	// restriction
	if p.TimeStart != nil && p.TimeEnd != nil {
		minutes := now.Hour()*60 + now.Minute()
		start, okStart := parseClock(*p.TimeStart)
		end, okEnd := parseClock(*p.TimeEnd)
		if okStart && okEnd && (minutes < start || minutes > end) {
			return false
		}
	}

	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return false
	}

	return p.IsActive && p.Status == model.PromoStatusActive
}

// parseClock converts "15:04" to minutes since midnight
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// ValidateConfig checks a promotion's configuration at authoring time.
// Nothing here is re-checked during calculation.
func ValidateConfig(p *model.Promotion, products []model.PromotionProduct) error {
	if p.DiscountValue.IsNegative() {
		return ErrInvalidConfig
	}
	if p.EndDate.Before(p.StartDate) {
		return ErrInvalidConfig
	}

	// Malformed clock strings must not reach evaluation, where they would
	// silently disable the window
	if p.TimeStart != nil {
		if _, ok := parseClock(*p.TimeStart); !ok {
			return ErrInvalidConfig
		}
	}
	if p.TimeEnd != nil {
		if _, ok := parseClock(*p.TimeEnd); !ok {
			return ErrInvalidConfig
		}
	}

	switch p.PromoType {
	case model.PromoTypePercentage:
		if p.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidConfig
		}
	case model.PromoTypeFixed:
		// No extra constraints
	case model.PromoTypeBuyXGetY:
		if p.BuyQuantity == nil || p.GetQuantity == nil {
			return ErrInvalidConfig
		}
		if *p.BuyQuantity < 1 || *p.GetQuantity < 1 {
			return ErrInvalidConfig
		}
	case model.PromoTypeBundle:
		if len(products) == 0 {
			return ErrInvalidConfig
		}
	default:
		return ErrInvalidConfig
	}

	if p.UsageLimit != nil && *p.UsageLimit < 1 {
		return ErrInvalidConfig
	}
	if p.UsageLimitPerCustomer != nil && *p.UsageLimitPerCustomer < 1 {
		return ErrInvalidConfig
	}
	return nil
}
