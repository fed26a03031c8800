package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
)

func strptr(s string) *string { return &s }
func intptr(v int) *int       { return &v }

func decptr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// activePromo returns a percentage promotion valid for all of 2026
func activePromo() *model.Promotion {
	return &model.Promotion{
		ID:            1,
		TenantID:      1,
		Name:          "Test promo",
		PromoType:     model.PromoTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		Monday:        true, Tuesday: true, Wednesday: true, Thursday: true,
		Friday: true, Saturday: true, Sunday: true,
		Status:   model.PromoStatusActive,
		IsActive: true,
	}
}

func TestIsValidNow_DateRange(t *testing.T) {
	p := activePromo()

	assert.True(t, IsValidNow(p, time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)))

	// Inclusive at both ends
	assert.True(t, IsValidNow(p, p.StartDate))
	assert.True(t, IsValidNow(p, p.EndDate))

	assert.False(t, IsValidNow(p, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, IsValidNow(p, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestIsValidNow_WeekdayMask(t *testing.T) {
	p := activePromo()
	p.Wednesday = false

	wednesday := time.Date(2026, 6, 17, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Wednesday, wednesday.Weekday())
	assert.False(t, IsValidNow(p, wednesday))

	thursday := wednesday.AddDate(0, 0, 1)
	assert.True(t, IsValidNow(p, thursday))
}

func TestIsValidNow_TimeWindow(t *testing.T) {
	p := activePromo()
	p.TimeStart = strptr("11:00")
	p.TimeEnd = strptr("14:00")

	day := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	assert.True(t, IsValidNow(p, at(11, 0)))
	assert.True(t, IsValidNow(p, at(12, 30)))
	assert.True(t, IsValidNow(p, at(14, 0)))
	assert.False(t, IsValidNow(p, at(10, 59)))
	assert.False(t, IsValidNow(p, at(14, 1)))
}

func TestIsValidNow_TimeWindowOneEndSet(t *testing.T) {
	// A window with only one end set carries no time restriction
	p := activePromo()
	p.TimeStart = strptr("23:00")

	assert.True(t, IsValidNow(p, time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC)))

	p.TimeStart = nil
	p.TimeEnd = strptr("09:00")
	assert.True(t, IsValidNow(p, time.Date(2026, 6, 15, 22, 0, 0, 0, time.UTC)))
}

func TestIsValidNow_UsageCap(t *testing.T) {
	p := activePromo()
	p.UsageLimit = intptr(5)
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	p.UsageCount = 4
	assert.True(t, IsValidNow(p, now))

	p.UsageCount = 5
	assert.False(t, IsValidNow(p, now))
}

func TestIsValidNow_StatusAndFlag(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	p := activePromo()
	p.IsActive = false
	assert.False(t, IsValidNow(p, now))

	p = activePromo()
	p.Status = model.PromoStatusPaused
	assert.False(t, IsValidNow(p, now))

	p = activePromo()
	p.Status = model.PromoStatusDraft
	assert.False(t, IsValidNow(p, now))
}

func TestIsValidNow_Idempotent(t *testing.T) {
	// Evaluation never mutates the promotion
	p := activePromo()
	now := time.Date(2027, 3, 1, 12, 0, 0, 0, time.UTC) // past end date
	before := *p

	assert.False(t, IsValidNow(p, now))
	assert.Equal(t, before, *p)
	assert.Equal(t, model.PromoStatusActive, p.Status)
}

func TestValidateConfig(t *testing.T) {
	link := model.PromotionProduct{ProductID: 1}

	tests := []struct {
		name    string
		mutate  func(*model.Promotion)
		links   []model.PromotionProduct
		wantErr bool
	}{
		{"valid percentage", func(p *model.Promotion) {}, nil, false},
		{"negative value", func(p *model.Promotion) {
			p.DiscountValue = decimal.NewFromInt(-1)
		}, nil, true},
		{"percentage over 100", func(p *model.Promotion) {
			p.DiscountValue = decimal.NewFromInt(101)
		}, nil, true},
		{"end before start", func(p *model.Promotion) {
			p.EndDate = p.StartDate.AddDate(0, 0, -1)
		}, nil, true},
		{"fixed over 100 is fine", func(p *model.Promotion) {
			p.PromoType = model.PromoTypeFixed
			p.DiscountValue = decimal.NewFromInt(5000)
		}, nil, false},
		{"bxgy missing quantities", func(p *model.Promotion) {
			p.PromoType = model.PromoTypeBuyXGetY
		}, nil, true},
		{"bxgy zero get", func(p *model.Promotion) {
			p.PromoType = model.PromoTypeBuyXGetY
			p.BuyQuantity = intptr(2)
			p.GetQuantity = intptr(0)
		}, nil, true},
		{"bxgy valid", func(p *model.Promotion) {
			p.PromoType = model.PromoTypeBuyXGetY
			p.BuyQuantity = intptr(2)
			p.GetQuantity = intptr(1)
		}, nil, false},
		{"bundle without products", func(p *model.Promotion) {
			p.PromoType = model.PromoTypeBundle
		}, nil, true},
		{"bundle with products", func(p *model.Promotion) {
			p.PromoType = model.PromoTypeBundle
		}, []model.PromotionProduct{link}, false},
		{"unknown type", func(p *model.Promotion) {
			p.PromoType = "flash_sale"
		}, nil, true},
		{"valid time window", func(p *model.Promotion) {
			p.TimeStart = strptr("11:00")
			p.TimeEnd = strptr("14:00")
		}, nil, false},
		{"malformed time start", func(p *model.Promotion) {
			p.TimeStart = strptr("11am")
			p.TimeEnd = strptr("14:00")
		}, nil, true},
		{"malformed time end", func(p *model.Promotion) {
			p.TimeEnd = strptr("25:99")
		}, nil, true},
		{"zero usage limit", func(p *model.Promotion) {
			p.UsageLimit = intptr(0)
		}, nil, true},
		{"zero per-customer limit", func(p *model.Promotion) {
			p.UsageLimitPerCustomer = intptr(0)
		}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := activePromo()
			tt.mutate(p)
			err := ValidateConfig(p, tt.links)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubtotal(t *testing.T) {
	cart := []CartItem{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(15000)},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(8000)},
	}
	assert.True(t, Subtotal(cart).Equal(decimal.NewFromInt(38000)))
	assert.True(t, Subtotal(nil).Equal(decimal.Zero))
}
