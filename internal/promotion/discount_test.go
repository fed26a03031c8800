package promotion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
)

func TestCalculateAmountDiscount_Percentage(t *testing.T) {
	p := activePromo()
	p.DiscountValue = decimal.NewFromInt(20)

	got := CalculateAmountDiscount(p, decimal.NewFromInt(100000))
	assert.True(t, got.Equal(decimal.NewFromInt(20000)), "got %s", got)
}

func TestCalculateAmountDiscount_PercentageCapped(t *testing.T) {
	p := activePromo()
	p.DiscountValue = decimal.NewFromInt(20)
	p.MaxDiscountAmount = decptr("15000")

	got := CalculateAmountDiscount(p, decimal.NewFromInt(100000))
	assert.True(t, got.Equal(decimal.NewFromInt(15000)), "got %s", got)

	// Cap only bites when the raw discount exceeds it
	got = CalculateAmountDiscount(p, decimal.NewFromInt(50000))
	assert.True(t, got.Equal(decimal.NewFromInt(10000)), "got %s", got)
}

func TestCalculateAmountDiscount_FixedFloored(t *testing.T) {
	p := activePromo()
	p.PromoType = model.PromoTypeFixed
	p.DiscountValue = decimal.NewFromInt(25000)

	// A fixed discount never exceeds the amount it applies to
	got := CalculateAmountDiscount(p, decimal.NewFromInt(10000))
	assert.True(t, got.Equal(decimal.NewFromInt(10000)), "got %s", got)

	got = CalculateAmountDiscount(p, decimal.NewFromInt(60000))
	assert.True(t, got.Equal(decimal.NewFromInt(25000)), "got %s", got)
}

func TestCalculateAmountDiscount_MinPurchaseGate(t *testing.T) {
	p := activePromo()
	p.DiscountValue = decimal.NewFromInt(10)
	p.MinPurchaseAmount = decptr("50000")

	// Below the threshold the promotion yields zero, not a reduced discount
	got := CalculateAmountDiscount(p, decimal.NewFromInt(49999))
	assert.True(t, got.IsZero(), "got %s", got)

	got = CalculateAmountDiscount(p, decimal.NewFromInt(50000))
	assert.True(t, got.Equal(decimal.NewFromInt(5000)), "got %s", got)
}

func bxgyPromo(buy, get int) *model.Promotion {
	p := activePromo()
	p.PromoType = model.PromoTypeBuyXGetY
	p.BuyQuantity = intptr(buy)
	p.GetQuantity = intptr(get)
	return p
}

func bothLinks(ids ...uint) []model.PromotionProduct {
	links := make([]model.PromotionProduct, 0, len(ids))
	for _, id := range ids {
		links = append(links, model.PromotionProduct{ProductID: id, ProductRole: model.ProductRoleBoth})
	}
	return links
}

func TestBuyXGetY_ThreeIdenticalItems(t *testing.T) {
	// Buy 2 get 1 over three identical items frees exactly one
	p := bxgyPromo(2, 1)
	cart := []CartItem{{ProductID: 1, Quantity: 3, UnitPrice: decimal.NewFromInt(10000)}}

	got := CalculateDiscount(p, bothLinks(1), cart)
	assert.True(t, got.Equal(decimal.NewFromInt(10000)), "got %s", got)
}

func TestBuyXGetY_IncompleteChunk(t *testing.T) {
	p := bxgyPromo(2, 1)
	cart := []CartItem{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10000)}}

	got := CalculateDiscount(p, bothLinks(1), cart)
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestBuyXGetY_CheapestFree(t *testing.T) {
	// Mixed prices: the free unit is the cheapest qualifying one
	p := bxgyPromo(2, 1)
	cart := []CartItem{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(20000)},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(5000)},
	}

	got := CalculateDiscount(p, bothLinks(1, 2), cart)
	assert.True(t, got.Equal(decimal.NewFromInt(5000)), "got %s", got)
}

func TestBuyXGetY_MultipleChunks(t *testing.T) {
	p := bxgyPromo(2, 1)
	cart := []CartItem{{ProductID: 1, Quantity: 7, UnitPrice: decimal.NewFromInt(10000)}}

	// 7 units / chunk of 3 = 2 complete chunks, 2 free units
	got := CalculateDiscount(p, bothLinks(1), cart)
	assert.True(t, got.Equal(decimal.NewFromInt(20000)), "got %s", got)
}

func TestBuyXGetY_PerChunkAssignment(t *testing.T) {
	// Six distinct prices, buy 2 get 1: sorted ascending the complete chunks
	// are {1000,2000,3000} and {4000,5000,6000}, freeing the cheapest unit of
	// each chunk. Freeing the two globally cheapest units (1000+2000) would
	// under-discount the second chunk.
	p := bxgyPromo(2, 1)
	var cart []CartItem
	for i := uint(1); i <= 6; i++ {
		cart = append(cart, CartItem{
			ProductID: i,
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(int64(i) * 1000),
		})
	}

	got := CalculateDiscount(p, bothLinks(1, 2, 3, 4, 5, 6), cart)
	assert.True(t, got.Equal(decimal.NewFromInt(5000)), "got %s", got)
}

func TestBuyXGetY_RoleSplit(t *testing.T) {
	// Only get-role products can be freed
	p := bxgyPromo(1, 1)
	links := []model.PromotionProduct{
		{ProductID: 1, ProductRole: model.ProductRoleBuy},
		{ProductID: 2, ProductRole: model.ProductRoleGet},
	}
	cart := []CartItem{
		{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(3000)},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(8000)},
	}

	// The buy-role item is cheaper, but it is never freed
	got := CalculateDiscount(p, links, cart)
	assert.True(t, got.Equal(decimal.NewFromInt(8000)), "got %s", got)
}

func TestBuyXGetY_UnlinkedProductsIgnored(t *testing.T) {
	p := bxgyPromo(2, 1)
	cart := []CartItem{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10000)},
		{ProductID: 99, Quantity: 5, UnitPrice: decimal.NewFromInt(1000)},
	}

	// Unlinked units neither complete chunks nor get freed
	got := CalculateDiscount(p, bothLinks(1), cart)
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestBuyXGetY_Deterministic(t *testing.T) {
	p := bxgyPromo(2, 1)
	cart := []CartItem{
		{ProductID: 3, Quantity: 1, UnitPrice: decimal.NewFromInt(10000)},
		{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(10000)},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(10000)},
	}

	first := CalculateDiscount(p, bothLinks(1, 2, 3), cart)
	for i := 0; i < 10; i++ {
		assert.True(t, first.Equal(CalculateDiscount(p, bothLinks(1, 2, 3), cart)))
	}
}

func TestBundle_CompleteAndPartial(t *testing.T) {
	p := activePromo()
	p.PromoType = model.PromoTypeBundle
	p.DiscountValue = decimal.NewFromInt(7000)
	links := bothLinks(1, 2)

	complete := []CartItem{
		{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(20000)},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(15000)},
	}
	got := CalculateDiscount(p, links, complete)
	assert.True(t, got.Equal(decimal.NewFromInt(7000)), "got %s", got)

	// All-or-nothing: a missing bundle member yields zero
	partial := complete[:1]
	got = CalculateDiscount(p, links, partial)
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestBundle_DiscountCappedAtBundleSum(t *testing.T) {
	p := activePromo()
	p.PromoType = model.PromoTypeBundle
	p.DiscountValue = decimal.NewFromInt(50000)
	links := bothLinks(1, 2)

	cart := []CartItem{
		{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(10000)},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(5000)},
	}
	got := CalculateDiscount(p, links, cart)
	assert.True(t, got.Equal(decimal.NewFromInt(15000)), "got %s", got)
}

func TestCalculateDiscount_UnknownType(t *testing.T) {
	p := activePromo()
	p.PromoType = "mystery"
	cart := []CartItem{{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(10000)}}
	assert.True(t, CalculateDiscount(p, nil, cart).IsZero())
}
