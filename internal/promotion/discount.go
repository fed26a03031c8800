package promotion

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
)

var hundred = decimal.NewFromInt(100)

// CalculateAmountDiscount computes the discount a percentage or fixed
// promotion yields on a pre-discount amount. The min purchase threshold gates
// applicability entirely: below it the promotion yields zero, not a reduced
// discount. Other promo types need line items and return zero here.
func CalculateAmountDiscount(p *model.Promotion, amount decimal.Decimal) decimal.Decimal {
	if p.MinPurchaseAmount != nil && amount.LessThan(*p.MinPurchaseAmount) {
		return decimal.Zero
	}

	switch p.PromoType {
	case model.PromoTypePercentage:
		discount := amount.Mul(p.DiscountValue).Div(hundred)
		if p.MaxDiscountAmount != nil && discount.GreaterThan(*p.MaxDiscountAmount) {
			discount = *p.MaxDiscountAmount
		}
		return discount
	case model.PromoTypeFixed:
		if p.DiscountValue.GreaterThan(amount) {
			return amount
		}
		return p.DiscountValue
	}
	return decimal.Zero
}

// CalculateDiscount computes the discount the promotion yields on the cart,
// dispatching on promo type. links is the promotion's product set.
func CalculateDiscount(p *model.Promotion, links []model.PromotionProduct, cart []CartItem) decimal.Decimal {
	switch p.PromoType {
	case model.PromoTypePercentage, model.PromoTypeFixed:
		return CalculateAmountDiscount(p, Subtotal(cart))
	case model.PromoTypeBuyXGetY:
		return buyXGetYDiscount(p, links, cart)
	case model.PromoTypeBundle:
		return bundleDiscount(p, links, cart)
	}
	return decimal.Zero
}

// unit is one quantity-expanded cart line for chunking
type unit struct {
	productID   uint
	price       decimal.Decimal
	getEligible bool
}

// buyXGetYDiscount applies the greedy cheapest-item-free policy. Qualifying
// units (products linked with a buy or get role) are sorted by ascending unit
// price, ties broken by product id so repeated evaluations of the same cart
// agree. The sorted units are then walked in complete chunks of
// buy_quantity + get_quantity, and within each chunk the get_quantity
// cheapest get-eligible units are freed; incomplete trailing chunks yield
// nothing.
func buyXGetYDiscount(p *model.Promotion, links []model.PromotionProduct, cart []CartItem) decimal.Decimal {
	if p.BuyQuantity == nil || p.GetQuantity == nil {
		return decimal.Zero
	}

	buySide := make(map[uint]bool)
	getSide := make(map[uint]bool)
	for _, link := range links {
		switch link.ProductRole {
		case model.ProductRoleBuy:
			buySide[link.ProductID] = true
		case model.ProductRoleGet:
			getSide[link.ProductID] = true
		case model.ProductRoleBoth:
			buySide[link.ProductID] = true
			getSide[link.ProductID] = true
		}
	}

	var units []unit
	for _, it := range cart {
		if !buySide[it.ProductID] && !getSide[it.ProductID] {
			continue
		}
		for i := 0; i < it.Quantity; i++ {
			units = append(units, unit{
				productID:   it.ProductID,
				price:       it.UnitPrice,
				getEligible: getSide[it.ProductID],
			})
		}
	}

	chunkSize := *p.BuyQuantity + *p.GetQuantity
	chunks := len(units) / chunkSize
	if chunks == 0 {
		return decimal.Zero
	}

	sort.SliceStable(units, func(i, j int) bool {
		if units[i].price.Equal(units[j].price) {
			return units[i].productID < units[j].productID
		}
		return units[i].price.LessThan(units[j].price)
	})

	// Free the cheapest get-eligible units within each complete chunk
	discount := decimal.Zero
	for chunk := 0; chunk < chunks; chunk++ {
		window := units[chunk*chunkSize : (chunk+1)*chunkSize]
		freed := 0
		for _, u := range window {
			if freed == *p.GetQuantity {
				break
			}
			if !u.getEligible {
				continue
			}
			discount = discount.Add(u.price)
			freed++
		}
	}
	return discount
}

// bundleDiscount subtracts the flat discount value when the cart contains the
// complete bundle product set at quantity one or more each. A partial bundle
// yields no discount at all. The discount never exceeds the bundle's summed
// unit prices.
func bundleDiscount(p *model.Promotion, links []model.PromotionProduct, cart []CartItem) decimal.Decimal {
	if len(links) == 0 {
		return decimal.Zero
	}

	inCart := make(map[uint]decimal.Decimal)
	for _, it := range cart {
		if it.Quantity > 0 {
			inCart[it.ProductID] = it.UnitPrice
		}
	}

	bundleSum := decimal.Zero
	for _, link := range links {
		price, ok := inCart[link.ProductID]
		if !ok {
			return decimal.Zero
		}
		bundleSum = bundleSum.Add(price)
	}

	if p.DiscountValue.GreaterThan(bundleSum) {
		return bundleSum
	}
	return p.DiscountValue
}
