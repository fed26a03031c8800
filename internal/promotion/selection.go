package promotion

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dadinjaenudin/kiosk-svelte/internal/model"
)

// Candidate pairs a promotion with its product links for evaluation
type Candidate struct {
	Promotion *model.Promotion
	Links     []model.PromotionProduct
}

// priority of a candidate is the highest priority among its product links
func (c Candidate) priority() int {
	p := 0
	for i, link := range c.Links {
		if i == 0 || link.Priority > p {
			p = link.Priority
		}
	}
	return p
}

// Selection is the winning promotion and the discount it yields
type Selection struct {
	Promotion *model.Promotion
	Discount  decimal.Decimal
}

// SelectBest picks the single promotion to apply to the cart. Candidates are
// restricted to those valid now and yielding a non-zero discount, then ranked
// by priority descending with discount value descending as the customer-
// favoring tie-break. No stacking: one promotion per cart. A promotion
// matched by an explicitly entered code wins over automatic catalog matches.
// Returns nil when nothing applies.
func SelectBest(candidates []Candidate, cart []CartItem, enteredCode string, now time.Time) *Selection {
	type ranked struct {
		Candidate
		discount  decimal.Decimal
		codeMatch bool
	}

	var applicable []ranked
	for _, c := range candidates {
		if !IsValidNow(c.Promotion, now) {
			continue
		}
		discount := CalculateDiscount(c.Promotion, c.Links, cart)
		if !discount.IsPositive() {
			continue
		}
		codeMatch := enteredCode != "" &&
			c.Promotion.Code != nil && *c.Promotion.Code == enteredCode
		applicable = append(applicable, ranked{c, discount, codeMatch})
	}
	if len(applicable) == 0 {
		return nil
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		if applicable[i].codeMatch != applicable[j].codeMatch {
			return applicable[i].codeMatch
		}
		if applicable[i].priority() != applicable[j].priority() {
			return applicable[i].priority() > applicable[j].priority()
		}
		return applicable[i].Promotion.DiscountValue.GreaterThan(applicable[j].Promotion.DiscountValue)
	})

	best := applicable[0]
	return &Selection{Promotion: best.Promotion, Discount: best.discount}
}
