package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a cart line resolved against the catalog.
type Item struct {
	ProductID string
	UnitPrice int64
	Quantity  int
}

type ItemDiscount struct {
	ProductID string
	Rate      decimal.Decimal
}

type Breakdown struct {
	Subtotal            int64
	TotalQuantity       int
	PerItemDiscounts    []ItemDiscount
	BulkDiscountApplied bool
	BulkRate            decimal.Decimal
	DaySpecialApplied   bool
	DaySpecialRate      decimal.Decimal
	// DiscountRate is the overall rate, 1 - FinalTotal/Subtotal.
	DiscountRate decimal.Decimal
	FinalTotal   decimal.Decimal
	TotalSavings decimal.Decimal
}

type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Compute prices items as of now. Per-item discounts are replaced wholesale
// by the bulk discount once the total quantity reaches the bulk threshold,
// and the special-day discount is applied on top of whichever won.
func (e *Engine) Compute(items []Item, now time.Time) Breakdown {
	b := Breakdown{PerItemDiscounts: []ItemDiscount{}}
	if len(items) == 0 {
		return b
	}

	one := decimal.NewFromInt(1)
	discounted := decimal.Zero
	for _, it := range items {
		itemTotal := decimal.NewFromInt(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
		b.Subtotal += it.UnitPrice * int64(it.Quantity)
		b.TotalQuantity += it.Quantity

		rate := decimal.Zero
		if it.Quantity >= e.policy.ItemDiscountThreshold {
			rate = e.policy.ItemRate(it.ProductID)
		}
		if rate.IsPositive() {
			b.PerItemDiscounts = append(b.PerItemDiscounts, ItemDiscount{ProductID: it.ProductID, Rate: rate})
		}
		discounted = discounted.Add(itemTotal.Mul(one.Sub(rate)))
	}

	subtotal := decimal.NewFromInt(b.Subtotal)
	if b.TotalQuantity >= e.policy.BulkThreshold {
		b.PerItemDiscounts = []ItemDiscount{}
		b.BulkDiscountApplied = true
		b.BulkRate = e.policy.BulkRate
		b.FinalTotal = subtotal.Mul(one.Sub(e.policy.BulkRate))
	} else {
		b.FinalTotal = discounted
	}
	b.DiscountRate = rateOf(subtotal, b.FinalTotal)

	if now.Weekday() == e.policy.SpecialDay && b.FinalTotal.IsPositive() {
		b.FinalTotal = b.FinalTotal.Mul(one.Sub(e.policy.SpecialDayRate))
		b.DaySpecialApplied = true
		b.DaySpecialRate = e.policy.SpecialDayRate
		b.DiscountRate = rateOf(subtotal, b.FinalTotal)
	}

	b.TotalSavings = subtotal.Sub(b.FinalTotal)
	return b
}

func rateOf(subtotal, final decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Sub(final.Div(subtotal))
}
