package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Policy holds the thresholds and rates the engine applies.
type Policy struct {
	ItemDiscountThreshold int
	ItemDiscountRates     map[string]decimal.Decimal
	BulkThreshold         int
	BulkRate              decimal.Decimal
	SpecialDay            time.Weekday
	SpecialDayRate        decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		ItemDiscountThreshold: 10,
		ItemDiscountRates: map[string]decimal.Decimal{
			"keyboard":     decimal.RequireFromString("0.10"),
			"mouse":        decimal.RequireFromString("0.15"),
			"monitor-arm":  decimal.RequireFromString("0.20"),
			"laptop-pouch": decimal.RequireFromString("0.05"),
			"speaker":      decimal.RequireFromString("0.25"),
		},
		BulkThreshold:  30,
		BulkRate:       decimal.RequireFromString("0.25"),
		SpecialDay:     time.Tuesday,
		SpecialDayRate: decimal.RequireFromString("0.10"),
	}
}

// ItemRate returns the per-item rate for productID, zero when unknown.
func (p Policy) ItemRate(productID string) decimal.Decimal {
	if r, ok := p.ItemDiscountRates[productID]; ok {
		return r
	}
	return decimal.Zero
}
