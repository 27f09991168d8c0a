package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tuesday   = time.Date(2026, 10, 13, 10, 0, 0, 0, time.UTC)
	wednesday = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestCompute_EmptyCart(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute(nil, tuesday)

	assert.Zero(t, b.Subtotal)
	assert.Zero(t, b.TotalQuantity)
	assert.Empty(t, b.PerItemDiscounts)
	assert.False(t, b.BulkDiscountApplied)
	assert.False(t, b.DaySpecialApplied)
	assert.True(t, b.FinalTotal.IsZero())
	assert.True(t, b.TotalSavings.IsZero())
	assert.True(t, b.DiscountRate.IsZero())
}

func TestCompute_PerItemDiscount(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute([]Item{
		{ProductID: "keyboard", UnitPrice: 10000, Quantity: 10},
	}, wednesday)

	assert.Equal(t, int64(100000), b.Subtotal)
	require.Len(t, b.PerItemDiscounts, 1)
	assert.Equal(t, "keyboard", b.PerItemDiscounts[0].ProductID)
	assertDecimal(t, "0.1", b.PerItemDiscounts[0].Rate)
	assertDecimal(t, "90000", b.FinalTotal)
	assertDecimal(t, "10000", b.TotalSavings)
	assertDecimal(t, "0.1", b.DiscountRate)
	assert.False(t, b.DaySpecialApplied)
}

func TestCompute_BelowItemThreshold(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute([]Item{
		{ProductID: "speaker", UnitPrice: 25000, Quantity: 9},
	}, wednesday)

	assert.Empty(t, b.PerItemDiscounts)
	assertDecimal(t, "225000", b.FinalTotal)
	assert.True(t, b.TotalSavings.IsZero())
}

func TestCompute_MixedLines(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute([]Item{
		{ProductID: "keyboard", UnitPrice: 10000, Quantity: 10},
		{ProductID: "mouse", UnitPrice: 20000, Quantity: 2},
	}, wednesday)

	assert.Equal(t, int64(140000), b.Subtotal)
	assert.Len(t, b.PerItemDiscounts, 1)
	assertDecimal(t, "130000", b.FinalTotal)
	assert.InDelta(t, 10000.0/140000.0, b.DiscountRate.InexactFloat64(), 1e-9)
}

func TestCompute_UnknownProductHasNoItemRate(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute([]Item{
		{ProductID: "mystery", UnitPrice: 1000, Quantity: 12},
	}, wednesday)

	assert.Empty(t, b.PerItemDiscounts)
	assertDecimal(t, "12000", b.FinalTotal)
}

func TestCompute_BulkOverridesPerItem(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute([]Item{
		{ProductID: "keyboard", UnitPrice: 10000, Quantity: 10},
		{ProductID: "mouse", UnitPrice: 20000, Quantity: 10},
		{ProductID: "speaker", UnitPrice: 25000, Quantity: 10},
	}, wednesday)

	assert.Equal(t, 30, b.TotalQuantity)
	assert.Empty(t, b.PerItemDiscounts)
	assert.True(t, b.BulkDiscountApplied)
	assertDecimal(t, "0.25", b.BulkRate)
	assertDecimal(t, "412500", b.FinalTotal)
	assertDecimal(t, "0.25", b.DiscountRate)
}

func TestCompute_BulkWithSingleLargeLine(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute([]Item{
		{ProductID: "speaker", UnitPrice: 25000, Quantity: 31},
	}, wednesday)

	assert.Empty(t, b.PerItemDiscounts, "bulk wins even over a 25% item rate")
	assert.True(t, b.BulkDiscountApplied)
}

func TestCompute_TuesdayComposesMultiplicatively(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute([]Item{
		{ProductID: "keyboard", UnitPrice: 10000, Quantity: 10},
	}, tuesday)

	assert.True(t, b.DaySpecialApplied)
	assertDecimal(t, "0.1", b.DaySpecialRate)
	assertDecimal(t, "81000", b.FinalTotal)
	assertDecimal(t, "19000", b.TotalSavings)
	assertDecimal(t, "0.19", b.DiscountRate)
}

func TestCompute_TuesdayOnBulk(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute([]Item{
		{ProductID: "keyboard", UnitPrice: 10000, Quantity: 30},
	}, tuesday)

	assert.True(t, b.BulkDiscountApplied)
	assert.True(t, b.DaySpecialApplied)
	assertDecimal(t, "202500", b.FinalTotal)
	assertDecimal(t, "0.325", b.DiscountRate)
}

func TestCompute_TuesdayFullSet(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute([]Item{
		{ProductID: "keyboard", UnitPrice: 10000, Quantity: 1},
		{ProductID: "mouse", UnitPrice: 20000, Quantity: 1},
		{ProductID: "monitor-arm", UnitPrice: 30000, Quantity: 1},
	}, tuesday)

	assert.Equal(t, int64(60000), b.Subtotal)
	assert.Empty(t, b.PerItemDiscounts)
	assertDecimal(t, "54000", b.FinalTotal)
}

func TestCompute_ZeroSubtotal(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute([]Item{
		{ProductID: "freebie", UnitPrice: 0, Quantity: 30},
	}, tuesday)

	assert.True(t, b.BulkDiscountApplied)
	assert.False(t, b.DaySpecialApplied, "nothing left to discount")
	assert.True(t, b.DiscountRate.IsZero())
	assert.True(t, b.FinalTotal.IsZero())
}

func TestCompute_FractionalTotalsAreKept(t *testing.T) {
	b := NewEngine(DefaultPolicy()).Compute([]Item{
		{ProductID: "mouse", UnitPrice: 12345, Quantity: 1},
	}, tuesday)

	assertDecimal(t, "11110.5", b.FinalTotal)
}

func TestPolicy_ItemRate(t *testing.T) {
	p := DefaultPolicy()
	assertDecimal(t, "0.2", p.ItemRate("monitor-arm"))
	assertDecimal(t, "0.05", p.ItemRate("laptop-pouch"))
	assert.True(t, p.ItemRate("unknown").IsZero())
}
