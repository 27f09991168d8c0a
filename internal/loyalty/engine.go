package loyalty

import (
	"fmt"
	"time"

	"github.com/fekuna/omnipos-cart-service/internal/model"
	"github.com/fekuna/omnipos-cart-service/internal/pricing"
	"github.com/shopspring/decimal"
)

type Tier struct {
	MinQuantity int
	Points      int64
}

type Policy struct {
	AmountPerPoint int64
	SpecialDay     time.Weekday
	DayMultiplier  int64
	KeyboardID     string
	MouseID        string
	MonitorArmID   string
	PairBonus      int64
	FullSetBonus   int64
	// Tiers must be ordered by MinQuantity, highest first.
	Tiers []Tier
}

func DefaultPolicy() Policy {
	return Policy{
		AmountPerPoint: 1000,
		SpecialDay:     time.Tuesday,
		DayMultiplier:  2,
		KeyboardID:     "keyboard",
		MouseID:        "mouse",
		MonitorArmID:   "monitor-arm",
		PairBonus:      50,
		FullSetBonus:   100,
		Tiers: []Tier{
			{MinQuantity: 30, Points: 100},
			{MinQuantity: 20, Points: 50},
			{MinQuantity: 10, Points: 20},
		},
	}
}

type ComboBonus struct {
	Label  string
	Points int64
}

type TierBonus struct {
	Tier   int
	Points int64
}

type Breakdown struct {
	BasePoints           int64
	DayMultiplierApplied bool
	ComboBonuses         []ComboBonus
	QuantityTierBonus    *TierBonus
	TotalPoints          int64
	// Details lists display lines: base, day multiplier, combos, tier.
	Details []string
}

type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

func (e *Engine) Compute(lines []model.CartLine, priced pricing.Breakdown, now time.Time) Breakdown {
	b := Breakdown{ComboBonuses: []ComboBonus{}, Details: []string{}}
	if len(lines) == 0 {
		return b
	}

	b.BasePoints = priced.FinalTotal.Div(decimal.NewFromInt(e.policy.AmountPerPoint)).Floor().IntPart()
	points := b.BasePoints
	if b.BasePoints > 0 {
		b.Details = append(b.Details, fmt.Sprintf("base: %dp", b.BasePoints))
	}

	if now.Weekday() == e.policy.SpecialDay && b.BasePoints > 0 {
		points = b.BasePoints * e.policy.DayMultiplier
		b.DayMultiplierApplied = true
		b.Details = append(b.Details, fmt.Sprintf("%s x%d", e.policy.SpecialDay, e.policy.DayMultiplier))
	}

	present := make(map[string]bool, len(lines))
	totalQty := 0
	for _, l := range lines {
		present[l.ProductID] = true
		totalQty += l.Quantity
	}

	if present[e.policy.KeyboardID] && present[e.policy.MouseID] {
		b.ComboBonuses = append(b.ComboBonuses, ComboBonus{Label: "keyboard+mouse set", Points: e.policy.PairBonus})
		if present[e.policy.MonitorArmID] {
			b.ComboBonuses = append(b.ComboBonuses, ComboBonus{Label: "full set", Points: e.policy.FullSetBonus})
		}
	}
	for _, c := range b.ComboBonuses {
		points += c.Points
		b.Details = append(b.Details, fmt.Sprintf("%s +%dp", c.Label, c.Points))
	}

	for _, tier := range e.policy.Tiers {
		if totalQty >= tier.MinQuantity {
			b.QuantityTierBonus = &TierBonus{Tier: tier.MinQuantity, Points: tier.Points}
			points += tier.Points
			b.Details = append(b.Details, fmt.Sprintf("%d+ items +%dp", tier.MinQuantity, tier.Points))
			break
		}
	}

	b.TotalPoints = points
	return b
}
