package handler

import (
	"math"
	"time"

	"github.com/fekuna/omnipos-cart-service/internal/loyalty"
	"github.com/fekuna/omnipos-cart-service/internal/model"
	"github.com/fekuna/omnipos-cart-service/internal/pricing"
	"github.com/fekuna/omnipos-cart-service/internal/promotion"
	"github.com/fekuna/omnipos-cart-service/internal/session"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Money amounts that may carry a fraction are sent as decimal strings.

func mapProduct(p model.Product) map[string]any {
	return map[string]any{
		"id":             p.ID,
		"name":           p.Name,
		"price":          p.CurrentPrice,
		"original_price": p.OriginalPrice,
		"stock":          p.Stock,
		"sold_out":       !p.InStock(),
		"badge":          string(p.Badge()),
	}
}

func mapLineView(l session.CartLineView) map[string]any {
	return map[string]any{
		"product_id":     l.ProductID,
		"name":           l.Name,
		"quantity":       l.Quantity,
		"unit_price":     l.UnitPrice,
		"original_price": l.OriginalPrice,
		"line_total":     l.LineTotal,
		"badge":          string(l.Badge),
	}
}

func mapLines(lines []session.CartLineView) []any {
	out := make([]any, len(lines))
	for i, l := range lines {
		out[i] = mapLineView(l)
	}
	return out
}

func mapCartLine(l model.CartLine) map[string]any {
	return map[string]any{
		"product_id": l.ProductID,
		"quantity":   l.Quantity,
	}
}

func mapPricing(b pricing.Breakdown) map[string]any {
	discounts := make([]any, len(b.PerItemDiscounts))
	for i, d := range b.PerItemDiscounts {
		discounts[i] = map[string]any{
			"product_id": d.ProductID,
			"rate":       d.Rate.String(),
		}
	}
	return map[string]any{
		"subtotal":              b.Subtotal,
		"total_quantity":        b.TotalQuantity,
		"per_item_discounts":    discounts,
		"bulk_discount_applied": b.BulkDiscountApplied,
		"bulk_rate":             b.BulkRate.String(),
		"day_special_applied":   b.DaySpecialApplied,
		"day_special_rate":      b.DaySpecialRate.String(),
		"discount_rate":         b.DiscountRate.String(),
		"final_total":           b.FinalTotal.String(),
		"total_savings":         b.TotalSavings.String(),
	}
}

func mapPoints(b loyalty.Breakdown) map[string]any {
	combos := make([]any, len(b.ComboBonuses))
	for i, c := range b.ComboBonuses {
		combos[i] = map[string]any{"label": c.Label, "points": c.Points}
	}
	details := make([]any, len(b.Details))
	for i, d := range b.Details {
		details[i] = d
	}

	var tier any
	if b.QuantityTierBonus != nil {
		tier = map[string]any{
			"tier":   b.QuantityTierBonus.Tier,
			"points": b.QuantityTierBonus.Points,
		}
	}
	return map[string]any{
		"base_points":            b.BasePoints,
		"day_multiplier_applied": b.DayMultiplierApplied,
		"combo_bonuses":          combos,
		"quantity_tier_bonus":    tier,
		"total_points":           b.TotalPoints,
		"details":                details,
	}
}

func mapNotices(notices []model.StockNotice) []any {
	out := make([]any, len(notices))
	for i, n := range notices {
		out[i] = map[string]any{
			"product_id": n.ProductID,
			"name":       n.Name,
			"stock":      n.Stock,
			"status":     string(n.Status),
		}
	}
	return out
}

func mapMovement(m model.StockMovement) map[string]any {
	return map[string]any{
		"id":              m.ID,
		"product_id":      m.ProductID,
		"movement_type":   string(m.MovementType),
		"quantity_change": m.QuantityChange,
		"quantity_before": m.QuantityBefore,
		"quantity_after":  m.QuantityAfter,
		"created_at":      m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func mapEvent(ev promotion.Event) map[string]any {
	return map[string]any{
		"id":           ev.ID,
		"kind":         string(ev.Kind),
		"product_id":   ev.ProductID,
		"product_name": ev.ProductName,
		"price":        ev.Price,
		"message":      ev.Message,
		"occurred_at":  ev.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

func toStruct(fields map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}

func requireString(in *structpb.Struct, key string) (string, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok || s.StringValue == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a non-empty string", key)
	}
	return s.StringValue, nil
}

func optionalString(in *structpb.Struct, key string) (string, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return "", nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", key)
	}
	return s.StringValue, nil
}

func requireInt(in *structpb.Struct, key string) (int, error) {
	if _, ok := in.GetFields()[key]; !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return optionalInt(in, key)
}

func optionalInt(in *structpb.Struct, key string) (int, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return 0, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", key)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number", key)
	}
	return int(f), nil
}
