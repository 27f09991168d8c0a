package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/fekuna/omnipos-cart-service/internal/auth"
	"github.com/fekuna/omnipos-cart-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-cart-service/internal/model"
	"github.com/fekuna/omnipos-cart-service/internal/promotion"
	"github.com/fekuna/omnipos-cart-service/internal/session"
	"github.com/fekuna/omnipos-cart-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const watchBuffer = 16

type CartHandler struct {
	core   *session.Core
	logger logger.ZapLogger

	closing   chan struct{}
	closeOnce sync.Once
}

var _ CartServiceServer = (*CartHandler)(nil)

func NewCartHandler(core *session.Core, log logger.ZapLogger) *CartHandler {
	return &CartHandler{
		core:    core,
		logger:  log,
		closing: make(chan struct{}),
	}
}

// Close ends every open WatchPromotions stream so a graceful stop does not
// wait on them.
func (h *CartHandler) Close() {
	h.closeOnce.Do(func() { close(h.closing) })
}

func (h *CartHandler) GetCatalog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	products := h.core.CatalogSnapshot()
	items := make([]any, len(products))
	for i, p := range products {
		items[i] = mapProduct(p)
	}
	return toStruct(map[string]any{"products": items})
}

func (h *CartHandler) GetCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	lines := h.core.CartSnapshot()
	return toStruct(map[string]any{"lines": mapLines(lines)})
}

func (h *CartHandler) AddOne(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, err := requireString(req, "product_id")
	if err != nil {
		return nil, err
	}

	line, err := h.core.AddOne(ctx, productID)
	if err != nil {
		return nil, mapError(err)
	}

	h.logger.Debug("item added", zap.String("client_id", auth.GetClientID(ctx)), zap.String("product_id", productID))
	return toStruct(map[string]any{"line": mapCartLine(line)})
}

func (h *CartHandler) ChangeQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, err := requireString(req, "product_id")
	if err != nil {
		return nil, err
	}
	delta, err := requireInt(req, "delta")
	if err != nil {
		return nil, err
	}

	line, err := h.core.ChangeQuantity(ctx, productID, delta)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(map[string]any{
		"line":    mapCartLine(line),
		"removed": line.Quantity == 0,
	})
}

func (h *CartHandler) RemoveLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, err := requireString(req, "product_id")
	if err != nil {
		return nil, err
	}

	if err := h.core.RemoveLine(ctx, productID); err != nil {
		return nil, mapError(err)
	}
	return &structpb.Struct{}, nil
}

func (h *CartHandler) GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s := h.core.Summary()
	return toStruct(map[string]any{
		"lines":   mapLines(s.Lines),
		"pricing": mapPricing(s.Pricing),
		"points":  mapPoints(s.Points),
		"notices": mapNotices(s.Notices),
	})
}

func (h *CartHandler) ListMovements(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, err := optionalString(req, "product_id")
	if err != nil {
		return nil, err
	}
	movementType, err := optionalString(req, "movement_type")
	if err != nil {
		return nil, err
	}
	switch model.MovementType(movementType) {
	case "", model.MovementReserve, model.MovementRelease:
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown movement_type %q", movementType)
	}
	page, err := optionalInt(req, "page")
	if err != nil {
		return nil, err
	}
	pageSize, err := optionalInt(req, "page_size")
	if err != nil {
		return nil, err
	}
	if page < 0 || pageSize < 0 {
		return nil, status.Error(codes.InvalidArgument, "page and page_size cannot be negative")
	}

	filters := &dto.MovementFilters{
		ProductID:    productID,
		MovementType: model.MovementType(movementType),
		Page:         page,
		PageSize:     pageSize,
	}

	mvs, count, err := h.core.Movements(ctx, filters)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	items := make([]any, len(mvs))
	for i, m := range mvs {
		items[i] = mapMovement(m)
	}
	return toStruct(map[string]any{
		"movements": items,
		"total":     count,
	})
}

// WatchPromotions streams promotion events until the caller goes away. A
// watcher that falls behind loses events rather than stalling the scheduler.
func (h *CartHandler) WatchPromotions(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()

	kind, err := optionalString(req, "kind")
	if err != nil {
		return err
	}
	switch promotion.Kind(kind) {
	case "", promotion.KindFlashSale, promotion.KindSuggestion:
	default:
		return status.Errorf(codes.InvalidArgument, "unknown kind %q", kind)
	}

	clientID := auth.GetClientID(ctx)
	events := make(chan promotion.Event, watchBuffer)
	unsubscribe := h.core.Subscribe(promotion.ObserverFunc(func(_ context.Context, ev promotion.Event) {
		if kind != "" && ev.Kind != promotion.Kind(kind) {
			return
		}
		select {
		case events <- ev:
		default:
			h.logger.Warn("promotion watcher is lagging, event dropped",
				zap.String("client_id", clientID),
				zap.String("event_id", ev.ID),
			)
		}
	}))
	defer unsubscribe()

	h.logger.Info("promotion watcher attached", zap.String("client_id", clientID), zap.String("kind", kind))
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("promotion watcher detached", zap.String("client_id", clientID))
			return nil
		case <-h.closing:
			return status.Error(codes.Unavailable, "server is shutting down")
		case ev := <-events:
			out, err := toStruct(mapEvent(ev))
			if err != nil {
				return err
			}
			if err := stream.Send(out); err != nil {
				return err
			}
		}
	}
}

func mapError(err error) error {
	switch {
	case errors.Is(err, model.ErrOutOfStock), errors.Is(err, model.ErrInsufficientStock):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, model.ErrProductNotFound), errors.Is(err, model.ErrLineNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
