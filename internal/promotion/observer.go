package promotion

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-cart-service/pkg/logger"
	"go.uber.org/zap"
)

type Kind string

const (
	KindFlashSale  Kind = "flash_sale"
	KindSuggestion Kind = "suggestion"
)

// Event describes one catalog mutation made by the scheduler.
type Event struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Price       int64     `json:"price"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Observer interface {
	OnPromotion(ctx context.Context, ev Event)
}

type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) OnPromotion(ctx context.Context, ev Event) {
	f(ctx, ev)
}

type logObserver struct {
	logger logger.ZapLogger
}

func NewLogObserver(log logger.ZapLogger) Observer {
	return &logObserver{logger: log}
}

func (o *logObserver) OnPromotion(ctx context.Context, ev Event) {
	o.logger.Info(ev.Message,
		zap.String("kind", string(ev.Kind)),
		zap.String("product_id", ev.ProductID),
		zap.Int64("price", ev.Price),
	)
}
