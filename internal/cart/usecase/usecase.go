package usecase

import (
	"context"

	"github.com/fekuna/omnipos-cart-service/internal/cart"
	"github.com/fekuna/omnipos-cart-service/internal/inventory"
	"github.com/fekuna/omnipos-cart-service/internal/model"
	"github.com/fekuna/omnipos-cart-service/pkg/logger"
	"go.uber.org/zap"
)

type cartUseCase struct {
	ledger       inventory.UseCase
	lines        []*model.CartLine
	lastSelected string
	logger       logger.ZapLogger
}

func NewCartUseCase(ledger inventory.UseCase, log logger.ZapLogger) cart.UseCase {
	return &cartUseCase{
		ledger: ledger,
		logger: log,
	}
}

func (uc *cartUseCase) AddOne(ctx context.Context, productID string) (model.CartLine, error) {
	p, err := uc.ledger.GetProduct(productID)
	if err != nil {
		return model.CartLine{}, err
	}
	if !p.InStock() {
		return model.CartLine{}, &model.StockError{Op: "add", ProductID: productID, Requested: 1, Err: model.ErrOutOfStock}
	}

	if _, err := uc.ledger.Reserve(ctx, productID, 1); err != nil {
		return model.CartLine{}, err
	}

	line, _ := uc.find(productID)
	if line == nil {
		line = &model.CartLine{ProductID: productID}
		uc.lines = append(uc.lines, line)
	}
	line.Quantity++
	uc.lastSelected = productID

	uc.logger.Debug("item added", zap.String("product_id", productID), zap.Int("quantity", line.Quantity))
	return *line, nil
}

// ChangeQuantity applies delta to an existing line. A resulting quantity of
// zero or less removes the line and returns every unit to the shelf; the
// returned line then has Quantity 0.
func (uc *cartUseCase) ChangeQuantity(ctx context.Context, productID string, delta int) (model.CartLine, error) {
	line, idx := uc.find(productID)
	if line == nil {
		return model.CartLine{}, &model.StockError{Op: "change", ProductID: productID, Requested: delta, Err: model.ErrLineNotFound}
	}

	newQty := line.Quantity + delta
	if newQty <= 0 {
		if _, err := uc.ledger.Release(ctx, productID, line.Quantity); err != nil {
			return *line, err
		}
		uc.removeAt(idx)
		uc.logger.Debug("line removed by quantity change", zap.String("product_id", productID))
		return model.CartLine{ProductID: productID}, nil
	}

	if _, err := uc.ledger.Reserve(ctx, productID, delta); err != nil {
		return *line, err
	}
	line.Quantity = newQty

	uc.logger.Debug("quantity changed", zap.String("product_id", productID), zap.Int("quantity", newQty))
	return *line, nil
}

// RemoveLine is a no-op when the line is absent.
func (uc *cartUseCase) RemoveLine(ctx context.Context, productID string) error {
	line, idx := uc.find(productID)
	if line == nil {
		return nil
	}
	if _, err := uc.ledger.Release(ctx, productID, line.Quantity); err != nil {
		return err
	}
	uc.removeAt(idx)

	uc.logger.Debug("line removed", zap.String("product_id", productID))
	return nil
}

func (uc *cartUseCase) Lines() []model.CartLine {
	out := make([]model.CartLine, len(uc.lines))
	for i, l := range uc.lines {
		out[i] = *l
	}
	return out
}

func (uc *cartUseCase) Quantity(productID string) int {
	line, _ := uc.find(productID)
	if line == nil {
		return 0
	}
	return line.Quantity
}

func (uc *cartUseCase) TotalQuantity() int {
	total := 0
	for _, l := range uc.lines {
		total += l.Quantity
	}
	return total
}

func (uc *cartUseCase) IsEmpty() bool {
	return len(uc.lines) == 0
}

func (uc *cartUseCase) LastSelected() string {
	return uc.lastSelected
}

func (uc *cartUseCase) find(productID string) (*model.CartLine, int) {
	for i, l := range uc.lines {
		if l.ProductID == productID {
			return l, i
		}
	}
	return nil, -1
}

func (uc *cartUseCase) removeAt(idx int) {
	uc.lines = append(uc.lines[:idx], uc.lines[idx+1:]...)
}
