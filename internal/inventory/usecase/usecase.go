package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-cart-service/internal/inventory"
	"github.com/fekuna/omnipos-cart-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-cart-service/internal/model"
	"github.com/fekuna/omnipos-cart-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ledgerUseCase struct {
	repo      inventory.Repository
	movements inventory.MovementRepository
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewLedgerUseCase(repo inventory.Repository, movements inventory.MovementRepository, log logger.ZapLogger) inventory.UseCase {
	return &ledgerUseCase{
		repo:      repo,
		movements: movements,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *ledgerUseCase) GetProduct(productID string) (model.Product, error) {
	p, ok := uc.repo.FindByID(productID)
	if !ok {
		return model.Product{}, &model.StockError{Op: "get", ProductID: productID, Err: model.ErrProductNotFound}
	}
	return *p, nil
}

func (uc *ledgerUseCase) ListProducts() []model.Product {
	all := uc.repo.FindAll()
	out := make([]model.Product, len(all))
	for i, p := range all {
		out[i] = *p
	}
	return out
}

// Reserve moves delta units from the shelf into a cart line. A negative delta
// returns units to the shelf and never fails for a known product.
func (uc *ledgerUseCase) Reserve(ctx context.Context, productID string, delta int) (int, error) {
	p, ok := uc.repo.FindByID(productID)
	if !ok {
		return 0, &model.StockError{Op: "reserve", ProductID: productID, Requested: delta, Err: model.ErrProductNotFound}
	}

	if delta > 0 && delta > p.Stock {
		return p.Stock, &model.StockError{
			Op:        "reserve",
			ProductID: productID,
			Requested: delta,
			Available: p.Stock,
			Err:       model.ErrInsufficientStock,
		}
	}

	before := p.Stock
	after := before - delta
	if after < 0 {
		panic(fmt.Sprintf("inventory: stock of %s would become %d", productID, after))
	}
	p.Stock = after

	if delta != 0 {
		uc.logMovement(ctx, p.ID, delta, before, after)
	}
	return after, nil
}

func (uc *ledgerUseCase) Release(ctx context.Context, productID string, quantity int) (int, error) {
	return uc.Reserve(ctx, productID, -quantity)
}

// ListLowStock reports products below threshold in catalog order.
func (uc *ledgerUseCase) ListLowStock(threshold int) []model.StockNotice {
	notices := []model.StockNotice{}
	for _, p := range uc.repo.FindAll() {
		if p.Stock >= threshold {
			continue
		}
		status := model.StockLow
		if p.Stock == 0 {
			status = model.StockSoldOut
		}
		notices = append(notices, model.StockNotice{
			ProductID: p.ID,
			Name:      p.Name,
			Stock:     p.Stock,
			Status:    status,
		})
	}
	return notices
}

func (uc *ledgerUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.movements.ListMovements(ctx, filters)
}

// logMovement is best effort: the stock change already happened and is not
// rolled back when the journal rejects the entry.
func (uc *ledgerUseCase) logMovement(ctx context.Context, productID string, delta, before, after int) {
	movementType := model.MovementReserve
	if delta < 0 {
		movementType = model.MovementRelease
	}

	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      productID,
		MovementType:   movementType,
		QuantityChange: -delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		CreatedAt:      uc.now(),
	}

	if err := uc.movements.LogMovement(ctx, movement); err != nil {
		uc.logger.Error("failed to log stock movement",
			zap.String("product_id", productID),
			zap.Int("quantity_change", movement.QuantityChange),
			zap.Error(err),
		)
	}
}
