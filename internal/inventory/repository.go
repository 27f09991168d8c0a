package inventory

import (
	"context"

	"github.com/fekuna/omnipos-cart-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-cart-service/internal/model"
)

// Repository holds the live product records in catalog order.
// The returned pointers are the shared records; only the ledger and the
// promotion scheduler write through them.
type Repository interface {
	FindByID(productID string) (*model.Product, bool)
	FindAll() []*model.Product
}

type MovementRepository interface {
	LogMovement(ctx context.Context, movement *model.StockMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
