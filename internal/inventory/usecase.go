package inventory

import (
	"context"

	"github.com/fekuna/omnipos-cart-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-cart-service/internal/model"
)

// UseCase is the stock ledger. It is not safe for concurrent use; callers
// serialize access (see session.Core).
type UseCase interface {
	GetProduct(productID string) (model.Product, error)
	ListProducts() []model.Product
	Reserve(ctx context.Context, productID string, delta int) (int, error)
	Release(ctx context.Context, productID string, quantity int) (int, error)
	ListLowStock(threshold int) []model.StockNotice
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
