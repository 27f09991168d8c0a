package cart

import (
	"context"

	"github.com/fekuna/omnipos-cart-service/internal/model"
)

// UseCase owns the session cart. Every mutator is paired with exactly one
// stock ledger call so shelf stock plus cart quantity stays constant per
// product. Not safe for concurrent use.
type UseCase interface {
	AddOne(ctx context.Context, productID string) (model.CartLine, error)
	ChangeQuantity(ctx context.Context, productID string, delta int) (model.CartLine, error)
	RemoveLine(ctx context.Context, productID string) error

	Lines() []model.CartLine
	Quantity(productID string) int
	TotalQuantity() int
	IsEmpty() bool
	LastSelected() string
}
