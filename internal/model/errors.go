package model

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
	ErrLineNotFound      = errors.New("item not in cart")
)

// StockError carries the context of a rejected stock operation.
type StockError struct {
	Op        string
	ProductID string
	Requested int
	Available int
	Err       error
}

func (e *StockError) Error() string {
	if errors.Is(e.Err, ErrProductNotFound) || errors.Is(e.Err, ErrLineNotFound) {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ProductID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v (requested %d, available %d)", e.Op, e.ProductID, e.Err, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return e.Err
}
