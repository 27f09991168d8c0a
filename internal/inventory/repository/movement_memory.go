package repository

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-cart-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-cart-service/internal/model"
)

// MemoryMovementRepository keeps the journal for the lifetime of the process.
type MemoryMovementRepository struct {
	mu        sync.RWMutex
	movements []model.StockMovement
}

func NewMemoryMovementRepository() *MemoryMovementRepository {
	return &MemoryMovementRepository{}
}

func (r *MemoryMovementRepository) LogMovement(ctx context.Context, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *MemoryMovementRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// newest first
	matched := []model.StockMovement{}
	for i := len(r.movements) - 1; i >= 0; i-- {
		m := r.movements[i]
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.MovementType != "" && m.MovementType != f.MovementType {
			continue
		}
		matched = append(matched, m)
	}

	count := len(matched)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start >= count {
			return []model.StockMovement{}, count, nil
		}
		end := start + f.PageSize
		if end > count {
			end = count
		}
		matched = matched[start:end]
	}
	return matched, count, nil
}
