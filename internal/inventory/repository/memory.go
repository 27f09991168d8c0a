package repository

import "github.com/fekuna/omnipos-cart-service/internal/model"

type MemoryRepository struct {
	products []*model.Product
	byID     map[string]*model.Product
}

// NewMemoryRepository copies the seed products and resets their promotional
// state: current price equals original price and no flags are set.
func NewMemoryRepository(seed []model.Product) *MemoryRepository {
	r := &MemoryRepository{
		products: make([]*model.Product, 0, len(seed)),
		byID:     make(map[string]*model.Product, len(seed)),
	}
	for _, s := range seed {
		p := s
		p.CurrentPrice = p.OriginalPrice
		p.OnFlashSale = false
		p.OnSuggestedSale = false
		r.products = append(r.products, &p)
		r.byID[p.ID] = &p
	}
	return r
}

func (r *MemoryRepository) FindByID(productID string) (*model.Product, bool) {
	p, ok := r.byID[productID]
	return p, ok
}

func (r *MemoryRepository) FindAll() []*model.Product {
	out := make([]*model.Product, len(r.products))
	copy(out, r.products)
	return out
}
