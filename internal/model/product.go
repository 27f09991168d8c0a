package model

// Product is a sellable catalog entry. Prices are in whole currency units.
type Product struct {
	ID              string `db:"id" json:"id" yaml:"id"`
	Name            string `db:"name" json:"name" yaml:"name"`
	CurrentPrice    int64  `db:"current_price" json:"current_price" yaml:"-"`
	OriginalPrice   int64  `db:"original_price" json:"original_price" yaml:"price"`
	Stock           int    `db:"stock" json:"stock" yaml:"stock"`
	OnFlashSale     bool   `db:"on_flash_sale" json:"on_flash_sale" yaml:"-"`
	OnSuggestedSale bool   `db:"on_suggested_sale" json:"on_suggested_sale" yaml:"-"`
}

type Badge string

const (
	BadgeNone      Badge = ""
	BadgeFlash     Badge = "20% SALE"
	BadgeSuggested Badge = "5% SUGGESTED"
	// BadgeSuper is display text only: the two cuts compound to 24% off.
	BadgeSuper Badge = "25% SUPER SALE"
)

func (p Product) Badge() Badge {
	switch {
	case p.OnFlashSale && p.OnSuggestedSale:
		return BadgeSuper
	case p.OnFlashSale:
		return BadgeFlash
	case p.OnSuggestedSale:
		return BadgeSuggested
	default:
		return BadgeNone
	}
}

func (p Product) InStock() bool {
	return p.Stock > 0
}
