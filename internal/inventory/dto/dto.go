package dto

import "github.com/fekuna/omnipos-cart-service/internal/model"

type MovementFilters struct {
	ProductID    string
	MovementType model.MovementType
	Page         int
	PageSize     int
}
