package model

import "time"

type MovementType string

const (
	MovementReserve MovementType = "reserve"
	MovementRelease MovementType = "release"
)

// StockMovement is one journal entry written for every ledger call.
type StockMovement struct {
	ID             string       `db:"id" json:"id"`
	ProductID      string       `db:"product_id" json:"product_id"`
	MovementType   MovementType `db:"movement_type" json:"movement_type"`
	QuantityChange int          `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int          `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int          `db:"quantity_after" json:"quantity_after"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}

type StockStatus string

const (
	StockLow     StockStatus = "low"
	StockSoldOut StockStatus = "sold_out"
)

type StockNotice struct {
	ProductID string      `json:"product_id"`
	Name      string      `json:"name"`
	Stock     int         `json:"stock"`
	Status    StockStatus `json:"status"`
}
