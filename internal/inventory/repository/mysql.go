package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-cart-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-cart-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const movementSchema = `
CREATE TABLE IF NOT EXISTS stock_movements (
    id              CHAR(36)    NOT NULL PRIMARY KEY,
    product_id      VARCHAR(64) NOT NULL,
    movement_type   VARCHAR(16) NOT NULL,
    quantity_change INT         NOT NULL,
    quantity_before INT         NOT NULL,
    quantity_after  INT         NOT NULL,
    created_at      DATETIME(6) NOT NULL,
    INDEX idx_stock_movements_product (product_id, created_at)
)`

type MySQLMovementRepository struct {
	DB *sqlx.DB
}

func NewMySQLMovementRepository(db *sqlx.DB) *MySQLMovementRepository {
	return &MySQLMovementRepository{DB: db}
}

func (r *MySQLMovementRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, movementSchema); err != nil {
		return fmt.Errorf("failed to create stock_movements: %w", err)
	}
	return nil
}

func (r *MySQLMovementRepository) LogMovement(ctx context.Context, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, product_id, movement_type,
            quantity_change, quantity_before, quantity_after, created_at
        )
        VALUES (
            :id, :product_id, :movement_type,
            :quantity_change, :quantity_before, :quantity_after, :created_at
        )
    `
	if _, err := r.DB.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}
	return nil
}

func (r *MySQLMovementRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = ?")
		args = append(args, f.ProductID)
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = ?")
		args = append(args, string(f.MovementType))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery := r.DB.Rebind("SELECT count(*) FROM stock_movements" + whereClause)
	if err := r.DB.GetContext(ctx, &count, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	items := []model.StockMovement{}
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}
