package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el saldo de un producto en una ubicación. Sin fila devuelve un saldo en cero con Version 0.
func (r *StockRepo) Get(ctx context.Context, productID, locationID string) (*entity.StockBalance, error) {
	return r.get(ctx, `
		SELECT product_id, location_id, quantity, reserved_quantity, version, updated_at
		FROM stock_balances WHERE product_id = $1 AND location_id = $2`, productID, locationID)
}

// GetForUpdate obtiene el saldo y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockBalance, error) {
	return r.get(ctx, `
		SELECT product_id, location_id, quantity, reserved_quantity, version, updated_at
		FROM stock_balances WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`, productID, locationID)
}

func (r *StockRepo) get(ctx context.Context, query, productID, locationID string) (*entity.StockBalance, error) {
	if !isUUID(productID) {
		return &entity.StockBalance{ProductID: productID, LocationID: locationID}, nil
	}
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, query, productID, locationID).Scan(
		&b.ProductID, &b.LocationID, &b.Quantity, &b.ReservedQuantity, &b.Version, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{ProductID: productID, LocationID: locationID}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &b, nil
}

// Save escribe el saldo solo si la versión almacenada coincide con b.Version.
// Version 0 significa fila nueva. En éxito incrementa b.Version.
func (r *StockRepo) Save(ctx context.Context, b *entity.StockBalance) error {
	var (
		next int64
		err  error
	)
	if b.Version == 0 {
		err = r.q.QueryRow(ctx, `
			INSERT INTO stock_balances (product_id, location_id, quantity, reserved_quantity, version, updated_at)
			VALUES ($1, $2, $3, $4, 1, $5)
			ON CONFLICT (product_id, location_id) DO NOTHING
			RETURNING version`,
			b.ProductID, b.LocationID, b.Quantity, b.ReservedQuantity, b.UpdatedAt,
		).Scan(&next)
	} else {
		err = r.q.QueryRow(ctx, `
			UPDATE stock_balances
			SET quantity = $3, reserved_quantity = $4, version = version + 1, updated_at = $5
			WHERE product_id = $1 AND location_id = $2 AND version = $6
			RETURNING version`,
			b.ProductID, b.LocationID, b.Quantity, b.ReservedQuantity, b.UpdatedAt, b.Version,
		).Scan(&next)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: producto %s en %s", domain.ErrStaleVersion, b.ProductID, b.LocationID)
		}
		return fmt.Errorf("save stock: %w", err)
	}
	b.Version = next
	return nil
}

// ListByProduct lista los saldos de un producto en todas las ubicaciones.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, location_id, quantity, reserved_quantity, version, updated_at
		FROM stock_balances WHERE product_id = $1 ORDER BY location_id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.ProductID, &b.LocationID, &b.Quantity, &b.ReservedQuantity, &b.Version, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// ListLowStock devuelve los saldos de productos aprobados cuyo disponible está en o bajo el umbral,
// ordenados por déficit. locationID vacío consulta todas las ubicaciones.
func (r *StockRepo) ListLowStock(ctx context.Context, locationID string) ([]repository.LowStockRow, error) {
	query := `
		SELECT p.id, p.sku, p.name, s.location_id, s.quantity, s.reserved_quantity,
		       p.low_stock_threshold, p.cost_price
		FROM stock_balances s
		JOIN products p ON p.id = s.product_id
		WHERE p.status = 'approved'
		  AND p.low_stock_threshold > 0
		  AND (s.quantity - s.reserved_quantity) <= p.low_stock_threshold
		  AND ($1 = '' OR s.location_id = $1)
		ORDER BY (p.low_stock_threshold - (s.quantity - s.reserved_quantity)) DESC, p.sku`
	rows, err := r.q.Query(ctx, query, locationID)
	if err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	defer rows.Close()

	var result []repository.LowStockRow
	for rows.Next() {
		var row repository.LowStockRow
		if err := rows.Scan(
			&row.ProductID, &row.SKU, &row.ProductName, &row.LocationID,
			&row.Quantity, &row.ReservedQuantity, &row.LowStockThreshold, &row.UnitCost,
		); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
