package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo diario de movimientos sobre PostgreSQL (solo inserción).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento del diario.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, reference, product_id, location_id, type, quantity_delta, reserved_delta, balance_after, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.Reference, m.ProductID, m.LocationID, m.Type,
		m.QuantityDelta, m.ReservedDelta, m.BalanceAfter, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// List devuelve movimientos filtrados, en orden de registro.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if f.ProductID != "" && !isUUID(f.ProductID) {
		return nil, nil
	}
	query := `
		SELECT id, reference, product_id, location_id, type, quantity_delta, reserved_delta, balance_after, created_at, created_by
		FROM stock_movements WHERE TRUE`
	var args []any
	pos := 1
	if f.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.LocationID != "" {
		query += fmt.Sprintf(" AND location_id = $%d", pos)
		args = append(args, f.LocationID)
		pos++
	}
	if f.Reference != "" {
		query += fmt.Sprintf(" AND reference = $%d", pos)
		args = append(args, f.Reference)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY seq LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limitOrAll(f.Limit), f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.Reference, &m.ProductID, &m.LocationID, &m.Type,
			&m.QuantityDelta, &m.ReservedDelta, &m.BalanceAfter, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
