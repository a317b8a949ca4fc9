package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ repository.HoldRepository = (*HoldRepo)(nil)

// HoldRepo retenciones de stock sobre PostgreSQL.
type HoldRepo struct {
	q Querier
}

// NewHoldRepository construye el adaptador de retenciones.
func NewHoldRepository(q Querier) *HoldRepo {
	return &HoldRepo{q: q}
}

const holdColumns = `id, product_id, location_id, quantity, status, coalesce(transfer_id::text, ''), expires_at, created_at, updated_at`

func scanHold(row pgx.Row) (*entity.StockHold, error) {
	var (
		h      entity.StockHold
		status string
	)
	if err := row.Scan(&h.ID, &h.ProductID, &h.LocationID, &h.Quantity, &status,
		&h.TransferID, &h.ExpiresAt, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	h.Status = entity.HoldStatus(status)
	return &h, nil
}

func (r *HoldRepo) Create(ctx context.Context, h *entity.StockHold) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_holds (id, product_id, location_id, quantity, status, transfer_id, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		h.ID, h.ProductID, h.LocationID, h.Quantity, string(h.Status),
		nullIfEmpty(h.TransferID), h.ExpiresAt, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert hold: %w", err)
	}
	return nil
}

func (r *HoldRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockHold, error) {
	if !isUUID(id) {
		return nil, domain.NotFound("retención %s", id)
	}
	h, err := scanHold(r.q.QueryRow(ctx, `SELECT `+holdColumns+` FROM stock_holds WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("retención %s", id)
		}
		return nil, fmt.Errorf("get hold: %w", err)
	}
	return h, nil
}

// Update persiste estado y vencimiento de la retención.
func (r *HoldRepo) Update(ctx context.Context, h *entity.StockHold) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_holds SET status = $2, expires_at = $3, updated_at = $4 WHERE id = $1`,
		h.ID, string(h.Status), h.ExpiresAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update hold: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("retención %s", h.ID)
	}
	return nil
}

func (r *HoldRepo) ListByTransfer(ctx context.Context, transferID string) ([]*entity.StockHold, error) {
	return r.list(ctx, `SELECT `+holdColumns+` FROM stock_holds WHERE transfer_id = $1 ORDER BY created_at`, transferID)
}

// ListExpired devuelve retenciones activas vencidas en now, las más antiguas primero.
func (r *HoldRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.StockHold, error) {
	return r.list(ctx, `
		SELECT `+holdColumns+` FROM stock_holds
		WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2`, now, limitOrAll(limit))
}

func (r *HoldRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockHold, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list holds: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockHold
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hold: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
