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

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados, sus líneas y su historial sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, transfer_number, source_location_id, source_kind, dest_location_id, dest_kind,
	total_value, total_cost_value, status, priority, requested_by, requested_at,
	approved_by, approved_at, confirmed_at, shipped_at, completed_at,
	rejected_by, rejected_at, rejection_reason, estimated_delivery, notes, updated_at`

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var (
		t                                  entity.StockTransfer
		srcKind, dstKind, status, priority string
	)
	err := row.Scan(
		&t.ID, &t.TransferNumber, &t.SourceLocationID, &srcKind, &t.DestLocationID, &dstKind,
		&t.TotalValue, &t.TotalCostValue, &status, &priority, &t.RequestedBy, &t.RequestedAt,
		&t.ApprovedBy, &t.ApprovedAt, &t.ConfirmedAt, &t.ShippedAt, &t.CompletedAt,
		&t.RejectedBy, &t.RejectedAt, &t.RejectionReason, &t.EstimatedDelivery, &t.Notes, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.SourceKind = entity.LocationKind(srcKind)
	t.DestKind = entity.LocationKind(dstKind)
	t.Status = entity.TransferStatus(status)
	t.Priority = entity.TransferPriority(priority)
	return &t, nil
}

// Create persiste cabecera y líneas del traslado.
func (r *TransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfers (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		t.ID, t.TransferNumber, t.SourceLocationID, string(t.SourceKind), t.DestLocationID, string(t.DestKind),
		t.TotalValue, t.TotalCostValue, string(t.Status), string(t.Priority), t.RequestedBy, t.RequestedAt,
		t.ApprovedBy, t.ApprovedAt, t.ConfirmedAt, t.ShippedAt, t.CompletedAt,
		t.RejectedBy, t.RejectedAt, t.RejectionReason, t.EstimatedDelivery, t.Notes, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: traslado %s", domain.ErrDuplicate, t.TransferNumber)
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	for i, it := range t.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_items (transfer_id, line_no, product_id, sku, product_name, quantity, unit_cost, unit_price, hold_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, i+1, it.ProductID, it.SKU, it.ProductName, it.Quantity, it.UnitCost, it.UnitPrice, it.HoldID,
		)
		if err != nil {
			return fmt.Errorf("insert transfer item %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera; toda transición pasa por este candado.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) getOne(ctx context.Context, query, id string) (*entity.StockTransfer, error) {
	if !isUUID(id) {
		return nil, domain.NotFound("traslado %s", id)
	}
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("traslado %s", id)
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if t.Items, err = r.items(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransferRepo) items(ctx context.Context, transferID string) ([]entity.TransferItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, sku, product_name, quantity, unit_cost, unit_price, hold_id
		FROM transfer_items WHERE transfer_id = $1 ORDER BY line_no`, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	var items []entity.TransferItem
	for rows.Next() {
		var it entity.TransferItem
		if err := rows.Scan(&it.ProductID, &it.SKU, &it.ProductName, &it.Quantity,
			&it.UnitCost, &it.UnitPrice, &it.HoldID); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update persiste la cabecera. Las líneas son inmutables tras la creación.
func (r *TransferRepo) Update(ctx context.Context, t *entity.StockTransfer) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE transfers SET status = $2, approved_by = $3, approved_at = $4, confirmed_at = $5,
			shipped_at = $6, completed_at = $7, rejected_by = $8, rejected_at = $9,
			rejection_reason = $10, updated_at = $11
		WHERE id = $1`,
		t.ID, string(t.Status), t.ApprovedBy, t.ApprovedAt, t.ConfirmedAt,
		t.ShippedAt, t.CompletedAt, t.RejectedBy, t.RejectedAt,
		t.RejectionReason, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("traslado %s", t.ID)
	}
	return nil
}

// List lista traslados filtrados, más recientes primero. Incluye las líneas.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+transferColumns+` FROM transfers
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR priority = $2)
		  AND ($3 = '' OR source_location_id = $3 OR dest_location_id = $3)
		ORDER BY requested_at DESC, transfer_number DESC
		LIMIT $4 OFFSET $5`,
		string(f.Status), string(f.Priority), f.LocationID, limitOrAll(f.Limit), f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	var list []*entity.StockTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Las líneas se cargan después de cerrar el cursor: una tx no admite dos consultas abiertas.
	for _, t := range list {
		if t.Items, err = r.items(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// NextNumber reserva el siguiente consecutivo del año. Dentro de una tx queda bloqueado hasta el commit.
func (r *TransferRepo) NextNumber(ctx context.Context, year int) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO transfer_counters (year, last_value) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = transfer_counters.last_value + 1
		RETURNING last_value`, year,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next transfer number: %w", err)
	}
	return n, nil
}

func (r *TransferRepo) AddEvent(ctx context.Context, e *entity.TransferEvent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfer_events (id, transfer_id, action, from_status, to_status, actor, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.TransferID, string(e.Action), string(e.FromStatus), string(e.ToStatus), e.Actor, e.Reason, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transfer event: %w", err)
	}
	return nil
}

// ListEvents devuelve el historial en orden cronológico.
func (r *TransferRepo) ListEvents(ctx context.Context, transferID string) ([]*entity.TransferEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, action, from_status, to_status, actor, reason, created_at
		FROM transfer_events WHERE transfer_id = $1 ORDER BY seq`, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer events: %w", err)
	}
	defer rows.Close()
	var out []*entity.TransferEvent
	for rows.Next() {
		var (
			e                    entity.TransferEvent
			action, from, toStat string
		)
		if err := rows.Scan(&e.ID, &e.TransferID, &action, &from, &toStat, &e.Actor, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transfer event: %w", err)
		}
		e.Action = entity.TransferAction(action)
		e.FromStatus = entity.TransferStatus(from)
		e.ToStatus = entity.TransferStatus(toStat)
		out = append(out, &e)
	}
	return out, rows.Err()
}
