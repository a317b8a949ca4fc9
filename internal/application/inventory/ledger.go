package inventory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/tradenest-api/internal/application/dto"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
	"github.com/jhoicas/tradenest-api/pkg/logger"
)

// LedgerConfig parámetros del ledger de stock.
type LedgerConfig struct {
	HoldTTL time.Duration // 0 = las retenciones no expiran
	Now     Clock
}

// Ledger es el único componente que modifica cantidades de stock.
// Cada operación bloquea la fila (producto, ubicación) con GetForUpdate y la guarda con
// control de versión; todo cambio queda en el diario de movimientos.
// Las variantes *InTx trabajan sobre la transacción del llamador para que otros casos de uso
// combinen varias operaciones en una sola unidad atómica.
type Ledger struct {
	tx      TxRunner
	reads   repository.Repositories
	holdTTL time.Duration
	now     Clock
	log     *logger.Logger
}

// NewLedger construye el ledger. reads se usa solo para consultas fuera de transacción.
func NewLedger(tx TxRunner, reads repository.Repositories, cfg LedgerConfig, log *logger.Logger) *Ledger {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{tx: tx, reads: reads, holdTTL: cfg.HoldTTL, now: cfg.Now, log: log}
}

// ReserveInput datos para apartar stock.
type ReserveInput struct {
	ProductID  string
	LocationID string
	Quantity   int64
	TransferID string // vacío para retenciones sueltas
	Reference  string
	Actor      string
}

// BalanceKey identifica una fila de saldo.
type BalanceKey struct {
	ProductID  string
	LocationID string
}

// Balance devuelve el saldo actual. Un par sin fila devuelve cantidades en cero.
func (l *Ledger) Balance(ctx context.Context, productID, locationID string) (*dto.BalanceResponse, error) {
	if productID == "" || locationID == "" {
		return nil, domain.Invalid("producto y ubicación son obligatorios")
	}
	if _, err := l.reads.Products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := l.reads.Locations.GetByID(ctx, locationID); err != nil {
		return nil, err
	}
	b, err := l.reads.Stock.Get(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	return toBalanceResponse(b), nil
}

// Movements consulta el diario de movimientos.
func (l *Ledger) Movements(ctx context.Context, in dto.MovementListRequest) (*dto.MovementListResponse, error) {
	in.DefaultPage()
	list, err := l.reads.Movements.List(ctx, repository.MovementFilter{
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Reference:  in.Reference,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

// Reserve aparta stock en su propia transacción y devuelve el id de la retención.
func (l *Ledger) Reserve(ctx context.Context, in ReserveInput) (string, error) {
	var holdID string
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		h, err := l.ReserveInTx(ctx, repos, in)
		if err != nil {
			return err
		}
		holdID = h.ID
		return nil
	})
	return holdID, err
}

// Release libera una retención. Liberar una retención ya liberada o consumida no hace nada.
func (l *Ledger) Release(ctx context.Context, holdID, actor string) error {
	return l.tx.Run(ctx, func(repos repository.Repositories) error {
		return l.ReleaseInTx(ctx, repos, holdID, actor, "")
	})
}

// CommitDebit consume una retención descontando cantidad y reservado en el origen.
func (l *Ledger) CommitDebit(ctx context.Context, holdID, actor string) error {
	return l.tx.Run(ctx, func(repos repository.Repositories) error {
		return l.CommitDebitInTx(ctx, repos, holdID, actor, "")
	})
}

// CommitCredit suma qty en destino creando la fila si no existe.
func (l *Ledger) CommitCredit(ctx context.Context, productID, locationID string, qty int64, reference, actor string) error {
	return l.tx.Run(ctx, func(repos repository.Repositories) error {
		return l.CommitCreditInTx(ctx, repos, productID, locationID, qty, actor, reference)
	})
}

// Debit descuenta stock por una venta POS. Solo consume disponible, nunca lo reservado.
func (l *Ledger) Debit(ctx context.Context, in dto.SaleDebitRequest, actor string) (*dto.BalanceResponse, error) {
	if in.ProductID == "" || in.LocationID == "" {
		return nil, domain.Invalid("producto y ubicación son obligatorios")
	}
	if in.Quantity <= 0 {
		return nil, domain.Invalid("la cantidad debe ser positiva")
	}
	var out *entity.StockBalance
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		product, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if !product.Movable() {
			return domain.Invalid("producto %s no está aprobado para la venta", product.SKU)
		}
		loc, err := repos.Locations.GetByID(ctx, in.LocationID)
		if err != nil {
			return err
		}
		if !loc.IsActive {
			return domain.Invalid("ubicación %s inactiva", loc.ID)
		}
		ref := in.Reference
		if ref == "" {
			ref = "sale-" + uuid.New().String()
		}
		out, err = l.mutate(ctx, repos, in.ProductID, in.LocationID, entity.MovementTypeSALE, ref, actor,
			func(b *entity.StockBalance) error { return b.Debit(in.Quantity) })
		return err
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("product_id", in.ProductID).Str("location_id", in.LocationID).
		Int64("quantity", in.Quantity).Msg("venta descontada del stock")
	return toBalanceResponse(out), nil
}

// OpenInTx inicializa el saldo de un producto recién aprobado con su stock inicial.
// Siempre deja la fila creada, aunque qty sea cero.
func (l *Ledger) OpenInTx(ctx context.Context, repos repository.Repositories, productID, locationID string, qty int64, actor string) error {
	if qty < 0 {
		return domain.Invalid("el stock inicial no puede ser negativo")
	}
	_, err := l.mutate(ctx, repos, productID, locationID, entity.MovementTypeOPENING, productID, actor,
		func(b *entity.StockBalance) error {
			if qty == 0 {
				return nil
			}
			return b.Credit(qty)
		})
	return err
}

// ReserveInTx aparta in.Quantity y registra la retención.
func (l *Ledger) ReserveInTx(ctx context.Context, repos repository.Repositories, in ReserveInput) (*entity.StockHold, error) {
	if in.Quantity <= 0 {
		return nil, domain.Invalid("la cantidad a reservar debe ser positiva")
	}
	now := l.now()
	hold := &entity.StockHold{
		ID:         uuid.New().String(),
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Quantity:   in.Quantity,
		Status:     entity.HoldStatusActive,
		TransferID: in.TransferID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if l.holdTTL > 0 {
		exp := now.Add(l.holdTTL)
		hold.ExpiresAt = &exp
	}
	ref := in.Reference
	if ref == "" {
		ref = hold.ID
	}
	if _, err := l.mutate(ctx, repos, in.ProductID, in.LocationID, entity.MovementTypeRESERVE, ref, in.Actor,
		func(b *entity.StockBalance) error { return b.Reserve(in.Quantity) }); err != nil {
		return nil, err
	}
	if err := repos.Holds.Create(ctx, hold); err != nil {
		return nil, err
	}
	return hold, nil
}

// ReleaseInTx devuelve al disponible lo apartado por la retención. Es idempotente.
func (l *Ledger) ReleaseInTx(ctx context.Context, repos repository.Repositories, holdID, actor, reference string) error {
	h, err := repos.Holds.GetForUpdate(ctx, holdID)
	if err != nil {
		return err
	}
	if !h.Active() {
		return nil
	}
	if reference == "" {
		reference = h.ID
	}
	if _, err := l.mutate(ctx, repos, h.ProductID, h.LocationID, entity.MovementTypeRELEASE, reference, actor,
		func(b *entity.StockBalance) error { return b.Release(h.Quantity) }); err != nil {
		return err
	}
	h.Status = entity.HoldStatusReleased
	h.UpdatedAt = l.now()
	return repos.Holds.Update(ctx, h)
}

// DropHoldInTx libera lo que el saldo todavía tenga reservado para una retención inconsistente
// y la marca como liberada, sin fallar si el saldo ya no la cubre.
func (l *Ledger) DropHoldInTx(ctx context.Context, repos repository.Repositories, holdID, actor, reference string) error {
	h, err := repos.Holds.GetForUpdate(ctx, holdID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if !h.Active() {
		return nil
	}
	if reference == "" {
		reference = h.ID
	}
	if _, err := l.mutate(ctx, repos, h.ProductID, h.LocationID, entity.MovementTypeRELEASE, reference, actor,
		func(b *entity.StockBalance) error { return b.Release(min(h.Quantity, b.ReservedQuantity)) }); err != nil {
		return err
	}
	h.Status = entity.HoldStatusReleased
	h.UpdatedAt = l.now()
	return repos.Holds.Update(ctx, h)
}

// CommitDebitInTx consume la retención: baja cantidad y reservado por el monto retenido.
func (l *Ledger) CommitDebitInTx(ctx context.Context, repos repository.Repositories, holdID, actor, reference string) error {
	h, err := repos.Holds.GetForUpdate(ctx, holdID)
	if err != nil {
		return err
	}
	if !h.Active() {
		return fmt.Errorf("%w: retención %s en estado %s", domain.ErrConcurrencyConflict, h.ID, h.Status)
	}
	if reference == "" {
		reference = h.ID
	}
	if _, err := l.mutate(ctx, repos, h.ProductID, h.LocationID, entity.MovementTypeDEBIT, reference, actor,
		func(b *entity.StockBalance) error { return b.ConsumeReserved(h.Quantity) }); err != nil {
		return err
	}
	h.Status = entity.HoldStatusCommitted
	h.UpdatedAt = l.now()
	return repos.Holds.Update(ctx, h)
}

// CommitCreditInTx suma qty en la ubicación destino.
func (l *Ledger) CommitCreditInTx(ctx context.Context, repos repository.Repositories, productID, locationID string, qty int64, actor, reference string) error {
	_, err := l.mutate(ctx, repos, productID, locationID, entity.MovementTypeCREDIT, reference, actor,
		func(b *entity.StockBalance) error { return b.Credit(qty) })
	return err
}

// DebitInTx descuenta disponible sin retención previa.
func (l *Ledger) DebitInTx(ctx context.Context, repos repository.Repositories, productID, locationID string, qty int64, actor, reference string) error {
	_, err := l.mutate(ctx, repos, productID, locationID, entity.MovementTypeSALE, reference, actor,
		func(b *entity.StockBalance) error { return b.Debit(qty) })
	return err
}

// ValidateHoldInTx verifica que la retención siga activa, vigente y cubierta por el saldo.
// Cualquier inconsistencia se reporta como domain.ErrConcurrencyConflict.
func (l *Ledger) ValidateHoldInTx(ctx context.Context, repos repository.Repositories, holdID string) (*entity.StockHold, error) {
	h, err := repos.Holds.GetForUpdate(ctx, holdID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: retención %s no existe", domain.ErrConcurrencyConflict, holdID)
		}
		return nil, err
	}
	if !h.Active() {
		return h, fmt.Errorf("%w: retención %s en estado %s", domain.ErrConcurrencyConflict, h.ID, h.Status)
	}
	if h.Expired(l.now()) {
		return h, fmt.Errorf("%w: retención %s vencida", domain.ErrConcurrencyConflict, h.ID)
	}
	b, err := repos.Stock.GetForUpdate(ctx, h.ProductID, h.LocationID)
	if err != nil {
		return h, err
	}
	if b.ReservedQuantity < h.Quantity || b.Quantity < b.ReservedQuantity {
		return h, fmt.Errorf("%w: saldo %d/%d no cubre la retención %s de %d",
			domain.ErrConcurrencyConflict, b.Quantity, b.ReservedQuantity, h.ID, h.Quantity)
	}
	return h, nil
}

// PinHoldInTx quita el vencimiento de una retención; se usa cuando el traslado ya fue confirmado.
func (l *Ledger) PinHoldInTx(ctx context.Context, repos repository.Repositories, h *entity.StockHold) error {
	if h.ExpiresAt == nil {
		return nil
	}
	h.ExpiresAt = nil
	h.UpdatedAt = l.now()
	return repos.Holds.Update(ctx, h)
}

// LockBalancesInTx bloquea varias filas de saldo en orden canónico (ubicación, producto)
// para que dos transacciones que tocan las mismas filas no se bloqueen mutuamente.
func (l *Ledger) LockBalancesInTx(ctx context.Context, repos repository.Repositories, keys []BalanceKey) error {
	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, func(a, b BalanceKey) int {
		if c := cmp.Compare(a.LocationID, b.LocationID); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	for _, k := range slices.Compact(sorted) {
		if _, err := repos.Stock.GetForUpdate(ctx, k.ProductID, k.LocationID); err != nil {
			return err
		}
	}
	return nil
}

// mutate bloquea la fila, aplica fn, la guarda con control de versión y anota el movimiento.
func (l *Ledger) mutate(
	ctx context.Context,
	repos repository.Repositories,
	productID, locationID, movementType, reference, actor string,
	fn func(b *entity.StockBalance) error,
) (*entity.StockBalance, error) {
	b, err := repos.Stock.GetForUpdate(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	prevQty, prevReserved := b.Quantity, b.ReservedQuantity
	if err := fn(b); err != nil {
		return nil, err
	}
	now := l.now()
	b.UpdatedAt = now
	if err := repos.Stock.Save(ctx, b); err != nil {
		if errors.Is(err, domain.ErrStaleVersion) {
			l.log.Warn().Str("product_id", productID).Str("location_id", locationID).
				Str("movement", movementType).Msg("saldo modificado por otra transacción")
		}
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		Reference:     reference,
		ProductID:     productID,
		LocationID:    locationID,
		Type:          movementType,
		QuantityDelta: b.Quantity - prevQty,
		ReservedDelta: b.ReservedQuantity - prevReserved,
		BalanceAfter:  b.Quantity,
		CreatedAt:     now,
		CreatedBy:     actor,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return b, nil
}

func toBalanceResponse(b *entity.StockBalance) *dto.BalanceResponse {
	out := &dto.BalanceResponse{
		ProductID:        b.ProductID,
		LocationID:       b.LocationID,
		Quantity:         b.Quantity,
		ReservedQuantity: b.ReservedQuantity,
		Available:        b.Available(),
		Version:          b.Version,
	}
	if b.Exists() {
		at := b.UpdatedAt
		out.UpdatedAt = &at
	}
	return out
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		Reference:     m.Reference,
		ProductID:     m.ProductID,
		LocationID:    m.LocationID,
		Type:          m.Type,
		QuantityDelta: m.QuantityDelta,
		ReservedDelta: m.ReservedDelta,
		BalanceAfter:  m.BalanceAfter,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}
