// Package transfer implementa el motor de traslados de stock entre ubicaciones.
//
// Ciclo de vida: pending → approved → confirmed → in_transit → completed, con rechazo
// desde pending y cancelación desde pending o approved. Crear aparta el stock en el
// origen; completar descuenta en origen y acredita en destino en una sola transacción.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/tradenest-api/internal/application/dto"
	appinv "github.com/jhoicas/tradenest-api/internal/application/inventory"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/inventory"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
	"github.com/jhoicas/tradenest-api/pkg/logger"
)

// SystemActor actor registrado en las transiciones automáticas.
const SystemActor = "system"

// UseCase motor de traslados.
type UseCase struct {
	txRunner  appinv.TxRunner
	transfers repository.TransferRepository
	locations repository.LocationRepository
	ledger    *appinv.Ledger
	now       appinv.Clock
	log       *logger.Logger
}

// NewUseCase construye el motor. transfers y locations se usan para lecturas fuera de transacción.
func NewUseCase(
	txRunner appinv.TxRunner,
	transfers repository.TransferRepository,
	locations repository.LocationRepository,
	ledger *appinv.Ledger,
	now appinv.Clock,
	log *logger.Logger,
) *UseCase {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:  txRunner,
		transfers: transfers,
		locations: locations,
		ledger:    ledger,
		now:       now,
		log:       log,
	}
}

// Create valida el pedido, aparta todo el stock en el origen y registra el traslado en pending.
// Es todo o nada: si una línea no alcanza no queda ninguna retención ni traslado.
func (uc *UseCase) Create(ctx context.Context, actor string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	priority, err := validateCreate(in)
	if err != nil {
		return nil, err
	}
	src, err := uc.activeLocation(ctx, in.SourceLocationID, "origen")
	if err != nil {
		return nil, err
	}
	dst, err := uc.activeLocation(ctx, in.DestLocationID, "destino")
	if err != nil {
		return nil, err
	}

	var out *entity.StockTransfer
	err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		now := uc.now()
		t := &entity.StockTransfer{
			ID:                uuid.New().String(),
			SourceLocationID:  src.ID,
			SourceKind:        src.Kind,
			DestLocationID:    dst.ID,
			DestKind:          dst.Kind,
			Status:            entity.TransferStatusPending,
			Priority:          priority,
			RequestedBy:       actor,
			RequestedAt:       now,
			EstimatedDelivery: in.EstimatedDelivery,
			Notes:             strings.TrimSpace(in.Notes),
			UpdatedAt:         now,
		}

		keys := make([]appinv.BalanceKey, 0, len(in.Items))
		for _, it := range in.Items {
			keys = append(keys, appinv.BalanceKey{ProductID: it.ProductID, LocationID: src.ID})
		}
		if err := uc.ledger.LockBalancesInTx(ctx, repos, keys); err != nil {
			return err
		}

		t.Items = make([]entity.TransferItem, 0, len(in.Items))
		for _, it := range in.Items {
			p, err := repos.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if !p.Movable() {
				return domain.Invalid("producto %s no está aprobado", p.SKU)
			}
			bal, err := repos.Stock.Get(ctx, p.ID, src.ID)
			if err != nil {
				return err
			}
			if !bal.Exists() {
				return domain.Invalid("producto %s no tiene stock registrado en %s", p.SKU, src.ID)
			}
			hold, err := uc.ledger.ReserveInTx(ctx, repos, appinv.ReserveInput{
				ProductID:  p.ID,
				LocationID: src.ID,
				Quantity:   it.Quantity,
				TransferID: t.ID,
				Reference:  t.ID,
				Actor:      actor,
			})
			if err != nil {
				return err
			}
			t.Items = append(t.Items, entity.TransferItem{
				ProductID:   p.ID,
				SKU:         p.SKU,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				UnitCost:    p.CostPrice,
				UnitPrice:   p.SellingPrice,
				HoldID:      hold.ID,
			})
		}
		t.TotalValue, t.TotalCostValue = inventory.TransferTotals(t.Items)

		seq, err := repos.Transfers.NextNumber(ctx, now.Year())
		if err != nil {
			return err
		}
		t.TransferNumber = inventory.TransferNumber(now.Year(), seq)

		if err := repos.Transfers.Create(ctx, t); err != nil {
			return err
		}
		if err := repos.Transfers.AddEvent(ctx, &entity.TransferEvent{
			ID:         uuid.New().String(),
			TransferID: t.ID,
			ToStatus:   entity.TransferStatusPending,
			Actor:      actor,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", out.ID).Str("transfer_number", out.TransferNumber).
		Str("source", out.SourceLocationID).Str("dest", out.DestLocationID).
		Int("items", len(out.Items)).Str("actor", actor).Msg("traslado creado")
	return toTransferResponse(out), nil
}

// Approve pending → approved. Las retenciones se mantienen.
func (uc *UseCase) Approve(ctx context.Context, transferID, approverID string) (*dto.TransferResponse, error) {
	if strings.TrimSpace(approverID) == "" {
		return nil, domain.Invalid("el aprobador es obligatorio")
	}
	return uc.transition(ctx, transferID, entity.TransferActionApprove, approverID, "", nil)
}

// Confirm approved → confirmed. Revalida cada retención; si alguna ya no es válida el traslado
// pasa a rejected, se liberan las demás y se devuelve ErrConcurrencyConflict.
func (uc *UseCase) Confirm(ctx context.Context, transferID, actor string) (*dto.TransferResponse, error) {
	var invalid error
	var out *entity.StockTransfer
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		invalid = nil
		t, err := repos.Transfers.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if _, err := entity.NextTransferStatus(t.Status, entity.TransferActionConfirm); err != nil {
			return fmt.Errorf("traslado %s: %w", t.TransferNumber, err)
		}
		holds := make([]*entity.StockHold, 0, len(t.Items))
		for _, it := range t.Items {
			h, err := uc.ledger.ValidateHoldInTx(ctx, repos, it.HoldID)
			if err != nil {
				if !errors.Is(err, domain.ErrConcurrencyConflict) {
					return err
				}
				invalid = err
				break
			}
			holds = append(holds, h)
		}
		if invalid != nil {
			if err := uc.applyInTx(ctx, repos, t, entity.TransferActionInvalidate, actor, invalid.Error()); err != nil {
				return err
			}
			out = t
			return nil
		}
		// Confirmado, el stock queda comprometido hasta completar: las retenciones ya no vencen.
		for _, h := range holds {
			if err := uc.ledger.PinHoldInTx(ctx, repos, h); err != nil {
				return err
			}
		}
		if err := uc.applyInTx(ctx, repos, t, entity.TransferActionConfirm, actor, ""); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if invalid != nil {
		uc.log.Warn().Err(invalid).Str("transfer_id", out.ID).Str("transfer_number", out.TransferNumber).
			Msg("retención inválida al confirmar, traslado rechazado")
		return toTransferResponse(out), fmt.Errorf("traslado %s rechazado: %w", out.TransferNumber, invalid)
	}
	uc.logTransition(out, entity.TransferStatusApproved, actor)
	return toTransferResponse(out), nil
}

// Ship confirmed → in_transit. Solo marca el estado logístico.
func (uc *UseCase) Ship(ctx context.Context, transferID, actor string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, transferID, entity.TransferActionShip, actor, "", nil)
}

// Complete in_transit → completed. Descuenta cada retención en origen y acredita el destino;
// cualquier fallo revierte la transacción completa.
func (uc *UseCase) Complete(ctx context.Context, transferID, actor string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, transferID, entity.TransferActionComplete, actor, "",
		func(ctx context.Context, repos repository.Repositories, t *entity.StockTransfer) error {
			keys := make([]appinv.BalanceKey, 0, 2*len(t.Items))
			for _, it := range t.Items {
				keys = append(keys,
					appinv.BalanceKey{ProductID: it.ProductID, LocationID: t.SourceLocationID},
					appinv.BalanceKey{ProductID: it.ProductID, LocationID: t.DestLocationID})
			}
			if err := uc.ledger.LockBalancesInTx(ctx, repos, keys); err != nil {
				return err
			}
			for _, it := range t.Items {
				if err := uc.ledger.CommitDebitInTx(ctx, repos, it.HoldID, actor, t.ID); err != nil {
					return err
				}
				if err := uc.ledger.CommitCreditInTx(ctx, repos, it.ProductID, t.DestLocationID, it.Quantity, actor, t.ID); err != nil {
					return err
				}
			}
			return nil
		})
}

// Reject pending → rejected liberando las retenciones.
func (uc *UseCase) Reject(ctx context.Context, transferID, approverID, reason string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, transferID, entity.TransferActionReject, approverID, strings.TrimSpace(reason), uc.releaseHoldsBy(approverID))
}

// Cancel pending|approved → rejected liberando las retenciones.
func (uc *UseCase) Cancel(ctx context.Context, transferID, actor, reason string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, transferID, entity.TransferActionCancel, actor, strings.TrimSpace(reason), uc.releaseHoldsBy(actor))
}

// Expire pending|approved → rejected cuando sus retenciones vencieron. Lo usa el reaper.
func (uc *UseCase) Expire(ctx context.Context, transferID, reason string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, transferID, entity.TransferActionExpire, SystemActor, reason, uc.releaseHoldsBy(SystemActor))
}

// Get obtiene un traslado por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.TransferResponse, error) {
	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransferResponse(t), nil
}

// List lista traslados filtrando por estado, prioridad o ubicación (origen o destino).
func (uc *UseCase) List(ctx context.Context, in dto.TransferListRequest) (*dto.TransferListResponse, error) {
	in.DefaultPage()
	status := entity.TransferStatus(in.Status)
	if status != "" && !status.Valid() {
		return nil, domain.Invalid("estado %q no soportado", in.Status)
	}
	priority := entity.TransferPriority(in.Priority)
	if priority != "" && !priority.Valid() {
		return nil, domain.Invalid("prioridad %q no soportada", in.Priority)
	}
	list, err := uc.transfers.List(ctx, repository.TransferFilter{
		Status:     status,
		Priority:   priority,
		LocationID: in.LocationID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransferResponse(t))
	}
	return &dto.TransferListResponse{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

// Events devuelve el historial de estados del traslado en orden cronológico.
func (uc *UseCase) Events(ctx context.Context, transferID string) ([]dto.TransferEventResponse, error) {
	if _, err := uc.transfers.GetByID(ctx, transferID); err != nil {
		return nil, err
	}
	events, err := uc.transfers.ListEvents(ctx, transferID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransferEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.TransferEventResponse{
			Action:     string(e.Action),
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			Actor:      e.Actor,
			Reason:     e.Reason,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out, nil
}

type sideEffect func(ctx context.Context, repos repository.Repositories, t *entity.StockTransfer) error

// transition bloquea el traslado, valida la arista, ejecuta el efecto sobre el ledger y
// persiste el nuevo estado con su evento, todo en una transacción.
func (uc *UseCase) transition(
	ctx context.Context,
	transferID string,
	action entity.TransferAction,
	actor, reason string,
	effect sideEffect,
) (*dto.TransferResponse, error) {
	var out *entity.StockTransfer
	var from entity.TransferStatus
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		t, err := repos.Transfers.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if _, err := entity.NextTransferStatus(t.Status, action); err != nil {
			return fmt.Errorf("traslado %s: %w", t.TransferNumber, err)
		}
		from = t.Status
		if effect != nil {
			if err := effect(ctx, repos, t); err != nil {
				return err
			}
		}
		if err := uc.applyInTx(ctx, repos, t, action, actor, reason); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logTransition(out, from, actor)
	return toTransferResponse(out), nil
}

// applyInTx cambia el estado, lo persiste y anota el evento. Al invalidar se descartan
// primero las retenciones que sigan activas.
func (uc *UseCase) applyInTx(
	ctx context.Context,
	repos repository.Repositories,
	t *entity.StockTransfer,
	action entity.TransferAction,
	actor, reason string,
) error {
	if action == entity.TransferActionInvalidate {
		for _, it := range t.Items {
			if err := uc.ledger.DropHoldInTx(ctx, repos, it.HoldID, actor, t.ID); err != nil {
				return err
			}
		}
	}
	ev, err := t.Apply(action, actor, reason, uc.now())
	if err != nil {
		return err
	}
	if err := repos.Transfers.Update(ctx, t); err != nil {
		return err
	}
	ev.ID = uuid.New().String()
	return repos.Transfers.AddEvent(ctx, ev)
}

// releaseHoldsBy libera las retenciones activas del traslado. Las ya liberadas se ignoran.
func (uc *UseCase) releaseHoldsBy(actor string) sideEffect {
	return func(ctx context.Context, repos repository.Repositories, t *entity.StockTransfer) error {
		for _, it := range t.Items {
			err := uc.ledger.ReleaseInTx(ctx, repos, it.HoldID, actor, t.ID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}
		return nil
	}
}

func (uc *UseCase) activeLocation(ctx context.Context, id, role string) (*entity.Location, error) {
	loc, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !loc.IsActive {
		return nil, domain.Invalid("ubicación de %s %s inactiva", role, id)
	}
	return loc, nil
}

func (uc *UseCase) logTransition(t *entity.StockTransfer, from entity.TransferStatus, actor string) {
	uc.log.Info().Str("transfer_id", t.ID).Str("transfer_number", t.TransferNumber).
		Str("from", string(from)).Str("to", string(t.Status)).Str("actor", actor).
		Msg("traslado actualizado")
}

func validateCreate(in dto.CreateTransferRequest) (entity.TransferPriority, error) {
	if strings.TrimSpace(in.SourceLocationID) == "" || strings.TrimSpace(in.DestLocationID) == "" {
		return "", domain.Invalid("origen y destino son obligatorios")
	}
	if in.SourceLocationID == in.DestLocationID {
		return "", domain.Invalid("origen y destino deben ser distintos")
	}
	if len(in.Items) == 0 {
		return "", domain.Invalid("el traslado debe tener al menos una línea")
	}
	seen := make(map[string]struct{}, len(in.Items))
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return "", domain.Invalid("línea %d: producto obligatorio", i+1)
		}
		if it.Quantity <= 0 {
			return "", domain.Invalid("línea %d: la cantidad debe ser positiva", i+1)
		}
		if _, dup := seen[it.ProductID]; dup {
			return "", domain.Invalid("línea %d: producto %s repetido", i+1, it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}
	priority := entity.TransferPriority(strings.ToLower(strings.TrimSpace(in.Priority)))
	if priority == "" {
		priority = entity.TransferPriorityMedium
	}
	if !priority.Valid() {
		return "", domain.Invalid("prioridad %q no soportada", in.Priority)
	}
	return priority, nil
}

func toTransferResponse(t *entity.StockTransfer) *dto.TransferResponse {
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.TransferItemResponse{
			ProductID:   it.ProductID,
			SKU:         it.SKU,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
			UnitPrice:   it.UnitPrice,
			LineTotal:   inventory.StockValue(it.Quantity, it.UnitPrice),
		})
	}
	return &dto.TransferResponse{
		ID:                t.ID,
		TransferNumber:    t.TransferNumber,
		SourceLocationID:  t.SourceLocationID,
		SourceKind:        string(t.SourceKind),
		DestLocationID:    t.DestLocationID,
		DestKind:          string(t.DestKind),
		Items:             items,
		TotalValue:        t.TotalValue,
		TotalCostValue:    t.TotalCostValue,
		Status:            string(t.Status),
		Priority:          string(t.Priority),
		RequestedBy:       t.RequestedBy,
		RequestedAt:       t.RequestedAt,
		ApprovedBy:        t.ApprovedBy,
		ApprovedAt:        t.ApprovedAt,
		ConfirmedAt:       t.ConfirmedAt,
		ShippedAt:         t.ShippedAt,
		CompletedAt:       t.CompletedAt,
		RejectedBy:        t.RejectedBy,
		RejectedAt:        t.RejectedAt,
		RejectionReason:   t.RejectionReason,
		EstimatedDelivery: t.EstimatedDelivery,
		Notes:             t.Notes,
		UpdatedAt:         t.UpdatedAt,
	}
}
