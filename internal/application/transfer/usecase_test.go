package transfer_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tradenest-api/internal/application/dto"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

func createReq(items ...dto.TransferItemRequest) dto.CreateTransferRequest {
	return dto.CreateTransferRequest{SourceLocationID: warehouse, DestLocationID: outlet, Items: items}
}

func item(productID string, qty int64) dto.TransferItemRequest {
	return dto.TransferItemRequest{ProductID: productID, Quantity: qty}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida completo
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ApartaStockSinMoverCantidad(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "80", "100.50")

	out, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 30)))
	require.NoError(t, err)

	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, "medium", out.Priority, "prioridad por defecto")
	assert.Equal(t, "TR-2026-001", out.TransferNumber)
	assert.True(t, decimal.RequireFromString("3015").Equal(out.TotalValue), "30 * 100.50")
	assert.True(t, decimal.RequireFromString("2400").Equal(out.TotalCostValue))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "SKU-P1", out.Items[0].SKU)

	b := f.balance(t, "P1", warehouse)
	assert.EqualValues(t, 100, b.Quantity, "crear no cambia la cantidad")
	assert.EqualValues(t, 30, b.ReservedQuantity)
}

func TestFlujoCompleto_MueveStockDeOrigenADestino(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "80", "100")

	created, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 30)))
	require.NoError(t, err)
	id := created.ID

	_, err = f.uc.Approve(f.ctx, id, approver)
	require.NoError(t, err)
	_, err = f.uc.Confirm(f.ctx, id, requester)
	require.NoError(t, err)
	_, err = f.uc.Ship(f.ctx, id, requester)
	require.NoError(t, err)
	done, err := f.uc.Complete(f.ctx, id, requester)
	require.NoError(t, err)

	assert.Equal(t, "completed", done.Status)
	assert.NotNil(t, done.CompletedAt)
	assert.Equal(t, approver, done.ApprovedBy)

	src := f.balance(t, "P1", warehouse)
	dst := f.balance(t, "P1", outlet)
	assert.EqualValues(t, 70, src.Quantity)
	assert.EqualValues(t, 0, src.ReservedQuantity)
	assert.EqualValues(t, 30, dst.Quantity)
	assert.EqualValues(t, 100, src.Quantity+dst.Quantity, "el stock total se conserva")

	events, err := f.uc.Events(f.ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, "pending", events[0].ToStatus)
	assert.Equal(t, "completed", events[4].ToStatus)
	assert.Equal(t, "complete", events[4].Action)
}

func TestCreate_StockInsuficienteNoDejaRastro(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 70, "10", "20")

	_, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 150)))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := f.reads.Transfers.List(f.ctx, repository.TransferFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "no se crea ningún traslado")
	b := f.balance(t, "P1", warehouse)
	assert.EqualValues(t, 70, b.Quantity)
	assert.EqualValues(t, 0, b.ReservedQuantity)
}

func TestCreate_TodoONada(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 50, "10", "20")
	f.seedProduct(t, "P2", entity.ProductStatusApproved, 5, "10", "20")

	_, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 10), item("P2", 6)))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.EqualValues(t, 0, f.balance(t, "P1", warehouse).ReservedQuantity, "la primera línea también se revierte")
	movs, err := f.reads.Movements.List(f.ctx, repository.MovementFilter{ProductID: "P1"})
	require.NoError(t, err)
	assert.Len(t, movs, 1, "solo el movimiento de apertura")
}

func TestReject_LiberaRetenciones(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")

	created, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 40)))
	require.NoError(t, err)

	out, err := f.uc.Reject(f.ctx, created.ID, approver, "")
	require.NoError(t, err)

	assert.Equal(t, "rejected", out.Status)
	assert.Equal(t, approver, out.RejectedBy)
	b := f.balance(t, "P1", warehouse)
	assert.EqualValues(t, 100, b.Quantity)
	assert.EqualValues(t, 0, b.ReservedQuantity)
}

func TestComplete_DesdePendingFalla(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")
	created, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 10)))
	require.NoError(t, err)

	_, err = f.uc.Complete(f.ctx, created.ID, requester)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	b := f.balance(t, "P1", warehouse)
	assert.EqualValues(t, 100, b.Quantity)
	assert.EqualValues(t, 10, b.ReservedQuantity)
	assert.False(t, f.balance(t, "P1", outlet).Exists(), "el destino no se toca")
}

func TestComplete_FalloParcialRevierteTodo(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")
	f.seedProduct(t, "P2", entity.ProductStatusApproved, 100, "10", "20")
	created, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 10), item("P2", 5)))
	require.NoError(t, err)
	id := created.ID

	_, err = f.uc.Approve(f.ctx, id, approver)
	require.NoError(t, err)
	_, err = f.uc.Confirm(f.ctx, id, requester)
	require.NoError(t, err)
	_, err = f.uc.Ship(f.ctx, id, requester)
	require.NoError(t, err)

	// La retención de la segunda línea desaparece antes de recibir: la primera línea
	// alcanza a debitar y acreditar dentro de la transacción antes del fallo.
	tr, err := f.reads.Transfers.GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Release(f.ctx, tr.Items[1].HoldID, "otro"))

	_, err = f.uc.Complete(f.ctx, id, requester)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	src := f.balance(t, "P1", warehouse)
	assert.EqualValues(t, 100, src.Quantity, "el débito de la primera línea se revierte")
	assert.EqualValues(t, 10, src.ReservedQuantity)
	assert.False(t, f.balance(t, "P1", outlet).Exists(), "el crédito de la primera línea se revierte")

	stored, err := f.uc.Get(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "in_transit", stored.Status)

	hold, err := f.reads.Holds.GetForUpdate(f.ctx, tr.Items[0].HoldID)
	require.NoError(t, err)
	assert.True(t, hold.Active(), "la retención de la primera línea sigue vigente")

	movs, err := f.reads.Movements.List(f.ctx, repository.MovementFilter{ProductID: "P1", Reference: id})
	require.NoError(t, err)
	for _, m := range movs {
		assert.NotEqual(t, entity.MovementTypeDEBIT, m.Type)
		assert.NotEqual(t, entity.MovementTypeCREDIT, m.Type)
	}

	events, err := f.uc.Events(f.ctx, id)
	require.NoError(t, err)
	assert.Len(t, events, 4, "no se registra la transición fallida")
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones ilegales y terminales
// ──────────────────────────────────────────────────────────────────────────────

func TestTransiciones_Ilegales(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")
	created, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 10)))
	require.NoError(t, err)
	id := created.ID

	_, err = f.uc.Confirm(f.ctx, id, requester)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "confirm exige approved")
	_, err = f.uc.Ship(f.ctx, id, requester)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.uc.Approve(f.ctx, id, approver)
	require.NoError(t, err)
	_, err = f.uc.Reject(f.ctx, id, approver, "tarde")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "reject solo desde pending")

	_, err = f.uc.Cancel(f.ctx, id, requester, "ya no se necesita")
	require.NoError(t, err)
	_, err = f.uc.Cancel(f.ctx, id, requester, "otra vez")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "rejected es terminal")
	assert.EqualValues(t, 0, f.balance(t, "P1", warehouse).ReservedQuantity)
}

func TestCancel_DesdeConfirmedNoPermitido(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")
	created, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 10)))
	require.NoError(t, err)
	_, err = f.uc.Approve(f.ctx, created.ID, approver)
	require.NoError(t, err)
	_, err = f.uc.Confirm(f.ctx, created.ID, requester)
	require.NoError(t, err)

	_, err = f.uc.Cancel(f.ctx, created.ID, requester, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones de creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")
	f.seedProduct(t, "PEND", entity.ProductStatusPending, 0, "10", "20")

	cases := []struct {
		name string
		req  dto.CreateTransferRequest
		want error
	}{
		{"mismo origen y destino", dto.CreateTransferRequest{SourceLocationID: warehouse, DestLocationID: warehouse, Items: []dto.TransferItemRequest{item("P1", 1)}}, domain.ErrInvalidInput},
		{"sin líneas", createReq(), domain.ErrInvalidInput},
		{"cantidad cero", createReq(item("P1", 0)), domain.ErrInvalidInput},
		{"producto repetido", createReq(item("P1", 1), item("P1", 2)), domain.ErrInvalidInput},
		{"prioridad desconocida", dto.CreateTransferRequest{SourceLocationID: warehouse, DestLocationID: outlet, Items: []dto.TransferItemRequest{item("P1", 1)}, Priority: "ya"}, domain.ErrInvalidInput},
		{"producto pendiente", createReq(item("PEND", 1)), domain.ErrInvalidInput},
		{"producto inexistente", createReq(item("NOPE", 1)), domain.ErrNotFound},
		{"destino inactivo", dto.CreateTransferRequest{SourceLocationID: warehouse, DestLocationID: closedLoc, Items: []dto.TransferItemRequest{item("P1", 1)}}, domain.ErrInvalidInput},
		{"origen inexistente", dto.CreateTransferRequest{SourceLocationID: "WH-X", DestLocationID: outlet, Items: []dto.TransferItemRequest{item("P1", 1)}}, domain.ErrNotFound},
		{"sin saldo en origen", dto.CreateTransferRequest{SourceLocationID: outlet, DestLocationID: warehouse, Items: []dto.TransferItemRequest{item("P1", 1)}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(f.ctx, requester, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.EqualValues(t, 0, f.balance(t, "P1", warehouse).ReservedQuantity)
}

func TestCreate_NumeracionConsecutiva(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")

	first, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 1)))
	require.NoError(t, err)
	second, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 1)))
	require.NoError(t, err)

	assert.Equal(t, "TR-2026-001", first.TransferNumber)
	assert.Equal(t, "TR-2026-002", second.TransferNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// Confirmación con retención inválida
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirm_RetencionLiberadaRechazaTraslado(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")
	f.seedProduct(t, "P2", entity.ProductStatusApproved, 100, "10", "20")
	created, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 10), item("P2", 5)))
	require.NoError(t, err)
	_, err = f.uc.Approve(f.ctx, created.ID, approver)
	require.NoError(t, err)

	// Alguien libera por fuera la retención de la primera línea.
	tr, err := f.reads.Transfers.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Release(f.ctx, tr.Items[0].HoldID, "otro"))

	out, err := f.uc.Confirm(f.ctx, created.ID, requester)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	require.NotNil(t, out)
	assert.Equal(t, "rejected", out.Status)

	stored, err := f.uc.Get(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", stored.Status, "el rechazo queda persistido")
	assert.EqualValues(t, 0, f.balance(t, "P1", warehouse).ReservedQuantity)
	assert.EqualValues(t, 0, f.balance(t, "P2", warehouse).ReservedQuantity, "las demás retenciones se liberan")

	events, err := f.uc.Events(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "invalidate", events[len(events)-1].Action)
}

func TestConfirm_FijaRetencionesSinVencimiento(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")
	created, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 10)))
	require.NoError(t, err)
	_, err = f.uc.Approve(f.ctx, created.ID, approver)
	require.NoError(t, err)
	_, err = f.uc.Confirm(f.ctx, created.ID, requester)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	expired, err := f.reads.Holds.ListExpired(f.ctx, f.clock.Now(), 0)
	require.NoError(t, err)
	assert.Empty(t, expired, "una retención confirmada no vence")

	_, err = f.uc.Ship(f.ctx, created.ID, requester)
	require.NoError(t, err)
	_, err = f.uc.Complete(f.ctx, created.ID, requester)
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ConcurrenteNoSobrevende(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")

	const workers = 10
	var ok, short atomic.Int32
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 30)))
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				short.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 3, ok.Load(), "solo caben tres traslados de 30 en 100")
	assert.EqualValues(t, workers-3, short.Load())
	b := f.balance(t, "P1", warehouse)
	assert.EqualValues(t, 90, b.ReservedQuantity)
	assert.LessOrEqual(t, b.ReservedQuantity, b.Quantity)
}

func TestCompleteYCancel_ConcurrentesSoloUnoGana(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")
	created, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 25)))
	require.NoError(t, err)
	_, err = f.uc.Approve(f.ctx, created.ID, approver)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var successes atomic.Int32
	for _, op := range []func() error{
		func() error { _, err := f.uc.Confirm(f.ctx, created.ID, requester); return err },
		func() error { _, err := f.uc.Cancel(f.ctx, created.ID, requester, "carrera"); return err },
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if op() == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes.Load(), "una sola transición gana")
	stored, err := f.uc.Get(f.ctx, created.ID)
	require.NoError(t, err)
	b := f.balance(t, "P1", warehouse)
	switch stored.Status {
	case "confirmed":
		assert.EqualValues(t, 25, b.ReservedQuantity)
	case "rejected":
		assert.EqualValues(t, 0, b.ReservedQuantity)
	default:
		t.Fatalf("estado inesperado %s", stored.Status)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Listados
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorEstadoYUbicacion(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")
	a, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 1)))
	require.NoError(t, err)
	_, err = f.uc.Create(f.ctx, requester, dto.CreateTransferRequest{
		SourceLocationID: warehouse, DestLocationID: outlet, Priority: "urgent",
		Items: []dto.TransferItemRequest{item("P1", 2)},
	})
	require.NoError(t, err)
	_, err = f.uc.Reject(f.ctx, a.ID, approver, "")
	require.NoError(t, err)

	pending, err := f.uc.List(f.ctx, dto.TransferListRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, pending.Items, 1)
	assert.Equal(t, "urgent", pending.Items[0].Priority)

	byLoc, err := f.uc.List(f.ctx, dto.TransferListRequest{LocationID: outlet})
	require.NoError(t, err)
	assert.Len(t, byLoc.Items, 2, "el destino también cuenta")

	_, err = f.uc.List(f.ctx, dto.TransferListRequest{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
