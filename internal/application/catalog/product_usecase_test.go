package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tradenest-api/internal/application/catalog"
	"github.com/jhoicas/tradenest-api/internal/application/dto"
	appinv "github.com/jhoicas/tradenest-api/internal/application/inventory"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/inventory"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
	"github.com/jhoicas/tradenest-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var submittedAt = time.Date(2026, 1, 20, 15, 4, 5, 0, time.UTC)

type catalogEnv struct {
	ctx   context.Context
	reads repository.Repositories
	uc    *catalog.ProductUseCase
}

func newCatalogEnv(t *testing.T) *catalogEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	reads := store.Repositories()
	now := func() time.Time { return submittedAt }
	tx := memory.NewTxRunner(store)
	ledger := appinv.NewLedger(tx, reads, appinv.LedgerConfig{Now: now}, nil)

	locs := catalog.NewLocationUseCase(reads.Locations)
	_, err := locs.Register(ctx, dto.RegisterLocationRequest{ID: "WH-1", Kind: "warehouse", Name: "Bodega Norte"})
	require.NoError(t, err)
	inactive := false
	_, err = locs.Register(ctx, dto.RegisterLocationRequest{ID: "OUT-OFF", Kind: "outlet", Name: "Local cerrado", IsActive: &inactive})
	require.NoError(t, err)

	return &catalogEnv{
		ctx:   ctx,
		reads: reads,
		uc:    catalog.NewProductUseCase(tx, reads.Products, reads.Locations, ledger, now, nil),
	}
}

func validSubmit() dto.SubmitProductRequest {
	return dto.SubmitProductRequest{
		SKU:               "LAMP-001",
		Name:              "Lámpara de escritorio",
		Category:          "Iluminación",
		Brand:             "Lumen",
		CostPrice:         decimal.RequireFromString("45000"),
		SellingPrice:      decimal.RequireFromString("69900"),
		LowStockThreshold: 5,
		InitialStock:      25,
		LocationID:        "WH-1",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Submit
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_QuedaPendienteSinSaldo(t *testing.T) {
	env := newCatalogEnv(t)

	out, err := env.uc.Submit(env.ctx, "staff-1", validSubmit())
	require.NoError(t, err)

	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, "LAMP-001", out.SKU)
	assert.Equal(t, "warehouse", out.LocationKind)
	assert.Equal(t, "staff-1", out.SubmittedBy)

	b, err := env.reads.Stock.Get(env.ctx, out.ID, "WH-1")
	require.NoError(t, err)
	assert.False(t, b.Exists(), "un producto pendiente no tiene saldo")

	pending, err := env.uc.ListPending(env.ctx, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, out.ID, pending.Items[0].ID)
}

func TestSubmit_Validaciones(t *testing.T) {
	env := newCatalogEnv(t)

	cases := []struct {
		name   string
		mutate func(r *dto.SubmitProductRequest)
		want   error
	}{
		{"sin nombre", func(r *dto.SubmitProductRequest) { r.Name = " " }, domain.ErrInvalidInput},
		{"sin categoría", func(r *dto.SubmitProductRequest) { r.Category = "" }, domain.ErrInvalidInput},
		{"precio bajo el costo", func(r *dto.SubmitProductRequest) { r.SellingPrice = decimal.RequireFromString("44999.99") }, domain.ErrInvalidInput},
		{"costo negativo", func(r *dto.SubmitProductRequest) { r.CostPrice = decimal.NewFromInt(-1) }, domain.ErrInvalidInput},
		{"stock inicial negativo", func(r *dto.SubmitProductRequest) { r.InitialStock = -3 }, domain.ErrInvalidInput},
		{"umbral negativo", func(r *dto.SubmitProductRequest) { r.LowStockThreshold = -1 }, domain.ErrInvalidInput},
		{"ubicación inexistente", func(r *dto.SubmitProductRequest) { r.LocationID = "NOPE" }, domain.ErrNotFound},
		{"ubicación inactiva", func(r *dto.SubmitProductRequest) { r.LocationID = "OUT-OFF" }, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSubmit()
			tc.mutate(&req)
			_, err := env.uc.Submit(env.ctx, "staff-1", req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSubmit_PrecioIgualAlCostoPermitido(t *testing.T) {
	env := newCatalogEnv(t)
	req := validSubmit()
	req.SellingPrice = req.CostPrice
	_, err := env.uc.Submit(env.ctx, "staff-1", req)
	assert.NoError(t, err)
}

func TestSubmit_SKUDuplicado(t *testing.T) {
	env := newCatalogEnv(t)
	_, err := env.uc.Submit(env.ctx, "staff-1", validSubmit())
	require.NoError(t, err)

	req := validSubmit()
	req.SKU = "lamp-001"
	_, err = env.uc.Submit(env.ctx, "staff-1", req)
	assert.ErrorIs(t, err, domain.ErrDuplicate, "el SKU no distingue mayúsculas")
}

func TestSubmit_GeneraSKUEvitandoColisiones(t *testing.T) {
	env := newCatalogEnv(t)
	taken := inventory.GenerateSKU("Iluminación", "Lumen", submittedAt, 0)
	require.NoError(t, env.reads.Products.Create(env.ctx, &entity.Product{ID: "existing", SKU: taken, Status: entity.ProductStatusPending}))

	req := validSubmit()
	req.SKU = ""
	out, err := env.uc.Submit(env.ctx, "staff-1", req)
	require.NoError(t, err)

	assert.Equal(t, inventory.GenerateSKU("Iluminación", "Lumen", submittedAt, 1), out.SKU)
	assert.NotEqual(t, taken, out.SKU)
}

// ──────────────────────────────────────────────────────────────────────────────
// Approve / Reject
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_AbreSaldoConStockInicial(t *testing.T) {
	env := newCatalogEnv(t)
	submitted, err := env.uc.Submit(env.ctx, "staff-1", validSubmit())
	require.NoError(t, err)

	out, err := env.uc.Approve(env.ctx, submitted.ID, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, "approved", out.Status)
	assert.Equal(t, "manager-1", out.ApprovedBy)
	require.NotNil(t, out.ApprovedAt)
	assert.Equal(t, submittedAt, *out.ApprovedAt)

	b, err := env.reads.Stock.Get(env.ctx, submitted.ID, "WH-1")
	require.NoError(t, err)
	assert.EqualValues(t, 25, b.Quantity)
	assert.Zero(t, b.ReservedQuantity)

	movs, err := env.reads.Movements.List(env.ctx, repository.MovementFilter{ProductID: submitted.ID})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeOPENING, movs[0].Type)
	assert.Equal(t, "manager-1", movs[0].CreatedBy)
}

func TestApprove_SegundaVezFallaSinTocarLedger(t *testing.T) {
	env := newCatalogEnv(t)
	submitted, err := env.uc.Submit(env.ctx, "staff-1", validSubmit())
	require.NoError(t, err)
	_, err = env.uc.Approve(env.ctx, submitted.ID, "manager-1")
	require.NoError(t, err)

	_, err = env.uc.Approve(env.ctx, submitted.ID, "manager-2")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	b, err := env.reads.Stock.Get(env.ctx, submitted.ID, "WH-1")
	require.NoError(t, err)
	assert.EqualValues(t, 25, b.Quantity, "el stock no se duplica")
}

func TestReject_RequiereMotivoYEsTerminal(t *testing.T) {
	env := newCatalogEnv(t)
	submitted, err := env.uc.Submit(env.ctx, "staff-1", validSubmit())
	require.NoError(t, err)

	_, err = env.uc.Reject(env.ctx, submitted.ID, "manager-1", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := env.uc.Reject(env.ctx, submitted.ID, "manager-1", "foto borrosa")
	require.NoError(t, err)
	assert.Equal(t, "rejected", out.Status)
	assert.Equal(t, "foto borrosa", out.RejectionReason)
	assert.Equal(t, "manager-1", out.RejectedBy)

	_, err = env.uc.Approve(env.ctx, submitted.ID, "manager-1")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	b, err := env.reads.Stock.Get(env.ctx, submitted.ID, "WH-1")
	require.NoError(t, err)
	assert.False(t, b.Exists())
}

func TestApprove_ProductoInexistente(t *testing.T) {
	env := newCatalogEnv(t)
	_, err := env.uc.Approve(env.ctx, "nope", "manager-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.uc.Approve(env.ctx, "nope", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestList_FiltraPorEstado(t *testing.T) {
	env := newCatalogEnv(t)
	a, err := env.uc.Submit(env.ctx, "staff-1", validSubmit())
	require.NoError(t, err)
	req := validSubmit()
	req.SKU = "LAMP-002"
	_, err = env.uc.Submit(env.ctx, "staff-1", req)
	require.NoError(t, err)
	_, err = env.uc.Approve(env.ctx, a.ID, "manager-1")
	require.NoError(t, err)

	approved, err := env.uc.List(env.ctx, dto.ProductListRequest{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, approved.Items, 1)
	assert.Equal(t, "LAMP-001", approved.Items[0].SKU)

	_, err = env.uc.List(env.ctx, dto.ProductListRequest{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
