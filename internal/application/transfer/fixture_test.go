package transfer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/tradenest-api/internal/application/inventory"
	"github.com/jhoicas/tradenest-api/internal/application/transfer"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
	"github.com/jhoicas/tradenest-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	warehouse = "WH-1"
	outlet    = "OUT-1"
	closedLoc = "OUT-CLOSED"
	requester = "user-staff"
	approver  = "user-manager"
)

// fakeClock reloj ajustable compartido por ledger, motor y reaper.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	reads  repository.Repositories
	tx     appinv.TxRunner
	ledger *appinv.Ledger
	uc     *transfer.UseCase
	clock  *fakeClock
}

func newFixture(t *testing.T, holdTTL time.Duration) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	reads := store.Repositories()
	clock := &fakeClock{now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	tx := appinv.NewRetryingTxRunner(memory.NewTxRunner(store), 3, nil)
	ledger := appinv.NewLedger(tx, reads, appinv.LedgerConfig{HoldTTL: holdTTL, Now: clock.Now}, nil)
	uc := transfer.NewUseCase(tx, reads.Transfers, reads.Locations, ledger, clock.Now, nil)

	for _, l := range []entity.Location{
		{ID: warehouse, Kind: entity.LocationKindWarehouse, Name: "Bodega Central", IsActive: true},
		{ID: outlet, Kind: entity.LocationKindOutlet, Name: "Tienda Centro", IsActive: true},
		{ID: closedLoc, Kind: entity.LocationKindOutlet, Name: "Tienda Cerrada", IsActive: false},
	} {
		require.NoError(t, reads.Locations.Create(ctx, &l))
	}
	return &fixture{ctx: ctx, store: store, reads: reads, tx: tx, ledger: ledger, uc: uc, clock: clock}
}

// seedProduct registra un producto con el estado dado y, si está aprobado, abre su saldo en la bodega.
func (f *fixture) seedProduct(t *testing.T, id string, status entity.ProductStatus, stock int64, cost, price string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:           id,
		SKU:          "SKU-" + id,
		Name:         "Producto " + id,
		Category:     "Electrónica",
		CostPrice:    decimal.RequireFromString(cost),
		SellingPrice: decimal.RequireFromString(price),
		InitialStock: stock,
		Status:       status,
		LocationID:   warehouse,
		LocationKind: entity.LocationKindWarehouse,
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	require.NoError(t, f.reads.Products.Create(f.ctx, p))
	if status == entity.ProductStatusApproved {
		require.NoError(t, f.tx.Run(f.ctx, func(repos repository.Repositories) error {
			return f.ledger.OpenInTx(f.ctx, repos, p.ID, warehouse, stock, "seed")
		}))
	}
	return p
}

func (f *fixture) balance(t *testing.T, productID, locationID string) *entity.StockBalance {
	t.Helper()
	b, err := f.reads.Stock.Get(f.ctx, productID, locationID)
	require.NoError(t, err)
	return b
}
