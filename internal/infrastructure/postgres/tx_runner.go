package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/tradenest-api/internal/application/inventory"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// txOptions aislamiento de toda transacción de negocio. Los conflictos llegan como 40001 y
// los reintenta inventory.RetryingTxRunner.
var txOptions = pgx.TxOptions{IsoLevel: pgx.Serializable}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los deadlocks y fallos de serialización se reportan como domain.ErrStaleVersion.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := r.pool.BeginTx(ctx, txOptions)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepositories(tx)); err != nil {
		if isRetryable(err) {
			return fmt.Errorf("%w: %v", domain.ErrStaleVersion, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isRetryable(err) {
			return fmt.Errorf("%w: %v", domain.ErrStaleVersion, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepositories arma el juego de repositorios sobre un pool o una tx.
func NewRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Locations: NewLocationRepository(q),
		Products:  NewProductRepository(q),
		Stock:     NewStockRepository(q),
		Holds:     NewHoldRepository(q),
		Movements: NewStockMovementRepository(q),
		Transfers: NewTransferRepository(q),
	}
}
