package memory

import (
	"context"

	"github.com/jhoicas/tradenest-api/internal/application/inventory"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks de forma serializable sobre el Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no devuelve error.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx := r.store.data.clone()
	if err := fn(r.store.bind(tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.data = tx
	return nil
}
