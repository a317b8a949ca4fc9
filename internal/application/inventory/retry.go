package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
	"github.com/jhoicas/tradenest-api/pkg/logger"
)

// DefaultConflictRetries intentos por defecto ante un choque de versión en un saldo.
const DefaultConflictRetries = 3

var _ TxRunner = (*RetryingTxRunner)(nil)

// RetryingTxRunner reintenta la transacción completa cuando falla por domain.ErrStaleVersion.
// Cada intento abre una transacción nueva, así que todas las lecturas se repiten.
// Ningún otro error se reintenta.
type RetryingTxRunner struct {
	inner    TxRunner
	attempts int
	log      *logger.Logger
}

// NewRetryingTxRunner envuelve inner. attempts <= 0 usa DefaultConflictRetries.
func NewRetryingTxRunner(inner TxRunner, attempts int, log *logger.Logger) *RetryingTxRunner {
	if attempts <= 0 {
		attempts = DefaultConflictRetries
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RetryingTxRunner{inner: inner, attempts: attempts, log: log}
}

// Run ejecuta fn con reintentos acotados.
func (r *RetryingTxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = r.inner.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrStaleVersion) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", r.attempts).
			Msg("conflicto de versión en saldo, reintentando")
	}
	return err
}
