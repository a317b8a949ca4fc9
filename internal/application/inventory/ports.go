package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error la transacción se revierte completa.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}

// Clock devuelve la hora actual; se inyecta para poder fijarla en tests.
type Clock func() time.Time
