package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tradenest-api/internal/domain/entity"
)

// HoldRepository define el puerto de persistencia de retenciones de stock.
type HoldRepository interface {
	Create(ctx context.Context, hold *entity.StockHold) error
	// GetForUpdate devuelve domain.ErrNotFound si la retención no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.StockHold, error)
	Update(ctx context.Context, hold *entity.StockHold) error
	ListByTransfer(ctx context.Context, transferID string) ([]*entity.StockHold, error)
	// ListExpired devuelve hasta limit retenciones activas con ExpiresAt <= now, más antiguas primero.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.StockHold, error)
}
