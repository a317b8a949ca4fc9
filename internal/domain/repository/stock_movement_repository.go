package repository

import (
	"context"

	"github.com/jhoicas/tradenest-api/internal/domain/entity"
)

// MovementFilter criterios para consultar el diario de movimientos.
type MovementFilter struct {
	ProductID  string
	LocationID string
	Reference  string
	Limit      int
	Offset     int
}

// StockMovementRepository define el puerto de persistencia para movimientos de inventario (DIP).
// El diario es de solo inserción.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
}
