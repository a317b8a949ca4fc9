package repository

import (
	"context"

	"github.com/jhoicas/tradenest-api/internal/domain/entity"
)

// LocationRepository define el puerto del registro de ubicaciones (bodegas y puntos de venta).
// Solo maneja identidad y estado activo; los metadatos viven en otro servicio.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	// GetByID devuelve domain.ErrNotFound si la ubicación no existe.
	GetByID(ctx context.Context, id string) (*entity.Location, error)
}
