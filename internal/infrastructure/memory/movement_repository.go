package memory

import (
	"context"

	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo diario de movimientos en memoria (solo inserción).
type MovementRepo struct{ b binding }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.b.write(func(s *state) error {
		s.movements = append(s.movements, *m)
		return nil
	})
}

// List devuelve los movimientos en orden de registro.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.b.read(func(s *state) error {
		for _, m := range s.movements {
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.LocationID != "" && m.LocationID != f.LocationID {
				continue
			}
			if f.Reference != "" && m.Reference != f.Reference {
				continue
			}
			out = append(out, &m)
		}
		return nil
	})
	return page(out, f.Limit, f.Offset), err
}
