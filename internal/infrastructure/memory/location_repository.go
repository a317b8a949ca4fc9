package memory

import (
	"context"

	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo registro de ubicaciones en memoria.
type LocationRepo struct{ b binding }

// Create registra la ubicación; un ID repetido es domain.ErrDuplicate.
func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	return r.b.write(func(s *state) error {
		if _, ok := s.locations[l.ID]; ok {
			return domain.ErrDuplicate
		}
		s.locations[l.ID] = *l
		return nil
	})
}

// GetByID devuelve la ubicación o domain.ErrNotFound.
func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.b.read(func(s *state) error {
		l, ok := s.locations[id]
		if !ok {
			return domain.NotFound("ubicación %s", id)
		}
		out = &l
		return nil
	})
	return out, err
}
