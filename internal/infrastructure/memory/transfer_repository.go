package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados, líneas e historial en memoria.
type TransferRepo struct{ b binding }

func (r *TransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	return r.b.write(func(s *state) error {
		if _, ok := s.transfers[t.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range s.transfers {
			if other.TransferNumber == t.TransferNumber {
				return domain.ErrDuplicate
			}
		}
		stored := *t
		stored.Items = slices.Clone(t.Items)
		s.transfers[t.ID] = stored
		return nil
	})
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := r.b.read(func(s *state) error {
		t, ok := s.transfers[id]
		if !ok {
			return domain.NotFound("traslado %s", id)
		}
		t.Items = slices.Clone(t.Items)
		out = &t
		return nil
	})
	return out, err
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza la cabecera conservando las líneas almacenadas.
func (r *TransferRepo) Update(_ context.Context, t *entity.StockTransfer) error {
	return r.b.write(func(s *state) error {
		current, ok := s.transfers[t.ID]
		if !ok {
			return domain.NotFound("traslado %s", t.ID)
		}
		next := *t
		next.Items = current.Items
		s.transfers[t.ID] = next
		return nil
	})
}

// List ordena por fecha de solicitud, más recientes primero.
func (r *TransferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, error) {
	var out []*entity.StockTransfer
	err := r.b.read(func(s *state) error {
		for _, t := range s.transfers {
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if f.Priority != "" && t.Priority != f.Priority {
				continue
			}
			if f.LocationID != "" && t.SourceLocationID != f.LocationID && t.DestLocationID != f.LocationID {
				continue
			}
			t.Items = slices.Clone(t.Items)
			out = append(out, &t)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.StockTransfer) int {
		if c := b.RequestedAt.Compare(a.RequestedAt); c != 0 {
			return c
		}
		return strings.Compare(b.TransferNumber, a.TransferNumber)
	})
	return page(out, f.Limit, f.Offset), err
}

func (r *TransferRepo) NextNumber(_ context.Context, year int) (int64, error) {
	var seq int64
	err := r.b.write(func(s *state) error {
		s.counters[year]++
		seq = s.counters[year]
		return nil
	})
	return seq, err
}

func (r *TransferRepo) AddEvent(_ context.Context, e *entity.TransferEvent) error {
	return r.b.write(func(s *state) error {
		s.events = append(s.events, *e)
		return nil
	})
}

func (r *TransferRepo) ListEvents(_ context.Context, transferID string) ([]*entity.TransferEvent, error) {
	var out []*entity.TransferEvent
	err := r.b.read(func(s *state) error {
		for _, e := range s.events {
			if e.TransferID == transferID {
				out = append(out, &e)
			}
		}
		return nil
	})
	return out, err
}
