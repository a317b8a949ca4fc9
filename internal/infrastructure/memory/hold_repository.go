package memory

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ repository.HoldRepository = (*HoldRepo)(nil)

// HoldRepo retenciones de stock en memoria.
type HoldRepo struct{ b binding }

func (r *HoldRepo) Create(_ context.Context, h *entity.StockHold) error {
	return r.b.write(func(s *state) error {
		if _, ok := s.holds[h.ID]; ok {
			return domain.ErrDuplicate
		}
		s.holds[h.ID] = *h
		return nil
	})
}

func (r *HoldRepo) GetForUpdate(_ context.Context, id string) (*entity.StockHold, error) {
	var out *entity.StockHold
	err := r.b.read(func(s *state) error {
		h, ok := s.holds[id]
		if !ok {
			return domain.NotFound("retención %s", id)
		}
		out = &h
		return nil
	})
	return out, err
}

func (r *HoldRepo) Update(_ context.Context, h *entity.StockHold) error {
	return r.b.write(func(s *state) error {
		if _, ok := s.holds[h.ID]; !ok {
			return domain.NotFound("retención %s", h.ID)
		}
		s.holds[h.ID] = *h
		return nil
	})
}

func (r *HoldRepo) ListByTransfer(_ context.Context, transferID string) ([]*entity.StockHold, error) {
	var out []*entity.StockHold
	err := r.b.read(func(s *state) error {
		for _, h := range s.holds {
			if h.TransferID == transferID {
				out = append(out, &h)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.StockHold) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, err
}

func (r *HoldRepo) ListExpired(_ context.Context, now time.Time, limit int) ([]*entity.StockHold, error) {
	var out []*entity.StockHold
	err := r.b.read(func(s *state) error {
		for _, h := range s.holds {
			if h.Expired(now) {
				out = append(out, &h)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.StockHold) int { return a.ExpiresAt.Compare(*b.ExpiresAt) })
	return page(out, limit, 0), err
}
