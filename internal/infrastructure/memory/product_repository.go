package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo de productos en memoria.
type ProductRepo struct{ b binding }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.b.write(func(s *state) error {
		if _, ok := s.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range s.products {
			if strings.EqualFold(other.SKU, p.SKU) {
				return domain.ErrDuplicate
			}
		}
		s.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.b.read(func(s *state) error {
		p, ok := s.products[id]
		if !ok {
			return domain.NotFound("producto %s", id)
		}
		out = &p
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: dentro de TxRunner el estado ya es exclusivo.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.b.read(func(s *state) error {
		for _, p := range s.products {
			if strings.EqualFold(p.SKU, sku) {
				out = &p
				return nil
			}
		}
		return domain.NotFound("producto con SKU %s", sku)
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.b.write(func(s *state) error {
		if _, ok := s.products[p.ID]; !ok {
			return domain.NotFound("producto %s", p.ID)
		}
		s.products[p.ID] = *p
		return nil
	})
}

// List ordena por fecha de alta, más antiguos primero.
func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.b.read(func(s *state) error {
		for _, p := range s.products {
			if f.Status != "" && p.Status != f.Status {
				continue
			}
			if f.LocationID != "" && p.LocationID != f.LocationID {
				continue
			}
			out = append(out, &p)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Product) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return page(out, f.Limit, f.Offset), err
}
