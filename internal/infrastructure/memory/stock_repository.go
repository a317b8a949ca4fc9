package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/inventory"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo saldos en memoria con control de versión.
type StockRepo struct{ b binding }

func (r *StockRepo) Get(_ context.Context, productID, locationID string) (*entity.StockBalance, error) {
	var out *entity.StockBalance
	err := r.b.read(func(s *state) error {
		bal, ok := s.balances[balanceKey{productID, locationID}]
		if !ok {
			bal = entity.StockBalance{ProductID: productID, LocationID: locationID}
		}
		out = &bal
		return nil
	})
	return out, err
}

// GetForUpdate equivale a Get: dentro de TxRunner el estado ya es exclusivo.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockBalance, error) {
	return r.Get(ctx, productID, locationID)
}

func (r *StockRepo) Save(_ context.Context, b *entity.StockBalance) error {
	return r.b.write(func(s *state) error {
		key := balanceKey{b.ProductID, b.LocationID}
		if current := s.balances[key]; current.Version != b.Version {
			return domain.ErrStaleVersion
		}
		next := *b
		next.Version++
		s.balances[key] = next
		b.Version = next.Version
		return nil
	})
}

func (r *StockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockBalance, error) {
	var out []*entity.StockBalance
	err := r.b.read(func(s *state) error {
		for k, bal := range s.balances {
			if k.productID == productID {
				out = append(out, &bal)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.StockBalance) int { return cmp.Compare(a.LocationID, b.LocationID) })
	return out, err
}

func (r *StockRepo) ListLowStock(_ context.Context, locationID string) ([]repository.LowStockRow, error) {
	var out []repository.LowStockRow
	err := r.b.read(func(s *state) error {
		for k, bal := range s.balances {
			if locationID != "" && k.locationID != locationID {
				continue
			}
			p, ok := s.products[k.productID]
			if !ok || !p.Movable() {
				continue
			}
			if !inventory.IsLowStock(bal.Available(), p.LowStockThreshold) {
				continue
			}
			out = append(out, repository.LowStockRow{
				ProductID:         p.ID,
				SKU:               p.SKU,
				ProductName:       p.Name,
				LocationID:        k.locationID,
				Quantity:          bal.Quantity,
				ReservedQuantity:  bal.ReservedQuantity,
				LowStockThreshold: p.LowStockThreshold,
				UnitCost:          p.CostPrice,
			})
		}
		return nil
	})
	slices.SortFunc(out, func(a, b repository.LowStockRow) int {
		da := a.LowStockThreshold - (a.Quantity - a.ReservedQuantity)
		db := b.LowStockThreshold - (b.Quantity - b.ReservedQuantity)
		if c := cmp.Compare(db, da); c != 0 {
			return c
		}
		return cmp.Compare(a.SKU, b.SKU)
	})
	return out, err
}
