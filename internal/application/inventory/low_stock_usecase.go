package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/tradenest-api/internal/application/dto"
	"github.com/jhoicas/tradenest-api/internal/domain/inventory"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

// LowStockUseCase genera la lista de reposición de productos en o bajo su umbral de alerta.
type LowStockUseCase struct {
	stockRepo repository.StockRepository
}

// NewLowStockUseCase construye el caso de uso de alertas de stock bajo.
func NewLowStockUseCase(stockRepo repository.StockRepository) *LowStockUseCase {
	return &LowStockUseCase{stockRepo: stockRepo}
}

// GenerateLowStockList devuelve los saldos en o bajo el umbral con la cantidad sugerida de pedido.
// locationID puede ser vacío para considerar todas las ubicaciones.
func (uc *LowStockUseCase) GenerateLowStockList(ctx context.Context, locationID string) ([]dto.LowStockSuggestionDTO, error) {
	rows, err := uc.stockRepo.ListLowStock(ctx, locationID)
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.LowStockSuggestionDTO, 0, len(rows))
	for _, r := range rows {
		available := r.Quantity - r.ReservedQuantity
		if !inventory.IsLowStock(available, r.LowStockThreshold) {
			continue
		}
		qty := inventory.SuggestedReorder(available, r.LowStockThreshold)
		suggestions = append(suggestions, dto.LowStockSuggestionDTO{
			ProductID:          r.ProductID,
			SKU:                r.SKU,
			ProductName:        r.ProductName,
			LocationID:         r.LocationID,
			Available:          available,
			LowStockThreshold:  r.LowStockThreshold,
			SuggestedOrderQty:  qty,
			UnitCost:           r.UnitCost,
			EstimatedOrderCost: inventory.StockValue(qty, r.UnitCost),
		})
	}

	// Mayor déficit relativo primero; a igual déficit, mayor costo estimado.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		da := (a.LowStockThreshold - a.Available) * b.LowStockThreshold
		db := (b.LowStockThreshold - b.Available) * a.LowStockThreshold
		if da != db {
			return da > db
		}
		return a.EstimatedOrderCost.GreaterThan(b.EstimatedOrderCost)
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
