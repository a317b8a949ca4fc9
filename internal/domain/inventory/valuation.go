package inventory

import (
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TransferTotals calcula el valor a precio de venta y a costo de las líneas de un traslado.
// Los totales siempre se derivan de las líneas, nunca se reciben del cliente.
func TransferTotals(items []entity.TransferItem) (total, totalCost decimal.Decimal) {
	total, totalCost = decimal.Zero, decimal.Zero
	for _, it := range items {
		qty := decimal.NewFromInt(it.Quantity)
		total = total.Add(it.UnitPrice.Mul(qty))
		totalCost = totalCost.Add(it.UnitCost.Mul(qty))
	}
	return total, totalCost
}

// StockValue valor a costo de una cantidad de unidades.
func StockValue(qty int64, unitCost decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(qty))
}
