package repository

import (
	"context"

	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LowStockRow resultado crudo de un saldo en o bajo el umbral de alerta del producto.
type LowStockRow struct {
	ProductID         string
	SKU               string
	ProductName       string
	LocationID        string
	Quantity          int64
	ReservedQuantity  int64
	LowStockThreshold int64
	UnitCost          decimal.Decimal
}

// StockRepository define el puerto para consultar/actualizar saldos por producto+ubicación.
// Un saldo inexistente se devuelve con Version 0 y cantidades en cero.
type StockRepository interface {
	Get(ctx context.Context, productID, locationID string) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) cuando existe.
	GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockBalance, error)
	// Save persiste el saldo solo si la versión almacenada sigue siendo balance.Version
	// (0 = la fila no debe existir). Si otro escritor ganó devuelve domain.ErrStaleVersion.
	// En éxito incrementa balance.Version.
	Save(ctx context.Context, balance *entity.StockBalance) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockBalance, error)
	// ListLowStock devuelve saldos de productos aprobados cuyo disponible está en o bajo el umbral,
	// con mayor déficit primero. locationID vacío considera todas las ubicaciones.
	ListLowStock(ctx context.Context, locationID string) ([]LowStockRow, error)
}
