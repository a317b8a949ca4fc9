package entity

import "time"

// Tipos de movimiento del ledger de stock.
const (
	MovementTypeOPENING = "OPENING" // saldo inicial al aprobar el producto
	MovementTypeRESERVE = "RESERVE" // retención
	MovementTypeRELEASE = "RELEASE" // liberación de retención
	MovementTypeDEBIT   = "DEBIT"   // salida en origen de un traslado
	MovementTypeCREDIT  = "CREDIT"  // entrada en destino de un traslado
	MovementTypeSALE    = "SALE"    // salida por venta POS
)

// StockMovement registro de auditoría de una mutación del ledger.
// QuantityDelta y ReservedDelta son variaciones con signo sobre el saldo.
type StockMovement struct {
	ID            string
	Reference     string // traslado, retención o referencia de venta
	ProductID     string
	LocationID    string
	Type          string
	QuantityDelta int64
	ReservedDelta int64
	BalanceAfter  int64
	CreatedAt     time.Time
	CreatedBy     string
}
