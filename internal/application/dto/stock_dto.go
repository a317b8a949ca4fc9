package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceResponse saldo de un producto en una ubicación.
type BalanceResponse struct {
	ProductID        string     `json:"product_id"`
	LocationID       string     `json:"location_id"`
	Quantity         int64      `json:"quantity"`
	ReservedQuantity int64      `json:"reserved_quantity"`
	Available        int64      `json:"available"`
	Version          int64      `json:"version"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// MovementListRequest filtros del diario de movimientos.
type MovementListRequest struct {
	PageRequest
	ProductID  string `query:"product_id"`
	LocationID string `query:"location_id"`
	Reference  string `query:"reference"`
}

// MovementResponse entrada del diario de movimientos.
type MovementResponse struct {
	ID            string    `json:"id"`
	Reference     string    `json:"reference"`
	ProductID     string    `json:"product_id"`
	LocationID    string    `json:"location_id"`
	Type          string    `json:"type"`
	QuantityDelta int64     `json:"quantity_delta"`
	ReservedDelta int64     `json:"reserved_delta"`
	BalanceAfter  int64     `json:"balance_after"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// SaleDebitRequest body para POST /api/stock/sales (descuento POS).
type SaleDebitRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"gt=0"`
	Reference  string `json:"reference"`
}

// LowStockSuggestionDTO producto en o bajo su umbral de alerta con la cantidad sugerida de reposición.
type LowStockSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	LocationID         string          `json:"location_id"`
	Available          int64           `json:"available"`
	LowStockThreshold  int64           `json:"low_stock_threshold"`
	SuggestedOrderQty  int64           `json:"suggested_order_qty"` // threshold*1.5 - available
	UnitCost           decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
