package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest línea solicitada en un traslado.
type TransferItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"gt=0"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	SourceLocationID  string                `json:"source_location_id" validate:"required"`
	DestLocationID    string                `json:"dest_location_id" validate:"required"`
	Items             []TransferItemRequest `json:"items" validate:"required,min=1"`
	Priority          string                `json:"priority"` // low|medium|high|urgent, medium por defecto
	Notes             string                `json:"notes"`
	EstimatedDelivery *time.Time            `json:"estimated_delivery"`
}

// TransferActionRequest body opcional de las acciones reject/cancel.
type TransferActionRequest struct {
	Reason string `json:"reason"`
}

// TransferListRequest filtros de listado de traslados.
type TransferListRequest struct {
	PageRequest
	Status     string `query:"status"`
	Priority   string `query:"priority"`
	LocationID string `query:"location_id"`
}

// TransferItemResponse línea de un traslado con la foto de precios tomada al crearlo.
type TransferItemResponse struct {
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// TransferResponse salida de un traslado. Las retenciones nunca se exponen.
type TransferResponse struct {
	ID                string                 `json:"id"`
	TransferNumber    string                 `json:"transfer_number"`
	SourceLocationID  string                 `json:"source_location_id"`
	SourceKind        string                 `json:"source_kind"`
	DestLocationID    string                 `json:"dest_location_id"`
	DestKind          string                 `json:"dest_kind"`
	Items             []TransferItemResponse `json:"items"`
	TotalValue        decimal.Decimal        `json:"total_value"`
	TotalCostValue    decimal.Decimal        `json:"total_cost_value"`
	Status            string                 `json:"status"`
	Priority          string                 `json:"priority"`
	RequestedBy       string                 `json:"requested_by"`
	RequestedAt       time.Time              `json:"requested_at"`
	ApprovedBy        string                 `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time             `json:"approved_at,omitempty"`
	ConfirmedAt       *time.Time             `json:"confirmed_at,omitempty"`
	ShippedAt         *time.Time             `json:"shipped_at,omitempty"`
	CompletedAt       *time.Time             `json:"completed_at,omitempty"`
	RejectedBy        string                 `json:"rejected_by,omitempty"`
	RejectedAt        *time.Time             `json:"rejected_at,omitempty"`
	RejectionReason   string                 `json:"rejection_reason,omitempty"`
	EstimatedDelivery *time.Time             `json:"estimated_delivery,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// TransferEventResponse entrada del historial de un traslado.
type TransferEventResponse struct {
	Action     string    `json:"action"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Actor      string    `json:"actor,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
