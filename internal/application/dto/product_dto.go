package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitProductRequest entrada para dar de alta un producto (queda pendiente de aprobación).
type SubmitProductRequest struct {
	SKU               string          `json:"sku"` // opcional, se genera si viene vacío
	Name              string          `json:"name" validate:"required,min=1,max=200"`
	Description       string          `json:"description"`
	Category          string          `json:"category" validate:"required"`
	Brand             string          `json:"brand"`
	Barcode           string          `json:"barcode"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	InitialStock      int64           `json:"initial_stock"`
	LocationID        string          `json:"location_id" validate:"required"`
}

// RejectProductRequest body para POST /api/products/:id/reject.
type RejectProductRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ProductListRequest filtros de listado de productos.
type ProductListRequest struct {
	PageRequest
	Status     string `query:"status"`
	LocationID string `query:"location_id"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Category          string          `json:"category"`
	Brand             string          `json:"brand,omitempty"`
	Barcode           string          `json:"barcode,omitempty"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	InitialStock      int64           `json:"initial_stock"`
	Status            string          `json:"status"`
	LocationID        string          `json:"location_id"`
	LocationKind      string          `json:"location_kind"`
	SubmittedBy       string          `json:"submitted_by,omitempty"`
	ApprovedBy        string          `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`
	RejectedBy        string          `json:"rejected_by,omitempty"`
	RejectedAt        *time.Time      `json:"rejected_at,omitempty"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
