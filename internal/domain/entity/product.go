package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductStatus estado de aprobación del producto.
type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusApproved ProductStatus = "approved"
	ProductStatusRejected ProductStatus = "rejected"
)

// Valid indica si el estado es conocido.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusPending, ProductStatusApproved, ProductStatusRejected:
		return true
	}
	return false
}

// Product representa un producto del catálogo ligado a la ubicación donde se dio de alta.
// Solo un producto aprobado puede venderse o moverse entre ubicaciones.
type Product struct {
	ID                string
	SKU               string // único en todo el catálogo
	Name              string
	Description       string
	Category          string
	Brand             string
	Barcode           string
	CostPrice         decimal.Decimal
	SellingPrice      decimal.Decimal
	LowStockThreshold int64
	InitialStock      int64 // stock con el que se abre el saldo al aprobar
	Status            ProductStatus
	LocationID        string
	LocationKind      LocationKind
	SubmittedBy       string
	ApprovedBy        string
	ApprovedAt        *time.Time
	RejectedBy        string
	RejectedAt        *time.Time
	RejectionReason   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Movable indica si el producto puede venderse o incluirse en un traslado.
func (p *Product) Movable() bool {
	return p.Status == ProductStatusApproved
}

// Approve pasa el producto de pending a approved. Es terminal.
func (p *Product) Approve(approverID string, at time.Time) error {
	if p.Status != ProductStatusPending {
		return fmt.Errorf("%w: producto %s en estado %s", domain.ErrInvalidStateTransition, p.ID, p.Status)
	}
	p.Status = ProductStatusApproved
	p.ApprovedBy = approverID
	p.ApprovedAt = &at
	p.UpdatedAt = at
	return nil
}

// Reject pasa el producto de pending a rejected guardando el motivo. Es terminal.
func (p *Product) Reject(approverID, reason string, at time.Time) error {
	if p.Status != ProductStatusPending {
		return fmt.Errorf("%w: producto %s en estado %s", domain.ErrInvalidStateTransition, p.ID, p.Status)
	}
	p.Status = ProductStatusRejected
	p.RejectedBy = approverID
	p.RejectedAt = &at
	p.RejectionReason = reason
	p.UpdatedAt = at
	return nil
}
