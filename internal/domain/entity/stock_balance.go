package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/tradenest-api/internal/domain"
)

// StockBalance saldo de un producto en una ubicación.
// Invariantes: Quantity >= 0 y ReservedQuantity <= Quantity. Version sube en cada mutación.
// Version == 0 significa que la fila todavía no existe en el almacenamiento.
type StockBalance struct {
	ProductID        string
	LocationID       string
	Quantity         int64
	ReservedQuantity int64
	Version          int64
	UpdatedAt        time.Time
}

// Exists indica si la fila ya fue persistida alguna vez.
func (b *StockBalance) Exists() bool {
	return b.Version > 0
}

// Available cantidad libre para reservar o vender.
func (b *StockBalance) Available() int64 {
	return b.Quantity - b.ReservedQuantity
}

// Reserve aparta qty sin mover la cantidad física.
func (b *StockBalance) Reserve(qty int64) error {
	if qty <= 0 {
		return domain.Invalid("cantidad a reservar debe ser positiva")
	}
	if b.Available() < qty {
		return fmt.Errorf("%w: producto %s en %s, disponible %d, solicitado %d",
			domain.ErrInsufficientStock, b.ProductID, b.LocationID, b.Available(), qty)
	}
	b.ReservedQuantity += qty
	return nil
}

// Release devuelve qty reservada al disponible.
func (b *StockBalance) Release(qty int64) error {
	if b.ReservedQuantity < qty {
		return fmt.Errorf("%w: reservado %d menor que la retención %d",
			domain.ErrConcurrencyConflict, b.ReservedQuantity, qty)
	}
	b.ReservedQuantity -= qty
	return nil
}

// ConsumeReserved descuenta qty tanto de la cantidad como de lo reservado (débito de una retención).
func (b *StockBalance) ConsumeReserved(qty int64) error {
	if b.ReservedQuantity < qty || b.Quantity < qty {
		return fmt.Errorf("%w: saldo %d/%d reservado no cubre la retención %d",
			domain.ErrConcurrencyConflict, b.Quantity, b.ReservedQuantity, qty)
	}
	b.Quantity -= qty
	b.ReservedQuantity -= qty
	return nil
}

// Debit descuenta qty del disponible sin retención previa (ventas POS).
func (b *StockBalance) Debit(qty int64) error {
	if qty <= 0 {
		return domain.Invalid("cantidad a descontar debe ser positiva")
	}
	if b.Available() < qty {
		return fmt.Errorf("%w: producto %s en %s, disponible %d, solicitado %d",
			domain.ErrInsufficientStock, b.ProductID, b.LocationID, b.Available(), qty)
	}
	b.Quantity -= qty
	return nil
}

// Credit suma qty. Un aumento nunca rompe las invariantes.
func (b *StockBalance) Credit(qty int64) error {
	if qty <= 0 {
		return domain.Invalid("cantidad a acreditar debe ser positiva")
	}
	b.Quantity += qty
	return nil
}
