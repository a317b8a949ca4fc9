package entity

import "time"

// HoldStatus estado de una retención de stock.
type HoldStatus string

const (
	HoldStatusActive    HoldStatus = "active"
	HoldStatusReleased  HoldStatus = "released"
	HoldStatusCommitted HoldStatus = "committed"
)

// StockHold retención de cantidad sobre un saldo (producto, ubicación).
// TransferID vacío significa una retención suelta creada por la API del ledger.
type StockHold struct {
	ID         string
	ProductID  string
	LocationID string
	Quantity   int64
	Status     HoldStatus
	TransferID string
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Active indica si la retención sigue apartando stock.
func (h *StockHold) Active() bool {
	return h.Status == HoldStatusActive
}

// Expired indica si la retención activa superó su TTL.
func (h *StockHold) Expired(now time.Time) bool {
	return h.Active() && h.ExpiresAt != nil && !now.Before(*h.ExpiresAt)
}
