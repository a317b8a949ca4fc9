package entity

import (
	"fmt"
	"slices"
	"time"

	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/shopspring/decimal"
)

// TransferStatus estado de un traslado de stock.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusApproved  TransferStatus = "approved"
	TransferStatusConfirmed TransferStatus = "confirmed"
	TransferStatusInTransit TransferStatus = "in_transit"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusRejected  TransferStatus = "rejected"
)

// Valid indica si el estado es conocido.
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferStatusPending, TransferStatusApproved, TransferStatusConfirmed,
		TransferStatusInTransit, TransferStatusCompleted, TransferStatusRejected:
		return true
	}
	return false
}

// Terminal indica si ya no se admite ninguna transición.
func (s TransferStatus) Terminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusRejected
}

// TransferPriority prioridad logística del traslado.
type TransferPriority string

const (
	TransferPriorityLow    TransferPriority = "low"
	TransferPriorityMedium TransferPriority = "medium"
	TransferPriorityHigh   TransferPriority = "high"
	TransferPriorityUrgent TransferPriority = "urgent"
)

// Valid indica si la prioridad es conocida.
func (p TransferPriority) Valid() bool {
	switch p {
	case TransferPriorityLow, TransferPriorityMedium, TransferPriorityHigh, TransferPriorityUrgent:
		return true
	}
	return false
}

// TransferAction acción que dispara una transición del traslado.
type TransferAction string

const (
	TransferActionApprove    TransferAction = "approve"
	TransferActionReject     TransferAction = "reject"
	TransferActionCancel     TransferAction = "cancel"
	TransferActionConfirm    TransferAction = "confirm"
	TransferActionInvalidate TransferAction = "invalidate"
	TransferActionExpire     TransferAction = "expire"
	TransferActionShip       TransferAction = "ship"
	TransferActionComplete   TransferAction = "complete"
)

type transferEdge struct {
	from []TransferStatus
	to   TransferStatus
}

// transferTransitions es la matriz completa de aristas legales; cualquier otra combinación se rechaza.
var transferTransitions = map[TransferAction]transferEdge{
	TransferActionApprove:    {from: []TransferStatus{TransferStatusPending}, to: TransferStatusApproved},
	TransferActionReject:     {from: []TransferStatus{TransferStatusPending}, to: TransferStatusRejected},
	TransferActionCancel:     {from: []TransferStatus{TransferStatusPending, TransferStatusApproved}, to: TransferStatusRejected},
	TransferActionConfirm:    {from: []TransferStatus{TransferStatusApproved}, to: TransferStatusConfirmed},
	TransferActionInvalidate: {from: []TransferStatus{TransferStatusApproved}, to: TransferStatusRejected},
	TransferActionExpire:     {from: []TransferStatus{TransferStatusPending, TransferStatusApproved}, to: TransferStatusRejected},
	TransferActionShip:       {from: []TransferStatus{TransferStatusConfirmed}, to: TransferStatusInTransit},
	TransferActionComplete:   {from: []TransferStatus{TransferStatusInTransit}, to: TransferStatusCompleted},
}

// NextTransferStatus devuelve el estado destino de aplicar action sobre from.
func NextTransferStatus(from TransferStatus, action TransferAction) (TransferStatus, error) {
	edge, ok := transferTransitions[action]
	if !ok {
		return "", fmt.Errorf("%w: acción desconocida %q", domain.ErrInvalidStateTransition, action)
	}
	if !slices.Contains(edge.from, from) {
		return "", fmt.Errorf("%w: %s no se permite desde %s", domain.ErrInvalidStateTransition, action, from)
	}
	return edge.to, nil
}

// ReleasesHolds indica si la acción termina el traslado devolviendo las retenciones.
func (a TransferAction) ReleasesHolds() bool {
	switch a {
	case TransferActionReject, TransferActionCancel, TransferActionInvalidate, TransferActionExpire:
		return true
	}
	return false
}

// TransferItem línea del traslado. Precio y costo son una foto tomada al crear el traslado.
type TransferItem struct {
	ProductID   string
	SKU         string
	ProductName string
	Quantity    int64
	UnitCost    decimal.Decimal
	UnitPrice   decimal.Decimal
	HoldID      string // interno, nunca se expone al cliente
}

// StockTransfer traslado de stock entre dos ubicaciones.
// Completed y Rejected son registros de auditoría inmutables.
type StockTransfer struct {
	ID                string
	TransferNumber    string
	SourceLocationID  string
	SourceKind        LocationKind
	DestLocationID    string
	DestKind          LocationKind
	Items             []TransferItem
	TotalValue        decimal.Decimal
	TotalCostValue    decimal.Decimal
	Status            TransferStatus
	Priority          TransferPriority
	RequestedBy       string
	RequestedAt       time.Time
	ApprovedBy        string
	ApprovedAt        *time.Time
	ConfirmedAt       *time.Time
	ShippedAt         *time.Time
	CompletedAt       *time.Time
	RejectedBy        string
	RejectedAt        *time.Time
	RejectionReason   string
	EstimatedDelivery *time.Time
	Notes             string
	UpdatedAt         time.Time
}

// TransferEvent entrada del historial de estados de un traslado.
type TransferEvent struct {
	ID         string
	TransferID string
	Action     TransferAction
	FromStatus TransferStatus
	ToStatus   TransferStatus
	Actor      string
	Reason     string
	CreatedAt  time.Time
}

// Apply ejecuta action sobre el traslado validando la matriz de transiciones
// y sella los campos de auditoría correspondientes.
func (t *StockTransfer) Apply(action TransferAction, actor, reason string, at time.Time) (*TransferEvent, error) {
	next, err := NextTransferStatus(t.Status, action)
	if err != nil {
		return nil, fmt.Errorf("traslado %s: %w", t.TransferNumber, err)
	}
	ev := &TransferEvent{
		TransferID: t.ID,
		Action:     action,
		FromStatus: t.Status,
		ToStatus:   next,
		Actor:      actor,
		Reason:     reason,
		CreatedAt:  at,
	}
	switch action {
	case TransferActionApprove:
		t.ApprovedBy = actor
		t.ApprovedAt = &at
	case TransferActionConfirm:
		t.ConfirmedAt = &at
	case TransferActionShip:
		t.ShippedAt = &at
	case TransferActionComplete:
		t.CompletedAt = &at
	default:
		if action.ReleasesHolds() {
			t.RejectedBy = actor
			t.RejectedAt = &at
			t.RejectionReason = reason
		}
	}
	t.Status = next
	t.UpdatedAt = at
	return ev, nil
}
