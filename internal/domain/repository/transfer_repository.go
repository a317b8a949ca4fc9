package repository

import (
	"context"

	"github.com/jhoicas/tradenest-api/internal/domain/entity"
)

// TransferFilter criterios para listar traslados. LocationID coincide con origen o destino.
type TransferFilter struct {
	Status     entity.TransferStatus
	Priority   entity.TransferPriority
	LocationID string
	Limit      int
	Offset     int
}

// TransferRepository define el puerto de persistencia de traslados, sus líneas y su historial.
type TransferRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error)
	// Update persiste solo la cabecera; las líneas son inmutables.
	Update(ctx context.Context, transfer *entity.StockTransfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.StockTransfer, error)
	// NextNumber reserva el siguiente consecutivo del año dentro de la transacción.
	NextNumber(ctx context.Context, year int) (int64, error)
	AddEvent(ctx context.Context, event *entity.TransferEvent) error
	ListEvents(ctx context.Context, transferID string) ([]*entity.TransferEvent, error)
}
