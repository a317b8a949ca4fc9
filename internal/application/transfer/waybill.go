package transfer

import (
	"context"
	"fmt"

	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

// WaybillGenerator puerto para generar la guía de despacho (PDF) de un traslado.
type WaybillGenerator interface {
	GenerateWaybillPDF(ctx context.Context, transfer *entity.StockTransfer, source, dest *entity.Location) ([]byte, error)
}

// WaybillUseCase genera la guía de despacho de un traslado.
type WaybillUseCase struct {
	transfers repository.TransferRepository
	locations repository.LocationRepository
	generator WaybillGenerator
}

// NewWaybillUseCase construye el caso de uso.
func NewWaybillUseCase(
	transfers repository.TransferRepository,
	locations repository.LocationRepository,
	generator WaybillGenerator,
) *WaybillUseCase {
	return &WaybillUseCase{transfers: transfers, locations: locations, generator: generator}
}

// DownloadWaybill devuelve el PDF y el nombre de archivo sugerido.
// Se puede generar en cualquier estado; el documento muestra el estado vigente.
func (uc *WaybillUseCase) DownloadWaybill(ctx context.Context, transferID string) ([]byte, string, error) {
	t, err := uc.transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, "", err
	}
	src, err := uc.locations.GetByID(ctx, t.SourceLocationID)
	if err != nil {
		return nil, "", fmt.Errorf("guía: origen: %w", err)
	}
	dst, err := uc.locations.GetByID(ctx, t.DestLocationID)
	if err != nil {
		return nil, "", fmt.Errorf("guía: destino: %w", err)
	}
	pdf, err := uc.generator.GenerateWaybillPDF(ctx, t, src, dst)
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("guia-%s.pdf", t.TransferNumber), nil
}
