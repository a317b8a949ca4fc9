package transfer_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tradenest-api/internal/application/transfer"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/infrastructure/pdf"
)

type spyGenerator struct {
	transfer *entity.StockTransfer
	source   *entity.Location
	dest     *entity.Location
}

func (g *spyGenerator) GenerateWaybillPDF(_ context.Context, t *entity.StockTransfer, source, dest *entity.Location) ([]byte, error) {
	g.transfer, g.source, g.dest = t, source, dest
	return []byte("%PDF-spy"), nil
}

func TestDownloadWaybill_ResuelveUbicaciones(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "10", "20")
	created, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 3)))
	require.NoError(t, err)

	spy := &spyGenerator{}
	uc := transfer.NewWaybillUseCase(f.reads.Transfers, f.reads.Locations, spy)
	body, name, err := uc.DownloadWaybill(f.ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "guia-TR-2026-001.pdf", name)
	assert.Equal(t, []byte("%PDF-spy"), body)
	assert.Equal(t, "Bodega Central", spy.source.Name)
	assert.Equal(t, "Tienda Centro", spy.dest.Name)
	require.Len(t, spy.transfer.Items, 1)

	_, _, err = uc.DownloadWaybill(f.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDownloadWaybill_GeneraPDFConMaroto(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "P1", entity.ProductStatusApproved, 100, "12000", "18500.50")
	f.seedProduct(t, "P2", entity.ProductStatusApproved, 40, "3000", "4500")
	created, err := f.uc.Create(f.ctx, requester, createReq(item("P1", 12), item("P2", 7)))
	require.NoError(t, err)

	uc := transfer.NewWaybillUseCase(f.reads.Transfers, f.reads.Locations, pdf.NewMarotoWaybillGenerator())
	body, _, err := uc.DownloadWaybill(f.ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")), "el documento debe ser un PDF")
	assert.Greater(t, len(body), 1000)
}
