// Package pdf implementa la guía de despacho de un traslado de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: GUÍA DE TRASLADO     │  N° Traslado + Fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: nombre + tipo        │  DESTINO: nombre + tipo     │
//	│  Estado / Prioridad / Entrega estimada                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | SKU | Producto | P.Unit | Subtotal           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Valor a costo / Valor a precio de venta           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR del traslado + firmas de despacho y recibo      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/tradenest-api/internal/application/transfer"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/inventory"
)

var _ transfer.WaybillGenerator = (*MarotoWaybillGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var statusLabels = map[entity.TransferStatus]string{
	entity.TransferStatusPending:   "Pendiente",
	entity.TransferStatusApproved:  "Aprobado",
	entity.TransferStatusConfirmed: "Confirmado",
	entity.TransferStatusInTransit: "En tránsito",
	entity.TransferStatusCompleted: "Completado",
	entity.TransferStatusRejected:  "Rechazado",
}

var kindLabels = map[entity.LocationKind]string{
	entity.LocationKindWarehouse: "Bodega",
	entity.LocationKindOutlet:    "Punto de venta",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoWaybillGenerator implementa transfer.WaybillGenerator usando Maroto v2.
type MarotoWaybillGenerator struct{}

// NewMarotoWaybillGenerator construye el generador.
func NewMarotoWaybillGenerator() *MarotoWaybillGenerator { return &MarotoWaybillGenerator{} }

// GenerateWaybillPDF genera el PDF y devuelve sus bytes.
func (g *MarotoWaybillGenerator) GenerateWaybillPDF(
	_ context.Context,
	t *entity.StockTransfer,
	source, dest *entity.Location,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía de traslado "+t.TransferNumber, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(endpointsRow(source, dest))
	m.AddRows(detailsRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(t.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(t))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(t))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar guía: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(t *entity.StockTransfer) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("GUÍA DE TRASLADO DE MERCANCÍA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Solicitado por: "+nonEmpty(t.RequestedBy, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("N° TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(t.TransferNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+t.RequestedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func endpointsRow(source, dest *entity.Location) core.Row {
	block := func(title string, l *entity.Location) core.Col {
		return col.New(6).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(l.Name, l.ID), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(kindLabels[l.Kind]+"   |   ID: "+l.ID, props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	}
	return row.New(18).Add(block("ORIGEN", source), block("DESTINO", dest))
}

func detailsRow(t *entity.StockTransfer) core.Row {
	delivery := "—"
	if t.EstimatedDelivery != nil {
		delivery = t.EstimatedDelivery.Format("02/01/2006")
	}
	info := fmt.Sprintf("Estado: %s   |   Prioridad: %s   |   Entrega estimada: %s",
		statusLabels[t.Status], t.Priority, delivery)
	return row.New(12).Add(col.New(12).Add(
		text.New(info, props.Text{Size: 8, Top: 1}),
		text.New("Notas: "+nonEmpty(t.Notes, "—"), props.Text{Size: 8, Top: 6, Color: colorGray}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("SKU", 3, align.Left),
		h("Producto", 4, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

func tableDetailRows(items []entity.TransferItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(it.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New("$"+formatMoney(it.UnitPrice.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatMoney(inventory.StockValue(it.Quantity, it.UnitPrice).StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(t *entity.StockTransfer) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(label("Valor a costo:"), label("VALOR TOTAL:")),
		col.New(3).Add(
			value("$"+formatMoney(t.TotalCostValue.StringFixed(0))),
			value("$"+formatMoney(t.TotalValue.StringFixed(0))),
		),
	)
}

// footerRow: QR con el número de traslado para escanear al recibir, más firmas.
func footerRow(t *entity.StockTransfer) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(t.TransferNumber+"|"+t.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Despachado por: ______________________", props.Text{Size: 9, Top: 6, Left: 3}),
			text.New("Recibido por:   ______________________", props.Text{Size: 9, Top: 18, Left: 3}),
			text.New("Verifique cantidades y referencias antes de firmar el recibo.", props.Text{
				Size: 7, Top: 30, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	neg := len(s) > 0 && s[0] == '-'
	if neg {
		s = s[1:]
	}
	n := len(s)
	buf := make([]byte, 0, n+n/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
