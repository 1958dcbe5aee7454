// Package pdf genera el reporte PDF de un lote de actualización masiva de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + archivo    │  Lote + Fecha                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: CEDI / Usuario / Modo / Estado                     │
//	│  Exitosas | Con error | Advertencias | Total                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fila | SKU | Estado | Stock ant. | Stock nuevo | Msg │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID del lote + leyenda                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorSuccess = &props.Color{Red: 20, Green: 120, Blue: 60}
	colorError   = &props.Color{Red: 180, Green: 30, Blue: 30}
	colorWarning = &props.Color{Red: 190, Green: 120, Blue: 0}
)

var _ inventory.ReportGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa inventory.ReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// ContentType tipo MIME del reporte.
func (g *MarotoPDFGenerator) ContentType() string { return "application/pdf" }

// Extension extensión del archivo descargado.
func (g *MarotoPDFGenerator) Extension() string { return "pdf" }

// GenerateBatchReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateBatchReport(_ context.Context, rep inventory.BatchReport) ([]byte, error) {
	if rep.Output == nil {
		return nil, fmt.Errorf("pdf: el lote %s no tiene resultados", rep.BatchID)
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Actualización masiva de stock", true).
		WithAuthor("PIPR", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(batchInfoRow(rep))
	m.AddRows(summaryRow(rep.Output.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(rep.Output.Results)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(rep))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rep inventory.BatchReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("ACTUALIZACIÓN MASIVA DE STOCK", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Archivo: "+nonEmpty(rep.FileName, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("LOTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(rep.BatchID, props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Right, Top: 7,
			}),
			text.New("Generado: "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func batchInfoRow(rep inventory.BatchReport) core.Row {
	mode := "Aplicado"
	if rep.DryRun {
		mode = "Simulación"
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL LOTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("CEDI: %d   |   Usuario: %s   |   Modo: %s   |   Estado: %s",
				rep.CediID,
				nonEmpty(rep.UserID, "—"),
				mode,
				nonEmpty(rep.State, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func summaryRow(s stockimport.Summary) core.Row {
	box := func(label string, n int, c *props.Color) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(strconv.Itoa(n), props.Text{
				Style: fontstyle.Bold, Size: 14, Align: align.Center, Color: c, Top: 6,
			}),
		)
	}
	return row.New(16).Add(
		box("Exitosas", s.SuccessCount, colorSuccess),
		box("Con error", s.ErrorCount, colorError),
		box("Advertencias", s.WarningCount, colorWarning),
		box("Total", s.TotalCount, colorPrimary),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fila", 1, align.Center),
		h("SKU", 2, align.Left),
		h("Estado", 1, align.Center),
		h("Stock ant.", 2, align.Right),
		h("Stock nuevo", 2, align.Right),
		h("Mensaje", 4, align.Left),
	)
}

// tableDetailRows: una fila por resultado, en el orden del archivo.
func tableDetailRows(results []stockimport.ProcessingResult) []core.Row {
	out := make([]core.Row, 0, len(results))
	for _, r := range results {
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(r.Row), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(r.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(string(r.Status), props.Text{
				Size: 7, Align: align.Center, Top: 1, Color: statusColor(r.Status),
			})),
			col.New(2).Add(text.New(formatStock(r.OldStock), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatStock(r.NewStock), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(4).Add(text.New(r.Message, props.Text{Size: 7, Top: 1, Left: 1})),
		))
	}
	return out
}

func footerRow(rep inventory.BatchReport) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(rep.BatchID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Los movimientos aplicados quedan registrados con referencia "+
				"bulk_<timestamp>_row_<fila> en el historial de inventario del CEDI.", props.Text{
				Size: 7, Top: 4, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusColor(s stockimport.Status) *props.Color {
	switch s {
	case stockimport.StatusSuccess:
		return colorSuccess
	case stockimport.StatusWarning:
		return colorWarning
	default:
		return colorError
	}
}

func formatStock(d *decimal.Decimal) string {
	if d == nil {
		return "—"
	}
	return d.String()
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
