package spreadsheet

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
)

var _ inventory.ReportGenerator = (*XLSXReportGenerator)(nil)

const (
	resultsSheet = "Resultados"
	summarySheet = "Resumen"
)

// XLSXReportGenerator escribe el reporte de un lote con una hoja de resultados
// por fila y una de resumen.
type XLSXReportGenerator struct{}

// NewXLSXReportGenerator construye el generador.
func NewXLSXReportGenerator() *XLSXReportGenerator { return &XLSXReportGenerator{} }

func (g *XLSXReportGenerator) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (g *XLSXReportGenerator) Extension() string { return "xlsx" }

// GenerateBatchReport genera el libro y devuelve sus bytes.
func (g *XLSXReportGenerator) GenerateBatchReport(_ context.Context, rep inventory.BatchReport) ([]byte, error) {
	if rep.Output == nil {
		return nil, fmt.Errorf("xlsx: el lote %s no tiene resultados", rep.BatchID)
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), resultsSheet); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	header := []interface{}{"row", "sku", "status", "message", "old_stock", "new_stock"}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: cabecera: %w", err)
	}
	for i, r := range rep.Output.Results {
		excelRow := []interface{}{r.Row, r.SKU, string(r.Status), r.Message, cellValue(r.OldStock), cellValue(r.NewStock)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx: celda: %w", err)
		}
		if err := f.SetSheetRow(resultsSheet, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", r.Row, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("xlsx: hoja resumen: %w", err)
	}
	s := rep.Output.Summary
	summary := [][]interface{}{
		{"batch_id", rep.BatchID},
		{"file_name", rep.FileName},
		{"cedi_id", rep.CediID},
		{"dry_run", rep.DryRun},
		{"state", rep.State},
		{"success_count", s.SuccessCount},
		{"error_count", s.ErrorCount},
		{"warning_count", s.WarningCount},
		{"total_count", s.TotalCount},
		{"generated_at", rep.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	for i, kv := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &kv); err != nil {
			return nil, fmt.Errorf("xlsx: resumen: %w", err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue escribe el stock como número; vacío si no aplica.
func cellValue(d *decimal.Decimal) interface{} {
	if d == nil {
		return ""
	}
	v, _ := d.Float64()
	return v
}
