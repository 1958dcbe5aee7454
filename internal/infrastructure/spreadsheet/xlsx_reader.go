// Package spreadsheet lee archivos XLSX de carga de stock y escribe el reporte
// XLSX de un lote, usando excelize.
package spreadsheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain"
)

var _ inventory.SpreadsheetReader = (*XLSXReader)(nil)

// XLSXReader lee la hoja activa del libro como registros de texto.
type XLSXReader struct{}

// NewXLSXReader construye el lector.
func NewXLSXReader() *XLSXReader { return &XLSXReader{} }

// ReadRecords devuelve las filas de la hoja activa. Las celdas se leen con su
// valor almacenado, sin el formato de número (miles, moneda), así que una
// celda 1500 con formato "#,##0" llega como "1500".
func (r *XLSXReader) ReadRecords(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: no se pudo leer el archivo XLSX: %v", domain.ErrInvalidInput, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: hoja %q: %v", domain.ErrInvalidInput, sheet, err)
	}
	return rows, nil
}
