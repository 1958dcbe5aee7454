package stockimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"

	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// MaxQuantityScale decimales que admite new_stock (columnas NUMERIC(14,3)).
const MaxQuantityScale = 3

// ParseCSV convierte el contenido de un archivo CSV en filas validadas.
// La validación es todo-o-nada: la primera fila inválida aborta el parseo y no
// se devuelve ninguna fila.
func ParseCSV(data []byte) ([]StockUpdateRow, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	// Sólo se descartan líneas de texto vacías; una línea ",," es una fila.
	r := csv.NewReader(strings.NewReader(strings.Join(nonBlankLines(text), "\n")))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Line: len(records) + 1, Reason: "formato CSV inválido"}
		}
		records = append(records, rec)
	}
	return parseLines(records)
}

// ParseRecords valida registros ya separados en campos (una hoja XLSX).
// Los registros con todas las celdas vacías se descartan antes de numerar las líneas.
func ParseRecords(records [][]string) ([]StockUpdateRow, error) {
	var lines [][]string
	for _, rec := range records {
		if !isBlank(rec) {
			lines = append(lines, rec)
		}
	}
	return parseLines(lines)
}

// parseLines valida cabecera y filas; la línea n es lines[n-1].
func parseLines(lines [][]string) ([]StockUpdateRow, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyFile
	}

	idx, err := indexHeader(lines[0])
	if err != nil {
		return nil, err
	}

	rows := make([]StockUpdateRow, 0, len(lines)-1)
	for i, rec := range lines[1:] {
		row, err := validateRecord(i+2, idx, rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// columnIndex mapea el nombre de columna (minúsculas) a su posición en el registro.
type columnIndex map[string]int

func (c columnIndex) value(rec []string, column string) string {
	i, ok := c[column]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func indexHeader(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return idx, nil
}

var upper = cases.Upper(language.Und)

func validateRecord(line int, idx columnIndex, rec []string) (StockUpdateRow, error) {
	movement := entity.MovementType(upper.String(idx.value(rec, ColumnMovementType)))
	if !movement.Valid() {
		return StockUpdateRow{}, &RowError{
			Line:   line,
			Column: ColumnMovementType,
			Reason: "Tipo de movimiento inválido. Use: IN, OUT, o ADJUSTMENT",
		}
	}

	qty, ok := parseQuantity(idx.value(rec, ColumnNewStock))
	if !ok {
		return StockUpdateRow{}, &RowError{
			Line:   line,
			Column: ColumnNewStock,
			Reason: "new_stock debe ser un número mayor o igual a 0",
		}
	}
	if !qty.Equal(qty.Round(MaxQuantityScale)) {
		return StockUpdateRow{}, &RowError{
			Line:   line,
			Column: ColumnNewStock,
			Reason: "new_stock admite como máximo 3 decimales",
		}
	}

	sku := upper.String(idx.value(rec, ColumnSKU))
	if sku == "" {
		return StockUpdateRow{}, &RowError{Line: line, Column: ColumnSKU, Reason: "sku es obligatorio"}
	}

	return StockUpdateRow{
		Line:         line,
		SKU:          sku,
		NewStock:     qty,
		MovementType: movement,
		Notes:        idx.value(rec, ColumnNotes),
	}, nil
}

// parseQuantity acepta decimales finitos no negativos ("10", "2.5", "1e3").
func parseQuantity(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// decodeText quita el BOM y, si el contenido no es UTF-8, lo interpreta como
// Windows-1252 (exportaciones de Excel en español).
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", &RowError{Line: 1, Reason: "codificación de archivo no soportada"}
	}
	return string(out), nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, strings.TrimSuffix(line, "\r"))
		}
	}
	return out
}
