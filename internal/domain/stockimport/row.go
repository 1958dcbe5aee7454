// Package stockimport contiene las reglas puras de la actualización masiva de stock:
// parseo y validación del archivo, semántica de cada tipo de movimiento y
// agregación de resultados por fila. No conoce la base de datos ni HTTP.
package stockimport

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pipr-api/internal/domain/entity"
)

// Columnas reconocidas en la cabecera del archivo.
const (
	ColumnSKU          = "sku"
	ColumnNewStock     = "new_stock"
	ColumnMovementType = "movement_type"
	ColumnNotes        = "notes"
)

// RequiredColumns son las columnas sin las cuales el archivo se rechaza completo.
var RequiredColumns = []string{ColumnSKU, ColumnNewStock, ColumnMovementType}

// StockUpdateRow es una fila ya validada. Line es el número de línea 1-based
// contando la cabecera como línea 1 (la primera fila de datos es la 2).
type StockUpdateRow struct {
	Line         int
	SKU          string
	NewStock     decimal.Decimal
	MovementType entity.MovementType
	Notes        string
}
