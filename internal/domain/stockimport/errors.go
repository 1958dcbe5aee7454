package stockimport

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pipr-api/internal/domain"
)

// MissingColumnsError indica que la cabecera no trae todas las columnas requeridas.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "Faltan columnas requeridas: " + strings.Join(e.Columns, ", ")
}

// Unwrap permite errors.Is(err, domain.ErrInvalidInput).
func (e *MissingColumnsError) Unwrap() error { return domain.ErrInvalidInput }

// RowError es un error de formato en una fila concreta del archivo.
type RowError struct {
	Line   int
	Column string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Fila %d: %s", e.Line, e.Reason)
}

// Unwrap permite errors.Is(err, domain.ErrInvalidInput).
func (e *RowError) Unwrap() error { return domain.ErrInvalidInput }

// InsufficientStockError se produce cuando un OUT dejaría el stock en negativo.
type InsufficientStockError struct {
	Have      decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Stock insuficiente. Stock actual: %s, solicitado: %s", e.Have.String(), e.Requested.String())
}

// Unwrap permite errors.Is(err, domain.ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return domain.ErrInsufficientStock }
