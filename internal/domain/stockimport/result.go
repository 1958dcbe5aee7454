package stockimport

import "github.com/shopspring/decimal"

// Status es el resultado de procesar una fila.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
)

// Mensajes de resultado por fila.
const (
	MsgUpdated      = "Stock actualizado correctamente"
	MsgDryRunOK     = "Validación correcta (simulación)"
	MsgNotFound     = "Artículo no encontrado en el inventario local"
	MsgUnknownError = "Error desconocido"
	MsgUnexpected   = "Error inesperado"
	MsgNoopMovement = "Movimiento sin cantidad; no se aplicó"
	MsgLookupFailed = "Error consultando el artículo"
)

// ProcessingResult es el resultado inmutable de una fila. NewStock sólo se
// informa en éxito y es el valor confirmado por el backend.
type ProcessingResult struct {
	Row      int
	SKU      string
	Status   Status
	Message  string
	OldStock *decimal.Decimal
	NewStock *decimal.Decimal
}

// Summary agrega los resultados de un lote. Los contadores suman TotalCount.
type Summary struct {
	SuccessCount int
	ErrorCount   int
	WarningCount int
	TotalCount   int
}

// Summarize particiona los resultados por estado.
func Summarize(results []ProcessingResult) Summary {
	s := Summary{TotalCount: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.SuccessCount++
		case StatusWarning:
			s.WarningCount++
		default:
			s.ErrorCount++
		}
	}
	return s
}

// Progress es el avance de un lote tras procesar Completed de Total filas.
type Progress struct {
	Completed int
	Total     int
}

// Percent devuelve (Completed / Total) * 100; 0 para un lote vacío.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}
