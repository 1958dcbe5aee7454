package stockimport

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
)

// Plan describe la mutación que corresponde a una fila dado el stock actual.
type Plan struct {
	// Quantity es la cantidad enviada a la operación de stock.
	Quantity decimal.Decimal
	// FinalStock es el stock esperado después de aplicar el movimiento.
	FinalStock decimal.Decimal
}

// PlanMovement aplica la semántica del tipo de movimiento:
//   - ADJUSTMENT fija el stock en value.
//   - IN suma value.
//   - OUT resta value; si el resultado es negativo devuelve *InsufficientStockError.
func PlanMovement(t entity.MovementType, current, value decimal.Decimal) (Plan, error) {
	switch t {
	case entity.MovementTypeADJUSTMENT:
		return Plan{Quantity: value, FinalStock: value}, nil
	case entity.MovementTypeIN:
		return Plan{Quantity: value, FinalStock: current.Add(value)}, nil
	case entity.MovementTypeOUT:
		final := current.Sub(value)
		if final.IsNegative() {
			return Plan{}, &InsufficientStockError{Have: current, Requested: value}
		}
		return Plan{Quantity: value, FinalStock: final}, nil
	}
	return Plan{}, domain.ErrInvalidInput
}

// IsNoop indica si el movimiento no cambia nada: IN u OUT con cantidad cero.
// Un ADJUSTMENT a cero sí es un cambio válido.
func IsNoop(t entity.MovementType, value decimal.Decimal) bool {
	return value.IsZero() && (t == entity.MovementTypeIN || t == entity.MovementTypeOUT)
}
