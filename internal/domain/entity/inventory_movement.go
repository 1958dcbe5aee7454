package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType clasifica un cambio de stock.
type MovementType string

// Tipos de movimiento de inventario (enum inventory_movement_type en BD).
const (
	MovementTypeIN         MovementType = "IN"         // entrada / recepción
	MovementTypeOUT        MovementType = "OUT"        // salida / consumo
	MovementTypeADJUSTMENT MovementType = "ADJUSTMENT" // ajuste absoluto
)

// Valid indica si el tipo es uno de los tres soportados.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUSTMENT:
		return true
	}
	return false
}

// ReferenceTypeCSVBulkUpdate etiqueta los movimientos generados por la carga masiva.
const ReferenceTypeCSVBulkUpdate = "CSV_BULK_UPDATE"

// InventoryMovement es el registro histórico de un cambio de stock aplicado.
// Quantity es la cantidad enviada en la operación (para ADJUSTMENT, el valor absoluto fijado).
type InventoryMovement struct {
	ID            int64
	ArticleID     int64
	CediID        int64
	Type          MovementType
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}
