package repository

import (
	"context"

	"github.com/jhoicas/pipr-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
type InventoryMovementRepository interface {
	// Create devuelve domain.ErrDuplicate si ya existe un movimiento con el mismo
	// (ReferenceType, ReferenceID).
	Create(ctx context.Context, movement *entity.InventoryMovement) error
}
