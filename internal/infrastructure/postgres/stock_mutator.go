package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

var _ inventory.StockMutator = (*StockMutator)(nil)

// Mensajes de rechazo devueltos en MutationResult.
const (
	msgDuplicateMovement = "movimiento duplicado"
	msgWrongFacility     = "El artículo no pertenece al CEDI del usuario"
	msgArticleMissing    = "Artículo no encontrado"
)

// errRejected aborta la transacción con un rechazo de negocio.
type errRejected struct{ msg string }

func (e errRejected) Error() string { return e.msg }

// StockMutator aplica un movimiento en una transacción: bloquea el artículo,
// recalcula el stock sobre el valor bloqueado, lo actualiza y registra el movimiento.
type StockMutator struct {
	tx  Transactor
	now func() time.Time
}

// NewStockMutator construye el mutador sobre el runner transaccional.
func NewStockMutator(tx Transactor) *StockMutator {
	return &StockMutator{tx: tx, now: time.Now}
}

// ApplyMutation devuelve Success=false para rechazos de negocio (stock
// insuficiente, referencia repetida, artículo de otro CEDI) y error sólo para
// fallos de BD.
func (m *StockMutator) ApplyMutation(ctx context.Context, cmd inventory.MutationCommand) (inventory.MutationResult, error) {
	var result inventory.MutationResult
	err := m.tx.Run(ctx, func(repos TxRepos) error {
		article, err := repos.Articles.GetForUpdate(ctx, cmd.ArticleID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errRejected{msgArticleMissing}
			}
			return err
		}
		if article.CediID != cmd.CediID {
			return errRejected{msgWrongFacility}
		}

		plan, err := stockimport.PlanMovement(cmd.MovementType, article.CurrentStock, cmd.Quantity)
		if err != nil {
			return errRejected{err.Error()}
		}

		var restockedAt *time.Time
		if cmd.MovementType == entity.MovementTypeIN {
			now := m.now()
			restockedAt = &now
		}
		stored, err := repos.Articles.UpdateStock(ctx, article.ID, plan.FinalStock, restockedAt)
		if err != nil {
			return err
		}

		err = repos.Movements.Create(ctx, &entity.InventoryMovement{
			ArticleID:     article.ID,
			CediID:        article.CediID,
			Type:          cmd.MovementType,
			Quantity:      cmd.Quantity,
			ReferenceType: cmd.ReferenceType,
			ReferenceID:   cmd.ReferenceID,
			Notes:         cmd.Notes,
			CreatedBy:     cmd.UserID,
		})
		if errors.Is(err, domain.ErrDuplicate) {
			return errRejected{msgDuplicateMovement}
		}
		if err != nil {
			return err
		}

		result = inventory.MutationResult{Success: true, NewStock: stored}
		return nil
	})

	var rej errRejected
	if errors.As(err, &rej) {
		return inventory.MutationResult{Success: false, Message: rej.msg}, nil
	}
	if err != nil {
		return inventory.MutationResult{}, fmt.Errorf("aplicar movimiento: %w", err)
	}
	return result, nil
}
