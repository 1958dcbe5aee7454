package stockimport_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestPlanMovement_AjusteFijaElValor(t *testing.T) {
	for _, actual := range []int64{0, 40, 1000} {
		plan, err := stockimport.PlanMovement(entity.MovementTypeADJUSTMENT, dec(actual), dec(100))
		require.NoError(t, err)
		assert.True(t, dec(100).Equal(plan.FinalStock), "ADJUSTMENT ignora el stock previo (%d)", actual)
		assert.True(t, dec(100).Equal(plan.Quantity))
	}
}

func TestPlanMovement_EntradaSuma(t *testing.T) {
	plan, err := stockimport.PlanMovement(entity.MovementTypeIN, dec(40), dec(60))
	require.NoError(t, err)
	assert.True(t, dec(100).Equal(plan.FinalStock))
	assert.True(t, dec(60).Equal(plan.Quantity))
}

func TestPlanMovement_SalidaResta(t *testing.T) {
	plan, err := stockimport.PlanMovement(entity.MovementTypeOUT, dec(10), dec(10))
	require.NoError(t, err)
	assert.True(t, plan.FinalStock.IsZero(), "dejar el stock exactamente en cero es válido")
}

func TestPlanMovement_SalidaInsuficiente(t *testing.T) {
	_, err := stockimport.PlanMovement(entity.MovementTypeOUT, dec(10), dec(9999))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ise *stockimport.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "Stock insuficiente. Stock actual: 10, solicitado: 9999", err.Error())
}

func TestPlanMovement_TipoDesconocido(t *testing.T) {
	_, err := stockimport.PlanMovement(entity.MovementType("TRANSFER"), dec(1), dec(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIsNoop(t *testing.T) {
	assert.True(t, stockimport.IsNoop(entity.MovementTypeIN, decimal.Zero))
	assert.True(t, stockimport.IsNoop(entity.MovementTypeOUT, decimal.Zero))
	assert.False(t, stockimport.IsNoop(entity.MovementTypeADJUSTMENT, decimal.Zero))
	assert.False(t, stockimport.IsNoop(entity.MovementTypeIN, dec(1)))
}
