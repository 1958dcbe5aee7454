package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
)

// fakeTx ejecuta fn sin BD y registra si la "transacción" habría hecho commit.
type fakeTx struct {
	repos     TxRepos
	committed bool
}

func (f *fakeTx) Run(_ context.Context, fn func(repos TxRepos) error) error {
	if err := fn(f.repos); err != nil {
		return err
	}
	f.committed = true
	return nil
}

// fakeArticles simula la columna NUMERIC(14,3): redondea al guardar.
type fakeArticles struct {
	byID        map[int64]*entity.Article
	lockErr     error
	updateErr   error
	restockedAt *time.Time
}

func (f *fakeArticles) GetForUpdate(_ context.Context, id int64) (*entity.Article, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeArticles) UpdateStock(_ context.Context, id int64, stock decimal.Decimal, restockedAt *time.Time) (decimal.Decimal, error) {
	if f.updateErr != nil {
		return decimal.Zero, f.updateErr
	}
	stored := stock.Round(3)
	f.byID[id].CurrentStock = stored
	f.restockedAt = restockedAt
	return stored, nil
}

type fakeMovements struct {
	created []*entity.InventoryMovement
	err     error
}

func (f *fakeMovements) Create(_ context.Context, m *entity.InventoryMovement) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, m)
	return nil
}

type mutatorFixture struct {
	mutator   *StockMutator
	tx        *fakeTx
	articles  *fakeArticles
	movements *fakeMovements
}

func newMutatorFixture(stock string) *mutatorFixture {
	articles := &fakeArticles{byID: map[int64]*entity.Article{
		7: {ID: 7, CediID: 1, SKU: "ART001", CurrentStock: decimal.RequireFromString(stock)},
	}}
	movements := &fakeMovements{}
	tx := &fakeTx{repos: TxRepos{Articles: articles, Movements: movements}}
	m := NewStockMutator(tx)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	return &mutatorFixture{mutator: m, tx: tx, articles: articles, movements: movements}
}

func mutation(t entity.MovementType, qty string) inventory.MutationCommand {
	return inventory.MutationCommand{
		ArticleID:     7,
		CediID:        1,
		Quantity:      decimal.RequireFromString(qty),
		MovementType:  t,
		ReferenceType: "bulk_update",
		ReferenceID:   "bulk_1_row_2",
		UserID:        "u-1",
	}
}

func TestApplyMutation_DevuelveStockPersistido(t *testing.T) {
	fx := newMutatorFixture("10")

	res, err := fx.mutator.ApplyMutation(context.Background(), mutation(entity.MovementTypeADJUSTMENT, "1.23456"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "1.235", res.NewStock.String())
	assert.True(t, fx.tx.committed)
	require.Len(t, fx.movements.created, 1)
	assert.Equal(t, "bulk_1_row_2", fx.movements.created[0].ReferenceID)
	assert.Nil(t, fx.articles.restockedAt)
}

func TestApplyMutation_EntradaFijaFechaDeReposicion(t *testing.T) {
	fx := newMutatorFixture("10")

	res, err := fx.mutator.ApplyMutation(context.Background(), mutation(entity.MovementTypeIN, "5"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "15", res.NewStock.String())
	require.NotNil(t, fx.articles.restockedAt)
	assert.Equal(t, 2026, fx.articles.restockedAt.Year())
}

func TestApplyMutation_Rechazos(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(*mutatorFixture)
		cmd     inventory.MutationCommand
		message string
	}{
		{
			name:    "otro CEDI",
			cmd:     func() inventory.MutationCommand { c := mutation(entity.MovementTypeIN, "1"); c.CediID = 2; return c }(),
			message: msgWrongFacility,
		},
		{
			name:    "stock insuficiente",
			cmd:     mutation(entity.MovementTypeOUT, "11"),
			message: "Stock insuficiente. Stock actual: 10, solicitado: 11",
		},
		{
			name:    "referencia repetida",
			setup:   func(fx *mutatorFixture) { fx.movements.err = domain.ErrDuplicate },
			cmd:     mutation(entity.MovementTypeIN, "1"),
			message: msgDuplicateMovement,
		},
		{
			name:    "artículo inexistente",
			cmd:     func() inventory.MutationCommand { c := mutation(entity.MovementTypeIN, "1"); c.ArticleID = 99; return c }(),
			message: msgArticleMissing,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newMutatorFixture("10")
			if tc.setup != nil {
				tc.setup(fx)
			}
			res, err := fx.mutator.ApplyMutation(context.Background(), tc.cmd)
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, tc.message, res.Message)
			assert.False(t, fx.tx.committed)
		})
	}
}

func TestApplyMutation_ErrorDeInfraestructura(t *testing.T) {
	fx := newMutatorFixture("10")
	boom := errors.New("conexión cerrada")
	fx.articles.updateErr = boom

	_, err := fx.mutator.ApplyMutation(context.Background(), mutation(entity.MovementTypeIN, "1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "aplicar movimiento")
	assert.False(t, fx.tx.committed)
}
