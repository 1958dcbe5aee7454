package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/repository"
)

// ArticleLocker operaciones sobre artículos que requieren una transacción.
type ArticleLocker interface {
	GetForUpdate(ctx context.Context, id int64) (*entity.Article, error)
	UpdateStock(ctx context.Context, id int64, stock decimal.Decimal, restockedAt *time.Time) (decimal.Decimal, error)
}

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Articles  ArticleLocker
	Movements repository.InventoryMovementRepository
	AuditLog  repository.AuditLogRepository
}

// Transactor ejecuta fn dentro de una transacción; la implementa TxRunner.
type Transactor interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

var _ Transactor = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := TxRepos{
		Articles:  NewArticleRepository(tx),
		Movements: NewInventoryMovementRepository(tx),
		AuditLog:  NewAuditLogRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
