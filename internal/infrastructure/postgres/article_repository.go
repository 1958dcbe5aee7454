package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/repository"
)

var (
	_ repository.ArticleRepository = (*ArticleRepo)(nil)
	_ ArticleLocker                = (*ArticleRepo)(nil)
)

// ArticleRepo implementación sobre PostgreSQL (usable con pool o tx).
type ArticleRepo struct {
	q Querier
}

// NewArticleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewArticleRepository(q Querier) *ArticleRepo {
	return &ArticleRepo{q: q}
}

const articleColumns = `id, cedi_id, master_article_id, sku, name, description, supplier,
	current_stock, reorder_point, unit_cost, last_restocked_at, created_at`

// GetBySKU obtiene un artículo del catálogo local del CEDI.
func (r *ArticleRepo) GetBySKU(ctx context.Context, cediID int64, sku string) (*entity.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE cedi_id = $1 AND sku = $2`
	a, err := scanArticle(r.q.QueryRow(ctx, query, cediID, sku))
	if err != nil {
		return nil, fmt.Errorf("get article by sku: %w", err)
	}
	return a, nil
}

// GetForUpdate bloquea la fila del artículo hasta el fin de la transacción.
// Sólo tiene sentido con un Querier transaccional.
func (r *ArticleRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 FOR UPDATE`
	a, err := scanArticle(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("lock article: %w", err)
	}
	return a, nil
}

// UpdateStock fija el stock actual y devuelve el valor que quedó almacenado
// (current_stock es NUMERIC(14,3)). restockedAt se actualiza sólo si no es nil.
func (r *ArticleRepo) UpdateStock(ctx context.Context, id int64, stock decimal.Decimal, restockedAt *time.Time) (decimal.Decimal, error) {
	query := `
		UPDATE articles
		SET current_stock = $2, last_restocked_at = COALESCE($3, last_restocked_at)
		WHERE id = $1
		RETURNING current_stock`
	var stored decimal.Decimal
	if err := r.q.QueryRow(ctx, query, id, stock, restockedAt).Scan(&stored); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("update article stock: %w", err)
	}
	return stored, nil
}

func scanArticle(row pgx.Row) (*entity.Article, error) {
	var a entity.Article
	var description, supplier *string
	err := row.Scan(
		&a.ID, &a.CediID, &a.MasterArticleID, &a.SKU, &a.Name, &description, &supplier,
		&a.CurrentStock, &a.ReorderPoint, &a.UnitCost, &a.LastRestockedAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	a.Description = deref(description)
	a.Supplier = deref(supplier)
	return &a, nil
}
