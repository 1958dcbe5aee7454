package repository

import (
	"context"

	"github.com/jhoicas/pipr-api/internal/domain/entity"
)

// ArticleRepository define el puerto de lectura del catálogo local de un CEDI.
type ArticleRepository interface {
	// GetBySKU devuelve domain.ErrNotFound si el SKU no existe en el CEDI.
	GetBySKU(ctx context.Context, cediID int64, sku string) (*entity.Article, error)
}
