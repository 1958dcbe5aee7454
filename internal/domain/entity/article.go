package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Article representa un artículo del catálogo local de un CEDI.
// SKU es único por CEDI; CurrentStock sólo cambia vía movimientos de inventario.
type Article struct {
	ID              int64
	CediID          int64
	MasterArticleID *int64
	SKU             string
	Name            string
	Description     string
	Supplier        string
	CurrentStock    decimal.Decimal
	ReorderPoint    decimal.Decimal
	UnitCost        *decimal.Decimal
	LastRestockedAt *time.Time
	CreatedAt       time.Time
}
