package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	BulkStockUpdate *inventory.BulkStockUpdateUseCase
	Jobs            *inventory.JobRegistry
	Reports         []inventory.ReportGenerator
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Carga masiva de stock: sólo administradores de CEDI
	imports := protected.Group("/inventory/stock-imports", RequireRole(entity.RoleAdmin, entity.RoleSuperAdmin))
	stockImportHandler := NewStockImportHandler(deps.BulkStockUpdate, deps.Jobs, deps.Reports...)
	imports.Post("/", stockImportHandler.Create)
	imports.Get("/:id", stockImportHandler.Get)
	imports.Post("/:id/cancel", stockImportHandler.Cancel)
	imports.Get("/:id/report", stockImportHandler.Report)
}
