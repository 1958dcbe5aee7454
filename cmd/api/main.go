package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jhoicas/pipr-api/docs"
	"github.com/jhoicas/pipr-api/internal/application/dto"
	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/bootstrap"
	"github.com/jhoicas/pipr-api/internal/infrastructure/observability"
	infrapdf "github.com/jhoicas/pipr-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pipr-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pipr-api/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/pipr-api/internal/interfaces/http"
	"github.com/jhoicas/pipr-api/pkg/config"
	"github.com/jhoicas/pipr-api/pkg/logger"
)

// version se sobrescribe en build con -ldflags "-X main.version=...".
var version = "dev"

// @title        PIPR API
// @version      1.0
// @description  Carga masiva de stock por CEDI.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("version", version).
		Msg("iniciando aplicación")

	ctx := context.Background()
	shutdownTracing, err := observability.SetupTracingSDK(ctx, cfg.Tracing, version)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	metricsReg := observability.NewRegistry()
	var observer inventory.Observer
	if cfg.Metrics.Enabled {
		observer = observability.NewStockImportMetrics(metricsReg)
	}

	stockImport := bootstrap.NewStockImport(cfg, pool, log, observer)
	jobs := inventory.NewJobRegistry(stockImport.UseCase, cfg.Import.JobRetention, log.Component("job_registry"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.BodyLimit,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PIPR API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: cfg.App.Name})
	})
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		BulkStockUpdate: stockImport.UseCase,
		Jobs:            jobs,
		Reports: []inventory.ReportGenerator{
			infrapdf.NewMarotoPDFGenerator(),
			spreadsheet.NewXLSXReportGenerator(),
		},
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Los lotes en curso terminan la fila actual y quedan como cancelados.
	if err := jobs.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de lotes en curso")
	}
	if err := stockImport.Close(); err != nil {
		log.Error().Err(err).Msg("cerrar publicador de eventos")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
