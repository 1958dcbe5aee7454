// Package bootstrap arma el pipeline de carga masiva sobre PostgreSQL para los
// binarios api y stockimport.
package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/pipr-api/internal/application/auth"
	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/infrastructure/events"
	"github.com/jhoicas/pipr-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pipr-api/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/pipr-api/pkg/config"
	"github.com/jhoicas/pipr-api/pkg/logger"
)

// StockImport caso de uso de carga masiva y los recursos que hay que cerrar.
type StockImport struct {
	UseCase   *inventory.BulkStockUpdateUseCase
	publisher *events.KafkaPublisher
}

// NewStockImport construye repositorios, mutador, ejecutor y caso de uso.
// observer puede ser nil. Si Kafka está configurado se publica el evento de lote.
func NewStockImport(cfg *config.Config, pool *pgxpool.Pool, log *logger.Logger, observer inventory.Observer) *StockImport {
	articleRepo := postgres.NewArticleRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	mutator := postgres.NewStockMutator(txRunner)

	executor := inventory.NewStockMutationExecutor(articleRepo, mutator, observer, cfg.Import.ReferenceType, log.Component("stock_executor"))

	opts := []inventory.BulkOption{
		inventory.WithSpreadsheetReader(spreadsheet.NewXLSXReader()),
		inventory.WithAuditLog(auditRepo),
		inventory.WithObserver(observer),
		inventory.WithMaxFileBytes(cfg.Import.MaxFileBytes),
	}

	s := &StockImport{}
	if cfg.Kafka.Enabled() {
		writer := events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		s.publisher = events.NewKafkaPublisher(writer, cfg.Kafka.Topic, log.Component("kafka_publisher"))
		opts = append(opts, inventory.WithEventPublisher(s.publisher))
	}

	s.UseCase = inventory.NewBulkStockUpdateUseCase(
		auth.NewFacilityResolver(userRepo),
		executor,
		log.Component("bulk_stock_update"),
		opts...,
	)
	return s
}

// Close libera el publicador de eventos si existe.
func (s *StockImport) Close() error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.Close()
}
