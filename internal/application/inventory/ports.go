package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

// FacilityResolver resuelve el CEDI asignado al usuario que ejecuta el lote.
// Debe devolver domain.ErrFacilityUnresolved (o un error que lo envuelva) si el
// usuario no existe o no tiene CEDI.
type FacilityResolver interface {
	ResolveFacility(ctx context.Context, userID string) (int64, error)
}

// MutationCommand es la petición de cambio atómico de stock de un artículo.
type MutationCommand struct {
	ArticleID     int64
	CediID        int64
	Quantity      decimal.Decimal
	MovementType  entity.MovementType
	ReferenceType string
	ReferenceID   string
	Notes         string
	UserID        string
}

// MutationResult es la respuesta del backend. Success=false es un rechazo de
// negocio (stock insuficiente, referencia duplicada...) con Message explicativo.
type MutationResult struct {
	Success  bool
	NewStock decimal.Decimal
	Message  string
}

// StockMutator aplica un movimiento de stock de forma atómica (bloqueo de fila,
// actualización de stock y registro del movimiento en la misma transacción).
// Un error devuelto es un fallo de transporte/infraestructura.
type StockMutator interface {
	ApplyMutation(ctx context.Context, cmd MutationCommand) (MutationResult, error)
}

// SpreadsheetReader convierte un libro XLSX en registros de texto.
type SpreadsheetReader interface {
	ReadRecords(data []byte) ([][]string, error)
}

// BatchCompletedEvent se publica al cerrar un lote aplicado (no en simulación).
type BatchCompletedEvent struct {
	BatchID       string    `json:"batch_id"`
	CediID        int64     `json:"cedi_id"`
	UserID        string    `json:"user_id"`
	FileName      string    `json:"file_name"`
	ReferenceType string    `json:"reference_type"`
	SuccessCount  int       `json:"success_count"`
	ErrorCount    int       `json:"error_count"`
	WarningCount  int       `json:"warning_count"`
	TotalCount    int       `json:"total_count"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// EventPublisher publica eventos de dominio hacia otros sistemas.
type EventPublisher interface {
	PublishBatchCompleted(ctx context.Context, evt BatchCompletedEvent) error
}

// Observer recibe métricas del pipeline. Las implementaciones deben ser seguras
// para uso concurrente (varios lotes asíncronos).
type Observer interface {
	RowProcessed(status stockimport.Status)
	BatchFinished(outcome string, elapsed time.Duration)
}

// Resultados de lote para Observer.BatchFinished.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
	OutcomeDryRun    = "dry_run"
)

type nopObserver struct{}

func (nopObserver) RowProcessed(stockimport.Status)     {}
func (nopObserver) BatchFinished(string, time.Duration) {}

type nopPublisher struct{}

func (nopPublisher) PublishBatchCompleted(context.Context, BatchCompletedEvent) error { return nil }

// BatchReport datos de un lote para generar su reporte descargable.
type BatchReport struct {
	BatchID     string
	FileName    string
	CediID      int64
	UserID      string
	DryRun      bool
	State       string
	GeneratedAt time.Time
	Output      *BulkOutput
}

// ReportGenerator genera el reporte de un lote en un formato concreto.
type ReportGenerator interface {
	GenerateBatchReport(ctx context.Context, report BatchReport) ([]byte, error)
	ContentType() string
	Extension() string
}
