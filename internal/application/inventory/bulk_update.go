package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/repository"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

// Formatos de archivo aceptados.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// BulkInput entrada del caso de uso: el archivo subido y quién lo ejecuta.
type BulkInput struct {
	UserID   string
	FileName string
	Format   string // vacío: se deduce de la extensión de FileName
	Data     []byte
	DryRun   bool
}

// PreparedBatch es un lote que ya pasó la validación y tiene CEDI resuelto.
// Ninguna fila se ha procesado todavía.
type PreparedBatch struct {
	ID       uuid.UUID
	UserID   string
	CediID   int64
	FileName string
	DryRun   bool
	Rows     []stockimport.StockUpdateRow
}

// BulkOutput resultado de un lote procesado (completo o parcial si se canceló).
type BulkOutput struct {
	BatchID    uuid.UUID
	CediID     int64
	DryRun     bool
	Results    []stockimport.ProcessingResult
	Summary    stockimport.Summary
	StartedAt  time.Time
	FinishedAt time.Time
}

// BulkStockUpdateUseCase orquesta la actualización masiva: parseo, resolución
// del CEDI, ejecución fila a fila, auditoría y evento de cierre.
type BulkStockUpdateUseCase struct {
	facilities FacilityResolver
	executor   *StockMutationExecutor
	xlsx       SpreadsheetReader
	audit      repository.AuditLogRepository
	publisher  EventPublisher
	observer   Observer
	maxBytes   int64
	log        zerolog.Logger
}

// BulkOption configura dependencias opcionales del caso de uso.
type BulkOption func(*BulkStockUpdateUseCase)

// WithSpreadsheetReader habilita archivos XLSX.
func WithSpreadsheetReader(r SpreadsheetReader) BulkOption {
	return func(uc *BulkStockUpdateUseCase) { uc.xlsx = r }
}

// WithAuditLog registra cada lote aplicado en el log de auditoría.
func WithAuditLog(repo repository.AuditLogRepository) BulkOption {
	return func(uc *BulkStockUpdateUseCase) { uc.audit = repo }
}

// WithEventPublisher publica stock.bulk_update.completed al cerrar cada lote.
func WithEventPublisher(p EventPublisher) BulkOption {
	return func(uc *BulkStockUpdateUseCase) {
		if p != nil {
			uc.publisher = p
		}
	}
}

// WithObserver recibe métricas de lote.
func WithObserver(o Observer) BulkOption {
	return func(uc *BulkStockUpdateUseCase) {
		if o != nil {
			uc.observer = o
		}
	}
}

// WithMaxFileBytes limita el tamaño del archivo; 0 desactiva el límite.
func WithMaxFileBytes(n int64) BulkOption {
	return func(uc *BulkStockUpdateUseCase) { uc.maxBytes = n }
}

// NewBulkStockUpdateUseCase construye el caso de uso.
func NewBulkStockUpdateUseCase(facilities FacilityResolver, executor *StockMutationExecutor, log zerolog.Logger, opts ...BulkOption) *BulkStockUpdateUseCase {
	uc := &BulkStockUpdateUseCase{
		facilities: facilities,
		executor:   executor,
		publisher:  nopPublisher{},
		observer:   nopObserver{},
		log:        log,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Prepare valida el archivo y resuelve el CEDI. Cualquier error aquí es fatal
// para el lote y no produce resultados.
func (uc *BulkStockUpdateUseCase) Prepare(ctx context.Context, in BulkInput) (*PreparedBatch, error) {
	if uc.maxBytes > 0 && int64(len(in.Data)) > uc.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	rows, err := uc.parse(in)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrEmptyFile
	}

	cediID, err := uc.facilities.ResolveFacility(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrFacilityUnresolved) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrFacilityUnresolved, err)
	}

	return &PreparedBatch{
		ID:       uuid.New(),
		UserID:   in.UserID,
		CediID:   cediID,
		FileName: in.FileName,
		DryRun:   in.DryRun,
		Rows:     rows,
	}, nil
}

// Execute procesa un lote preparado. Con contexto cancelado devuelve la salida
// parcial junto con domain.ErrBatchCancelled; la salida nunca es nil.
func (uc *BulkStockUpdateUseCase) Execute(ctx context.Context, batch *PreparedBatch, progress func(stockimport.Progress)) (*BulkOutput, error) {
	started := time.Now()
	log := uc.log.With().Str("batch_id", batch.ID.String()).Int64("cedi_id", batch.CediID).Logger()
	log.Info().Int("rows", len(batch.Rows)).Bool("dry_run", batch.DryRun).Str("file", batch.FileName).Msg("inicio de lote")

	results, execErr := uc.executor.Execute(ctx, batch.Rows, ExecuteOptions{
		CediID:   batch.CediID,
		UserID:   batch.UserID,
		DryRun:   batch.DryRun,
		BatchID:  batch.ID.String(),
		BatchAt:  started,
		Progress: progress,
	})

	out := &BulkOutput{
		BatchID:    batch.ID,
		CediID:     batch.CediID,
		DryRun:     batch.DryRun,
		Results:    results,
		Summary:    stockimport.Summarize(results),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}

	outcome := OutcomeCompleted
	switch {
	case errors.Is(execErr, domain.ErrBatchCancelled):
		outcome = OutcomeCancelled
	case execErr != nil:
		outcome = OutcomeFailed
	case batch.DryRun:
		outcome = OutcomeDryRun
	}
	uc.observer.BatchFinished(outcome, out.FinishedAt.Sub(started))

	log.Info().
		Str("outcome", outcome).
		Int("success", out.Summary.SuccessCount).
		Int("error", out.Summary.ErrorCount).
		Int("warning", out.Summary.WarningCount).
		Dur("elapsed", out.FinishedAt.Sub(started)).
		Msg("fin de lote")

	// Los movimientos aplicados antes de una cancelación también se auditan.
	if !batch.DryRun && len(results) > 0 {
		uc.recordAudit(context.WithoutCancel(ctx), batch, out, log)
		uc.publish(context.WithoutCancel(ctx), batch, out, log)
	}
	return out, execErr
}

// Run combina Prepare y Execute.
func (uc *BulkStockUpdateUseCase) Run(ctx context.Context, in BulkInput, progress func(stockimport.Progress)) (*BulkOutput, error) {
	batch, err := uc.Prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	return uc.Execute(ctx, batch, progress)
}

func (uc *BulkStockUpdateUseCase) parse(in BulkInput) ([]stockimport.StockUpdateRow, error) {
	format := strings.ToLower(strings.TrimSpace(in.Format))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(in.FileName)), ".")
	}
	switch format {
	case "", FormatCSV, "txt":
		return stockimport.ParseCSV(in.Data)
	case FormatXLSX:
		if uc.xlsx == nil {
			return nil, domain.ErrUnsupportedFormat
		}
		records, err := uc.xlsx.ReadRecords(in.Data)
		if err != nil {
			return nil, err
		}
		return stockimport.ParseRecords(records)
	default:
		return nil, domain.ErrUnsupportedFormat
	}
}

type auditValues struct {
	FileName      string `json:"file_name"`
	ReferenceType string `json:"reference_type"`
	SuccessCount  int    `json:"success_count"`
	ErrorCount    int    `json:"error_count"`
	WarningCount  int    `json:"warning_count"`
	TotalCount    int    `json:"total_count"`
	TotalRows     int    `json:"total_rows"`
}

func (uc *BulkStockUpdateUseCase) recordAudit(ctx context.Context, batch *PreparedBatch, out *BulkOutput, log zerolog.Logger) {
	if uc.audit == nil {
		return
	}
	values, err := json.Marshal(auditValues{
		FileName:      batch.FileName,
		ReferenceType: uc.executor.ReferenceType(),
		SuccessCount:  out.Summary.SuccessCount,
		ErrorCount:    out.Summary.ErrorCount,
		WarningCount:  out.Summary.WarningCount,
		TotalCount:    out.Summary.TotalCount,
		TotalRows:     len(batch.Rows),
	})
	if err != nil {
		log.Error().Err(err).Msg("serializar auditoría")
		return
	}
	entry := &entity.AuditLogEntry{
		TableName: "inventory_movements",
		RecordID:  batch.ID.String(),
		Action:    entity.AuditActionBulkStockUpdate,
		NewValues: values,
		UserID:    batch.UserID,
		Timestamp: out.FinishedAt,
	}
	if err := uc.audit.Create(ctx, entry); err != nil {
		log.Error().Err(err).Msg("registrar auditoría del lote")
	}
}

func (uc *BulkStockUpdateUseCase) publish(ctx context.Context, batch *PreparedBatch, out *BulkOutput, log zerolog.Logger) {
	evt := BatchCompletedEvent{
		BatchID:       batch.ID.String(),
		CediID:        batch.CediID,
		UserID:        batch.UserID,
		FileName:      batch.FileName,
		ReferenceType: uc.executor.ReferenceType(),
		SuccessCount:  out.Summary.SuccessCount,
		ErrorCount:    out.Summary.ErrorCount,
		WarningCount:  out.Summary.WarningCount,
		TotalCount:    out.Summary.TotalCount,
		StartedAt:     out.StartedAt,
		FinishedAt:    out.FinishedAt,
	}
	if err := uc.publisher.PublishBatchCompleted(ctx, evt); err != nil {
		log.Warn().Err(err).Msg("publicar evento de lote")
	}
}
