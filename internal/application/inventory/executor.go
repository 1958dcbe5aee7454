package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/repository"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

const tracerName = "github.com/jhoicas/pipr-api/internal/application/inventory"

// ExecuteOptions parámetros de un lote ya validado.
type ExecuteOptions struct {
	CediID   int64
	UserID   string
	DryRun   bool
	BatchID  string
	BatchAt  time.Time
	Progress func(stockimport.Progress)
}

// StockMutationExecutor procesa las filas de un lote en orden, una a la vez.
// Los errores de negocio de una fila quedan en su ProcessingResult y no detienen el lote.
type StockMutationExecutor struct {
	articles      repository.ArticleRepository
	mutator       StockMutator
	observer      Observer
	referenceType string
	tracer        trace.Tracer
	log           zerolog.Logger
}

// NewStockMutationExecutor construye el executor. observer puede ser nil.
func NewStockMutationExecutor(
	articles repository.ArticleRepository,
	mutator StockMutator,
	observer Observer,
	referenceType string,
	log zerolog.Logger,
) *StockMutationExecutor {
	if observer == nil {
		observer = nopObserver{}
	}
	if referenceType == "" {
		referenceType = entity.ReferenceTypeCSVBulkUpdate
	}
	return &StockMutationExecutor{
		articles:      articles,
		mutator:       mutator,
		observer:      observer,
		referenceType: referenceType,
		tracer:        otel.Tracer(tracerName),
		log:           log,
	}
}

// ReferenceType etiqueta con la que se registran los movimientos del lote.
func (e *StockMutationExecutor) ReferenceType() string { return e.referenceType }

// Execute devuelve exactamente un resultado por fila, en el orden de entrada.
// El contexto se revisa antes de cada fila; si se cancela, devuelve los
// resultados ya producidos junto con domain.ErrBatchCancelled.
func (e *StockMutationExecutor) Execute(ctx context.Context, rows []stockimport.StockUpdateRow, opts ExecuteOptions) ([]stockimport.ProcessingResult, error) {
	ctx, span := e.tracer.Start(ctx, "stockimport.execute", trace.WithAttributes(
		attribute.String("batch.id", opts.BatchID),
		attribute.Int64("cedi.id", opts.CediID),
		attribute.Int("batch.rows", len(rows)),
		attribute.Bool("batch.dry_run", opts.DryRun),
	))
	defer span.End()

	if opts.BatchAt.IsZero() {
		opts.BatchAt = time.Now()
	}

	results := make([]stockimport.ProcessingResult, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelado")
			e.log.Warn().Str("batch_id", opts.BatchID).Int("processed", i).Int("total", len(rows)).Msg("lote cancelado")
			return results, fmt.Errorf("%w: %w", domain.ErrBatchCancelled, err)
		}

		res := e.processRow(ctx, row, opts)
		results = append(results, res)
		e.observer.RowProcessed(res.Status)

		if opts.Progress != nil {
			opts.Progress(stockimport.Progress{Completed: i + 1, Total: len(rows)})
		}
	}
	return results, nil
}

// processRow nunca devuelve error: todo fallo de la fila (incluido un panic)
// se convierte en un resultado con estado error.
func (e *StockMutationExecutor) processRow(ctx context.Context, row stockimport.StockUpdateRow, opts ExecuteOptions) (res stockimport.ProcessingResult) {
	ctx, span := e.tracer.Start(ctx, "stockimport.row", trace.WithAttributes(
		attribute.Int("row.line", row.Line),
		attribute.String("row.sku", row.SKU),
		attribute.String("row.movement_type", string(row.MovementType)),
	))
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Int("row", row.Line).Str("sku", row.SKU).Msg("panic procesando fila")
			res = errorResult(row, stockimport.MsgUnexpected, nil)
		}
		span.SetAttributes(attribute.String("row.status", string(res.Status)))
		if res.Status == stockimport.StatusError {
			span.SetStatus(codes.Error, res.Message)
		}
		span.End()
	}()

	article, err := e.articles.GetBySKU(ctx, opts.CediID, row.SKU)
	if err != nil || article == nil {
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			return errorResult(row, stockimport.MsgNotFound, nil)
		}
		e.log.Error().Err(err).Int("row", row.Line).Str("sku", row.SKU).Msg("consulta de artículo")
		return errorResult(row, stockimport.MsgLookupFailed+": "+err.Error(), nil)
	}

	oldStock := article.CurrentStock

	if stockimport.IsNoop(row.MovementType, row.NewStock) {
		return stockimport.ProcessingResult{
			Row:      row.Line,
			SKU:      row.SKU,
			Status:   stockimport.StatusWarning,
			Message:  stockimport.MsgNoopMovement,
			OldStock: ptr(oldStock),
		}
	}

	plan, err := stockimport.PlanMovement(row.MovementType, oldStock, row.NewStock)
	if err != nil {
		return errorResult(row, err.Error(), &oldStock)
	}

	if opts.DryRun {
		return stockimport.ProcessingResult{
			Row:      row.Line,
			SKU:      row.SKU,
			Status:   stockimport.StatusSuccess,
			Message:  stockimport.MsgDryRunOK,
			OldStock: ptr(oldStock),
			NewStock: ptr(plan.FinalStock),
		}
	}

	out, err := e.mutator.ApplyMutation(ctx, MutationCommand{
		ArticleID:     article.ID,
		CediID:        opts.CediID,
		Quantity:      plan.Quantity,
		MovementType:  row.MovementType,
		ReferenceType: e.referenceType,
		ReferenceID:   ReferenceID(opts.BatchAt, opts.BatchID, row.Line),
		Notes:         row.Notes,
		UserID:        opts.UserID,
	})
	if err != nil {
		e.log.Error().Err(err).Int("row", row.Line).Str("sku", row.SKU).Msg("mutación de stock")
		return errorResult(row, err.Error(), &oldStock)
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = stockimport.MsgUnknownError
		}
		return errorResult(row, msg, &oldStock)
	}

	return stockimport.ProcessingResult{
		Row:      row.Line,
		SKU:      row.SKU,
		Status:   stockimport.StatusSuccess,
		Message:  stockimport.MsgUpdated,
		OldStock: ptr(oldStock),
		NewStock: ptr(out.NewStock),
	}
}

// ReferenceID identifica el movimiento de una fila:
// bulk_<unix_ms>_<lote>_row_<línea>. Sin id de lote queda bulk_<unix_ms>_row_<línea>.
func ReferenceID(batchAt time.Time, batchID string, line int) string {
	if batchID == "" {
		return fmt.Sprintf("bulk_%d_row_%d", batchAt.UnixMilli(), line)
	}
	return fmt.Sprintf("bulk_%d_%s_row_%d", batchAt.UnixMilli(), batchID, line)
}

func errorResult(row stockimport.StockUpdateRow, msg string, oldStock *decimal.Decimal) stockimport.ProcessingResult {
	return stockimport.ProcessingResult{
		Row:      row.Line,
		SKU:      row.SKU,
		Status:   stockimport.StatusError,
		Message:  msg,
		OldStock: oldStock,
	}
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }
