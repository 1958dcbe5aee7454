package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

// StockImportResultDTO resultado de una fila del archivo.
type StockImportResultDTO struct {
	Row      int              `json:"row"`
	SKU      string           `json:"sku"`
	Status   string           `json:"status"`
	Message  string           `json:"message"`
	OldStock *decimal.Decimal `json:"old_stock,omitempty"`
	NewStock *decimal.Decimal `json:"new_stock,omitempty"`
}

// StockImportSummaryDTO conteo de resultados por estado.
type StockImportSummaryDTO struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	TotalCount   int `json:"total_count"`
}

// StockImportResponse respuesta de POST /api/inventory/stock-imports (modo síncrono).
type StockImportResponse struct {
	BatchID    string                 `json:"batch_id"`
	CediID     int64                  `json:"cedi_id"`
	DryRun     bool                   `json:"dry_run"`
	Summary    StockImportSummaryDTO  `json:"summary"`
	Results    []StockImportResultDTO `json:"results"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
}

// ProgressDTO avance de un lote asíncrono.
type ProgressDTO struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// StockImportJobResponse estado de un lote asíncrono.
type StockImportJobResponse struct {
	ID         string               `json:"id"`
	State      string               `json:"state"`
	FileName   string               `json:"file_name,omitempty"`
	CediID     int64                `json:"cedi_id"`
	DryRun     bool                 `json:"dry_run"`
	Progress   ProgressDTO          `json:"progress"`
	Error      string               `json:"error,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
	Result     *StockImportResponse `json:"result,omitempty"`
}

// ToStockImportResponse mapea la salida del caso de uso.
func ToStockImportResponse(out *inventory.BulkOutput) *StockImportResponse {
	if out == nil {
		return nil
	}
	resp := &StockImportResponse{
		BatchID:    out.BatchID.String(),
		CediID:     out.CediID,
		DryRun:     out.DryRun,
		Summary:    toSummaryDTO(out.Summary),
		Results:    make([]StockImportResultDTO, 0, len(out.Results)),
		StartedAt:  out.StartedAt,
		FinishedAt: out.FinishedAt,
	}
	for _, r := range out.Results {
		resp.Results = append(resp.Results, StockImportResultDTO{
			Row:      r.Row,
			SKU:      r.SKU,
			Status:   string(r.Status),
			Message:  r.Message,
			OldStock: r.OldStock,
			NewStock: r.NewStock,
		})
	}
	return resp
}

// ToStockImportJobResponse mapea el snapshot de un job.
func ToStockImportJobResponse(s inventory.JobSnapshot) *StockImportJobResponse {
	return &StockImportJobResponse{
		ID:       s.ID.String(),
		State:    string(s.State),
		FileName: s.FileName,
		CediID:   s.CediID,
		DryRun:   s.DryRun,
		Progress: ProgressDTO{
			Completed: s.Progress.Completed,
			Total:     s.Progress.Total,
			Percent:   s.Progress.Percent(),
		},
		Error:      s.Error,
		CreatedAt:  s.CreatedAt,
		FinishedAt: s.FinishedAt,
		Result:     ToStockImportResponse(s.Output),
	}
}

func toSummaryDTO(s stockimport.Summary) StockImportSummaryDTO {
	return StockImportSummaryDTO{
		SuccessCount: s.SuccessCount,
		ErrorCount:   s.ErrorCount,
		WarningCount: s.WarningCount,
		TotalCount:   s.TotalCount,
	}
}
