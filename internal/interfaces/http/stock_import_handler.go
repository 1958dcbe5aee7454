package http

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/pipr-api/internal/application/dto"
	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

// StockImportHandler maneja la carga masiva de stock por archivo (protegido).
type StockImportHandler struct {
	uc      *inventory.BulkStockUpdateUseCase
	jobs    *inventory.JobRegistry
	reports map[string]inventory.ReportGenerator
}

// NewStockImportHandler construye el handler. Los generadores de reporte se
// indexan por su extensión (pdf, xlsx).
func NewStockImportHandler(uc *inventory.BulkStockUpdateUseCase, jobs *inventory.JobRegistry, reports ...inventory.ReportGenerator) *StockImportHandler {
	h := &StockImportHandler{uc: uc, jobs: jobs, reports: make(map[string]inventory.ReportGenerator, len(reports))}
	for _, g := range reports {
		h.reports[g.Extension()] = g
	}
	return h
}

// Create godoc
// @Summary      Cargar stock masivo desde CSV/XLSX
// @Description  Valida el archivo completo antes de aplicar cualquier movimiento.
//
//	Con async=true responde 202 con el id del lote; si no, espera el resultado.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file     formData  file    true   "Archivo con columnas sku,new_stock,movement_type[,notes]"
// @Param        format   formData  string  false  "csv | xlsx (por defecto según la extensión)"
// @Param        dry_run  query     bool    false  "Simula sin modificar stock"
// @Param        async    query     bool    false  "Procesa en segundo plano"
// @Success      200  {object}  dto.StockImportResponse
// @Success      202  {object}  dto.StockImportJobResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      413  {object}  dto.ErrorResponse
// @Failure      415  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-imports [post]
func (h *StockImportHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "el campo file es requerido"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "no se pudo leer el archivo"})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "no se pudo leer el archivo"})
	}

	batch, err := h.uc.Prepare(c.UserContext(), inventory.BulkInput{
		UserID:   userID,
		FileName: fh.Filename,
		Format:   c.FormValue("format"),
		Data:     data,
		DryRun:   c.QueryBool("dry_run", false),
	})
	if err != nil {
		return writeError(c, err)
	}

	snap, err := h.jobs.Submit(batch)
	if err != nil {
		return writeError(c, err)
	}
	if c.QueryBool("async", false) {
		return c.Status(fiber.StatusAccepted).JSON(dto.ToStockImportJobResponse(snap))
	}

	snap, err = h.jobs.Wait(c.UserContext(), batch.ID)
	if err != nil {
		return writeError(c, err)
	}
	if snap.State == inventory.JobFailed || snap.Output == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: snap.Error})
	}
	return c.Status(fiber.StatusOK).JSON(dto.ToStockImportResponse(snap.Output))
}

// Get godoc
// @Summary      Estado de un lote de carga de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del lote (UUID)"
// @Success      200  {object}  dto.StockImportJobResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-imports/{id} [get]
func (h *StockImportHandler) Get(c *fiber.Ctx) error {
	snap, err := h.visibleJob(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStockImportJobResponse(snap))
}

// Cancel godoc
// @Summary      Cancelar un lote en curso
// @Description  La fila en proceso termina; las siguientes no se aplican.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del lote (UUID)"
// @Success      202  {object}  dto.StockImportJobResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-imports/{id}/cancel [post]
func (h *StockImportHandler) Cancel(c *fiber.Ctx) error {
	snap, err := h.visibleJob(c)
	if err != nil {
		return writeError(c, err)
	}
	if snap, err = h.jobs.Cancel(snap.ID); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ToStockImportJobResponse(snap))
}

// Report godoc
// @Summary      Descargar reporte de un lote
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id      path   string  true   "ID del lote (UUID)"
// @Param        format  query  string  false  "pdf (por defecto) | xlsx"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-imports/{id}/report [get]
func (h *StockImportHandler) Report(c *fiber.Ctx) error {
	gen, ok := h.reports[c.Query("format", "pdf")]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FORMAT", Message: "formato de reporte no soportado"})
	}
	snap, err := h.visibleJob(c)
	if err != nil {
		return writeError(c, err)
	}
	if !snap.State.Done() || snap.Output == nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "JOB_NOT_FINISHED", Message: "el lote aún no tiene resultados"})
	}

	body, err := gen.GenerateBatchReport(c.UserContext(), inventory.BatchReport{
		BatchID:     snap.ID.String(),
		FileName:    snap.FileName,
		CediID:      snap.CediID,
		UserID:      snap.UserID,
		DryRun:      snap.DryRun,
		State:       string(snap.State),
		GeneratedAt: time.Now(),
		Output:      snap.Output,
	})
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, gen.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="stock-import-%s.%s"`, snap.ID, gen.Extension()))
	return c.Send(body)
}

// visibleJob devuelve el job de :id si pertenece al usuario o si el rol es
// superadministrador. En otro caso responde como inexistente.
func (h *StockImportHandler) visibleJob(c *fiber.Ctx) (inventory.JobSnapshot, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return inventory.JobSnapshot{}, errInvalidJobID
	}
	snap, err := h.jobs.Get(id)
	if err != nil {
		return inventory.JobSnapshot{}, err
	}
	if snap.UserID != GetUserID(c) && GetRole(c) != entity.RoleSuperAdmin {
		return inventory.JobSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

var errInvalidJobID = errors.New("id de lote inválido")

func writeError(c *fiber.Ctx, err error) error {
	var missing *stockimport.MissingColumnsError
	var rowErr *stockimport.RowError
	switch {
	case errors.Is(err, errInvalidJobID):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: err.Error()})
	case errors.As(err, &missing):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_COLUMNS", Message: missing.Error()})
	case errors.As(err, &rowErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ROW", Message: rowErr.Error()})
	case errors.Is(err, domain.ErrEmptyFile):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EMPTY_FILE", Message: err.Error()})
	case errors.Is(err, domain.ErrFileTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: err.Error()})
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(dto.ErrorResponse{Code: "UNSUPPORTED_FORMAT", Message: err.Error()})
	case errors.Is(err, domain.ErrFacilityUnresolved):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FACILITY_UNRESOLVED", Message: domain.ErrFacilityUnresolved.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
	case errors.Is(err, inventory.ErrRegistryClosed):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SHUTTING_DOWN", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
