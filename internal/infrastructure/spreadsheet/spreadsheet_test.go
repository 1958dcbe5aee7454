package spreadsheet_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
	"github.com/jhoicas/pipr-api/internal/infrastructure/spreadsheet"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf.Bytes()
}

func TestXLSXReader_PlantillaConNumeros(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"sku", "new_stock", "movement_type", "notes"},
		{"ART001", 100, "ADJUSTMENT", "Inventario inicial"},
		{"ART002", 2.5, "in", ""},
	})

	records, err := spreadsheet.NewXLSXReader().ReadRecords(data)
	require.NoError(t, err)

	rows, err := stockimport.ParseRecords(records)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ART001", rows[0].SKU)
	assert.True(t, decimal.NewFromInt(100).Equal(rows[0].NewStock))
	assert.True(t, decimal.RequireFromString("2.5").Equal(rows[1].NewStock))
	assert.Equal(t, 3, rows[1].Line)
}

func TestXLSXReader_IgnoraFormatoDeMiles(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"sku", "new_stock", "movement_type"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"ART001", 1500, "ADJUSTMENT"}))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "B2", "B2", style))
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))

	records, err := spreadsheet.NewXLSXReader().ReadRecords(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1500", records[1][1])

	rows, err := stockimport.ParseRecords(records)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, decimal.NewFromInt(1500).Equal(rows[0].NewStock))
}

func TestXLSXReader_ArchivoCorrupto(t *testing.T) {
	_, err := spreadsheet.NewXLSXReader().ReadRecords([]byte("sku,new_stock"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestXLSXReport(t *testing.T) {
	old, nuevo := decimal.NewFromInt(40), decimal.NewFromInt(100)
	results := []stockimport.ProcessingResult{
		{Row: 2, SKU: "ART001", Status: stockimport.StatusSuccess, Message: stockimport.MsgUpdated, OldStock: &old, NewStock: &nuevo},
		{Row: 3, SKU: "ART999", Status: stockimport.StatusError, Message: stockimport.MsgNotFound},
	}
	id := uuid.New()
	data, err := spreadsheet.NewXLSXReportGenerator().GenerateBatchReport(context.Background(), inventory.BatchReport{
		BatchID:     id.String(),
		FileName:    "stock.csv",
		GeneratedAt: time.Now(),
		Output:      &inventory.BulkOutput{BatchID: id, Results: results, Summary: stockimport.Summarize(results)},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Resultados")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"row", "sku", "status", "message", "old_stock", "new_stock"}, rows[0])
	assert.Equal(t, "ART001", rows[1][1])
	assert.Equal(t, "100", rows[1][5])
	assert.Equal(t, stockimport.MsgNotFound, rows[2][3])

	total, err := f.GetCellValue("Resumen", "B9")
	require.NoError(t, err)
	assert.Equal(t, "2", total)
}
