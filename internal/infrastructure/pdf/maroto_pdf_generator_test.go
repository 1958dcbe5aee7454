package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
	"github.com/jhoicas/pipr-api/internal/infrastructure/pdf"
)

func TestGenerateBatchReport(t *testing.T) {
	old, nuevo := decimal.NewFromInt(40), decimal.NewFromInt(100)
	results := []stockimport.ProcessingResult{
		{Row: 2, SKU: "ART001", Status: stockimport.StatusSuccess, Message: stockimport.MsgUpdated, OldStock: &old, NewStock: &nuevo},
		{Row: 3, SKU: "ART999", Status: stockimport.StatusError, Message: stockimport.MsgNotFound},
	}
	id := uuid.New()
	rep := inventory.BatchReport{
		BatchID:     id.String(),
		FileName:    "stock.csv",
		CediID:      7,
		State:       "completed",
		GeneratedAt: time.Now(),
		Output:      &inventory.BulkOutput{BatchID: id, Results: results, Summary: stockimport.Summarize(results)},
	}

	g := pdf.NewMarotoPDFGenerator()
	data, err := g.GenerateBatchReport(context.Background(), rep)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Equal(t, "application/pdf", g.ContentType())
}

func TestGenerateBatchReport_SinResultados(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator().GenerateBatchReport(context.Background(), inventory.BatchReport{BatchID: "x"})
	assert.Error(t, err)
}
