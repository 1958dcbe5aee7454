package observability_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
	"github.com/jhoicas/pipr-api/internal/infrastructure/observability"
)

func TestStockImportMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewStockImportMetrics(reg)

	m.RowProcessed(stockimport.StatusSuccess)
	m.RowProcessed(stockimport.StatusSuccess)
	m.RowProcessed(stockimport.StatusError)
	m.BatchFinished(inventory.OutcomeCompleted, 1500*time.Millisecond)

	assert.Equal(t, 3, testutil.CollectAndCount(reg, "pipr_stock_import_rows_total", "pipr_stock_import_batches_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "pipr_stock_import_batch_duration_seconds"))
}

func TestNewRegistry_IncluyeRuntime(t *testing.T) {
	reg := observability.NewRegistry()
	observability.NewStockImportMetrics(reg)

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
