package inventory_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

const escenarioCSV = `sku,new_stock,movement_type,notes
ART001,100,ADJUSTMENT,Inventario inicial
ART002,9999,OUT,Consumo en producción
ART999,5,IN,Recepción de mercancía
`

type bulkFixture struct {
	store     *fakeStore
	facility  *fakeFacility
	audit     *fakeAudit
	publisher *fakePublisher
	observer  *fakeObserver
	uc        *inventory.BulkStockUpdateUseCase
}

func newBulkFixture(opts ...inventory.BulkOption) *bulkFixture {
	f := &bulkFixture{
		store:     newFakeStore(map[string]int64{"ART001": 40, "ART002": 10}),
		facility:  &fakeFacility{cediID: 7},
		audit:     &fakeAudit{},
		publisher: &fakePublisher{},
		observer:  newFakeObserver(),
	}
	exec := inventory.NewStockMutationExecutor(f.store, f.store, f.observer, "", zerolog.Nop())
	base := []inventory.BulkOption{
		inventory.WithAuditLog(f.audit),
		inventory.WithEventPublisher(f.publisher),
		inventory.WithObserver(f.observer),
	}
	f.uc = inventory.NewBulkStockUpdateUseCase(f.facility, exec, zerolog.Nop(), append(base, opts...)...)
	return f
}

func TestRun_EscenarioCompleto(t *testing.T) {
	f := newBulkFixture()

	out, err := f.uc.Run(context.Background(), inventory.BulkInput{
		UserID:   "u1",
		FileName: "stock.csv",
		Data:     []byte(escenarioCSV),
	}, nil)
	require.NoError(t, err)

	require.Len(t, out.Results, 3)
	assert.Equal(t, int64(7), out.CediID)
	assert.Equal(t, stockimport.Summary{SuccessCount: 1, ErrorCount: 2, TotalCount: 3}, out.Summary)
	assert.Equal(t, stockimport.StatusSuccess, out.Results[0].Status)
	assert.Equal(t, "Stock insuficiente. Stock actual: 10, solicitado: 9999", out.Results[1].Message)
	assert.Equal(t, stockimport.MsgNotFound, out.Results[2].Message)
	assert.Equal(t, 1, f.facility.calls, "el CEDI se resuelve una vez por lote")

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, entity.AuditActionBulkStockUpdate, entry.Action)
	assert.Equal(t, out.BatchID.String(), entry.RecordID)
	var values map[string]any
	require.NoError(t, json.Unmarshal(entry.NewValues, &values))
	assert.EqualValues(t, 1, values["success_count"])
	assert.Equal(t, "stock.csv", values["file_name"])

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, out.BatchID.String(), f.publisher.events[0].BatchID)
	assert.Equal(t, 3, f.publisher.events[0].TotalCount)
	assert.Equal(t, []string{inventory.OutcomeCompleted}, f.observer.outcomes)
}

func TestRun_FaltanColumnasNoProcesaNada(t *testing.T) {
	f := newBulkFixture()
	out, err := f.uc.Run(context.Background(), inventory.BulkInput{UserID: "u1", Data: []byte("sku,notes\nA,x\n")}, nil)
	require.Error(t, err)
	assert.Nil(t, out)

	var mc *stockimport.MissingColumnsError
	assert.True(t, errors.As(err, &mc))
	assert.Zero(t, f.store.lookups)
	assert.Zero(t, f.facility.calls, "la validación ocurre antes de resolver el CEDI")
}

func TestRun_FilaInvalidaAbortaAntesDeMutar(t *testing.T) {
	f := newBulkFixture()
	data := "sku,new_stock,movement_type\nART001,1,IN\nART002,-4,IN\n"
	out, err := f.uc.Run(context.Background(), inventory.BulkInput{UserID: "u1", Data: []byte(data)}, nil)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "Fila 3")
	assert.Empty(t, f.store.mutationCalls())
}

func TestRun_SoloCabeceraEsArchivoVacio(t *testing.T) {
	f := newBulkFixture()
	_, err := f.uc.Run(context.Background(), inventory.BulkInput{UserID: "u1", Data: []byte("sku,new_stock,movement_type\n")}, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyFile)
}

func TestRun_CEDINoResuelto(t *testing.T) {
	f := newBulkFixture()
	f.facility.err = errors.New("usuario sin CEDI")

	out, err := f.uc.Run(context.Background(), inventory.BulkInput{UserID: "u1", Data: []byte(escenarioCSV)}, nil)
	require.Error(t, err)
	assert.Nil(t, out, "un error fatal no produce resultados parciales")
	assert.ErrorIs(t, err, domain.ErrFacilityUnresolved)
	assert.Zero(t, f.store.lookups)
	assert.Empty(t, f.audit.entries)
}

func TestRun_ArchivoDemasiadoGrande(t *testing.T) {
	f := newBulkFixture(inventory.WithMaxFileBytes(10))
	_, err := f.uc.Run(context.Background(), inventory.BulkInput{UserID: "u1", Data: []byte(escenarioCSV)}, nil)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestRun_FormatoNoSoportado(t *testing.T) {
	f := newBulkFixture()
	_, err := f.uc.Run(context.Background(), inventory.BulkInput{UserID: "u1", FileName: "stock.ods", Data: []byte(escenarioCSV)}, nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = f.uc.Run(context.Background(), inventory.BulkInput{UserID: "u1", FileName: "stock.xlsx", Data: []byte("x")}, nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat, "sin lector XLSX configurado")
}

func TestRun_XLSX(t *testing.T) {
	f := newBulkFixture(inventory.WithSpreadsheetReader(fakeSheet{records: [][]string{
		{"SKU", "New_Stock", "Movement_Type"},
		{"art001", "5", "in"},
	}}))
	out, err := f.uc.Run(context.Background(), inventory.BulkInput{UserID: "u1", FileName: "Stock.XLSX", Data: []byte("binario")}, nil)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "ART001", out.Results[0].SKU)
	assert.Equal(t, stockimport.StatusSuccess, out.Results[0].Status)
}

func TestRun_SimulacionSinAuditoriaNiEvento(t *testing.T) {
	f := newBulkFixture()
	out, err := f.uc.Run(context.Background(), inventory.BulkInput{UserID: "u1", Data: []byte(escenarioCSV), DryRun: true}, nil)
	require.NoError(t, err)
	assert.True(t, out.DryRun)
	assert.Equal(t, stockimport.MsgDryRunOK, out.Results[0].Message)
	assert.Empty(t, f.store.mutationCalls())
	assert.Empty(t, f.audit.entries)
	assert.Empty(t, f.publisher.events)
	assert.Equal(t, []string{inventory.OutcomeDryRun}, f.observer.outcomes)
}

func TestRun_FalloAlPublicarNoFallaElLote(t *testing.T) {
	f := newBulkFixture()
	f.publisher.err = errors.New("broker caído")

	out, err := f.uc.Run(context.Background(), inventory.BulkInput{UserID: "u1", Data: []byte(escenarioCSV)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Summary.TotalCount)
	assert.Len(t, f.publisher.events, 1)
}

func TestExecute_CanceladoAuditaLoAplicado(t *testing.T) {
	f := newBulkFixture()
	batch, err := f.uc.Prepare(context.Background(), inventory.BulkInput{UserID: "u1", Data: []byte(escenarioCSV)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	out, err := f.uc.Execute(ctx, batch, func(p stockimport.Progress) {
		if p.Completed == 1 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, domain.ErrBatchCancelled)
	require.NotNil(t, out)
	assert.Len(t, out.Results, 1)
	assert.Len(t, f.audit.entries, 1)
	assert.Equal(t, []string{inventory.OutcomeCancelled}, f.observer.outcomes)
}
