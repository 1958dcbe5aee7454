package stockimport_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

const plantilla = `sku,new_stock,movement_type,notes
ART001,100,ADJUSTMENT,Inventario inicial
ART002,50,IN,Recepción de mercancía
ART003,25,OUT,Consumo en producción`

func TestParseCSV_Plantilla(t *testing.T) {
	rows, err := stockimport.ParseCSV([]byte(plantilla))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "ART001", rows[0].SKU)
	assert.True(t, decimal.NewFromInt(100).Equal(rows[0].NewStock))
	assert.Equal(t, entity.MovementTypeADJUSTMENT, rows[0].MovementType)
	assert.Equal(t, "Inventario inicial", rows[0].Notes)

	assert.Equal(t, entity.MovementTypeIN, rows[1].MovementType)
	assert.Equal(t, entity.MovementTypeOUT, rows[2].MovementType)
	assert.Equal(t, 4, rows[2].Line)
}

func TestParseCSV_ColumnasEnCualquierOrdenYMayusculas(t *testing.T) {
	data := "  Movement_Type , SKU,New_Stock\nin,art010,5\n"
	rows, err := stockimport.ParseCSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "ART010", rows[0].SKU, "el sku se normaliza a mayúsculas")
	assert.Equal(t, entity.MovementTypeIN, rows[0].MovementType)
	assert.Equal(t, "", rows[0].Notes, "notes es opcional")
}

func TestParseCSV_DescartaLineasEnBlanco(t *testing.T) {
	data := "\n\nsku,new_stock,movement_type\r\n\r\nA1,1,IN\r\n   \r\nA2,2,OUT\r\n\n"
	rows, err := stockimport.ParseCSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 2, "filas = líneas no vacías - 1")
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, 3, rows[1].Line, "la numeración ignora las líneas en blanco")
}

func TestParseCSV_LineaSoloComasEsUnaFila(t *testing.T) {
	data := "sku,new_stock,movement_type\n,,\nART001,5,IN\n"
	_, err := stockimport.ParseCSV([]byte(data))
	var re *stockimport.RowError
	require.True(t, errors.As(err, &re), "una línea con sólo separadores no se descarta")
	assert.Equal(t, 2, re.Line)
	assert.Equal(t, stockimport.ColumnMovementType, re.Column)
}

func TestParseRecords_FilaDeCeldasVaciasSeDescarta(t *testing.T) {
	records := [][]string{
		{"sku", "new_stock", "movement_type"},
		{"", "", ""},
		{"A1", "5", "IN"},
	}
	rows, err := stockimport.ParseRecords(records)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Line)
}

func TestParseCSV_FaltanColumnas(t *testing.T) {
	_, err := stockimport.ParseCSV([]byte("sku,notes\nA1,x\n"))
	require.Error(t, err)

	var mc *stockimport.MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, []string{"new_stock", "movement_type"}, mc.Columns)
	assert.Contains(t, err.Error(), "new_stock, movement_type")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseCSV_TipoMovimientoInvalido(t *testing.T) {
	data := "sku,new_stock,movement_type\nA1,1,IN\nA2,1,TRANSFER\nA3,1,OUT\n"
	rows, err := stockimport.ParseCSV([]byte(data))
	require.Error(t, err)
	assert.Nil(t, rows, "un error de formato no devuelve filas parciales")

	var re *stockimport.RowError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 3, re.Line)
	assert.Equal(t, stockimport.ColumnMovementType, re.Column)
	assert.Contains(t, err.Error(), "Fila 3")
}

func TestParseCSV_NewStockInvalido(t *testing.T) {
	casos := map[string]string{
		"negativo": "-1",
		"texto":    "diez",
		"vacío":    "",
		"NaN":      "NaN",
		"infinito": "Inf",
		"mixto":    "12abc",
	}
	for nombre, valor := range casos {
		t.Run(nombre, func(t *testing.T) {
			data := "sku,new_stock,movement_type\nA1,5,IN\nA2," + valor + ",ADJUSTMENT\n"
			_, err := stockimport.ParseCSV([]byte(data))
			require.Error(t, err)

			var re *stockimport.RowError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, 3, re.Line)
			assert.Equal(t, stockimport.ColumnNewStock, re.Column)
		})
	}
}

func TestParseCSV_DecimalesYCero(t *testing.T) {
	data := "sku,new_stock,movement_type\nA1,2.5,IN\nA2,0,ADJUSTMENT\nA3,1e2,IN\n"
	rows, err := stockimport.ParseCSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, decimal.RequireFromString("2.5").Equal(rows[0].NewStock))
	assert.True(t, rows[1].NewStock.IsZero())
	assert.True(t, decimal.NewFromInt(100).Equal(rows[2].NewStock))
}

func TestParseCSV_MaximoTresDecimales(t *testing.T) {
	rows, err := stockimport.ParseCSV([]byte("sku,new_stock,movement_type\nA1,1.235,IN\nA2,1.500,IN\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1.235", rows[0].NewStock.String())

	_, err = stockimport.ParseCSV([]byte("sku,new_stock,movement_type\nA1,1,IN\nA2,1.23456,ADJUSTMENT\n"))
	var re *stockimport.RowError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 3, re.Line)
	assert.Equal(t, stockimport.ColumnNewStock, re.Column)
	assert.Contains(t, re.Reason, "3 decimales")
}

func TestParseCSV_SKUVacio(t *testing.T) {
	_, err := stockimport.ParseCSV([]byte("sku,new_stock,movement_type\n ,5,IN\n"))
	var re *stockimport.RowError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 2, re.Line)
	assert.Equal(t, stockimport.ColumnSKU, re.Column)
}

func TestParseCSV_SoloCabecera(t *testing.T) {
	rows, err := stockimport.ParseCSV([]byte("sku,new_stock,movement_type\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseCSV_ArchivoVacio(t *testing.T) {
	_, err := stockimport.ParseCSV([]byte("\n \n"))
	assert.ErrorIs(t, err, domain.ErrEmptyFile)
}

func TestParseCSV_BOMYWindows1252(t *testing.T) {
	// "Recepción" en Windows-1252: 'ó' = 0xF3.
	data := append([]byte{}, []byte("sku,new_stock,movement_type,notes\nA1,1,IN,Recepci")...)
	data = append(data, 0xF3, 'n', '\n')
	rows, err := stockimport.ParseCSV(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Recepción", rows[0].Notes)

	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte("sku,new_stock,movement_type\nA1,1,IN\n")...)
	rows, err = stockimport.ParseCSV(withBOM)
	require.NoError(t, err, "el BOM no debe romper el nombre de la primera columna")
	require.Len(t, rows, 1)
}

func TestParseCSV_NotasEntreComillas(t *testing.T) {
	data := "sku,new_stock,movement_type,notes\nA1,3,OUT,\"Consumo, línea 2\"\n"
	rows, err := stockimport.ParseCSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Consumo, línea 2", rows[0].Notes)
}

func TestParseRecords_FilaCorta(t *testing.T) {
	records := [][]string{
		{"sku", "new_stock", "movement_type", "notes"},
		{"A1", "4", "in"},
	}
	rows, err := stockimport.ParseRecords(records)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Notes)
}
