package imports

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
)

func buildSheet(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellRef, value))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseSpreadsheetHeaderOnFirstRow(t *testing.T) {
	buf := buildSheet(t, [][]any{
		{"OP", "Codigo", "Descricao", "Quantidade", "Unidade"},
		{"100", "PROD-A", "Parafuso M4", 10, "UN"},
		{"101", "PROD-A", "Parafuso M4", 5, "UN"},
		{"101", "PROD-B", "Porca M4", 3, "UN"},
	})

	lines, err := ParseSpreadsheet(buf)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "100", lines[0].OP)
	assert.Equal(t, "PROD-A", lines[0].Codigo)
	assert.Equal(t, float64(10), lines[0].Quantidade)
	assert.Equal(t, "UN", lines[0].Unidade)
}

func TestParseSpreadsheetHeaderOnSecondRow(t *testing.T) {
	buf := buildSheet(t, [][]any{
		{"Ordens de Produção - Exportação"},
		{"OP", "Código", "Descrição", "Qtd", "UN"},
		{"200", "PROD-C", "Arruela", "2,5", "UN"},
	})

	lines, err := ParseSpreadsheet(buf)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "200", lines[0].OP)
	assert.Equal(t, 2.5, lines[0].Quantidade)
}

func TestParseSpreadsheetSkipsIncompleteRows(t *testing.T) {
	buf := buildSheet(t, [][]any{
		{"OP", "Codigo", "Descricao", "Quantidade", "Unidade"},
		{"300", "PROD-D", "Item", 1, "UN"},
		{"", "PROD-E", "Sem ordem", 4, "UN"},
		{"301", "", "Sem código", 2, "UN"},
	})

	lines, err := ParseSpreadsheet(buf)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "300", lines[0].OP)
}

func TestParseSpreadsheetMissingHeader(t *testing.T) {
	buf := buildSheet(t, [][]any{
		{"Coluna1", "Coluna2"},
		{"x", "y"},
	})

	_, err := ParseSpreadsheet(buf)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestParseSpreadsheetRejectsNonExcelInput(t *testing.T) {
	_, err := ParseSpreadsheet(strings.NewReader("not a spreadsheet"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestParseQuantityFormats(t *testing.T) {
	cases := map[string]float64{
		"10":      10,
		"2.5":     2.5,
		"1.234,5": 1234.5,
		"3,25":    3.25,
		"":        0,
		"abc":     0,
	}
	for input, expected := range cases {
		assert.Equal(t, expected, parseQuantity(input), "input %q", input)
	}
}
