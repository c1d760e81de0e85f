package imports

import (
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nanopro-wms/backend/internal/consolidation"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
)

// Spreadsheets arrive with the columns below, in any order. Header matching
// is case and accent-lenient; some exports put the header on the second row
// under a title banner.
var headerAliases = map[string][]string{
	"op":         {"op", "ordem", "ordem de producao", "ordem de produção"},
	"codigo":     {"codigo", "código", "cod", "cod."},
	"descricao":  {"descricao", "descrição", "desc"},
	"quantidade": {"quantidade", "qtd", "qtde", "qtd."},
	"unidade":    {"unidade", "un", "um", "und"},
}

// ParseSpreadsheet reads an uploaded order spreadsheet and returns its raw
// lines. Only the first sheet is read. Rows missing the order id or the
// product code are skipped.
func ParseSpreadsheet(r io.Reader) ([]consolidation.RawLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Arquivo Excel inválido")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Planilha sem abas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Falha ao ler a planilha")
	}

	headerIdx, columns := locateHeader(rows)
	if columns == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Cabeçalho não encontrado: esperado op, codigo, descricao, quantidade, unidade")
	}

	var lines []consolidation.RawLine
	for _, row := range rows[headerIdx+1:] {
		op := cell(row, columns["op"])
		codigo := cell(row, columns["codigo"])
		if op == "" || codigo == "" {
			continue
		}
		lines = append(lines, consolidation.RawLine{
			OP:         op,
			Codigo:     codigo,
			Descricao:  cell(row, columns["descricao"]),
			Unidade:    cell(row, columns["unidade"]),
			Quantidade: parseQuantity(cell(row, columns["quantidade"])),
		})
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Planilha sem linhas de ordem")
	}
	return lines, nil
}

// locateHeader checks the first two rows for the expected column names and
// returns the header row index plus the resolved column positions.
func locateHeader(rows [][]string) (int, map[string]int) {
	for idx := 0; idx < len(rows) && idx < 2; idx++ {
		columns := matchHeader(rows[idx])
		if columns != nil {
			return idx, columns
		}
	}
	return 0, nil
}

func matchHeader(row []string) map[string]int {
	columns := make(map[string]int)
	for col, raw := range row {
		name := normalizeHeader(raw)
		for field, aliases := range headerAliases {
			if _, seen := columns[field]; seen {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					columns[field] = col
					break
				}
			}
		}
	}
	// op and codigo are mandatory; the rest default to empty cells.
	if _, ok := columns["op"]; !ok {
		return nil
	}
	if _, ok := columns["codigo"]; !ok {
		return nil
	}
	for field := range headerAliases {
		if _, ok := columns[field]; !ok {
			columns[field] = -1
		}
	}
	return columns
}

func normalizeHeader(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// parseQuantity accepts both "1234.5" and the pt-BR "1.234,5" form.
// Unparseable cells count as zero rather than failing the import.
func parseQuantity(value string) float64 {
	if value == "" {
		return 0
	}
	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.ReplaceAll(value, ",", ".")
	}
	qty, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return qty
}
