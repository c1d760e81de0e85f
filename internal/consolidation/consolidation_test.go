package consolidation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanopro-wms/backend/pkg/enums"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
)

func sampleLines() []RawLine {
	return []RawLine{
		{OP: "OP001", Codigo: "PROD-A", Descricao: "Chicote 12v", Unidade: "PC", Quantidade: 10},
		{OP: "OP002", Codigo: "PROD-A", Descricao: "Chicote 12v", Unidade: "PC", Quantidade: 5},
		{OP: "OP002", Codigo: "PROD-B", Descricao: "Conector", Unidade: "PC", Quantidade: 3},
		{OP: "OP003", Codigo: "PROD-C", Descricao: "Terminal", Unidade: "PC", Quantidade: 7},
	}
}

func TestConsolidateGroupsByProductCode(t *testing.T) {
	draft, err := Consolidate([]string{"OP001", "OP002"}, sampleLines(), Options{Armazem: "CHICOTE"})
	require.NoError(t, err)

	require.Len(t, draft.Itens, 2)
	assert.Equal(t, enums.BatchStatusPendente, draft.Status)
	assert.Equal(t, []string{"OP001", "OP002"}, []string(draft.Ordens))

	prodA := draft.Itens.Find("PROD-A")
	require.NotNil(t, prodA)
	assert.Equal(t, 15.0, prodA.Quantidade)
	assert.Equal(t, 0.0, prodA.QtdSeparada)
	assert.False(t, prodA.Separado)
	assert.False(t, prodA.Transferido)
	assert.False(t, prodA.Falta)
	assert.False(t, prodA.OK)
	require.Len(t, prodA.Composicao, 2)
	assert.Equal(t, "OP001", prodA.Composicao[0].OP)
	assert.Equal(t, 10.0, prodA.Composicao[0].Quantidade)
	assert.Equal(t, "OP002", prodA.Composicao[1].OP)
	assert.Equal(t, 5.0, prodA.Composicao[1].Quantidade)

	prodB := draft.Itens.Find("PROD-B")
	require.NotNil(t, prodB)
	assert.Equal(t, 3.0, prodB.Quantidade)
	require.Len(t, prodB.Composicao, 1)
}

func TestConsolidateExcludesUnselectedOrders(t *testing.T) {
	draft, err := Consolidate([]string{"OP003"}, sampleLines(), Options{Armazem: "CHICOTE"})
	require.NoError(t, err)

	require.Len(t, draft.Itens, 1)
	assert.Equal(t, "PROD-C", draft.Itens[0].Codigo)
	assert.Nil(t, draft.Itens.Find("PROD-A"))
}

func TestConsolidateDuplicateOrderProductPairLastWins(t *testing.T) {
	lines := []RawLine{
		{OP: "OP001", Codigo: "PROD-A", Quantidade: 10},
		{OP: "OP001", Codigo: "PROD-A", Quantidade: 4},
	}
	draft, err := Consolidate([]string{"OP001"}, lines, Options{Armazem: "CHICOTE"})
	require.NoError(t, err)

	item := draft.Itens.Find("PROD-A")
	require.NotNil(t, item)
	// Duplicate op+codigo rows are not summed; the last row replaces the
	// earlier one.
	assert.Equal(t, 4.0, item.Quantidade)
	require.Len(t, item.Composicao, 1)
	assert.Equal(t, 4.0, item.Composicao[0].Quantidade)
}

func TestConsolidateEmptySelection(t *testing.T) {
	_, err := Consolidate(nil, sampleLines(), Options{Armazem: "CHICOTE"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = Consolidate([]string{"OP999"}, sampleLines(), Options{Armazem: "CHICOTE"})
	require.Error(t, err)
}

func TestConsolidateMissingDestination(t *testing.T) {
	_, err := Consolidate([]string{"OP001"}, sampleLines(), Options{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "Armazém de destino não informado", typed.Message())
}

func TestConsolidateTakesMaxUrgency(t *testing.T) {
	draft, err := Consolidate([]string{"OP001", "OP002"}, sampleLines(), Options{
		Armazem: "CHICOTE",
		Urgencies: map[string]enums.Urgency{
			"OP001": enums.UrgencyBaixa,
			"OP002": enums.UrgencyAlta,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.UrgencyAlta, draft.Urgencia)
}

func TestConsolidateDefaultsUrgencyToBaixa(t *testing.T) {
	draft, err := Consolidate([]string{"OP001"}, sampleLines(), Options{Armazem: "CHICOTE"})
	require.NoError(t, err)
	assert.Equal(t, enums.UrgencyBaixa, draft.Urgencia)
}

func TestRangeLabelFormats(t *testing.T) {
	assert.Equal(t, "OP-OP001", RangeLabel([]string{"OP001"}))
	assert.Equal(t, "OP OP001 - OP007", RangeLabel([]string{"OP007", "OP001", "OP003"}))
}

func TestLotLabelFormats(t *testing.T) {
	assert.Equal(t, "OP-OP001", LotLabel([]string{"OP001"}))
	assert.Equal(t, "Lote-P001-G3", LotLabel([]string{"OP003", "OP001", "OP002"}))
}

func TestLabelsSortLexicographically(t *testing.T) {
	// String sort, not numeric: "OP10" precedes "OP9".
	assert.Equal(t, "OP OP10 - OP9", RangeLabel([]string{"OP9", "OP10"}))
}

func TestCheckDuplicatesReportsMostAdvancedStageFirst(t *testing.T) {
	index := StageIndex{
		Separacao:   map[string]bool{"OP001": true},
		Conferencia: map[string]bool{"OP002": true},
		Historico:   map[string]bool{"OP003": true},
	}

	err := CheckDuplicates([]string{"OP001", "OP002", "OP003"}, index)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	details := typed.Details().(map[string]any)
	conflicts := details["conflitos"].([]pkgerrors.OrderConflict)
	require.Len(t, conflicts, 3)
	assert.Equal(t, pkgerrors.StageHistorico, conflicts[0].Stage)
	assert.Equal(t, pkgerrors.StageConferencia, conflicts[1].Stage)
	assert.Equal(t, pkgerrors.StageSeparacao, conflicts[2].Stage)
}

func TestCheckDuplicatesPrefersHistoricoWhenPresentEverywhere(t *testing.T) {
	index := StageIndex{
		Separacao: map[string]bool{"OP001": true},
		Historico: map[string]bool{"OP001": true},
	}

	err := CheckDuplicates([]string{"OP001"}, index)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	conflicts := typed.Details().(map[string]any)["conflitos"].([]pkgerrors.OrderConflict)
	require.Len(t, conflicts, 1)
	assert.Equal(t, pkgerrors.StageHistorico, conflicts[0].Stage)
}

func TestCheckDuplicatesCleanSelection(t *testing.T) {
	err := CheckDuplicates([]string{"OP001"}, StageIndex{})
	assert.NoError(t, err)
}
