package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nanopro-wms/backend/pkg/types"
)

func doneItem(codigo string) types.LineItem {
	return types.LineItem{
		Codigo:      codigo,
		Quantidade:  15,
		OK:          true,
		Transferido: true,
		Composicao: []types.CompositionEntry{
			{OP: "OP001", Quantidade: 10, QtdSeparada: 10, Concluido: true},
			{OP: "OP002", Quantidade: 5, QtdSeparada: 5, Concluido: true},
		},
	}
}

func pendingItem(codigo string) types.LineItem {
	return types.LineItem{
		Codigo:     codigo,
		Quantidade: 3,
		Composicao: []types.CompositionEntry{
			{OP: "OP002", Quantidade: 3},
		},
	}
}

func TestComputeFullyDoneBatch(t *testing.T) {
	items := types.LineItems{doneItem("PROD-A")}
	assert.Equal(t, 100, Compute(items, nil))
}

func TestComputeEmptyValidSubsetReturnsZero(t *testing.T) {
	assert.Equal(t, 0, Compute(nil, nil))

	items := types.LineItems{doneItem("PROD-A")}
	denied := Denylist{"PROD-A": true}
	assert.Equal(t, 0, Compute(items, denied))
}

func TestComputeHalfDone(t *testing.T) {
	items := types.LineItems{doneItem("PROD-A"), pendingItem("PROD-B")}
	assert.Equal(t, 50, Compute(items, nil))
}

func TestComputeRounds(t *testing.T) {
	items := types.LineItems{doneItem("PROD-A"), pendingItem("PROD-B"), pendingItem("PROD-C")}
	// 1/3 rounds to 33.
	assert.Equal(t, 33, Compute(items, nil))

	items = types.LineItems{doneItem("PROD-A"), doneItem("PROD-B"), pendingItem("PROD-C")}
	// 2/3 rounds to 67.
	assert.Equal(t, 67, Compute(items, nil))
}

func TestBlacklistExcludedFromBothSides(t *testing.T) {
	items := types.LineItems{doneItem("PROD-A"), pendingItem("PROD-B")}
	denied := Denylist{"PROD-B": true}
	assert.Equal(t, 100, Compute(items, denied))

	denied = Denylist{"PROD-A": true}
	assert.Equal(t, 0, Compute(items, denied))
}

func TestOutItemCountsAsDone(t *testing.T) {
	item := pendingItem("PROD-B")
	item.Falta = true
	assert.Equal(t, 100, Compute(types.LineItems{item}, nil))
}

func TestIncompleteQuantityBlocksDone(t *testing.T) {
	item := doneItem("PROD-A")
	item.Composicao[1].QtdSeparada = 1
	assert.Equal(t, 0, Compute(types.LineItems{item}, nil))
}

func TestMissingTransferBlocksDone(t *testing.T) {
	item := doneItem("PROD-A")
	item.Transferido = false
	assert.Equal(t, 0, Compute(types.LineItems{item}, nil))
}

func TestProgressMonotonicOnConcluidoToggle(t *testing.T) {
	item := doneItem("PROD-A")
	item.Composicao[0].Concluido = false
	before := Compute(types.LineItems{item, pendingItem("PROD-B")}, nil)

	item.Composicao[0].Concluido = true
	after := Compute(types.LineItems{item, pendingItem("PROD-B")}, nil)

	assert.GreaterOrEqual(t, after, before)
}

func TestVerificationRequiresBothConfirmations(t *testing.T) {
	item := types.LineItem{
		Codigo:     "PROD-A",
		Quantidade: 5,
		Composicao: []types.CompositionEntry{
			{OP: "OP001", Quantidade: 5, QtdSeparada: 5, OKConf: true, TRConf: true},
		},
	}
	assert.Equal(t, 100, ComputeVerification(types.LineItems{item}, nil))

	item.Composicao[0].TRConf = false
	assert.Equal(t, 0, ComputeVerification(types.LineItems{item}, nil))
}

func TestVerificationShortageWithoutReasonBlocks(t *testing.T) {
	item := types.LineItem{
		Codigo:     "PROD-A",
		Quantidade: 5,
		Composicao: []types.CompositionEntry{
			{OP: "OP001", Quantidade: 5, QtdSeparada: 3, OKConf: true, TRConf: true, FaltaConf: true},
		},
	}
	assert.Equal(t, 0, ComputeVerification(types.LineItems{item}, nil))

	item.Composicao[0].MotivoDivergencia = "material em falta no estoque"
	assert.Equal(t, 100, ComputeVerification(types.LineItems{item}, nil))
}
