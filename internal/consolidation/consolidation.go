// Package consolidation turns a set of selected production orders into a
// single pick batch: line items grouped by product code, quantities summed
// across orders, with a per-order composition kept for later verification.
package consolidation

import (
	"sort"
	"strings"

	dbtypes "github.com/nanopro-wms/backend/pkg/db/types"
	"github.com/nanopro-wms/backend/pkg/enums"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/types"
)

// RawLine is one imported order line before consolidation.
type RawLine struct {
	OP         string
	Codigo     string
	Descricao  string
	Unidade    string
	Quantidade float64
}

// Options control a consolidation run.
type Options struct {
	// Armazem is the destination warehouse; required.
	Armazem string
	// Documento is the transfer-document reference, if already known.
	Documento string
	// Responsavel is the worker who created the batch.
	Responsavel string
	// Label formats the batch display name; defaults to RangeLabel.
	Label Labeler
	// Urgencies maps order id to its independently assigned priority.
	Urgencies map[string]enums.Urgency
}

// Draft is the assembled batch before persistence.
type Draft struct {
	Nome        string
	Documento   string
	Armazem     string
	Ordens      dbtypes.StringArray
	Itens       types.LineItems
	Urgencia    enums.Urgency
	Status      enums.BatchStatus
	Responsavel string
}

// Consolidate filters rawLines to the selected orders, groups them by
// product code and assembles a pending batch draft. It is pure: no store
// access and no mutation of its inputs.
func Consolidate(selectedOrderIDs []string, rawLines []RawLine, opts Options) (*Draft, error) {
	selected := make(map[string]bool, len(selectedOrderIDs))
	for _, id := range selectedOrderIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			selected[trimmed] = true
		}
	}
	if len(selected) == 0 {
		return nil, pkgerrors.EmptySelection()
	}
	if strings.TrimSpace(opts.Armazem) == "" {
		return nil, pkgerrors.MissingDestination()
	}

	type group struct {
		descricao string
		unidade   string
		total     float64
		// One composition slot per contributing order. Duplicate op+codigo
		// pairs within one import overwrite the slot: the last value wins.
		// That mirrors the store's historical behavior and is deliberately
		// not folded into a sum (see DESIGN.md, open questions).
		perOrder   map[string]float64
		orderSeen  []string
		firstIndex int
	}

	groups := make(map[string]*group)
	var codes []string
	matched := false

	for i, line := range rawLines {
		if !selected[line.OP] {
			continue
		}
		matched = true
		g, ok := groups[line.Codigo]
		if !ok {
			g = &group{
				descricao:  line.Descricao,
				unidade:    line.Unidade,
				perOrder:   make(map[string]float64),
				firstIndex: i,
			}
			groups[line.Codigo] = g
			codes = append(codes, line.Codigo)
		}
		if _, seen := g.perOrder[line.OP]; !seen {
			g.orderSeen = append(g.orderSeen, line.OP)
		}
		g.perOrder[line.OP] = line.Quantidade
	}

	if !matched {
		return nil, pkgerrors.EmptySelection()
	}

	items := make(types.LineItems, 0, len(codes))
	for _, codigo := range codes {
		g := groups[codigo]
		composition := make([]types.CompositionEntry, 0, len(g.orderSeen))
		var total float64
		for _, op := range g.orderSeen {
			qty := g.perOrder[op]
			total += qty
			composition = append(composition, types.CompositionEntry{
				OP:         op,
				Quantidade: qty,
			})
		}
		items = append(items, types.LineItem{
			Codigo:     codigo,
			Descricao:  g.descricao,
			Unidade:    g.unidade,
			Quantidade: total,
			Composicao: composition,
		})
	}

	ordens := make(dbtypes.StringArray, 0, len(selected))
	for id := range selected {
		ordens = append(ordens, id)
	}
	sort.Strings(ordens)

	urgencies := make([]enums.Urgency, 0, len(ordens))
	for _, op := range ordens {
		if u, ok := opts.Urgencies[op]; ok {
			urgencies = append(urgencies, u)
		}
	}

	label := opts.Label
	if label == nil {
		label = RangeLabel
	}

	return &Draft{
		Nome:        label(ordens),
		Documento:   opts.Documento,
		Armazem:     opts.Armazem,
		Ordens:      ordens,
		Itens:       items,
		Urgencia:    enums.MaxUrgency(urgencies...),
		Status:      enums.BatchStatusPendente,
		Responsavel: opts.Responsavel,
	}, nil
}

// StageIndex holds the order ids currently present at each workflow stage.
// Precedence when reporting conflicts: historico > conferencia > separacao.
type StageIndex struct {
	Separacao   map[string]bool
	Conferencia map[string]bool
	Historico   map[string]bool
}

// CheckDuplicates returns a DuplicateOrder error when any selected order id
// already appears at some stage, tagging each id with the most advanced
// stage where it was found. Order of the returned conflicts is the ascending
// sort of the offending ids, so the result is deterministic.
func CheckDuplicates(selectedOrderIDs []string, index StageIndex) error {
	var conflicts []pkgerrors.OrderConflict
	sorted := sortedCopy(selectedOrderIDs)
	for _, id := range sorted {
		switch {
		case index.Historico[id]:
			conflicts = append(conflicts, pkgerrors.OrderConflict{OP: id, Stage: pkgerrors.StageHistorico})
		case index.Conferencia[id]:
			conflicts = append(conflicts, pkgerrors.OrderConflict{OP: id, Stage: pkgerrors.StageConferencia})
		case index.Separacao[id]:
			conflicts = append(conflicts, pkgerrors.OrderConflict{OP: id, Stage: pkgerrors.StageSeparacao})
		}
	}
	if len(conflicts) == 0 {
		return nil
	}
	sort.SliceStable(conflicts, func(i, j int) bool {
		return stageRank(conflicts[i].Stage) > stageRank(conflicts[j].Stage)
	})
	return pkgerrors.DuplicateOrder(conflicts)
}

func stageRank(stage pkgerrors.Stage) int {
	switch stage {
	case pkgerrors.StageHistorico:
		return 2
	case pkgerrors.StageConferencia:
		return 1
	default:
		return 0
	}
}
