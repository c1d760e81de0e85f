// Package progress computes the 0–100 completion ratio shown on batch cards
// and used to gate the finalize actions. All functions are pure; they are
// called on every render and after every mutation and must not touch their
// inputs.
package progress

import (
	"math"

	"github.com/nanopro-wms/backend/pkg/types"
)

// Denylist is the set of product codes flagged do-not-pick. Items on it are
// excluded from both numerator and denominator; they stay in the stored
// batch for audit.
type Denylist map[string]bool

// Compute returns the pick-stage completion percentage for the given items.
func Compute(items types.LineItems, denied Denylist) int {
	return percentage(items, denied, PickItemDone)
}

// ComputeVerification returns the verification-stage completion percentage.
func ComputeVerification(items types.LineItems, denied Denylist) int {
	return percentage(items, denied, VerificationItemDone)
}

func percentage(items types.LineItems, denied Denylist, done func(types.LineItem) bool) int {
	var valid, completed int
	for _, item := range items {
		if denied[item.Codigo] {
			continue
		}
		valid++
		if done(item) {
			completed++
		}
	}
	if valid == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(valid)))
}

// PickItemDone reports whether a line item counts as resolved at pick stage.
// An out/missing item is resolved regardless of quantities; otherwise the
// item needs its pick confirmation, every composition entry done, the
// fulfilled sum covering the requested total, and the transfer flag.
func PickItemDone(item types.LineItem) bool {
	if item.Falta {
		return true
	}
	if !item.OK || !item.Transferido {
		return false
	}
	if !item.AllConcluido() {
		return false
	}
	return item.SumSeparada() >= item.Quantidade
}

// VerificationItemDone reports whether a line item counts as resolved at
// verification stage: every composition entry needs both confirmations, and
// an entry flagged short/over blocks completion until a discrepancy reason
// is recorded.
func VerificationItemDone(item types.LineItem) bool {
	if item.Falta {
		return true
	}
	for _, entry := range item.Composicao {
		if entry.FaltaConf && entry.MotivoDivergencia == "" {
			return false
		}
		if !entry.OKConf || !entry.TRConf {
			return false
		}
	}
	return len(item.Composicao) > 0
}
