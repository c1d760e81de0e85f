package consolidation

import (
	"fmt"
	"sort"
)

// Two label formats coexist for multi-order batches. The API create path
// uses the "OP <first> - <last>" range form; the import-driven path uses the
// compact lot form. They are kept as distinct strategies on purpose: the
// store contains batches named both ways and neither form is canonical.

// Labeler formats a batch display name from the selected order ids.
type Labeler func(orderIDs []string) string

// RangeLabel names a batch after the first and last order ids in ascending
// lexicographic order. A single order yields "OP-<id>".
func RangeLabel(orderIDs []string) string {
	sorted := sortedCopy(orderIDs)
	switch len(sorted) {
	case 0:
		return ""
	case 1:
		return "OP-" + sorted[0]
	default:
		return fmt.Sprintf("OP %s - %s", sorted[0], sorted[len(sorted)-1])
	}
}

// LotLabel names a batch from the last four characters of the first order id
// plus the group size. A single order yields "OP-<id>".
func LotLabel(orderIDs []string) string {
	sorted := sortedCopy(orderIDs)
	switch len(sorted) {
	case 0:
		return ""
	case 1:
		return "OP-" + sorted[0]
	default:
		first := sorted[0]
		suffix := first
		if len(first) > 4 {
			suffix = first[len(first)-4:]
		}
		return fmt.Sprintf("Lote-%s-G%d", suffix, len(sorted))
	}
}

// Order ids sort as strings, not numbers. "OP9" sorts after "OP10"; the
// legacy store behaves the same way.
func sortedCopy(orderIDs []string) []string {
	sorted := make([]string, len(orderIDs))
	copy(sorted, orderIDs)
	sort.Strings(sorted)
	return sorted
}
