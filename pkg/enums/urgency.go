package enums

import "fmt"

// Urgency is the priority assigned per production order. Batches take the
// maximum urgency among their contributing orders.
type Urgency string

const (
	UrgencyBaixa    Urgency = "baixa"
	UrgencyMedia    Urgency = "media"
	UrgencyAlta     Urgency = "alta"
	UrgencyUrgencia Urgency = "urgencia"
)

var urgencyRank = map[Urgency]int{
	UrgencyBaixa:    0,
	UrgencyMedia:    1,
	UrgencyAlta:     2,
	UrgencyUrgencia: 3,
}

// String implements fmt.Stringer.
func (u Urgency) String() string {
	return string(u)
}

// IsValid reports whether the value is a known Urgency.
func (u Urgency) IsValid() bool {
	_, ok := urgencyRank[u]
	return ok
}

// Rank returns the ordering position (baixa < media < alta < urgencia).
// Unknown values rank lowest.
func (u Urgency) Rank() int {
	if rank, ok := urgencyRank[u]; ok {
		return rank
	}
	return -1
}

// MaxUrgency returns the highest-ranking urgency among the given values,
// defaulting to baixa when the list is empty.
func MaxUrgency(values ...Urgency) Urgency {
	max := UrgencyBaixa
	for _, v := range values {
		if v.Rank() > max.Rank() {
			max = v
		}
	}
	return max
}

// ParseUrgency converts raw input into an Urgency.
func ParseUrgency(value string) (Urgency, error) {
	u := Urgency(value)
	if !u.IsValid() {
		return "", fmt.Errorf("invalid urgency %q", value)
	}
	return u, nil
}
