package enums

import "fmt"

// BatchStatus tracks the lifecycle of a pick or verification batch. The
// stage itself (pick vs verification vs history) is carried by which table
// the record lives in; this status covers claim state within a stage.
type BatchStatus string

const (
	BatchStatusPendente    BatchStatus = "pendente"
	BatchStatusEmAndamento BatchStatus = "em_andamento"
	BatchStatusFinalizado  BatchStatus = "finalizado"
)

var validBatchStatuses = []BatchStatus{
	BatchStatusPendente,
	BatchStatusEmAndamento,
	BatchStatusFinalizado,
}

// String implements fmt.Stringer.
func (b BatchStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BatchStatus.
func (b BatchStatus) IsValid() bool {
	for _, candidate := range validBatchStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBatchStatus converts raw input into a BatchStatus.
func ParseBatchStatus(value string) (BatchStatus, error) {
	for _, candidate := range validBatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid batch status %q", value)
}
