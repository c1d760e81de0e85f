package enums

import "fmt"

// TransferStatus tracks inter-branch transfer records downstream of picking.
type TransferStatus string

const (
	TransferStatusPendente    TransferStatus = "pendente"
	TransferStatusConferencia TransferStatus = "conferencia"
	TransferStatusRecebido    TransferStatus = "recebido"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusPendente,
	TransferStatusConferencia,
	TransferStatusRecebido,
}

// String implements fmt.Stringer.
func (s TransferStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TransferStatus.
func (s TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTransferStatus converts raw input into a TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
