package enums

import "fmt"

// StoreTable names the record-store tables that emit change notifications.
type StoreTable string

const (
	TableSeparacao      StoreTable = "separacao"
	TableConferencia    StoreTable = "conferencia"
	TableHistorico      StoreTable = "historico"
	TableBlacklist      StoreTable = "blacklist"
	TableEnderecos      StoreTable = "enderecos"
	TableUsuarios       StoreTable = "usuarios"
	TableTransferencias StoreTable = "transferencias"
	TableOrdens         StoreTable = "ordens"
)

var validStoreTables = []StoreTable{
	TableSeparacao,
	TableConferencia,
	TableHistorico,
	TableBlacklist,
	TableEnderecos,
	TableUsuarios,
	TableTransferencias,
	TableOrdens,
}

// IsValid reports whether the value names a notifying table.
func (t StoreTable) IsValid() bool {
	for _, candidate := range validStoreTables {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStoreTable converts raw input into a StoreTable.
func ParseStoreTable(value string) (StoreTable, error) {
	for _, candidate := range validStoreTables {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store table %q", value)
}

// ChangeEventType is the kind of row change delivered to subscribers.
type ChangeEventType string

const (
	ChangeInsert ChangeEventType = "INSERT"
	ChangeUpdate ChangeEventType = "UPDATE"
	ChangeDelete ChangeEventType = "DELETE"
)

// IsValid reports whether the value is a known ChangeEventType.
func (e ChangeEventType) IsValid() bool {
	return e == ChangeInsert || e == ChangeUpdate || e == ChangeDelete
}

// OutboxStatus tracks dispatch state of a stored change event.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// IsValid reports whether the value is a known OutboxStatus.
func (s OutboxStatus) IsValid() bool {
	return s == OutboxStatusPending || s == OutboxStatusPublished || s == OutboxStatusFailed
}
