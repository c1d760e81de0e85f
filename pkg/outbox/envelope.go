package outbox

import (
	"encoding/json"
	"time"

	"github.com/nanopro-wms/backend/pkg/enums"
)

// ChangeEvent is the stable payload broadcast to realtime subscribers. It
// mirrors the store's change-notification contract: the touched table, the
// kind of change, and the row before/after.
type ChangeEvent struct {
	EventID    string                `json:"eventId"`
	Table      enums.StoreTable      `json:"table"`
	EventType  enums.ChangeEventType `json:"eventType"`
	NewRow     json.RawMessage       `json:"newRow,omitempty"`
	OldRow     json.RawMessage       `json:"oldRow,omitempty"`
	OccurredAt time.Time             `json:"occurredAt"`
}
