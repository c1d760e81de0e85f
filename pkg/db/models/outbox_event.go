package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nanopro-wms/backend/pkg/enums"
)

// OutboxEvent stores a table-change notification written in the same
// transaction as the row mutation it describes. A dispatcher drains pending
// rows and broadcasts them over the realtime hub.
type OutboxEvent struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Table       enums.StoreTable      `gorm:"column:table_name;type:text;not null;index"`
	EventType   enums.ChangeEventType `gorm:"column:event_type;type:text;not null"`
	Payload     []byte                `gorm:"column:payload;type:jsonb;not null"`
	Status      enums.OutboxStatus    `gorm:"column:status;type:text;not null;default:'pending';index"`
	Attempts    int                   `gorm:"column:attempts;not null;default:0"`
	LastError   *string               `gorm:"column:last_error"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	PublishedAt *time.Time            `gorm:"column:published_at"`
}

// TableName keeps the event log out of the notifying-table namespace.
func (OutboxEvent) TableName() string { return "outbox_events" }
