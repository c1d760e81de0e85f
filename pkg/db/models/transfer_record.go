package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nanopro-wms/backend/pkg/enums"
)

// TransferRecord tracks an inter-branch transfer downstream of a pick batch.
// Picking flips the status to conferencia best-effort when the batch moves to
// verification; history deletion cascades over records sharing order ids.
type TransferRecord struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OP             string               `gorm:"column:op;not null;index" json:"op"`
	Documento      string               `gorm:"column:documento;not null;default:''" json:"documento"`
	ArmazemOrigem  string               `gorm:"column:armazem_origem;not null;default:''" json:"armazem_origem"`
	ArmazemDestino string               `gorm:"column:armazem_destino;not null;default:''" json:"armazem_destino"`
	Status         enums.TransferStatus `gorm:"column:status;type:text;not null;default:'pendente'" json:"status"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName maps to the legacy store table.
func (TransferRecord) TableName() string { return "transferencias" }
