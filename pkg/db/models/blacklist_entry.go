package models

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistEntry marks a product code as globally excluded from picking.
// Entries with NaoSeparar set drop the item from active views and from
// progress accounting; the item stays in stored batches for audit.
type BlacklistEntry struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Codigo     string    `gorm:"column:codigo;not null;uniqueIndex" json:"codigo"`
	Descricao  string    `gorm:"column:descricao;not null;default:''" json:"descricao"`
	NaoSeparar bool      `gorm:"column:nao_separar;not null;default:true" json:"nao_separar"`
	Motivo     string    `gorm:"column:motivo;not null;default:''" json:"motivo"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName maps to the legacy store table.
func (BlacklistEntry) TableName() string { return "blacklist" }
