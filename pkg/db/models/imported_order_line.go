package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nanopro-wms/backend/pkg/enums"
)

// ImportedOrderLine is one raw spreadsheet row staged in the ordens table
// before consolidation. Urgency is assigned per order after import.
type ImportedOrderLine struct {
	ID         uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OP         string        `gorm:"column:op;not null;index" json:"op"`
	Codigo     string        `gorm:"column:codigo;not null" json:"codigo"`
	Descricao  string        `gorm:"column:descricao;not null;default:''" json:"descricao"`
	Unidade    string        `gorm:"column:unidade;not null;default:''" json:"unidade"`
	Quantidade float64       `gorm:"column:quantidade;not null" json:"quantidade"`
	Urgencia   enums.Urgency `gorm:"column:urgencia;type:text;not null;default:'baixa'" json:"urgencia"`
	ImportedAt time.Time     `gorm:"column:imported_at;autoCreateTime" json:"imported_at"`
}

// TableName maps to the legacy store table.
func (ImportedOrderLine) TableName() string { return "ordens" }
