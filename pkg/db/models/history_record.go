package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/nanopro-wms/backend/pkg/db/types"
	"github.com/nanopro-wms/backend/pkg/types"
)

// HistoryRecord is the immutable snapshot of a finalized batch. Created once
// at finalize time; never mutated afterwards, only deletable by an admin.
type HistoryRecord struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Documento       string              `gorm:"column:documento;not null;uniqueIndex" json:"documento"`
	Nome            string              `gorm:"column:nome;not null" json:"nome"`
	Armazem         string              `gorm:"column:armazem;not null" json:"armazem"`
	Ordens          dbtypes.StringArray `gorm:"column:ordens;type:text[]" json:"ordens"`
	Itens           types.LineItems     `gorm:"column:itens;type:jsonb;serializer:json" json:"itens"`
	SeparadoPor     string              `gorm:"column:separado_por;not null" json:"separado_por"`
	ConferidoPor    string              `gorm:"column:conferido_por;not null" json:"conferido_por"`
	DataFinalizacao time.Time           `gorm:"column:data_finalizacao;autoCreateTime" json:"data_finalizacao"`
}

// TableName maps to the legacy store table.
func (HistoryRecord) TableName() string { return "historico" }
