package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/nanopro-wms/backend/pkg/db/types"
	"github.com/nanopro-wms/backend/pkg/enums"
	"github.com/nanopro-wms/backend/pkg/types"
)

// PickBatch is a consolidated pick list sitting in the separacao table.
// Column and JSON names are part of the store schema and must not change.
type PickBatch struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Documento    string              `gorm:"column:documento;not null;default:''" json:"documento"`
	Nome         string              `gorm:"column:nome;not null" json:"nome"`
	Armazem      string              `gorm:"column:armazem;not null" json:"armazem"`
	Ordens       dbtypes.StringArray `gorm:"column:ordens;type:text[]" json:"ordens"`
	Itens        types.LineItems     `gorm:"column:itens;type:jsonb;serializer:json" json:"itens"`
	Status       enums.BatchStatus   `gorm:"column:status;type:text;not null;default:'pendente'" json:"status"`
	Urgencia     enums.Urgency       `gorm:"column:urgencia;type:text;not null;default:'baixa'" json:"urgencia"`
	Responsavel  string              `gorm:"column:responsavel;not null;default:''" json:"responsavel"`
	UsuarioAtual *string             `gorm:"column:usuario_atual" json:"usuario_atual,omitempty"`
	DataCriacao  time.Time           `gorm:"column:data_criacao;autoCreateTime" json:"data_criacao"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName maps to the legacy store table.
func (PickBatch) TableName() string { return "separacao" }

// VerificationBatch is a batch moved into the conferencia table. It shares
// the pick batch shape; Responsavel holds the separator who sent it.
type VerificationBatch struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Documento    string              `gorm:"column:documento;not null" json:"documento"`
	Nome         string              `gorm:"column:nome;not null" json:"nome"`
	Armazem      string              `gorm:"column:armazem;not null" json:"armazem"`
	Ordens       dbtypes.StringArray `gorm:"column:ordens;type:text[]" json:"ordens"`
	Itens        types.LineItems     `gorm:"column:itens;type:jsonb;serializer:json" json:"itens"`
	Status       enums.BatchStatus   `gorm:"column:status;type:text;not null;default:'pendente'" json:"status"`
	Urgencia     enums.Urgency       `gorm:"column:urgencia;type:text;not null;default:'baixa'" json:"urgencia"`
	Responsavel  string              `gorm:"column:responsavel;not null" json:"responsavel"`
	UsuarioAtual *string             `gorm:"column:usuario_atual" json:"usuario_atual,omitempty"`
	DataCriacao  time.Time           `gorm:"column:data_criacao;autoCreateTime" json:"data_criacao"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName maps to the legacy store table.
func (VerificationBatch) TableName() string { return "conferencia" }
