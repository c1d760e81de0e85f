package models

import (
	"time"

	"github.com/google/uuid"
)

// Address maps a product code to its warehouse location.
type Address struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Codigo    string    `gorm:"column:codigo;not null;uniqueIndex" json:"codigo"`
	Endereco  string    `gorm:"column:endereco;not null" json:"endereco"`
	Armazem   string    `gorm:"column:armazem;not null;default:''" json:"armazem"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName maps to the legacy store table.
func (Address) TableName() string { return "enderecos" }
