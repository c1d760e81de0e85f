package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nanopro-wms/backend/pkg/enums"
)

// User is a warehouse account in the usuarios table.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome         string         `gorm:"column:nome;not null" json:"nome"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'operador'" json:"role"`
	Active       bool           `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName maps to the legacy store table.
func (User) TableName() string { return "usuarios" }
