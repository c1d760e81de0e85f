package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nanopro-wms/backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Nome   string
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients. Nome doubles
// as the worker name recorded on claims and history records.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Nome   string         `json:"nome"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
