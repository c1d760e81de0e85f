package auth

import "github.com/nanopro-wms/backend/internal/users"

// LoginRequest carries the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest rotates a session. The expired access token identifies the
// session; the refresh token proves possession.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResponse returns the token pair plus the account shape the UI shows.
type LoginResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         users.View `json:"user"`
}
