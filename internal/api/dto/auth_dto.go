package dto

import (
	"time"

	"github.com/gadgetarian/service-tracker/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountResponse describes a staff account.
type AccountResponse struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

// AuthTokenResponse carries an access token.
type AuthTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Account AccountResponse   `json:"account"`
	Auth    AuthTokenResponse `json:"auth"`
}

// NewAccountResponse maps an account.
func NewAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{ID: a.ID, Username: a.Username, Name: a.Name, Role: a.Role}
}
