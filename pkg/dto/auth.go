package dto

import "github.com/your-org/partsboard/internal/models"

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse mirrors the backend; older deployments answer "token"
// instead of "access_token".
type LoginResponse struct {
	AccessToken string       `json:"access_token,omitempty"`
	Token       string       `json:"token,omitempty"`
	User        *models.User `json:"user"`
}

func (r LoginResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

type SessionResponse struct {
	SessionID string       `json:"session_id"`
	User      *models.User `json:"user"`
	ExpiresAt string       `json:"expires_at"`
}
