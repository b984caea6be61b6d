package model

import (
	"net/url"
	"time"
)

// TokenStatus is the server-owned state of an invite token
type TokenStatus string

const (
	TokenActive  TokenStatus = "active"
	TokenUsed    TokenStatus = "used"
	TokenExpired TokenStatus = "expired"
	TokenRevoked TokenStatus = "revoked"
)

// Invite token expiry bounds in hours
const (
	DefaultExpiresHours = 72
	MaxExpiresHours     = 720
)

// InviteToken is a single-use credential tied to a project
type InviteToken struct {
	ID          string      `json:"id"`
	Token       string      `json:"token"`
	ProjectID   string      `json:"project_id"`
	ProjectName string      `json:"project_name"`
	Status      TokenStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
	UsedAt      *time.Time  `json:"used_at,omitempty"`
	Note        *string     `json:"note,omitempty"`
	InviteURL   string      `json:"invite_url"`
}

// TokenRequest is the body for generating a new invite token
type TokenRequest struct {
	ProjectID    string  `json:"project_id"`
	ExpiresHours int     `json:"expires_hours"`
	Note         *string `json:"note,omitempty"`
}

// TokenValidation is the backend's verdict on a raw invite token
type TokenValidation struct {
	Valid   bool     `json:"valid"`
	Project *Project `json:"project,omitempty"`
	Message string   `json:"message"`
}

// IsActive returns true if the token can still be used
func (t *InviteToken) IsActive() bool {
	return t.Status == TokenActive
}

// Link returns the invite link to send to the client. The backend's invite_url wins; otherwise the
// token is appended to base as a query parameter.
func (t *InviteToken) Link(base string) string {
	if t.InviteURL != "" {
		return t.InviteURL
	}
	return base + "?token=" + url.QueryEscape(t.Token)
}
