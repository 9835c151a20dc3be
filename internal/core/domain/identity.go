package domain

import "time"

// Identity models a principal of the platform: a human employee or an
// administrator. The password hash never leaves the process boundary
// (json:"-"), so the struct itself is safe to serialize in responses.
type Identity struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Surname      string     `json:"surname"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AuthEventType labels an entry in the authentication audit trail.
type AuthEventType string

const (
	EventRegistered     AuthEventType = "registered"
	EventLoginSucceeded AuthEventType = "login_succeeded"
	EventLoginFailed    AuthEventType = "login_failed"
)

// AuthEvent is an audit record of an authentication attempt. Events are
// recorded asynchronously and must never block the request path.
type AuthEvent struct {
	Type       AuthEventType
	IdentityID string
	Username   string
	Reason     string
	At         time.Time
}
