package auth

import "time"

// RoleAdmin grants access to teach and sync endpoints.
const RoleAdmin = "admin"

// Config drives admin token behaviour.
type Config struct {
	Secret   string
	TokenTTL time.Duration
	Issuer   string
	// Admins maps usernames to bcrypt password hashes.
	Admins map[string]string
}

// TokenRequest asks for a signed admin token.
type TokenRequest struct {
	Subject string        `json:"subject"`
	TTL     time.Duration `json:"-"`
}

// TokenResponse returns the signed token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are extracted from the JWT token.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// LoginRequest exchanges admin credentials for a token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
