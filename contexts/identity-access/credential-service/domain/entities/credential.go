package entities

import "time"

// Credential holds a voter's login secret. The password only ever
// exists here as a bcrypt hash.
type Credential struct {
	CredentialID string
	VoterID      string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is an issued access token.
type Session struct {
	VoterID   string
	Token     string
	ExpiresAt time.Time
}

// MinPasswordLength rejects obviously weak passwords at registration.
const MinPasswordLength = 8
