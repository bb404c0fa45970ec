package ports

import (
	"context"
	"time"

	"electra/contexts/identity-access/credential-service/domain/entities"
)

type CredentialRepository interface {
	// CreateCredential fails with ErrEmailTaken when the email already
	// has a credential.
	CreateCredential(ctx context.Context, credential entities.Credential) error
	GetCredentialByEmail(ctx context.Context, email string) (entities.Credential, error)
}

// PasswordHasher wraps the hash scheme so the application layer never
// touches bcrypt directly.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

// TokenIssuer mints the access token a successful login returns.
type TokenIssuer interface {
	Issue(voterID string, now time.Time) (token string, expiresAt time.Time, err error)
}

// RegistrationProfile is the slice of sign-up input the profile owner
// needs to create the voter record.
type RegistrationProfile struct {
	Email       string
	PhoneNumber string
	FullName    string
	NationalID  string
	DateOfBirth *time.Time
	Address     string
}

// ProfileCreator delegates voter profile creation to its owning module.
// The composition root wires it; this context never stores profile
// state itself.
type ProfileCreator interface {
	CreateProfile(ctx context.Context, profile RegistrationProfile) (voterID string, err error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
