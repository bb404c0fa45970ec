package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"electra/contexts/identity-access/credential-service/domain/entities"
	domainerrors "electra/contexts/identity-access/credential-service/domain/errors"
	"electra/contexts/identity-access/credential-service/ports"
)

// RegisterCommand is the sign-up input: login secret plus the profile
// fields handed to the profile owner.
type RegisterCommand struct {
	Email       string
	Password    string
	PhoneNumber string
	FullName    string
	NationalID  string
	DateOfBirth *time.Time
	Address     string
}

// Service owns login credentials and token issuance. Profile data is
// delegated through the ProfileCreator port at registration time.
type Service struct {
	Credentials ports.CredentialRepository
	Hasher      ports.PasswordHasher
	Tokens      ports.TokenIssuer
	Profiles    ports.ProfileCreator
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// Register hashes the password, creates the voter profile through the
// owning module, then stores the credential keyed by email.
func (s Service) Register(ctx context.Context, cmd RegisterCommand) (entities.Credential, error) {
	logger := s.resolveLogger()
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email == "" || !strings.Contains(email, "@") || strings.TrimSpace(cmd.FullName) == "" {
		return entities.Credential{}, domainerrors.ErrInvalidRequest
	}
	if len(cmd.Password) < entities.MinPasswordLength {
		return entities.Credential{}, domainerrors.ErrWeakPassword
	}
	if _, err := s.Credentials.GetCredentialByEmail(ctx, email); err == nil {
		return entities.Credential{}, domainerrors.ErrEmailTaken
	} else if !errors.Is(err, domainerrors.ErrCredentialNotFound) {
		return entities.Credential{}, err
	}

	hash, err := s.Hasher.Hash(cmd.Password)
	if err != nil {
		logger.Error("password hashing failed",
			"event", "credential_register_hash_failed",
			"module", "identity-access/credential-service",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.Credential{}, err
	}

	voterID, err := s.Profiles.CreateProfile(ctx, ports.RegistrationProfile{
		Email:       email,
		PhoneNumber: cmd.PhoneNumber,
		FullName:    cmd.FullName,
		NationalID:  cmd.NationalID,
		DateOfBirth: cmd.DateOfBirth,
		Address:     cmd.Address,
	})
	if err != nil {
		logger.Error("profile creation failed during registration",
			"event", "credential_register_profile_failed",
			"module", "identity-access/credential-service",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.Credential{}, err
	}

	now := s.now()
	credentialID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Credential{}, err
	}
	credential := entities.Credential{
		CredentialID: credentialID,
		VoterID:      voterID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Credentials.CreateCredential(ctx, credential); err != nil {
		return entities.Credential{}, err
	}

	logger.Info("voter credential registered",
		"event", "credential_register_completed",
		"module", "identity-access/credential-service",
		"layer", "application",
		"voter_id", voterID,
	)
	return credential, nil
}

// Login verifies the password and returns a fresh session token. Unknown
// email and wrong password collapse into one error on purpose.
func (s Service) Login(ctx context.Context, email string, password string) (entities.Session, error) {
	logger := s.resolveLogger()
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return entities.Session{}, domainerrors.ErrInvalidRequest
	}

	credential, err := s.Credentials.GetCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrCredentialNotFound) {
			return entities.Session{}, domainerrors.ErrInvalidCredentials
		}
		return entities.Session{}, err
	}
	if err := s.Hasher.Compare(credential.PasswordHash, password); err != nil {
		logger.Warn("login rejected",
			"event", "credential_login_rejected",
			"module", "identity-access/credential-service",
			"layer", "application",
			"voter_id", credential.VoterID,
		)
		return entities.Session{}, domainerrors.ErrInvalidCredentials
	}

	now := s.now()
	token, expiresAt, err := s.Tokens.Issue(credential.VoterID, now)
	if err != nil {
		logger.Error("token issuance failed",
			"event", "credential_login_token_failed",
			"module", "identity-access/credential-service",
			"layer", "application",
			"voter_id", credential.VoterID,
			"error", err.Error(),
		)
		return entities.Session{}, err
	}

	logger.Info("voter logged in",
		"event", "credential_login_completed",
		"module", "identity-access/credential-service",
		"layer", "application",
		"voter_id", credential.VoterID,
	)
	return entities.Session{
		VoterID:   credential.VoterID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) resolveLogger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
