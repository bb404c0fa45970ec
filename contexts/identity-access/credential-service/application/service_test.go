package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"electra/contexts/identity-access/credential-service/adapters/memory"
	domainerrors "electra/contexts/identity-access/credential-service/domain/errors"
	"electra/contexts/identity-access/credential-service/ports"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash string, password string) error {
	if hash != "hash:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type staticTokens struct{}

func (staticTokens) Issue(voterID string, now time.Time) (string, time.Time, error) {
	return "token-" + voterID, now.Add(time.Hour), nil
}

type stubProfiles struct {
	created []ports.RegistrationProfile
	err     error
}

func (p *stubProfiles) CreateProfile(_ context.Context, profile ports.RegistrationProfile) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.created = append(p.created, profile)
	return "voter-1", nil
}

func newCredentialService(store *memory.Store, profiles ports.ProfileCreator) Service {
	return Service{
		Credentials: store,
		Hasher:      plainHasher{},
		Tokens:      staticTokens{},
		Profiles:    profiles,
		Clock:       store,
		IDGen:       store,
	}
}

func TestRegisterCreatesProfileAndCredential(t *testing.T) {
	store := memory.NewStore(nil)
	profiles := &stubProfiles{}
	service := newCredentialService(store, profiles)

	credential, err := service.Register(context.Background(), RegisterCommand{
		Email:       "Ada@Example.com",
		Password:    "correct horse",
		PhoneNumber: "+15550100",
		FullName:    "Ada Lovelace",
		NationalID:  "AB-1234",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if credential.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email, got %q", credential.Email)
	}
	if credential.VoterID != "voter-1" {
		t.Fatalf("expected voter id from profile owner, got %q", credential.VoterID)
	}
	if len(profiles.created) != 1 || profiles.created[0].NationalID != "AB-1234" {
		t.Fatalf("expected one profile with national id, got %+v", profiles.created)
	}
	if credential.PasswordHash == "correct horse" {
		t.Fatal("password stored unhashed")
	}
}

func TestRegisterValidation(t *testing.T) {
	service := newCredentialService(memory.NewStore(nil), &stubProfiles{})

	if _, err := service.Register(context.Background(), RegisterCommand{Email: "not-an-email", Password: "long enough", FullName: "Ada"}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bad email, got %v", err)
	}
	if _, err := service.Register(context.Background(), RegisterCommand{Email: "ada@example.com", Password: "short", FullName: "Ada"}); !errors.Is(err, domainerrors.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := service.Register(context.Background(), RegisterCommand{Email: "ada@example.com", Password: "long enough", FullName: "  "}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank name, got %v", err)
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	store := memory.NewStore(nil)
	service := newCredentialService(store, &stubProfiles{})

	cmd := RegisterCommand{Email: "ada@example.com", Password: "correct horse", FullName: "Ada Lovelace"}
	if _, err := service.Register(context.Background(), cmd); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := service.Register(context.Background(), cmd); !errors.Is(err, domainerrors.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterProfileFailurePropagates(t *testing.T) {
	store := memory.NewStore(nil)
	profiles := &stubProfiles{err: domainerrors.ErrConflict}
	service := newCredentialService(store, profiles)

	if _, err := service.Register(context.Background(), RegisterCommand{Email: "ada@example.com", Password: "correct horse", FullName: "Ada Lovelace"}); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict from profile owner, got %v", err)
	}
	if _, err := store.GetCredentialByEmail(context.Background(), "ada@example.com"); !errors.Is(err, domainerrors.ErrCredentialNotFound) {
		t.Fatalf("expected no credential stored, got %v", err)
	}
}

func TestLoginIssuesSession(t *testing.T) {
	store := memory.NewStore(nil)
	service := newCredentialService(store, &stubProfiles{})

	if _, err := service.Register(context.Background(), RegisterCommand{Email: "ada@example.com", Password: "correct horse", FullName: "Ada Lovelace"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	session, err := service.Login(context.Background(), "Ada@Example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.VoterID != "voter-1" {
		t.Fatalf("expected voter-1, got %q", session.VoterID)
	}
	if session.Token == "" || session.ExpiresAt.IsZero() {
		t.Fatalf("expected issued token with expiry, got %+v", session)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	store := memory.NewStore(nil)
	service := newCredentialService(store, &stubProfiles{})

	if _, err := service.Register(context.Background(), RegisterCommand{Email: "ada@example.com", Password: "correct horse", FullName: "Ada Lovelace"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := service.Login(context.Background(), "ada@example.com", "wrong password"); !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := service.Login(context.Background(), "nobody@example.com", "correct horse"); !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := service.Login(context.Background(), "", "correct horse"); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank email, got %v", err)
	}
}
