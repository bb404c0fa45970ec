package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"electra/contexts/identity-access/credential-service/domain/entities"
	domainerrors "electra/contexts/identity-access/credential-service/domain/errors"
	"electra/contexts/identity-access/credential-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	credentialsByEmail map[string]entities.Credential
}

func NewStore(seed []entities.Credential) *Store {
	credentials := make(map[string]entities.Credential, len(seed))
	for _, credential := range seed {
		credentials[strings.ToLower(credential.Email)] = credential
	}
	return &Store{
		credentialsByEmail: credentials,
	}
}

func (s *Store) CreateCredential(_ context.Context, credential entities.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(credential.Email))
	if _, exists := s.credentialsByEmail[email]; exists {
		return domainerrors.ErrEmailTaken
	}
	s.credentialsByEmail[email] = credential
	return nil
}

func (s *Store) GetCredentialByEmail(_ context.Context, email string) (entities.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	credential, ok := s.credentialsByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return entities.Credential{}, domainerrors.ErrCredentialNotFound
	}
	return credential, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.CredentialRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
