package memory

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"electra/contexts/identity-access/possession-proof-service/domain/entities"
	domainerrors "electra/contexts/identity-access/possession-proof-service/domain/errors"
	"electra/contexts/identity-access/possession-proof-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type Store struct {
	mu sync.RWMutex

	challenges map[string]entities.ProofChallenge
	outbox     map[string]outboxRecord
}

func NewStore(seed []entities.ProofChallenge) *Store {
	challenges := make(map[string]entities.ProofChallenge, len(seed))
	for _, challenge := range seed {
		challenges[challenge.ChallengeID] = challenge
	}
	return &Store{
		challenges: challenges,
		outbox:     make(map[string]outboxRecord),
	}
}

func (s *Store) SaveChallenge(_ context.Context, challenge entities.ProofChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[strings.TrimSpace(challenge.ChallengeID)] = challenge
	return nil
}

func (s *Store) GetChallenge(_ context.Context, challengeID string) (entities.ProofChallenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[strings.TrimSpace(challengeID)]
	if !ok {
		return entities.ProofChallenge{}, domainerrors.ErrChallengeNotFound
	}
	return challenge, nil
}

func (s *Store) ListExpirable(_ context.Context, cutoff time.Time, limit int) ([]entities.ProofChallenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	expirable := make([]entities.ProofChallenge, 0, limit)
	for _, challenge := range s.challenges {
		if challenge.Status != entities.ChallengeStatusIssued {
			continue
		}
		if challenge.ExpiresAt.After(cutoff) {
			continue
		}
		expirable = append(expirable, challenge)
	}
	sort.Slice(expirable, func(i, j int) bool {
		return expirable[i].ExpiresAt.Before(expirable[j].ExpiresAt)
	})
	if len(expirable) > limit {
		expirable = expirable[:limit]
	}
	return expirable, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, exists := s.outbox[outboxID]; exists {
		return nil
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt.UTC(),
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	pending := make([]ports.OutboxMessage, 0, limit)
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		pending = append(pending, record.message)
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	record.published = true
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// NewCode draws a uniform 6-digit code from crypto/rand.
func (s *Store) NewCode(_ context.Context) (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

var _ ports.ChallengeRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
var _ ports.CodeGenerator = (*Store)(nil)
