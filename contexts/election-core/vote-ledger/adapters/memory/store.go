package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"electra/contexts/election-core/vote-ledger/domain/entities"
	domainerrors "electra/contexts/election-core/vote-ledger/domain/errors"
	"electra/contexts/election-core/vote-ledger/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type Store struct {
	mu sync.RWMutex

	ballotsByVoter map[string]entities.Ballot
	candidates     map[string]entities.Candidate
	outbox         map[string]outboxRecord
}

func NewStore(seed []entities.Candidate) *Store {
	candidates := make(map[string]entities.Candidate, len(seed))
	for _, candidate := range seed {
		candidates[candidate.CandidateID] = candidate
	}
	return &Store{
		ballotsByVoter: make(map[string]entities.Ballot),
		candidates:     candidates,
		outbox:         make(map[string]outboxRecord),
	}
}

// CastBallot applies the ballot, the tally bump and the outbox row in
// one critical section; any failure leaves the store untouched.
func (s *Store) CastBallot(_ context.Context, ballot entities.Ballot, event ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	voterID := strings.TrimSpace(ballot.VoterID)
	if _, exists := s.ballotsByVoter[voterID]; exists {
		return domainerrors.ErrAlreadyVoted
	}
	candidate, ok := s.candidates[strings.TrimSpace(ballot.CandidateID)]
	if !ok {
		return domainerrors.ErrCandidateNotFound
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.ballotsByVoter[voterID] = ballot
	candidate.Votes++
	candidate.UpdatedAt = ballot.CastAt.UTC()
	s.candidates[candidate.CandidateID] = candidate
	s.appendOutboxLocked(event, payload)
	return nil
}

func (s *Store) GetBallotByVoter(_ context.Context, voterID string) (entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ballot, ok := s.ballotsByVoter[strings.TrimSpace(voterID)]
	if !ok {
		return entities.Ballot{}, domainerrors.ErrBallotNotFound
	}
	return ballot, nil
}

func (s *Store) CountBallots(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ballotsByVoter), nil
}

func (s *Store) CountBallotsByCandidate(_ context.Context, candidateID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trimmed := strings.TrimSpace(candidateID)
	count := 0
	for _, ballot := range s.ballotsByVoter {
		if ballot.CandidateID == trimmed {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidateID := strings.TrimSpace(candidate.CandidateID)
	if _, exists := s.candidates[candidateID]; exists {
		return domainerrors.ErrCandidateExists
	}
	s.candidates[candidateID] = candidate
	return nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) ListCandidates(_ context.Context) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidates := make([]entities.Candidate, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		candidates = append(candidates, candidate)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CandidateID < candidates[j].CandidateID
	})
	return candidates, nil
}

func (s *Store) SetCandidateVotes(_ context.Context, candidateID string, votes int, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return domainerrors.ErrCandidateNotFound
	}
	candidate.Votes = votes
	candidate.UpdatedAt = updatedAt.UTC()
	s.candidates[candidate.CandidateID] = candidate
	return nil
}

func (s *Store) appendOutboxLocked(envelope ports.EventEnvelope, payload []byte) {
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, exists := s.outbox[outboxID]; exists {
		return
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

var _ ports.BallotRepository = (*Store)(nil)
var _ ports.CandidateRepository = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
