package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"electra/contexts/election-core/eligibility-service/domain/entities"
	domainerrors "electra/contexts/election-core/eligibility-service/domain/errors"
	"electra/contexts/election-core/eligibility-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

type Store struct {
	mu sync.RWMutex

	voters      map[string]entities.VoterProfile
	submissions map[string]entities.IDDocumentSubmission
	outbox      map[string]outboxRecord
	eventDedup  map[string]dedupRecord
}

func NewStore(seed []entities.VoterProfile) *Store {
	voters := make(map[string]entities.VoterProfile, len(seed))
	for _, profile := range seed {
		voters[profile.VoterID] = profile
	}
	return &Store{
		voters:      voters,
		submissions: make(map[string]entities.IDDocumentSubmission),
		outbox:      make(map[string]outboxRecord),
		eventDedup:  make(map[string]dedupRecord),
	}
}

func (s *Store) CreateVoter(_ context.Context, profile entities.VoterProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	voterID := strings.TrimSpace(profile.VoterID)
	if _, exists := s.voters[voterID]; exists {
		return domainerrors.ErrVoterAlreadyRegistered
	}
	if nationalID := strings.TrimSpace(profile.NationalID); nationalID != "" {
		for _, existing := range s.voters {
			if existing.NationalID == nationalID {
				return domainerrors.ErrDuplicateNationalID
			}
		}
	}
	s.voters[voterID] = profile
	return nil
}

func (s *Store) SaveVoter(_ context.Context, profile entities.VoterProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters[strings.TrimSpace(profile.VoterID)] = profile
	return nil
}

func (s *Store) GetVoter(_ context.Context, voterID string) (entities.VoterProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.voters[strings.TrimSpace(voterID)]
	if !ok {
		return entities.VoterProfile{}, domainerrors.ErrVoterNotFound
	}
	return profile, nil
}

func (s *Store) FindVoterByNationalID(_ context.Context, nationalID string) (entities.VoterProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trimmed := strings.TrimSpace(nationalID)
	if trimmed == "" {
		return entities.VoterProfile{}, false, nil
	}
	for _, profile := range s.voters {
		if profile.NationalID == trimmed {
			return profile, true, nil
		}
	}
	return entities.VoterProfile{}, false, nil
}

func (s *Store) SaveSubmission(_ context.Context, submission entities.IDDocumentSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[strings.TrimSpace(submission.SubmissionID)] = submission
	return nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (entities.IDDocumentSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[strings.TrimSpace(submissionID)]
	if !ok {
		return entities.IDDocumentSubmission{}, domainerrors.ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *Store) GetPendingSubmissionByVoter(_ context.Context, voterID string) (entities.IDDocumentSubmission, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trimmed := strings.TrimSpace(voterID)
	for _, submission := range s.submissions {
		if submission.VoterID == trimmed && submission.Status == entities.SubmissionStatusPending {
			return submission, true, nil
		}
	}
	return entities.IDDocumentSubmission{}, false, nil
}

func (s *Store) ListSubmissionsByStatus(_ context.Context, status entities.SubmissionStatus) ([]entities.IDDocumentSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.IDDocumentSubmission, 0, len(s.submissions))
	for _, submission := range s.submissions {
		if status != "" && submission.Status != status {
			continue
		}
		items = append(items, submission)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].SubmittedAt.Before(items[j].SubmittedAt)
	})
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, exists := s.outbox[outboxID]; exists {
		return nil
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
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
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		items = append(items, record.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
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

func (s *Store) ReserveEvent(_ context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(eventID)
	if existing, ok := s.eventDedup[key]; ok {
		if existing.payloadHash != payloadHash {
			return false, domainerrors.ErrConflict
		}
		return true, nil
	}
	s.eventDedup[key] = dedupRecord{payloadHash: payloadHash, expiresAt: expiresAt.UTC()}
	return false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.VoterRepository = (*Store)(nil)
var _ ports.SubmissionRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.EventDedupStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
