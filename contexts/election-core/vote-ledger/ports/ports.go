package ports

import (
	"context"
	"encoding/json"
	"time"

	"electra/contexts/election-core/vote-ledger/domain/entities"
)

type BallotRepository interface {
	// CastBallot persists the ballot, moves the candidate tally up by
	// one and appends the ballot event to the outbox as a single
	// atomic unit: either all three land or none do. It fails with
	// ErrAlreadyVoted when the voter already owns a ballot and
	// ErrCandidateNotFound when the candidate is unknown.
	CastBallot(ctx context.Context, ballot entities.Ballot, event EventEnvelope) error
	GetBallotByVoter(ctx context.Context, voterID string) (entities.Ballot, error)
	CountBallots(ctx context.Context) (int, error)
	CountBallotsByCandidate(ctx context.Context, candidateID string) (int, error)
}

type CandidateRepository interface {
	CreateCandidate(ctx context.Context, candidate entities.Candidate) error
	GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error)
	ListCandidates(ctx context.Context) ([]entities.Candidate, error)
	SetCandidateVotes(ctx context.Context, candidateID string, votes int, updatedAt time.Time) error
}

// EligibilityChecker is the pre-cast gate. The composition root wires
// it to the eligibility module; the ledger never reads voter profiles
// itself.
type EligibilityChecker interface {
	Check(ctx context.Context, voterID string) (entities.EligibilityDecision, error)
}

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
