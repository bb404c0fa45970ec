package ports

import (
	"context"
	"encoding/json"
	"time"

	"electra/contexts/identity-access/possession-proof-service/domain/entities"
)

type ChallengeRepository interface {
	SaveChallenge(ctx context.Context, challenge entities.ProofChallenge) error
	GetChallenge(ctx context.Context, challengeID string) (entities.ProofChallenge, error)
	// ListExpirable returns issued challenges whose deadline is at or
	// before the cutoff.
	ListExpirable(ctx context.Context, cutoff time.Time, limit int) ([]entities.ProofChallenge, error)
}

// CodeSender delivers a proof code over the challenge's channel. The
// use case bounds calls with a timeout; implementations should honour
// ctx cancellation.
type CodeSender interface {
	SendCode(ctx context.Context, channel entities.ProofChannel, destination string, code string) error
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

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
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

// CodeGenerator produces the numeric proof code. Separated from
// IDGenerator so tests can pin codes.
type CodeGenerator interface {
	NewCode(ctx context.Context) (string, error)
}
