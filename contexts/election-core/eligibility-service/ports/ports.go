package ports

import (
	"context"
	"encoding/json"
	"time"

	"electra/contexts/election-core/eligibility-service/domain/entities"
)

type VoterRepository interface {
	// CreateVoter fails with ErrVoterAlreadyRegistered for a known voter id
	// and ErrDuplicateNationalID when the national id is already taken.
	CreateVoter(ctx context.Context, profile entities.VoterProfile) error
	SaveVoter(ctx context.Context, profile entities.VoterProfile) error
	GetVoter(ctx context.Context, voterID string) (entities.VoterProfile, error)
	FindVoterByNationalID(ctx context.Context, nationalID string) (entities.VoterProfile, bool, error)
}

type SubmissionRepository interface {
	SaveSubmission(ctx context.Context, submission entities.IDDocumentSubmission) error
	GetSubmission(ctx context.Context, submissionID string) (entities.IDDocumentSubmission, error)
	GetPendingSubmissionByVoter(ctx context.Context, voterID string) (entities.IDDocumentSubmission, bool, error)
	ListSubmissionsByStatus(ctx context.Context, status entities.SubmissionStatus) ([]entities.IDDocumentSubmission, error)
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

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

type EventDedupStore interface {
	// ReserveEvent returns true when the event id was already processed.
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
