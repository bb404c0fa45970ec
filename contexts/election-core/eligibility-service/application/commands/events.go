package commands

import (
	"encoding/json"
	"time"

	"electra/contexts/election-core/eligibility-service/ports"
)

// newEligibilityEnvelope builds canonical envelopes for profile events.
// Events are partitioned by voter for stable ordering on voter-scoped
// consumers.
func newEligibilityEnvelope(
	eventID string,
	eventType string,
	voterID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "eligibility-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "voter_id",
		PartitionKey:     voterID,
		Data:             payload,
	}, nil
}
