package commands

import (
	"encoding/json"
	"time"

	"electra/contexts/election-core/vote-ledger/ports"
)

// newLedgerEnvelope builds canonical envelopes for ballot events,
// partitioned by voter so per-voter consumers see ordered streams.
func newLedgerEnvelope(
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
		SourceService:    "vote-ledger",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "voter_id",
		PartitionKey:     voterID,
		Data:             payload,
	}, nil
}
