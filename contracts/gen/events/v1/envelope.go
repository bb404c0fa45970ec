package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the published wire shape for every Electra domain event.
// Consumers outside this repository decode against it, so fields are
// only ever added, never renamed or removed. internal/shared/events and
// the per-context ports keep structural copies of this layout.
type Envelope struct {
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
