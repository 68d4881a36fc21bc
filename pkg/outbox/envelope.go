package outbox

import (
	"encoding/json"
	"time"
)

// PayloadEnvelope is the versioned wrapper persisted in
// outbox_events.payload and published verbatim to Pub/Sub. Consumers
// dedupe on EventID and branch on the row's event_type attribute.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Source     string          `json:"source,omitempty"`
	Data       json.RawMessage `json:"data"`
}
