package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire timestamp layouts, in decode preference order. The backend emits
// RFC3339 with fractional seconds; older exports carry whole seconds or a
// zone-less form that is treated as UTC.
var wireTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Timestamp is the ISO-8601 wire form used by every DTO for modification
// times and domain dates.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a JSON string: %w", err)
	}
	for _, layout := range wireTimeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// WireModified extracts the last_modified field from a serialized DTO
// without decoding the full record. The drain path uses it to stamp the
// remote row for a queued upsert.
func WireModified(doc []byte) (time.Time, error) {
	var probe struct {
		LastModified Timestamp `json:"last_modified"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return time.Time{}, fmt.Errorf("payload is not a valid DTO: %w", err)
	}
	if probe.LastModified.IsZero() {
		return time.Time{}, fmt.Errorf("payload has no last_modified field")
	}
	return probe.LastModified.Time, nil
}
