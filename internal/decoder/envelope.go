// Package decoder implements the schema-on-read stages that turn a raw
// replication-feed record into a customer record: envelope decode,
// element extraction, base64 unwrap and customer payload decode.
//
// All functions are pure. Missing optional fields decode to nil;
// structural invalidity is an error. The two must never be conflated.
package decoder

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/stedi-analytics/customer-stream/internal/models"
)

// envelope mirrors models.ChangeEvent on the wire, plus the redundant
// lowercase twin of the entries array the source connector emits for
// compatibility. Binding the twin to its own field keeps encoding/json's
// case-insensitive fallback from ever reading it into Entries. It is
// discarded after decode.
type envelope struct {
	models.ChangeEvent
	IgnoredEntries []models.ScoredElement `json:"zsetEntries"`
}

// DecodeEnvelope parses raw record bytes into a ChangeEvent.
//
// The bytes must be a UTF-8 JSON object; anything else (invalid JSON,
// arrays, scalars, null) fails with ErrMalformedEnvelope. Unknown
// top-level fields are ignored, missing optional fields stay nil.
func DecodeEnvelope(raw []byte) (*models.ChangeEvent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: value is not a JSON object", ErrMalformedEnvelope)
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	ev := env.ChangeEvent
	return &ev, nil
}

// ExtractElement returns the base64 payload of the first sorted-set
// entry. Only index 0 is ever consulted; the upstream connector
// guarantees single-element payloads for this feed, and later entries
// must never influence the output. An empty entries list is
// ErrMissingElement.
func ExtractElement(ev *models.ChangeEvent) (string, error) {
	if len(ev.Entries) == 0 {
		return "", fmt.Errorf("%w: key=%s", ErrMissingElement, ev.Key)
	}
	return ev.Entries[0].Element, nil
}
