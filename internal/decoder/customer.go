package decoder

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/stedi-analytics/customer-stream/internal/models"
)

// birthDayLayout is the canonical textual form dates arrive in.
const birthDayLayout = "2006-01-02"

// UnwrapElement base64-decodes an element payload and returns the inner
// text. Malformed base64 and non-UTF-8 decode results both fail with
// ErrInvalidEncoding.
func UnwrapElement(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("%w: decoded bytes are not UTF-8", ErrInvalidEncoding)
	}
	return string(decoded), nil
}

// DecodeCustomer parses the inner JSON text into a CustomerRecord.
//
// Missing fields become nil, never an error. A birthDay that is present
// but does not parse as a date is also nulled, matching the lenient
// schema-on-read behavior of the rest of the decode chain; such records
// then fall out at the null filter like any other partial update. Only
// structurally invalid JSON fails, with ErrMalformedPayload.
func DecodeCustomer(text string) (*models.CustomerRecord, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformedPayload)
	}

	var rec models.CustomerRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if rec.BirthDay != nil {
		if _, err := time.Parse(birthDayLayout, *rec.BirthDay); err != nil {
			rec.BirthDay = nil
		}
	}

	return &rec, nil
}
