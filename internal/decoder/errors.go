package decoder

import "errors"

// Per-record decode errors. All of them are recoverable at the pipeline
// level: the offending record is logged and dropped, the stream
// continues.
var (
	// ErrMalformedEnvelope means the record value was not a JSON object.
	ErrMalformedEnvelope = errors.New("malformed change event envelope")

	// ErrMissingElement means the envelope carried no sorted-set entries.
	ErrMissingElement = errors.New("envelope has no sorted-set entries")

	// ErrInvalidEncoding means the element payload was not valid base64,
	// or did not decode to UTF-8 text.
	ErrInvalidEncoding = errors.New("element payload is not valid base64 text")

	// ErrMalformedPayload means the decoded element was not a JSON object.
	ErrMalformedPayload = errors.New("malformed customer payload")
)
