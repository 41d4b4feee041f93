// Package transform implements the tail of the pipeline: the null
// filter and the birth-year projection, plus the full per-record decode
// chain used by the runner.
package transform

import (
	"strings"

	"github.com/stedi-analytics/customer-stream/internal/decoder"
	"github.com/stedi-analytics/customer-stream/internal/models"
)

// birthDayDelimiter separates the components of the date's textual form.
const birthDayDelimiter = "-"

// KeepCustomer reports whether a customer record survives the null
// filter: both email and birthDay must be present. Records failing the
// filter are routine (deletions, non-customer keys, partial updates)
// and are dropped silently, not as an error.
func KeepCustomer(rec *models.CustomerRecord) bool {
	return rec.Email != nil && rec.BirthDay != nil
}

// Project reduces a filtered customer record to its (email, birthYear)
// pair. The birth year is everything before the first delimiter in the
// date's textual form; no fixed year width is assumed.
func Project(rec *models.CustomerRecord) models.Projection {
	year, _, _ := strings.Cut(*rec.BirthDay, birthDayDelimiter)
	return models.Projection{
		Email:     *rec.Email,
		BirthYear: year,
	}
}

// Apply runs one raw record value through the full decode-and-project
// chain.
//
// The returned bool reports whether a projection was produced. A false
// with a nil error is the silent-drop path (null filter); a non-nil
// error is one of the decoder's hard per-record failures and the caller
// is expected to log and drop the record.
func Apply(raw []byte) (models.Projection, bool, error) {
	ev, err := decoder.DecodeEnvelope(raw)
	if err != nil {
		return models.Projection{}, false, err
	}

	element, err := decoder.ExtractElement(ev)
	if err != nil {
		return models.Projection{}, false, err
	}

	text, err := decoder.UnwrapElement(element)
	if err != nil {
		return models.Projection{}, false, err
	}

	rec, err := decoder.DecodeCustomer(text)
	if err != nil {
		return models.Projection{}, false, err
	}

	if !KeepCustomer(rec) {
		return models.Projection{}, false, nil
	}

	return Project(rec), true, nil
}
