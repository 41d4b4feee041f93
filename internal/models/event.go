// Package models holds the wire and domain types flowing through the
// pipeline. Every value is built fresh per input record and dropped once
// the next stage has consumed it.
package models

import "time"

// ChangeEvent is the outer envelope produced by the Redis source
// connector for every mutation to the replicated keyspace.
//
// The connector emits two case-varying copies of the sorted-set entries
// (zSetEntries and zsetEntries) for compatibility; zSetEntries is the
// canonical one and the twin is ignored on decode. Ch arrives as the
// text "true"/"false" rather than a JSON boolean.
type ChangeEvent struct {
	Key          string          `json:"key"`
	Value        *string         `json:"value"`
	ExpiredType  *string         `json:"expiredType"`
	ExpiredValue *string         `json:"expiredValue"`
	ExistType    string          `json:"existType"`
	Ch           string          `json:"ch"`
	Incr         bool            `json:"incr"`
	Entries      []ScoredElement `json:"zSetEntries"`
}

// ScoredElement is one member of the sorted set carried by the envelope.
// Element is a base64-encoded payload; Score is carried as text and
// never interpreted.
type ScoredElement struct {
	Element string `json:"element"`
	Score   string `json:"score"`
}

// CustomerRecord is the inner payload once the element has been
// base64-decoded and parsed. Fields absent from the JSON stay nil; the
// decode never fails on a missing field, only on structurally invalid
// JSON.
type CustomerRecord struct {
	CustomerName *string `json:"customerName"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	BirthDay     *string `json:"birthDay"`
}

// Projection is the terminal output entity: one (email, birthYear) pair
// per surviving input event.
type Projection struct {
	Email     string `json:"email"`
	BirthYear string `json:"birthYear"`
}

// DroppedRecord describes a raw record that failed a hard decode stage.
// It is what gets published to the dead-letter queue.
type DroppedRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Topic     string    `json:"topic"`
	Partition int       `json:"partition"`
	Offset    int64     `json:"offset"`
	Key       string    `json:"key,omitempty"`
	Raw       []byte    `json:"raw"`
	Reason    string    `json:"reason"`
	Error     string    `json:"error"`
}
