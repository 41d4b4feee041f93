// Package source adapts the message bus into the pipeline's pull-based
// record feed.
package source

import (
	"context"
	"time"
)

// Record is one raw key/value record pulled from the bus.
type Record struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time
}

// Reader is the port the pipeline pulls records through. Fetch blocks
// until a record arrives or ctx is done; because the loop only fetches
// after the previous record cleared the sink, the reader is also the
// pipeline's backpressure point.
type Reader interface {
	Fetch(ctx context.Context) (Record, error)
	// Commit marks the record as processed. Called only after the
	// record's output (if any) reached the sink, giving at-least-once
	// delivery.
	Commit(ctx context.Context, rec Record) error
	Close() error
}
