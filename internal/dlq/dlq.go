// Package dlq preserves records the pipeline dropped on hard decode
// failures, so operators can inspect and replay them.
package dlq

import (
	"context"

	"github.com/stedi-analytics/customer-stream/internal/models"
)

// Writer records dropped records somewhere durable.
type Writer interface {
	Write(ctx context.Context, rec models.DroppedRecord) error
	Close() error
}

// Nop is the writer used when the DLQ is disabled.
type Nop struct{}

func (Nop) Write(context.Context, models.DroppedRecord) error { return nil }
func (Nop) Close() error                                      { return nil }
