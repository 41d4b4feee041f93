package sink

import (
	"context"
	"sync"

	"github.com/stedi-analytics/customer-stream/internal/models"
)

// MemorySink collects projections in memory. Used in tests.
type MemorySink struct {
	mu      sync.Mutex
	records []models.Projection
	flushes int

	// WriteErr, when set, is returned by every Write. Lets tests
	// exercise the sink-failure path.
	WriteErr error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(_ context.Context, p models.Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.records = append(s.records, p)
	return nil
}

func (s *MemorySink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func (s *MemorySink) Close() error {
	return nil
}

// Records returns a copy of everything written so far.
func (s *MemorySink) Records() []models.Projection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Projection, len(s.records))
	copy(out, s.records)
	return out
}

// Flushes returns how many times Flush was called.
func (s *MemorySink) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}
