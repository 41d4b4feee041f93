// Package sink writes projected records to an unbounded, append-only
// output stream.
package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/stedi-analytics/customer-stream/internal/config"
	"github.com/stedi-analytics/customer-stream/internal/models"
)

// Sink receives projections in the order they are produced. Writes may
// buffer; Flush must push everything downstream and is always called
// before shutdown.
type Sink interface {
	Write(ctx context.Context, p models.Projection) error
	Flush() error
	Close() error
}

// New builds a sink from a target identifier: "console", "file:<path>"
// or "kafka:<topic>".
func New(target string, kcfg config.KafkaConfig) (Sink, error) {
	switch {
	case target == "console":
		return NewConsoleSink(os.Stdout), nil
	case strings.HasPrefix(target, "file:"):
		return NewFileSink(strings.TrimPrefix(target, "file:"))
	case strings.HasPrefix(target, "kafka:"):
		return NewKafkaSink(kcfg.BootstrapServers, strings.TrimPrefix(target, "kafka:")), nil
	default:
		return nil, fmt.Errorf("unknown sink target %q", target)
	}
}

// ConsoleSink appends projections as JSON lines to a writer, normally
// stdout. Writes never check the context: once the run loop hands a
// record to the sink, cancellation must not abort it mid-flight.
type ConsoleSink struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	bw := bufio.NewWriter(w)
	return &ConsoleSink{w: bw, enc: json.NewEncoder(bw)}
}

func (s *ConsoleSink) Write(_ context.Context, p models.Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(p)
}

func (s *ConsoleSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

func (s *ConsoleSink) Close() error {
	return s.Flush()
}

// FileSink appends projections as JSON lines to a file.
type FileSink struct {
	mu  sync.Mutex
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder
}

func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sink file: %w", err)
	}
	bw := bufio.NewWriter(f)
	return &FileSink{f: f, w: bw, enc: json.NewEncoder(bw)}, nil
}

func (s *FileSink) Write(_ context.Context, p models.Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(p)
}

func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		return err
	}
	return s.f.Sync()
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}
