// Package pipeline runs the decode-and-project loop over the source
// feed: one record in, zero or one projection out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/stedi-analytics/customer-stream/internal/decoder"
	"github.com/stedi-analytics/customer-stream/internal/dlq"
	"github.com/stedi-analytics/customer-stream/internal/logging"
	"github.com/stedi-analytics/customer-stream/internal/metrics"
	"github.com/stedi-analytics/customer-stream/internal/models"
	"github.com/stedi-analytics/customer-stream/internal/sink"
	"github.com/stedi-analytics/customer-stream/internal/source"
	"github.com/stedi-analytics/customer-stream/internal/transform"
)

// State is the pipeline lifecycle state.
type State int32

const (
	StateInitializing State = iota
	StateRunning
	StateTerminated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Pipeline-fatal errors. Per-record decode errors never surface here;
// they are logged, counted and optionally dead-lettered inside the run
// loop.
var (
	ErrSourceUnavailable = errors.New("source adapter unavailable")
	ErrSinkWrite         = errors.New("sink write failure")
)

// Pipeline owns the run loop. Records are processed strictly one at a
// time with no state shared between them, so per-partition order is
// preserved and instances can be scaled across partitions freely.
type Pipeline struct {
	src        source.Reader
	sink       sink.Sink
	dlq        dlq.Writer
	log        *logging.Logger
	flushEvery time.Duration
	state      atomic.Int32
}

func New(src source.Reader, snk sink.Sink, dlw dlq.Writer, log *logging.Logger) *Pipeline {
	if dlw == nil {
		dlw = dlq.Nop{}
	}
	if log == nil {
		log = logging.Default()
	}
	return &Pipeline{
		src:  src,
		sink: snk,
		dlq:  dlw,
		log:  log,
	}
}

// SetFlushInterval makes the run loop flush buffered sink output every
// d, so projections become visible downstream at low throughput too,
// not only at termination. Zero disables the periodic flush.
func (p *Pipeline) SetFlushInterval(d time.Duration) {
	p.flushEvery = d
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
	metrics.PipelineState.Set(float64(s))
	p.log.Info("pipeline state changed", logging.FieldState, s.String())
}

// Run pulls records until ctx is cancelled or an adapter fails.
//
// Each record runs the full decode-and-project chain. Hard decode
// failures drop the record and the loop continues; only adapter-level
// failures end the run with an error, leaving the pipeline Failed.
// Cancellation finishes the in-flight record, flushes the sink and
// leaves the pipeline Terminated with a nil error.
func (p *Pipeline) Run(ctx context.Context) error {
	p.setState(StateRunning)

	if p.flushEvery > 0 {
		stopFlusher := p.startFlusher(ctx)
		defer stopFlusher()
	}

	for {
		rec, err := p.src.Fetch(ctx)
		if err != nil {
			if isShutdown(ctx, err) {
				return p.terminate()
			}
			p.setState(StateFailed)
			return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}

		metrics.RecordsConsumed.Inc()
		metrics.RecordBytes.Add(float64(len(rec.Value)))

		if err := p.process(ctx, rec); err != nil {
			if isShutdown(ctx, err) {
				return p.terminate()
			}
			metrics.SinkWriteErrors.Inc()
			p.setState(StateFailed)
			return fmt.Errorf("%w: %v", ErrSinkWrite, err)
		}

		// At-least-once: the offset is only committed after the
		// record's output cleared the sink. A failed commit means a
		// possible replay, never a loss.
		if err := p.src.Commit(ctx, rec); err != nil && !isShutdown(ctx, err) {
			p.log.Warn("offset commit failed",
				logging.Offset(rec.Offset), logging.Err(err))
		}
	}
}

// process runs one record end to end. Only sink errors propagate.
func (p *Pipeline) process(ctx context.Context, rec source.Record) error {
	proj, ok, err := transform.Apply(rec.Value)
	if err != nil {
		p.drop(ctx, rec, err)
		return nil
	}
	if !ok {
		metrics.RecordsFiltered.Inc()
		p.log.Debug("record filtered",
			logging.Partition(rec.Partition), logging.Offset(rec.Offset))
		return nil
	}

	// The record is in flight: a shutdown signal must not abort its
	// write. Cancellation is observed at Fetch only.
	if err := p.sink.Write(context.WithoutCancel(ctx), proj); err != nil {
		return err
	}
	metrics.ProjectionsEmitted.Inc()
	return nil
}

// drop logs a hard per-record failure and hands the raw record to the
// dead letter queue. The stream continues either way.
func (p *Pipeline) drop(ctx context.Context, rec source.Record, cause error) {
	reason := dropReason(cause)
	metrics.RecordsDropped.WithLabelValues(reason).Inc()
	p.log.Warn("record dropped",
		logging.Reason(reason),
		logging.Partition(rec.Partition),
		logging.Offset(rec.Offset),
		logging.Err(cause),
	)

	entry := models.DroppedRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Key:       string(rec.Key),
		Raw:       rec.Value,
		Reason:    reason,
		Error:     cause.Error(),
	}
	if err := p.dlq.Write(ctx, entry); err != nil {
		p.log.Error("dlq write failed", logging.Err(err))
		return
	}
	if _, disabled := p.dlq.(dlq.Nop); !disabled {
		metrics.DLQPublished.Inc()
	}
}

// startFlusher flushes the sink every flushEvery until stopped. Sinks
// are safe for a concurrent Flush against the loop's writes.
func (p *Pipeline) startFlusher(ctx context.Context) func() {
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(p.flushEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := p.sink.Flush(); err != nil {
					p.log.Warn("periodic sink flush failed", logging.Err(err))
				}
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}

// terminate flushes buffered sink output and marks the pipeline
// Terminated. Called only on the explicit-shutdown path.
func (p *Pipeline) terminate() error {
	if err := p.sink.Flush(); err != nil {
		p.setState(StateFailed)
		return fmt.Errorf("%w: flush on shutdown: %v", ErrSinkWrite, err)
	}
	p.setState(StateTerminated)
	return nil
}

// isShutdown distinguishes an orderly stop (context cancelled, reader
// closed) from an adapter failure.
func isShutdown(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF)
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, decoder.ErrMalformedEnvelope):
		return "malformed_envelope"
	case errors.Is(err, decoder.ErrMissingElement):
		return "missing_element"
	case errors.Is(err, decoder.ErrInvalidEncoding):
		return "invalid_encoding"
	case errors.Is(err, decoder.ErrMalformedPayload):
		return "malformed_payload"
	default:
		return "unknown"
	}
}
