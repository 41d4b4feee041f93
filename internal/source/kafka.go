package source

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/stedi-analytics/customer-stream/internal/config"
)

// KafkaReader implements Reader on top of a kafka-go consumer.
type KafkaReader struct {
	reader  *kafka.Reader
	grouped bool

	// pending maps fetched records back to their kafka messages so
	// Commit can acknowledge them. The run loop owns one record at a
	// time, so a single slot suffices.
	pending *kafka.Message
}

// NewKafkaReader builds a reader for the configured topic.
//
// starting_offset "earliest" replays the full retained history of the
// topic, not just records arriving after startup. With a consumer group
// the offset applies to the group's first run; without one the reader
// is pinned to partition 0 and seeks explicitly.
func NewKafkaReader(cfg config.KafkaConfig) (*KafkaReader, error) {
	start := kafka.FirstOffset
	if cfg.StartingOffset == "latest" {
		start = kafka.LastOffset
	}

	maxWait := cfg.MaxWait
	if maxWait <= 0 {
		maxWait = 500 * time.Millisecond
	}

	rc := kafka.ReaderConfig{
		Brokers:  cfg.BootstrapServers,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
		MaxWait:  maxWait,
	}

	grouped := cfg.GroupID != ""
	if grouped {
		rc.GroupID = cfg.GroupID
		rc.StartOffset = start
	}

	r := kafka.NewReader(rc)

	if !grouped {
		if err := r.SetOffset(start); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("set start offset: %w", err)
		}
	}

	return &KafkaReader{reader: r, grouped: grouped}, nil
}

// Fetch blocks for the next record. Errors other than context
// cancellation indicate the bus is unreachable and are fatal to the
// pipeline.
func (r *KafkaReader) Fetch(ctx context.Context) (Record, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return Record{}, err
	}

	r.pending = &msg

	return Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
		Time:      msg.Time,
	}, nil
}

// Commit acknowledges the record with the broker. A no-op without a
// consumer group, where the broker holds no offsets for us.
func (r *KafkaReader) Commit(ctx context.Context, rec Record) error {
	if !r.grouped || r.pending == nil {
		return nil
	}
	if r.pending.Offset != rec.Offset || r.pending.Partition != rec.Partition {
		return fmt.Errorf("commit out of order: have %d/%d, got %d/%d",
			r.pending.Partition, r.pending.Offset, rec.Partition, rec.Offset)
	}
	if err := r.reader.CommitMessages(ctx, *r.pending); err != nil {
		return fmt.Errorf("commit offset %d: %w", rec.Offset, err)
	}
	r.pending = nil
	return nil
}

func (r *KafkaReader) Close() error {
	return r.reader.Close()
}
