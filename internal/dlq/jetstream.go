package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/stedi-analytics/customer-stream/internal/models"
)

const (
	streamName    = "CUSTOMERSTREAM_DLQ"
	subjectPrefix = "customerstream.dlq"
)

// JetStreamQueue writes dropped records to NATS JetStream. Safe for use
// across multiple pipeline instances.
type JetStreamQueue struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewJetStreamQueue connects to NATS and ensures the DLQ stream exists.
func NewJetStreamQueue(ctx context.Context, url string) (*JetStreamQueue, error) {
	conn, err := nats.Connect(url,
		nats.Name("customer-stream-dlq"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ".>"},
		MaxAge:    7 * 24 * time.Hour,
		MaxBytes:  1024 * 1024 * 1024,
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create dlq stream: %w", err)
	}

	return &JetStreamQueue{
		conn:   conn,
		js:     js,
		stream: stream,
	}, nil
}

// Write publishes a dropped record under customerstream.dlq.<reason>.
func (q *JetStreamQueue) Write(ctx context.Context, rec models.DroppedRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal dlq entry: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", subjectPrefix, rec.Reason)
	if _, err := q.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish dlq entry: %w", err)
	}

	return nil
}

func (q *JetStreamQueue) Close() error {
	q.conn.Close()
	return nil
}
