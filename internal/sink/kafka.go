package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/stedi-analytics/customer-stream/internal/models"
)

// KafkaSink publishes projections to a downstream topic, keyed by email
// so records for the same customer stay on one partition.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
	}
}

func (s *KafkaSink) Write(ctx context.Context, p models.Projection) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal projection: %w", err)
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(p.Email),
		Value: data,
	})
}

// Flush is a no-op: the writer is synchronous, every Write has already
// been acknowledged.
func (s *KafkaSink) Flush() error {
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
