// Package seeder simulates the upstream half of the system for local
// runs: it loads generated customer records into the Redis sorted set
// the pipeline's feed replicates from, and publishes the change-event
// envelope the Redis source connector would emit to the source topic.
package seeder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stedi-analytics/customer-stream/internal/logging"
	"github.com/stedi-analytics/customer-stream/internal/models"
)

// Publisher sends an envelope to the source topic. Satisfied by
// KafkaPublisher; tests swap in a capture.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

// Customer is the record shape stored in the sorted set and carried,
// base64-encoded, inside the envelope.
type Customer struct {
	CustomerName string `json:"customerName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BirthDay     string `json:"birthDay"`
}

// wireEnvelope is the connector output shape, including the redundant
// lowercase twin of the entries array that the real connector emits.
type wireEnvelope struct {
	Key         string                 `json:"key"`
	ExistType   string                 `json:"existType"`
	Ch          string                 `json:"ch"`
	Incr        bool                   `json:"incr"`
	ZSetEntries []models.ScoredElement `json:"zSetEntries"`
	ZsetEntries []models.ScoredElement `json:"zsetEntries"`
}

// Seeder generates customers and feeds both sides of the simulated
// replication path.
type Seeder struct {
	rdb  *redis.Client
	pub  Publisher
	set  string
	log  *logging.Logger
	next float64
}

func New(rdb *redis.Client, pub Publisher, sortedSet string, log *logging.Logger) *Seeder {
	if log == nil {
		log = logging.Default()
	}
	return &Seeder{
		rdb: rdb,
		pub: pub,
		set: sortedSet,
		log: log,
	}
}

// Run seeds count customers, pausing interval between each.
func (s *Seeder) Run(ctx context.Context, count int, interval time.Duration) error {
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.SeedOne(ctx); err != nil {
			return fmt.Errorf("seed customer %d: %w", i+1, err)
		}
		if interval > 0 && i < count-1 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	s.log.Info("seeding complete", "count", count)
	return nil
}

// SeedOne generates one customer, ZADDs its encoded form into the
// sorted set, and publishes the matching envelope.
func (s *Seeder) SeedOne(ctx context.Context) error {
	customer := GenerateCustomer()

	payload, err := json.Marshal(customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	element := base64.StdEncoding.EncodeToString(payload)

	score := s.next
	s.next++

	if err := s.rdb.ZAdd(ctx, s.set, redis.Z{
		Score:  score,
		Member: element,
	}).Err(); err != nil {
		return fmt.Errorf("zadd %s: %w", s.set, err)
	}

	env := wireEnvelope{
		Key:       base64.StdEncoding.EncodeToString([]byte(s.set)),
		ExistType: "NONE",
		Ch:        "false",
		Incr:      false,
		ZSetEntries: []models.ScoredElement{{
			Element: element,
			Score:   strconv.FormatFloat(score, 'f', 1, 64),
		}},
	}
	env.ZsetEntries = env.ZSetEntries

	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := s.pub.Publish(ctx, []byte(uuid.NewString()), value); err != nil {
		return fmt.Errorf("publish envelope: %w", err)
	}

	s.log.Debug("seeded customer", "email", customer.Email, "birthDay", customer.BirthDay)
	return nil
}

// GenerateCustomer builds a fake customer with a birth date between
// 1940 and 2005.
func GenerateCustomer() Customer {
	birth := gofakeit.DateRange(
		time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	return Customer{
		CustomerName: gofakeit.Name(),
		Email:        gofakeit.Email(),
		Phone:        gofakeit.Phone(),
		BirthDay:     birth.Format("2006-01-02"),
	}
}
