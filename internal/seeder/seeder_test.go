package seeder

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stedi-analytics/customer-stream/internal/decoder"
	"github.com/stedi-analytics/customer-stream/internal/transform"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

// capturePublisher collects published envelope values.
type capturePublisher struct {
	mu     sync.Mutex
	values [][]byte
}

func (p *capturePublisher) Publish(_ context.Context, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = append(p.values, value)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func TestGenerateCustomer(t *testing.T) {
	c := GenerateCustomer()

	assert.NotEmpty(t, c.CustomerName)
	assert.NotEmpty(t, c.Email)
	assert.NotEmpty(t, c.Phone)
	require.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, c.BirthDay)
}

func TestSeedOne(t *testing.T) {
	_, client := setupTestRedis(t)
	defer client.Close()

	pub := &capturePublisher{}
	s := New(client, pub, "customer", nil)

	ctx := context.Background()
	require.NoError(t, s.SeedOne(ctx))

	// The sorted set holds the base64 customer payload.
	members, err := client.ZRange(ctx, "customer", 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)

	// The published envelope must decode through the real pipeline
	// stages back to the same payload.
	require.Len(t, pub.values, 1)

	ev, err := decoder.DecodeEnvelope(pub.values[0])
	require.NoError(t, err)
	assert.Equal(t, "NONE", ev.ExistType)
	assert.Equal(t, "false", ev.Ch)
	assert.False(t, ev.Incr)

	element, err := decoder.ExtractElement(ev)
	require.NoError(t, err)
	assert.Equal(t, members[0], element, "envelope element must match the sorted-set member")

	text, err := decoder.UnwrapElement(element)
	require.NoError(t, err)

	rec, err := decoder.DecodeCustomer(text)
	require.NoError(t, err)
	require.True(t, transform.KeepCustomer(rec), "seeded customers always carry email and birthDay")

	proj := transform.Project(rec)
	assert.NotEmpty(t, proj.Email)
	assert.Regexp(t, `^\d{4}$`, proj.BirthYear)
}

func TestRun_SeedsCount(t *testing.T) {
	_, client := setupTestRedis(t)
	defer client.Close()

	pub := &capturePublisher{}
	s := New(client, pub, "customer", nil)

	require.NoError(t, s.Run(context.Background(), 5, 0))

	card, err := client.ZCard(context.Background(), "customer").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(5), card)
	assert.Len(t, pub.values, 5)
}

func TestRun_CancelledContext(t *testing.T) {
	_, client := setupTestRedis(t)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(client, &capturePublisher{}, "customer", nil)
	err := s.Run(ctx, 5, 0)
	assert.Error(t, err)
}
