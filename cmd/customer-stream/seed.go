package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/stedi-analytics/customer-stream/internal/logging"
	"github.com/stedi-analytics/customer-stream/internal/seeder"
)

var (
	seedCount    int
	seedInterval time.Duration
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load generated customers into Redis and publish their change events",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 0, "number of customers to seed (default from config)")
	seedCmd.Flags().DurationVar(&seedInterval, "interval", 0, "pause between customers (default from config)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gofakeit.Seed(time.Now().UnixNano())

	count := cfg.Seed.Count
	if seedCount > 0 {
		count = seedCount
	}
	interval := cfg.Seed.Interval
	if seedInterval > 0 {
		interval = seedInterval
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}

	pub := seeder.NewKafkaPublisher(cfg.Kafka.BootstrapServers, cfg.Kafka.Topic)
	defer pub.Close()

	log.Info("seeding customers",
		"count", count,
		"interval", interval.String(),
		"sorted_set", cfg.Redis.SortedSet,
		logging.Topic(cfg.Kafka.Topic),
	)

	s := seeder.New(rdb, pub, cfg.Redis.SortedSet, log)
	return s.Run(ctx, count, interval)
}
