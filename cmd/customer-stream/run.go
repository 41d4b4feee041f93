package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/stedi-analytics/customer-stream/internal/dlq"
	"github.com/stedi-analytics/customer-stream/internal/logging"
	"github.com/stedi-analytics/customer-stream/internal/pipeline"
	"github.com/stedi-analytics/customer-stream/internal/sink"
	"github.com/stedi-analytics/customer-stream/internal/source"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the streaming pipeline",
	RunE:  runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting pipeline",
		logging.Topic(cfg.Kafka.Topic),
		"bootstrap_servers", cfg.Kafka.BootstrapServers,
		"starting_offset", cfg.Kafka.StartingOffset,
		logging.FieldSink, cfg.Sink.Target,
	)

	reader, err := source.NewKafkaReader(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("create source reader: %w", err)
	}
	defer reader.Close()

	snk, err := sink.New(cfg.Sink.Target, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("create sink: %w", err)
	}
	defer snk.Close()

	var dlw dlq.Writer = dlq.Nop{}
	if cfg.DLQ.Enabled {
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		jsq, err := dlq.NewJetStreamQueue(initCtx, cfg.DLQ.NatsURL)
		cancel()
		if err != nil {
			return fmt.Errorf("create dead letter queue: %w", err)
		}
		dlw = jsq
		defer jsq.Close()
		log.Info("dead letter queue enabled", "nats_url", cfg.DLQ.NatsURL)
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Port)
	}

	p := pipeline.New(reader, snk, dlw, log)
	p.SetFlushInterval(cfg.Sink.FlushInterval)
	if err := p.Run(ctx); err != nil {
		log.Error("pipeline failed", logging.Err(err))
		return err
	}

	log.Info("pipeline terminated")
	return nil
}

func serveMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("metrics endpoint listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("metrics server error", logging.Err(err))
	}
}
