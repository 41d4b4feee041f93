package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_WithDefaults(t *testing.T) {
	// Load config without a config file (use defaults)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	// Verify some default values
	if len(cfg.Kafka.BootstrapServers) != 1 || cfg.Kafka.BootstrapServers[0] != "localhost:9092" {
		t.Errorf("Kafka.BootstrapServers = %v, want [localhost:9092]", cfg.Kafka.BootstrapServers)
	}

	if cfg.Kafka.Topic != "redis-server" {
		t.Errorf("Kafka.Topic = %q, want %q", cfg.Kafka.Topic, "redis-server")
	}

	if cfg.Kafka.StartingOffset != "earliest" {
		t.Errorf("Kafka.StartingOffset = %q, want %q", cfg.Kafka.StartingOffset, "earliest")
	}

	if cfg.Kafka.MaxWait != 500*time.Millisecond {
		t.Errorf("Kafka.MaxWait = %v, want 500ms", cfg.Kafka.MaxWait)
	}

	if cfg.Sink.Target != "console" {
		t.Errorf("Sink.Target = %q, want %q", cfg.Sink.Target, "console")
	}

	if cfg.DLQ.Enabled {
		t.Error("DLQ.Enabled should be false by default")
	}

	if cfg.Redis.SortedSet != "customer" {
		t.Errorf("Redis.SortedSet = %q, want %q", cfg.Redis.SortedSet, "customer")
	}

	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be true by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_WithFile(t *testing.T) {
	content := `
kafka:
  bootstrap_servers:
    - broker1:9092
    - broker2:9092
  topic: cdc-feed
  group_id: customer-stream
  starting_offset: latest
sink:
  target: file:/tmp/projections.jsonl
logging:
  level: debug
  format: text
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Kafka.BootstrapServers) != 2 {
		t.Errorf("Kafka.BootstrapServers = %v, want 2 brokers", cfg.Kafka.BootstrapServers)
	}

	if cfg.Kafka.Topic != "cdc-feed" {
		t.Errorf("Kafka.Topic = %q, want %q", cfg.Kafka.Topic, "cdc-feed")
	}

	if cfg.Kafka.GroupID != "customer-stream" {
		t.Errorf("Kafka.GroupID = %q, want %q", cfg.Kafka.GroupID, "customer-stream")
	}

	if cfg.Kafka.StartingOffset != "latest" {
		t.Errorf("Kafka.StartingOffset = %q, want %q", cfg.Kafka.StartingOffset, "latest")
	}

	if cfg.Sink.Target != "file:/tmp/projections.jsonl" {
		t.Errorf("Sink.Target = %q", cfg.Sink.Target)
	}

	// Untouched sections keep their defaults
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q, want default", cfg.Redis.Addr)
	}
}

func TestLoad_EnvOverridesNestedKeys(t *testing.T) {
	t.Setenv("CUSTOMERSTREAM_KAFKA_TOPIC", "env-topic")
	t.Setenv("CUSTOMERSTREAM_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Kafka.Topic != "env-topic" {
		t.Errorf("Kafka.Topic = %q, want %q", cfg.Kafka.Topic, "env-topic")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_InvalidStartingOffset(t *testing.T) {
	content := `
kafka:
  starting_offset: sideways
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() should reject an unknown starting_offset")
	}
}

func TestLoad_EmptyTopic(t *testing.T) {
	content := `
kafka:
  topic: ""
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() should reject an empty topic")
	}
}
