package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Sink    SinkConfig    `mapstructure:"sink"`
	DLQ     DLQConfig     `mapstructure:"dlq"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Seed    SeedConfig    `mapstructure:"seed"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type KafkaConfig struct {
	// BootstrapServers is a comma-separated list of broker addresses.
	BootstrapServers []string `mapstructure:"bootstrap_servers"`
	Topic            string   `mapstructure:"topic"`

	// GroupID is the consumer group. Empty means a bare reader pinned
	// to partition 0, which is what local single-broker setups use.
	GroupID string `mapstructure:"group_id"`

	// StartingOffset is "earliest" or "latest". The pipeline needs
	// earliest so it replays the full retained history of the feed.
	StartingOffset string `mapstructure:"starting_offset"`

	MinBytes int           `mapstructure:"min_bytes"`
	MaxBytes int           `mapstructure:"max_bytes"`
	MaxWait  time.Duration `mapstructure:"max_wait"`
}

type SinkConfig struct {
	// Target selects the sink backend: "console", "file:<path>" or
	// "kafka:<topic>".
	Target string `mapstructure:"target"`

	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type DLQConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	NatsURL string `mapstructure:"nats_url"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	SortedSet string `mapstructure:"sorted_set"`
}

type SeedConfig struct {
	Count    int           `mapstructure:"count"`
	Interval time.Duration `mapstructure:"interval"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("kafka.bootstrap_servers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "redis-server")
	v.SetDefault("kafka.group_id", "")
	v.SetDefault("kafka.starting_offset", "earliest")
	v.SetDefault("kafka.min_bytes", 1)
	v.SetDefault("kafka.max_bytes", 10485760)
	v.SetDefault("kafka.max_wait", "500ms")
	v.SetDefault("sink.target", "console")
	v.SetDefault("sink.flush_interval", "1s")
	v.SetDefault("dlq.enabled", false)
	v.SetDefault("dlq.nats_url", "nats://localhost:4222")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.sorted_set", "customer")
	v.SetDefault("seed.count", 100)
	v.SetDefault("seed.interval", "100ms")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9102)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/customer-stream")
	}

	// Environment variables override, e.g. CUSTOMERSTREAM_KAFKA_TOPIC
	// for kafka.topic.
	v.SetEnvPrefix("CUSTOMERSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Kafka.BootstrapServers) == 0 {
		return fmt.Errorf("kafka.bootstrap_servers must not be empty")
	}
	if c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic must not be empty")
	}
	switch c.Kafka.StartingOffset {
	case "earliest", "latest":
	default:
		return fmt.Errorf("kafka.starting_offset must be %q or %q, got %q",
			"earliest", "latest", c.Kafka.StartingOffset)
	}
	if c.Sink.Target == "" {
		return fmt.Errorf("sink.target must not be empty")
	}
	return nil
}
