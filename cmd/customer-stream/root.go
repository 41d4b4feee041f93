package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stedi-analytics/customer-stream/internal/config"
	"github.com/stedi-analytics/customer-stream/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "customer-stream",
	Short: "Streaming extractor for customer email and birth year",
	Long: `customer-stream consumes the Redis replication feed from a Kafka
topic, decodes the nested change-event envelopes, and projects out
(email, birthYear) pairs for downstream consumption.

The seed subcommand simulates the upstream side by loading generated
customers into Redis and publishing the connector-shaped envelopes.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log = logging.New(
			logging.ParseLevel(cfg.Logging.Level),
			cfg.Logging.Format,
		)
		logging.SetDefault(log)
		return nil
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}
