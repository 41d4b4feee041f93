package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Source metrics
	RecordsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customerstream_records_consumed_total",
			Help: "Total number of raw records pulled from the source topic",
		},
	)

	RecordBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customerstream_record_bytes_total",
			Help: "Total bytes of raw record values consumed",
		},
	)

	// Decode metrics
	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "customerstream_records_dropped_total",
			Help: "Records dropped by a hard decode failure, by reason",
		},
		[]string{"reason"},
	)

	RecordsFiltered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customerstream_records_filtered_total",
			Help: "Records removed by the null filter (routine, not errors)",
		},
	)

	// Output metrics
	ProjectionsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customerstream_projections_emitted_total",
			Help: "Projected (email, birthYear) records written to the sink",
		},
	)

	SinkWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customerstream_sink_write_errors_total",
			Help: "Total number of sink write failures",
		},
	)

	DLQPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customerstream_dlq_published_total",
			Help: "Dropped records published to the dead letter queue",
		},
	)

	// Pipeline state: 0=initializing 1=running 2=terminated 3=failed
	PipelineState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "customerstream_pipeline_state",
			Help: "Current pipeline state (0=initializing 1=running 2=terminated 3=failed)",
		},
	)
)
