package logging

import "log/slog"

// Common field names for consistent logging across the pipeline.
const (
	FieldTopic     = "topic"
	FieldPartition = "partition"
	FieldOffset    = "offset"
	FieldReason    = "reason"
	FieldError     = "error"
	FieldSink      = "sink"
	FieldState     = "state"
)

// Topic returns a slog attribute for the source topic.
func Topic(topic string) slog.Attr {
	return slog.String(FieldTopic, topic)
}

// Partition returns a slog attribute for the record's partition.
func Partition(p int) slog.Attr {
	return slog.Int(FieldPartition, p)
}

// Offset returns a slog attribute for the record's offset.
func Offset(o int64) slog.Attr {
	return slog.Int64(FieldOffset, o)
}

// Reason returns a slog attribute for a drop reason.
func Reason(r string) slog.Attr {
	return slog.String(FieldReason, r)
}

// Err returns a slog attribute for an error value.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}
