// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by all conftrackd spans.
const (
	// Job attributes
	JobTypeKey     = "job.type"
	JobStatusKey   = "job.status"
	JobDurationKey = "job.duration_ms"

	// Source attributes
	SourceNameKey    = "source.name"
	SourceEntriesKey = "source.entries"

	// Dataset attributes
	DatasetEntriesKey = "dataset.entries"
	DatasetAddedKey   = "dataset.added"
	DatasetUpdatedKey = "dataset.updated"
	DatasetIssuesKey  = "dataset.issues"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// JobAttributes describes one pipeline run.
func JobAttributes(jobType, status string, durationMS int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(JobTypeKey, jobType),
		attribute.String(JobStatusKey, status),
		attribute.Int64(JobDurationKey, durationMS),
	}
}

// SourceAttributes describes one source fetch.
func SourceAttributes(name string, entries int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(SourceNameKey, name),
		attribute.Int(SourceEntriesKey, entries),
	}
}

// DatasetAttributes describes the merged dataset after a run.
func DatasetAttributes(total, added, updated, issues int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(DatasetEntriesKey, total),
		attribute.Int(DatasetAddedKey, added),
		attribute.Int(DatasetUpdatedKey, updated),
		attribute.Int(DatasetIssuesKey, issues),
	}
}

// ErrorAttributes marks a span as failed with a coarse error class.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
