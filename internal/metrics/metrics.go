// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Source metrics
	sourceEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "conftrack_source_entries",
		Help: "Entries fetched per source (last refresh)",
	}, []string{"source"})

	sourceFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conftrack_source_fetch_total",
		Help: "Source fetch attempts by outcome",
	}, []string{"source", "outcome"}) // outcome=success|failure

	sourceFetchDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "conftrack_source_fetch_duration_seconds",
		Help:    "Time spent fetching one source, retries included",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	// Refresh metrics
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conftrack_refresh_total",
		Help: "Refresh runs by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	refreshDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "conftrack_refresh_duration_seconds",
		Help:    "End-to-end refresh duration",
		Buckets: prometheus.DefBuckets,
	})

	refreshFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conftrack_refresh_failures_total",
		Help: "Refresh failures by stage",
	}, []string{"stage"}) // stage=config|catalog|baseline|fetch|validate|write_json|write_ics

	// Dataset metrics
	datasetEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "conftrack_dataset_entries",
		Help: "Entries in the published dataset (last refresh)",
	})
	datasetEntriesAdded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "conftrack_dataset_entries_added",
		Help: "Entries appended by the last refresh",
	})
	datasetEntriesUpdated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "conftrack_dataset_entries_updated",
		Help: "Entries updated in place by the last refresh",
	})

	trackEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "conftrack_track_entries",
		Help: "Entries per track in the published dataset",
	}, []string{"track"})

	calendarEventsWritten = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "conftrack_calendar_events_written",
		Help: "Events written to the ICS calendar in last refresh",
	})

	validationIssues = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "conftrack_validation_issues",
		Help: "Contract issues found by the last dataset validation",
	})

	// Operational metrics
	configValidationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conftrack_config_validation_errors_total",
		Help: "Total number of configuration validation errors",
	})
)

func RecordSourceEntries(source string, n int) {
	sourceEntries.WithLabelValues(source).Set(float64(n))
}

func IncSourceFetch(source, outcome string) {
	sourceFetchTotal.WithLabelValues(source, outcome).Inc()
}

func ObserveSourceFetch(source string, seconds float64) {
	sourceFetchDurationSeconds.WithLabelValues(source).Observe(seconds)
}

func RecordRefresh(outcome string, seconds float64) {
	refreshTotal.WithLabelValues(outcome).Inc()
	refreshDurationSeconds.Observe(seconds)
}

func IncRefreshFailure(stage string) { refreshFailuresTotal.WithLabelValues(stage).Inc() }

func RecordDataset(total, added, updated int) {
	datasetEntries.Set(float64(total))
	datasetEntriesAdded.Set(float64(added))
	datasetEntriesUpdated.Set(float64(updated))
}

// RecordTrackCounts replaces the per-track gauges wholesale so tracks that
// vanished from the dataset do not linger with stale values.
func RecordTrackCounts(counts map[string]int) {
	trackEntries.Reset()
	for track, n := range counts {
		trackEntries.WithLabelValues(track).Set(float64(n))
	}
}

func RecordCalendarEvents(n int)   { calendarEventsWritten.Set(float64(n)) }
func RecordValidationIssues(n int) { validationIssues.Set(float64(n)) }
func IncConfigValidationError()    { configValidationErrors.Inc() }
