// SPDX-License-Identifier: MIT
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	err := gauge.Write(metric)
	require.NoError(t, err)
	return metric.GetGauge().GetValue()
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	err := counter.Write(metric)
	require.NoError(t, err)
	return metric.GetCounter().GetValue()
}

func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels ...string) float64 {
	t.Helper()
	return getGaugeValue(t, gaugeVec.WithLabelValues(labels...))
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	return getCounterValue(t, counterVec.WithLabelValues(labels...))
}

func getHistogramCount(t *testing.T, hist prometheus.Observer) uint64 {
	t.Helper()
	h, ok := hist.(prometheus.Histogram)
	if !ok {
		t.Fatalf("observer is not a prometheus.Histogram")
	}
	metric := &dto.Metric{}
	if err := h.Write(metric); err != nil {
		t.Fatalf("write histogram metric: %v", err)
	}
	return metric.GetHistogram().GetSampleCount()
}

func TestRecordSourceEntries(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"empty source", 0},
		{"single entry", 1},
		{"full listing", 412},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordSourceEntries("ccfddl", tt.count)
			assert.Equal(t, float64(tt.count), getGaugeVecValue(t, sourceEntries, "ccfddl"))
		})
	}
}

func TestIncSourceFetch(t *testing.T) {
	before := getCounterVecValue(t, sourceFetchTotal, "edas", "failure")
	IncSourceFetch("edas", "failure")
	IncSourceFetch("edas", "failure")
	assert.Equal(t, before+2, getCounterVecValue(t, sourceFetchTotal, "edas", "failure"))
}

func TestObserveSourceFetch(t *testing.T) {
	obs := sourceFetchDurationSeconds.WithLabelValues("csalab")
	before := getHistogramCount(t, obs)
	ObserveSourceFetch("csalab", 0.42)
	assert.Equal(t, before+1, getHistogramCount(t, obs))
}

func TestRecordRefresh(t *testing.T) {
	okBefore := getCounterVecValue(t, refreshTotal, "success")
	histBefore := getHistogramCount(t, refreshDurationSeconds)

	RecordRefresh("success", 1.5)

	assert.Equal(t, okBefore+1, getCounterVecValue(t, refreshTotal, "success"))
	assert.Equal(t, histBefore+1, getHistogramCount(t, refreshDurationSeconds))
}

func TestIncRefreshFailure(t *testing.T) {
	before := getCounterVecValue(t, refreshFailuresTotal, "write_json")
	IncRefreshFailure("write_json")
	assert.Equal(t, before+1, getCounterVecValue(t, refreshFailuresTotal, "write_json"))
}

func TestRecordDataset(t *testing.T) {
	RecordDataset(240, 12, 31)
	assert.Equal(t, 240.0, getGaugeValue(t, datasetEntries))
	assert.Equal(t, 12.0, getGaugeValue(t, datasetEntriesAdded))
	assert.Equal(t, 31.0, getGaugeValue(t, datasetEntriesUpdated))
}

func TestRecordTrackCountsResetsStaleTracks(t *testing.T) {
	RecordTrackCounts(map[string]int{
		"Security & Privacy": 7,
		"Network System":     3,
	})
	assert.Equal(t, 7.0, getGaugeVecValue(t, trackEntries, "Security & Privacy"))
	assert.Equal(t, 3.0, getGaugeVecValue(t, trackEntries, "Network System"))

	RecordTrackCounts(map[string]int{"Security & Privacy": 8})
	assert.Equal(t, 8.0, getGaugeVecValue(t, trackEntries, "Security & Privacy"))
	assert.Equal(t, 0.0, getGaugeVecValue(t, trackEntries, "Network System"))
}

func TestRecordCalendarEvents(t *testing.T) {
	RecordCalendarEvents(57)
	assert.Equal(t, 57.0, getGaugeValue(t, calendarEventsWritten))
}

func TestRecordValidationIssues(t *testing.T) {
	RecordValidationIssues(4)
	assert.Equal(t, 4.0, getGaugeValue(t, validationIssues))
	RecordValidationIssues(0)
	assert.Equal(t, 0.0, getGaugeValue(t, validationIssues))
}

func TestIncConfigValidationError(t *testing.T) {
	before := getCounterValue(t, configValidationErrors)
	IncConfigValidationError()
	assert.Equal(t, before+1, getCounterValue(t, configValidationErrors))
}
