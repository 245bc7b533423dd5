// SPDX-License-Identifier: MIT

// Package jobs orchestrates the refresh pipeline: load the catalog and the
// published baseline, fetch the enabled sources, merge, curate, sort,
// validate and write the dataset artifacts.
package jobs

import (
	"time"
)

// Artifact names under the data directory.
const (
	DatasetFile  = "conferences.json"
	CalendarFile = "conferences.ics"
)

// DefaultRetries is the extra fetch attempts per source after a transient
// failure.
const DefaultRetries = 2

// Config holds everything a refresh needs. The daemon maps it from the
// resolved application configuration.
type Config struct {
	DataDir       string
	TracksFile    string
	SeriesFile    string
	WatchlistFile string

	Sources          []string
	FetchConcurrency int
	Retries          int
	StrictValidate   bool
	HTTPTimeout      time.Duration

	CSALabBase    string
	EasyChairBase string
	CCFDDLBase    string
	CCFCategories []string
	YearFrom      int
	YearTo        int
	GithubToken   string
}

// SourceStatus summarizes one source's part in a refresh.
type SourceStatus struct {
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

// Status is the outcome of a refresh run, served by the status endpoint.
type Status struct {
	JobID      string                  `json:"job_id"`
	StartedAt  time.Time               `json:"started_at"`
	DurationMS int64                   `json:"duration_ms"`
	Sources    map[string]SourceStatus `json:"sources,omitempty"`
	Baseline   int                     `json:"baseline"`
	Incoming   int                     `json:"incoming"`
	Added      int                     `json:"added"`
	Updated    int                     `json:"updated"`
	Total      int                     `json:"total"`
	Issues     int                     `json:"issues"`
	Error      string                  `json:"error,omitempty"`
}
