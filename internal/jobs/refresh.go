// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/conftrack/conftrack/internal/catalog"
	"github.com/conftrack/conftrack/internal/conference"
	"github.com/conftrack/conftrack/internal/export"
	"github.com/conftrack/conftrack/internal/log"
	"github.com/conftrack/conftrack/internal/metrics"
	"github.com/conftrack/conftrack/internal/sources"
	"github.com/conftrack/conftrack/internal/telemetry"
	"github.com/conftrack/conftrack/internal/validate"
)

// Runner executes refreshes one at a time and remembers the last status.
// Concurrent refresh requests share a single run.
type Runner struct {
	cfg   Config
	clock func() time.Time
	build func(cfg Config, vocab *catalog.Vocabulary, watchlist []string) ([]sources.Source, error)

	group singleflight.Group
	runMu sync.Mutex

	mu   sync.RWMutex
	last *Status
}

// NewRunner returns a Runner for the given configuration.
func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg, clock: time.Now, build: BuildSources}
}

// DatasetPath is the published JSON artifact under the data directory.
func (r *Runner) DatasetPath() string { return filepath.Join(r.cfg.DataDir, DatasetFile) }

// CalendarPath is the ICS artifact under the data directory.
func (r *Runner) CalendarPath() string { return filepath.Join(r.cfg.DataDir, CalendarFile) }

// Refresh runs the full pipeline. Calls arriving while a refresh is in
// flight attach to it and receive the same status.
func (r *Runner) Refresh(ctx context.Context) (*Status, error) {
	return r.do(ctx, "refresh", true)
}

// Reexport rebuilds the artifacts from the published dataset without
// fetching, picking up catalog edits (vocabulary, curated series).
func (r *Runner) Reexport(ctx context.Context) (*Status, error) {
	return r.do(ctx, "reexport", false)
}

// Last returns a copy of the most recent run status, or nil before the
// first run.
func (r *Runner) Last() *Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return nil
	}
	cp := *r.last
	cp.Sources = make(map[string]SourceStatus, len(r.last.Sources))
	for name, s := range r.last.Sources {
		cp.Sources[name] = s
	}
	return &cp
}

func (r *Runner) do(ctx context.Context, kind string, fetch bool) (*Status, error) {
	v, err, _ := r.group.Do(kind, func() (any, error) {
		r.runMu.Lock()
		defer r.runMu.Unlock()

		ctx, span := telemetry.Tracer("conftrack.jobs").Start(ctx, "conftrack.jobs."+kind,
			trace.WithSpanKind(trace.SpanKindInternal))
		defer span.End()

		start := r.clock()
		st, runErr := r.run(ctx, fetch)
		outcome := "success"
		if runErr != nil {
			outcome = "failure"
			if st != nil {
				st.Error = runErr.Error()
			}
			span.RecordError(runErr)
			span.SetStatus(codes.Error, runErr.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		if st != nil {
			span.SetAttributes(telemetry.JobAttributes(kind, outcome, st.DurationMS)...)
			span.SetAttributes(telemetry.DatasetAttributes(st.Total, st.Added, st.Updated, st.Issues)...)
		}
		metrics.RecordRefresh(outcome, r.clock().Sub(start).Seconds())

		r.mu.Lock()
		r.last = st
		r.mu.Unlock()
		return st, runErr
	})
	st, _ := v.(*Status)
	return st, err
}

// run executes one pipeline pass. With fetch disabled the published dataset
// is re-normalized, re-curated and re-written as is.
func (r *Runner) run(ctx context.Context, fetch bool) (st *Status, err error) {
	jobID := uuid.NewString()
	ctx = log.ContextWithJobID(ctx, jobID)
	logger := log.WithComponentFromContext(ctx, "jobs")

	start := r.clock()
	st = &Status{JobID: jobID, StartedAt: start, Sources: make(map[string]SourceStatus)}
	defer func() {
		st.DurationMS = r.clock().Sub(start).Milliseconds()
	}()

	logger.Info().
		Str("event", "refresh.start").
		Bool("fetch", fetch).
		Strs("sources", r.cfg.Sources).
		Msg("starting refresh")

	vocab, err := catalog.LoadVocabulary(r.cfg.TracksFile)
	if err != nil {
		metrics.IncRefreshFailure("catalog")
		return st, fmt.Errorf("load vocabulary: %w", err)
	}
	series, err := catalog.LoadSeries(r.cfg.SeriesFile)
	if err != nil {
		metrics.IncRefreshFailure("catalog")
		return st, fmt.Errorf("load series: %w", err)
	}
	watchlist, err := catalog.LoadWatchlist(r.cfg.WatchlistFile)
	if err != nil {
		metrics.IncRefreshFailure("catalog")
		return st, fmt.Errorf("load watchlist: %w", err)
	}

	baseline, err := export.ReadJSON(r.DatasetPath())
	if err != nil {
		metrics.IncRefreshFailure("baseline")
		return st, fmt.Errorf("load baseline: %w", err)
	}
	st.Baseline = len(baseline)

	var incoming []conference.Entry
	if fetch {
		srcs, err := r.build(r.cfg, vocab, watchlist)
		if err != nil {
			metrics.IncRefreshFailure("config")
			return st, err
		}

		results := fetchAll(ctx, srcs, r.cfg.FetchConcurrency, r.cfg.Retries)

		failures := 0
		for _, src := range srcs {
			res := results[src.Name()]
			if res.err != nil {
				failures++
				st.Sources[src.Name()] = SourceStatus{Error: res.err.Error()}
				logger.Error().
					Err(res.err).
					Str("event", "source.failed").
					Str("source", src.Name()).
					Msg("source fetch failed")
				continue
			}
			st.Sources[src.Name()] = SourceStatus{Entries: len(res.entries)}
			logger.Info().
				Str("event", "source.fetched").
				Str("source", src.Name()).
				Int("entries", len(res.entries)).
				Msg("source fetched")
			incoming = append(incoming, res.entries...)
		}

		if len(srcs) > 0 && failures == len(srcs) {
			metrics.IncRefreshFailure("fetch")
			return st, fmt.Errorf("all %d sources failed", len(srcs))
		}
	}
	st.Incoming = len(incoming)

	merged, added, updated := conference.Merge(baseline, incoming, vocab)
	st.Added, st.Updated = added, updated

	if touched := conference.ApplyCurated(merged, series, vocab); touched > 0 {
		logger.Debug().
			Str("event", "curated.applied").
			Int("entries", touched).
			Msg("curated series tracks applied")
	}

	conference.Sort(merged)
	st.Total = len(merged)

	report := validate.Dataset(merged, vocab)
	st.Issues = len(report.Issues)
	metrics.RecordValidationIssues(len(report.Issues))
	if !report.OK() {
		for _, issue := range report.Issues {
			logger.Warn().
				Str("event", "validate.issue").
				Str("entry", issue.Entry).
				Str("field", issue.Field).
				Msg(issue.Message)
		}
		if r.cfg.StrictValidate {
			metrics.IncRefreshFailure("validate")
			return st, fmt.Errorf("dataset has %d contract issues", len(report.Issues))
		}
	}

	if err := export.WriteJSON(r.DatasetPath(), merged); err != nil {
		metrics.IncRefreshFailure("write_json")
		return st, fmt.Errorf("write dataset: %w", err)
	}
	logger.Info().
		Str("event", "dataset.write").
		Str("path", r.DatasetPath()).
		Int("entries", len(merged)).
		Msg("dataset written")

	if events, err := export.WriteICS(r.CalendarPath(), merged, r.clock()); err != nil {
		metrics.IncRefreshFailure("write_ics")
		logger.Warn().
			Err(err).
			Str("event", "calendar.failed").
			Str("path", r.CalendarPath()).
			Msg("calendar generation failed")
	} else {
		metrics.RecordCalendarEvents(events)
		logger.Info().
			Str("event", "calendar.write").
			Str("path", r.CalendarPath()).
			Int("events", events).
			Msg("calendar written")
	}

	metrics.RecordDataset(len(merged), added, updated)
	metrics.RecordTrackCounts(trackCounts(merged))

	logger.Info().
		Str("event", "refresh.success").
		Int("baseline", st.Baseline).
		Int("incoming", st.Incoming).
		Int("added", added).
		Int("updated", updated).
		Int("total", st.Total).
		Int("issues", st.Issues).
		Msg("refresh completed")
	return st, nil
}

func trackCounts(entries []conference.Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		for _, track := range e.Sub {
			counts[track]++
		}
	}
	return counts
}
