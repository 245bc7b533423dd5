// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/conftrack/conftrack/internal/catalog"
	"github.com/conftrack/conftrack/internal/conference"
	"github.com/conftrack/conftrack/internal/metrics"
	"github.com/conftrack/conftrack/internal/sources"
	"github.com/conftrack/conftrack/internal/sources/ccfddl"
	"github.com/conftrack/conftrack/internal/sources/csalab"
	"github.com/conftrack/conftrack/internal/sources/easychair"
	"github.com/conftrack/conftrack/internal/sources/edas"
	"github.com/conftrack/conftrack/internal/telemetry"
)

// mergeOrder fixes the apply order regardless of how sources are listed in
// the configuration: scrapers first, ccf-deadlines last so its richer
// fields win merge conflicts.
var mergeOrder = []string{
	csalab.SourceName,
	easychair.SourceName,
	edas.SourceName,
	ccfddl.SourceName,
}

// BuildSources constructs the enabled fetchers in canonical merge order.
func BuildSources(cfg Config, vocab *catalog.Vocabulary, watchlist []string) ([]sources.Source, error) {
	client := sources.NewHTTPClient(cfg.HTTPTimeout)

	known := map[string]func() sources.Source{
		csalab.SourceName: func() sources.Source {
			return csalab.New(csalab.Config{Client: client, URL: cfg.CSALabBase})
		},
		easychair.SourceName: func() sources.Source {
			return easychair.New(easychair.Config{Client: client, URL: cfg.EasyChairBase})
		},
		edas.SourceName: func() sources.Source {
			return edas.New(edas.Config{Client: client, URLs: watchlist})
		},
		ccfddl.SourceName: func() sources.Source {
			return ccfddl.New(ccfddl.Config{
				Client:     client,
				BaseURL:    cfg.CCFDDLBase,
				Token:      cfg.GithubToken,
				Categories: cfg.CCFCategories,
				YearFrom:   cfg.YearFrom,
				YearTo:     cfg.YearTo,
				Vocabulary: vocab,
			})
		},
	}

	enabled := make(map[string]bool, len(cfg.Sources))
	for _, name := range cfg.Sources {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown source %q", name)
		}
		enabled[name] = true
	}

	out := make([]sources.Source, 0, len(enabled))
	for _, name := range mergeOrder {
		if enabled[name] {
			out = append(out, known[name]())
		}
	}
	return out, nil
}

// sourceResult holds the outcome of a single source fetch.
type sourceResult struct {
	name    string
	entries []conference.Entry
	err     error
}

// fetchAll runs every source with bounded concurrency and returns the
// per-source results keyed by name.
func fetchAll(ctx context.Context, srcs []sources.Source, concurrency, retries int) map[string]sourceResult {
	tracer := telemetry.Tracer("conftrack.jobs")
	maxPar := clampConcurrency(concurrency)
	sem := make(chan struct{}, maxPar)
	results := make(chan sourceResult, len(srcs))
	var wg sync.WaitGroup

	for _, src := range srcs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			sctx, span := tracer.Start(ctx, "conftrack.source.fetch",
				trace.WithSpanKind(trace.SpanKindInternal))
			defer span.End()

			start := time.Now()
			entries, err := fetchWithRetry(sctx, src, retries)
			metrics.ObserveSourceFetch(src.Name(), time.Since(start).Seconds())
			span.SetAttributes(telemetry.SourceAttributes(src.Name(), len(entries))...)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(telemetry.ErrorAttributes(errorClass(err))...)
				metrics.IncSourceFetch(src.Name(), "failure")
				results <- sourceResult{name: src.Name(), err: err}
				return
			}
			span.SetStatus(codes.Ok, "")
			metrics.IncSourceFetch(src.Name(), "success")
			metrics.RecordSourceEntries(src.Name(), len(entries))
			results <- sourceResult{name: src.Name(), entries: entries}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[string]sourceResult, len(srcs))
	for res := range results {
		out[res.name] = res
	}
	return out
}

// fetchWithRetry attempts a source with exponential backoff. Malformed
// responses and auth failures are permanent and not retried.
func fetchWithRetry(ctx context.Context, src sources.Source, retries int) ([]conference.Entry, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt*500) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		entries, err := src.Fetch(ctx)
		if err == nil {
			return entries, nil
		}
		if errors.Is(err, sources.ErrBadResponse) || errors.Is(err, sources.ErrForbidden) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", retries+1, lastErr)
}

// errorClass buckets a fetch error by its sentinel for span attributes.
func errorClass(err error) string {
	switch {
	case errors.Is(err, sources.ErrForbidden):
		return "forbidden"
	case errors.Is(err, sources.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, sources.ErrBadResponse):
		return "bad_response"
	case errors.Is(err, sources.ErrTimeout):
		return "timeout"
	case errors.Is(err, sources.ErrUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}

// clampConcurrency bounds the fetch worker count to the validated config
// range.
func clampConcurrency(n int) int {
	switch {
	case n <= 0:
		return 4
	case n > 32:
		return 32
	}
	return n
}
