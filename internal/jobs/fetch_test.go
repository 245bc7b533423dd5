// SPDX-License-Identifier: MIT
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/conftrack/conftrack/internal/catalog"
	"github.com/conftrack/conftrack/internal/conference"
	"github.com/conftrack/conftrack/internal/sources"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type concurrencyTracker struct {
	mu   sync.Mutex
	cur  int
	peak int
}

func (c *concurrencyTracker) enter() {
	c.mu.Lock()
	c.cur++
	if c.cur > c.peak {
		c.peak = c.cur
	}
	c.mu.Unlock()
}

func (c *concurrencyTracker) exit() {
	c.mu.Lock()
	c.cur--
	c.mu.Unlock()
}

func (c *concurrencyTracker) max() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peak
}

type fakeSource struct {
	name      string
	entries   []conference.Entry
	err       error
	failFirst int32
	delay     time.Duration
	calls     atomic.Int32
	tracker   *concurrencyTracker
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context) ([]conference.Entry, error) {
	n := f.calls.Add(1)
	if f.tracker != nil {
		f.tracker.enter()
		defer f.tracker.exit()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	if n <= f.failFirst {
		return nil, fmt.Errorf("attempt %d: %w", n, sources.ErrUnavailable)
	}
	out := make([]conference.Entry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func TestBuildSourcesCanonicalOrder(t *testing.T) {
	cfg := Config{
		Sources:       []string{"ccfddl", "edas", "csalab", "easychair"},
		CSALabBase:    "https://csalab.example/conf-track/",
		EasyChairBase: "https://easychair.example/cfp/",
		CCFDDLBase:    "https://api.github.example/contents",
		YearFrom:      2026,
		YearTo:        2028,
	}

	srcs, err := BuildSources(cfg, catalog.DefaultVocabulary(), []string{"https://edas.example/N1"})
	if err != nil {
		t.Fatalf("BuildSources: %v", err)
	}

	want := []string{"csalab", "easychair", "edas", "ccfddl"}
	if len(srcs) != len(want) {
		t.Fatalf("sources = %d, want %d", len(srcs), len(want))
	}
	for i, s := range srcs {
		if s.Name() != want[i] {
			t.Errorf("source %d = %q, want %q", i, s.Name(), want[i])
		}
	}
}

func TestBuildSourcesSubset(t *testing.T) {
	srcs, err := BuildSources(Config{Sources: []string{"edas"}}, catalog.DefaultVocabulary(), nil)
	if err != nil {
		t.Fatalf("BuildSources: %v", err)
	}
	if len(srcs) != 1 || srcs[0].Name() != "edas" {
		t.Fatalf("sources = %v", srcs)
	}
}

func TestBuildSourcesUnknownName(t *testing.T) {
	_, err := BuildSources(Config{Sources: []string{"dblp"}}, catalog.DefaultVocabulary(), nil)
	if err == nil || !strings.Contains(err.Error(), "unknown source") {
		t.Fatalf("err = %v, want unknown source", err)
	}
}

func TestFetchWithRetryTransientThenSuccess(t *testing.T) {
	src := &fakeSource{name: "flaky", failFirst: 1, entries: []conference.Entry{{Name: "ISCA 2026"}}}

	entries, err := fetchWithRetry(context.Background(), src, 1)
	if err != nil {
		t.Fatalf("fetchWithRetry: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
	if got := src.calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestFetchWithRetrySkipsPermanentErrors(t *testing.T) {
	src := &fakeSource{name: "denied", err: fmt.Errorf("listing: %w", sources.ErrForbidden)}

	start := time.Now()
	_, err := fetchWithRetry(context.Background(), src, 3)
	if !errors.Is(err, sources.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Error("permanent failure waited for backoff")
	}
}

func TestFetchWithRetryExhausted(t *testing.T) {
	src := &fakeSource{name: "down", err: fmt.Errorf("dial: %w", sources.ErrUnavailable)}

	_, err := fetchWithRetry(context.Background(), src, 1)
	if err == nil || !strings.Contains(err.Error(), "giving up after 2 attempts") {
		t.Fatalf("err = %v, want giving up", err)
	}
	if !errors.Is(err, sources.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable in chain", err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestFetchWithRetryContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	src := &fakeSource{name: "down", err: fmt.Errorf("dial: %w", sources.ErrUnavailable)}
	_, err := fetchWithRetry(ctx, src, 3)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestFetchAllBoundedConcurrency(t *testing.T) {
	tracker := &concurrencyTracker{}
	srcs := make([]sources.Source, 0, 4)
	for i := 0; i < 4; i++ {
		srcs = append(srcs, &fakeSource{
			name:    fmt.Sprintf("src%d", i),
			delay:   50 * time.Millisecond,
			tracker: tracker,
			entries: []conference.Entry{{Name: fmt.Sprintf("CONF%d 2026", i)}},
		})
	}

	results := fetchAll(context.Background(), srcs, 2, 0)
	if len(results) != 4 {
		t.Fatalf("results = %d, want 4", len(results))
	}
	for name, res := range results {
		if res.err != nil {
			t.Errorf("source %s failed: %v", name, res.err)
		}
	}
	if peak := tracker.max(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestFetchAllCollectsFailures(t *testing.T) {
	ok := &fakeSource{name: "good", entries: []conference.Entry{{Name: "SOSP 2027"}}}
	bad := &fakeSource{name: "bad", err: fmt.Errorf("listing: %w", sources.ErrForbidden)}

	results := fetchAll(context.Background(), []sources.Source{ok, bad}, 4, 0)

	if res := results["good"]; res.err != nil || len(res.entries) != 1 {
		t.Errorf("good = %+v", res)
	}
	if res := results["bad"]; res.err == nil {
		t.Error("bad source reported no error")
	}
}

func TestClampConcurrency(t *testing.T) {
	for _, tt := range []struct{ in, want int }{
		{0, 4}, {-3, 4}, {1, 1}, {3, 3}, {32, 32}, {99, 32},
	} {
		if got := clampConcurrency(tt.in); got != tt.want {
			t.Errorf("clampConcurrency(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestErrorClass(t *testing.T) {
	for _, tt := range []struct {
		err  error
		want string
	}{
		{sources.ErrForbidden, "forbidden"},
		{fmt.Errorf("wrapped: %w", sources.ErrRateLimited), "rate_limited"},
		{sources.ErrBadResponse, "bad_response"},
		{sources.ErrTimeout, "timeout"},
		{sources.ErrUnavailable, "unavailable"},
		{errors.New("plain"), "other"},
	} {
		if got := errorClass(tt.err); got != tt.want {
			t.Errorf("errorClass(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
