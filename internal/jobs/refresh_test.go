// SPDX-License-Identifier: MIT
package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/conftrack/conftrack/internal/catalog"
	"github.com/conftrack/conftrack/internal/conference"
	"github.com/conftrack/conftrack/internal/export"
	"github.com/conftrack/conftrack/internal/sources"
)

func newTestRunner(t *testing.T, srcs ...sources.Source) *Runner {
	t.Helper()
	r := NewRunner(Config{DataDir: t.TempDir(), FetchConcurrency: 2})
	r.build = func(Config, *catalog.Vocabulary, []string) ([]sources.Source, error) {
		return srcs, nil
	}
	return r
}

func TestRefreshWritesArtifacts(t *testing.T) {
	scraped := &fakeSource{name: "csalab", entries: []conference.Entry{{
		Name:               "ISCA 2026",
		SubmissionDeadline: "Nov 21 2025",
		Link:               "https://iscaconf.example/isca2026",
	}}}
	ranked := &fakeSource{name: "ccfddl", entries: []conference.Entry{{
		Name:               "AAAI 2026",
		Sub:                []string{"Artificial Intelligence"},
		Location:           "Singapore",
		SubmissionDeadline: "2025-08-01T23:59:59-12:00",
		Link:               "https://aaai.example/aaai-26",
		CCF:                "A",
	}}}

	r := newTestRunner(t, scraped, ranked)
	st, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if st.JobID == "" {
		t.Error("status has no job id")
	}
	if st.Baseline != 0 || st.Incoming != 2 || st.Added != 2 || st.Updated != 0 || st.Total != 2 {
		t.Errorf("counts = baseline %d incoming %d added %d updated %d total %d",
			st.Baseline, st.Incoming, st.Added, st.Updated, st.Total)
	}
	if st.Issues != 0 {
		t.Errorf("issues = %d, want 0", st.Issues)
	}
	if got := st.Sources["csalab"]; got.Entries != 1 || got.Error != "" {
		t.Errorf("csalab status = %+v", got)
	}
	if got := st.Sources["ccfddl"]; got.Entries != 1 || got.Error != "" {
		t.Errorf("ccfddl status = %+v", got)
	}

	entries, err := export.ReadJSON(r.DatasetPath())
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("dataset has %d entries, want 2", len(entries))
	}
	// Sorted by deadline: AAAI (Aug 2025) before ISCA (Nov 2025).
	if entries[0].Name != "AAAI 2026" || entries[1].Name != "ISCA 2026" {
		t.Errorf("order = %q, %q", entries[0].Name, entries[1].Name)
	}
	if got := entries[1].Sub; len(got) != 1 || got[0] != catalog.Uncategorized {
		t.Errorf("ISCA tracks = %v, want [%s]", got, catalog.Uncategorized)
	}
	if entries[0].CCF != "A" {
		t.Errorf("AAAI ccf = %q", entries[0].CCF)
	}

	if _, err := os.Stat(r.CalendarPath()); err != nil {
		t.Errorf("calendar artifact: %v", err)
	}

	last := r.Last()
	if last == nil || last.JobID != st.JobID {
		t.Errorf("Last() = %+v, want job %s", last, st.JobID)
	}
}

func TestRefreshMergesIntoBaseline(t *testing.T) {
	src := &fakeSource{name: "ccfddl", entries: []conference.Entry{{
		Name:               "ICML 2026",
		Sub:                []string{"artificial intelligence"},
		SubmissionDeadline: "Jan 28 2026",
	}}}
	r := newTestRunner(t, src)

	baseline := []conference.Entry{{
		Name: "ICML 2026",
		Sub:  []string{"Artificial Intelligence"},
		Link: "https://icml.cc/Conferences/2026",
	}}
	if err := export.WriteJSON(r.DatasetPath(), baseline); err != nil {
		t.Fatalf("seed baseline: %v", err)
	}

	st, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if st.Baseline != 1 || st.Added != 0 || st.Updated != 1 || st.Total != 1 {
		t.Errorf("counts = baseline %d added %d updated %d total %d",
			st.Baseline, st.Added, st.Updated, st.Total)
	}

	entries, err := export.ReadJSON(r.DatasetPath())
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("dataset has %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.Link != "https://icml.cc/Conferences/2026" {
		t.Errorf("link = %q, want the baseline link kept", got.Link)
	}
	if got.SubmissionDeadline != "Jan 28 2026" {
		t.Errorf("deadline = %q, want the fetched deadline", got.SubmissionDeadline)
	}
	if len(got.Sub) != 1 || got.Sub[0] != "Artificial Intelligence" {
		t.Errorf("tracks = %v, want the canonical label once", got.Sub)
	}
}

func TestRefreshPartialSourceFailure(t *testing.T) {
	good := &fakeSource{name: "csalab", entries: []conference.Entry{{
		Name:               "EuroSys 2027",
		SubmissionDeadline: "May 07 2026",
	}}}
	bad := &fakeSource{name: "edas", err: fmt.Errorf("listing: %w", sources.ErrForbidden)}

	r := newTestRunner(t, good, bad)
	st, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh with one healthy source: %v", err)
	}

	if got := st.Sources["csalab"]; got.Entries != 1 || got.Error != "" {
		t.Errorf("csalab status = %+v", got)
	}
	if got := st.Sources["edas"]; got.Error == "" {
		t.Error("edas failure not recorded in status")
	}
	if st.Total != 1 {
		t.Errorf("total = %d, want 1", st.Total)
	}
	if _, err := os.Stat(r.DatasetPath()); err != nil {
		t.Errorf("dataset artifact: %v", err)
	}
}

func TestRefreshAllSourcesFailed(t *testing.T) {
	r := newTestRunner(t,
		&fakeSource{name: "csalab", err: fmt.Errorf("dial: %w", sources.ErrUnavailable)},
		&fakeSource{name: "edas", err: fmt.Errorf("listing: %w", sources.ErrForbidden)},
	)

	st, err := r.Refresh(context.Background())
	if err == nil || !strings.Contains(err.Error(), "sources failed") {
		t.Fatalf("err = %v, want all sources failed", err)
	}
	if st == nil || st.Error == "" {
		t.Fatalf("status = %+v, want the error recorded", st)
	}
	if _, err := os.Stat(r.DatasetPath()); !os.IsNotExist(err) {
		t.Errorf("dataset written despite total fetch failure: %v", err)
	}

	last := r.Last()
	if last == nil || last.Error == "" {
		t.Errorf("Last() = %+v, want the failed run", last)
	}
}

func TestRefreshStrictValidationGate(t *testing.T) {
	entry := conference.Entry{Name: "Mystery 2027", Sub: []string{"Quantum Basketweaving"}}

	strict := NewRunner(Config{DataDir: t.TempDir(), FetchConcurrency: 2, StrictValidate: true})
	strict.build = func(Config, *catalog.Vocabulary, []string) ([]sources.Source, error) {
		return []sources.Source{&fakeSource{name: "csalab", entries: []conference.Entry{entry}}}, nil
	}
	st, err := strict.Refresh(context.Background())
	if err == nil || !strings.Contains(err.Error(), "contract issues") {
		t.Fatalf("strict err = %v, want contract issues", err)
	}
	if st.Issues != 1 {
		t.Errorf("strict issues = %d, want 1", st.Issues)
	}
	if _, err := os.Stat(strict.DatasetPath()); !os.IsNotExist(err) {
		t.Errorf("strict mode wrote the dataset anyway: %v", err)
	}

	lax := newTestRunner(t, &fakeSource{name: "csalab", entries: []conference.Entry{entry}})
	st, err = lax.Refresh(context.Background())
	if err != nil {
		t.Fatalf("lax Refresh: %v", err)
	}
	if st.Issues != 1 {
		t.Errorf("lax issues = %d, want 1", st.Issues)
	}
	entries, err := export.ReadJSON(lax.DatasetPath())
	if err != nil || len(entries) != 1 {
		t.Fatalf("lax dataset = %d entries, err %v", len(entries), err)
	}
}

func TestRefreshDeduplicatesConcurrentRuns(t *testing.T) {
	src := &fakeSource{
		name:    "csalab",
		delay:   200 * time.Millisecond,
		entries: []conference.Entry{{Name: "NDSS 2027"}},
	}
	r := newTestRunner(t, src)

	var wg sync.WaitGroup
	statuses := make([]*Status, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i], errs[i] = r.Refresh(context.Background())
		}()
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("Refresh %d: %v", i, errs[i])
		}
	}
	if statuses[0].JobID != statuses[1].JobID {
		t.Errorf("job ids differ: %s vs %s", statuses[0].JobID, statuses[1].JobID)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source fetched %d times, want 1", got)
	}
}

func TestReexportAppliesCatalogWithoutFetch(t *testing.T) {
	dir := t.TempDir()
	seriesPath := filepath.Join(dir, "series.yaml")
	seriesYAML := "series:\n  - id: icml\n    name: ICML\n    tracks:\n      - Artificial Intelligence\n"
	if err := os.WriteFile(seriesPath, []byte(seriesYAML), 0o600); err != nil {
		t.Fatalf("write series file: %v", err)
	}

	src := &fakeSource{name: "csalab", entries: []conference.Entry{{Name: "unused"}}}
	r := NewRunner(Config{DataDir: dir, SeriesFile: seriesPath, FetchConcurrency: 2})
	r.build = func(Config, *catalog.Vocabulary, []string) ([]sources.Source, error) {
		return []sources.Source{src}, nil
	}

	baseline := []conference.Entry{{
		Name:               "ICML 2026",
		SubmissionDeadline: "Jan 28 2026",
		Link:               "https://icml.cc/Conferences/2026",
	}}
	if err := export.WriteJSON(r.DatasetPath(), baseline); err != nil {
		t.Fatalf("seed baseline: %v", err)
	}

	st, err := r.Reexport(context.Background())
	if err != nil {
		t.Fatalf("Reexport: %v", err)
	}
	if got := src.calls.Load(); got != 0 {
		t.Errorf("reexport fetched sources %d times", got)
	}
	if st.Incoming != 0 || len(st.Sources) != 0 {
		t.Errorf("status = incoming %d, %d sources, want no fetch", st.Incoming, len(st.Sources))
	}
	if st.Total != 1 {
		t.Errorf("total = %d, want 1", st.Total)
	}

	entries, err := export.ReadJSON(r.DatasetPath())
	if err != nil || len(entries) != 1 {
		t.Fatalf("dataset = %d entries, err %v", len(entries), err)
	}
	got := entries[0]
	if len(got.Sub) != 1 || got.Sub[0] != "Artificial Intelligence" {
		t.Errorf("tracks = %v, want the curated assignment", got.Sub)
	}
	if got.SeriesID != "icml" {
		t.Errorf("series id = %q, want icml", got.SeriesID)
	}
	if _, err := os.Stat(r.CalendarPath()); err != nil {
		t.Errorf("calendar artifact: %v", err)
	}
}

func TestLastBeforeAndAfterRuns(t *testing.T) {
	src := &fakeSource{name: "csalab", entries: []conference.Entry{{Name: "OSDI 2027"}}}
	r := newTestRunner(t, src)

	if got := r.Last(); got != nil {
		t.Fatalf("Last() before any run = %+v", got)
	}

	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	first := r.Last()
	if first == nil {
		t.Fatal("Last() nil after a run")
	}
	first.Sources["csalab"] = SourceStatus{Entries: 99}

	second := r.Last()
	if second.Sources["csalab"].Entries == 99 {
		t.Error("Last() shares state with earlier copies")
	}
}
