// SPDX-License-Identifier: MIT

package validate

import (
	"testing"

	"github.com/conftrack/conftrack/internal/catalog"
	"github.com/conftrack/conftrack/internal/conference"
)

func cleanEntry() conference.Entry {
	return conference.Entry{
		Name:               "ICML 2026",
		Sub:                []string{"Artificial Intelligence"},
		Location:           "Vienna, Austria",
		StartDate:          "Jul 12 2026",
		EndDate:            "Jul 18 2026",
		SubmissionDeadline: "2026-01-22T23:59:59+00:00",
		Link:               "https://icml.cc/2026",
	}
}

func TestDatasetCleanEntry(t *testing.T) {
	vocab := catalog.DefaultVocabulary()
	r := Dataset([]conference.Entry{cleanEntry()}, vocab)
	if r.Checked != 1 {
		t.Errorf("Checked = %d, want 1", r.Checked)
	}
	if !r.OK() {
		t.Errorf("clean entry produced issues: %+v", r.Issues)
	}
}

func TestDatasetIssues(t *testing.T) {
	vocab := catalog.DefaultVocabulary()

	tests := []struct {
		name      string
		mutate    func(*conference.Entry)
		wantField string
	}{
		{"empty name", func(e *conference.Entry) { e.Name = "" }, "name"},
		{"no tracks", func(e *conference.Entry) { e.Sub = nil }, "sub"},
		{"unknown track", func(e *conference.Entry) { e.Sub = []string{"Quantum Computing"} }, "sub"},
		{"vague start date", func(e *conference.Entry) { e.StartDate = "Autumn 2026" }, "Start Date"},
		{"vague deadline", func(e *conference.Entry) { e.SubmissionDeadline = "early 2026" }, "Submission Deadline"},
		{"relative link", func(e *conference.Entry) { e.Link = "/cfp/icml" }, "link"},
		{"non-http link", func(e *conference.Entry) { e.Link = "ftp://icml.cc" }, "link"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := cleanEntry()
			tt.mutate(&e)
			r := Dataset([]conference.Entry{e}, vocab)
			if r.OK() {
				t.Fatal("expected issues, got none")
			}
			found := false
			for _, iss := range r.Issues {
				if iss.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("no issue on field %q, got %+v", tt.wantField, r.Issues)
			}
		})
	}
}

func TestDatasetEmptyDatesPass(t *testing.T) {
	vocab := catalog.DefaultVocabulary()
	e := cleanEntry()
	e.StartDate = ""
	e.EndDate = ""
	e.AbstractDeadline = ""
	e.SubmissionDeadline = ""
	e.Notification = ""
	if r := Dataset([]conference.Entry{e}, vocab); !r.OK() {
		t.Errorf("empty dates flagged: %+v", r.Issues)
	}
}

func TestCatalogReport(t *testing.T) {
	vocab := catalog.DefaultVocabulary()

	t.Run("clean series", func(t *testing.T) {
		series := []catalog.Series{
			{ID: "icml", Name: "ICML", Tracks: []string{"Artificial Intelligence"}, Link: "https://icml.cc/"},
			{ID: "sosp", Name: "SOSP", Tracks: []string{"Software Engineering/Operating System/Programming Language Design"}},
		}
		if r := Catalog(vocab, series); !r.OK() {
			t.Errorf("clean series flagged: %+v", r.Issues)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		series := []catalog.Series{
			{ID: "x", Name: "ICML", Tracks: []string{"Artificial Intelligence"}},
			{ID: "x", Name: "SOSP", Tracks: []string{"Computing Theory"}},
		}
		r := Catalog(vocab, series)
		if r.OK() {
			t.Fatal("duplicate id not flagged")
		}
	})

	t.Run("colliding series names", func(t *testing.T) {
		series := []catalog.Series{
			{Name: "ICML", Tracks: []string{"Artificial Intelligence"}},
			{Name: "ICML 2026", Tracks: []string{"Artificial Intelligence"}},
		}
		r := Catalog(vocab, series)
		if r.OK() {
			t.Fatal("colliding series names not flagged")
		}
	})

	t.Run("unknown track", func(t *testing.T) {
		series := []catalog.Series{
			{Name: "ICML", Tracks: []string{"Machine Learning"}},
		}
		r := Catalog(vocab, series)
		if r.OK() {
			t.Fatal("unknown track not flagged")
		}
	})

	t.Run("alias tracks resolve", func(t *testing.T) {
		series := []catalog.Series{
			{Name: "NSDI", Tracks: []string{"networking & systems"}},
		}
		if r := Catalog(vocab, series); !r.OK() {
			t.Errorf("alias track flagged: %+v", r.Issues)
		}
	})
}
