// SPDX-License-Identifier: MIT

package conference

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/conftrack/conftrack/internal/catalog"
)

func TestMergeEntry(t *testing.T) {
	vocab := catalog.DefaultVocabulary()

	t.Run("longer name wins", func(t *testing.T) {
		old := Entry{Name: "INFOCOM 2026"}
		incoming := Entry{Name: "IEEE INFOCOM 2026"}
		got := MergeEntry(old, incoming, vocab)
		if got.Name != "IEEE INFOCOM 2026" {
			t.Errorf("Name = %q, want the longer name", got.Name)
		}

		got = MergeEntry(incoming, old, vocab)
		if got.Name != "IEEE INFOCOM 2026" {
			t.Errorf("Name = %q, shorter incoming must not replace", got.Name)
		}
	})

	t.Run("link fills only when empty", func(t *testing.T) {
		old := Entry{Name: "ICML 2026"}
		incoming := Entry{Name: "ICML 2026", Link: "https://icml.cc/2026"}
		got := MergeEntry(old, incoming, vocab)
		if got.Link != "https://icml.cc/2026" {
			t.Errorf("Link = %q, want filled", got.Link)
		}

		old = Entry{Name: "ICML 2026", Link: "https://icml.cc/"}
		got = MergeEntry(old, incoming, vocab)
		if got.Link != "https://icml.cc/" {
			t.Errorf("Link = %q, existing link must be kept", got.Link)
		}
	})

	t.Run("non-empty incoming refreshes deadlines", func(t *testing.T) {
		old := Entry{
			Name:               "ICML 2026",
			Location:           "Vienna, Austria",
			SubmissionDeadline: "Jan 15 2026",
		}
		incoming := Entry{
			Name:               "ICML 2026",
			SubmissionDeadline: "Jan 22 2026",
			Notification:       "Apr 01 2026",
		}
		got := MergeEntry(old, incoming, vocab)
		if got.SubmissionDeadline != "Jan 22 2026" {
			t.Errorf("SubmissionDeadline = %q, want refreshed", got.SubmissionDeadline)
		}
		if got.Notification != "Apr 01 2026" {
			t.Errorf("Notification = %q, want filled", got.Notification)
		}
		if got.Location != "Vienna, Austria" {
			t.Errorf("Location = %q, empty incoming must not clear", got.Location)
		}
	})

	t.Run("subjects union", func(t *testing.T) {
		old := Entry{Name: "X 2026", Sub: []string{"Network System"}}
		incoming := Entry{Name: "X 2026", Sub: []string{"networking & systems", "Security & Privacy"}}
		got := MergeEntry(old, incoming, vocab)
		want := []string{"Network System", "Security & Privacy"}
		if diff := cmp.Diff(want, got.Sub); diff != "" {
			t.Errorf("Sub mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("provenance fills when empty", func(t *testing.T) {
		old := Entry{Name: "X 2026", Source: "csalab"}
		incoming := Entry{Name: "X 2026", Source: "ccfddl", SeriesID: "x26", CCF: "A"}
		got := MergeEntry(old, incoming, vocab)
		if got.Source != "csalab" {
			t.Errorf("Source = %q, first contributor must be kept", got.Source)
		}
		if got.SeriesID != "x26" || got.CCF != "A" {
			t.Errorf("SeriesID/CCF = %q/%q, want filled", got.SeriesID, got.CCF)
		}
	})
}

func TestMerge(t *testing.T) {
	vocab := catalog.DefaultVocabulary()

	existing := []Entry{
		{Name: "ICML 2026", Link: "https://icml.cc/2026", Sub: []string{"Artificial Intelligence"}},
	}
	incoming := []Entry{
		{Name: "ICML 2026", SubmissionDeadline: "Jan 22 2026"},
		{Name: "NeurIPS 2026", Sub: []string{"Artificial Intelligence"}},
	}

	merged, added, updated := Merge(existing, incoming, vocab)
	if added != 1 || updated != 1 {
		t.Fatalf("added/updated = %d/%d, want 1/1", added, updated)
	}
	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}
	if merged[0].SubmissionDeadline != "Jan 22 2026" {
		t.Errorf("existing entry not updated: %+v", merged[0])
	}
	if merged[1].Name != "NeurIPS 2026" {
		t.Errorf("appended entry missing: %+v", merged[1])
	}
}

func TestMergeNeverDeletes(t *testing.T) {
	vocab := catalog.DefaultVocabulary()

	existing := []Entry{
		{Name: "CHI 2026"},
		{Name: "SOSP 2026"},
	}
	merged, added, updated := Merge(existing, nil, vocab)
	if added != 0 || updated != 0 {
		t.Fatalf("added/updated = %d/%d, want 0/0", added, updated)
	}
	if len(merged) != len(existing) {
		t.Fatalf("len(merged) = %d, want %d", len(merged), len(existing))
	}
}

func TestMergeIdempotent(t *testing.T) {
	vocab := catalog.DefaultVocabulary()

	incoming := []Entry{
		{Name: "ICML 2026", Link: "https://icml.cc/2026", SubmissionDeadline: "Jan 22 2026"},
	}

	once, _, _ := Merge(nil, incoming, vocab)
	twice, added, updated := Merge(once, incoming, vocab)
	if added != 0 {
		t.Errorf("added = %d, want 0 on re-merge", added)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1 on re-merge", updated)
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("re-merge changed dataset (-once +twice):\n%s", diff)
	}
}

func TestMergeAppendedEntriesJoinIndex(t *testing.T) {
	vocab := catalog.DefaultVocabulary()

	// The second incoming entry matches the first one by series key and must
	// fold into it instead of creating a duplicate.
	incoming := []Entry{
		{Name: "EuroSys 2026"},
		{Name: "EuroSys 2027", SubmissionDeadline: "Oct 15 2026"},
	}
	merged, added, updated := Merge(nil, incoming, vocab)
	if added != 1 || updated != 1 {
		t.Fatalf("added/updated = %d/%d, want 1/1", added, updated)
	}
	if len(merged) != 1 {
		t.Fatalf("len(merged) = %d, want 1", len(merged))
	}
	if merged[0].SubmissionDeadline != "Oct 15 2026" {
		t.Errorf("deadline not folded into appended entry: %+v", merged[0])
	}
}
