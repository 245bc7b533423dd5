// SPDX-License-Identifier: MIT

package conference

import "github.com/conftrack/conftrack/internal/catalog"

// MergeEntry folds an incoming entry into an existing one. Nothing is ever
// cleared: non-empty incoming values win, the longer name wins, the link is
// only filled when missing and subjects are unioned.
func MergeEntry(old, incoming Entry, vocab *catalog.Vocabulary) Entry {
	old = Normalize(old, vocab)
	incoming = Normalize(incoming, vocab)

	if incoming.Name != "" && len(incoming.Name) > len(old.Name) {
		old.Name = incoming.Name
	}

	if old.Link == "" && incoming.Link != "" {
		old.Link = incoming.Link
	}

	// Deadlines and congress data move; refresh them whenever the incoming
	// side has a different non-empty value.
	refresh := func(oldVal *string, newVal string) {
		if newVal != "" && *oldVal != newVal {
			*oldVal = newVal
		}
	}
	refresh(&old.Location, incoming.Location)
	refresh(&old.StartDate, incoming.StartDate)
	refresh(&old.EndDate, incoming.EndDate)
	refresh(&old.AbstractDeadline, incoming.AbstractDeadline)
	refresh(&old.SubmissionDeadline, incoming.SubmissionDeadline)
	refresh(&old.Notification, incoming.Notification)

	union := make([]string, 0, len(old.Sub)+len(incoming.Sub))
	union = append(union, old.Sub...)
	union = append(union, incoming.Sub...)
	old.Sub = CanonicalSubjects(union, vocab)

	if old.Source == "" {
		old.Source = incoming.Source
	}
	if old.SeriesID == "" {
		old.SeriesID = incoming.SeriesID
	}
	if old.CCF == "" {
		old.CCF = incoming.CCF
	}

	return old
}

// Merge applies the only-add update: every incoming entry either updates its
// match in the existing dataset or is appended. Entries are never removed.
// Appended entries immediately join the match index, so later incoming
// entries can fold into them. Returns the merged dataset plus the counts of
// added and updated entries.
func Merge(existing, incoming []Entry, vocab *catalog.Vocabulary) (merged []Entry, added, updated int) {
	merged = NormalizeAll(existing, vocab)
	ix := NewIndex(merged)

	for _, in := range incoming {
		e := Normalize(in, vocab)
		if hit, ok := ix.Find(e); ok {
			merged[hit] = MergeEntry(merged[hit], e, vocab)
			updated++
			continue
		}
		merged = append(merged, e)
		ix.Add(e, len(merged)-1)
		added++
	}
	return merged, added, updated
}
