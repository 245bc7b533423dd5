// SPDX-License-Identifier: MIT

package conference

import (
	"regexp"
	"strings"

	"github.com/conftrack/conftrack/internal/catalog"
)

var (
	ccfWrapperRe  = regexp.MustCompile(`(?i)^CCF\s+\w+\s*\((.+)\)$`)
	ccfPrefixRe   = regexp.MustCompile(`(?i)^CCF\s+\w+`)
	trailParenRe  = regexp.MustCompile(`\(([^()]+)\)\s*$`)
	whitespaceSeq = regexp.MustCompile(`\s+`)
)

// NormSpace collapses runs of whitespace into single spaces and trims.
func NormSpace(s string) string {
	return strings.TrimSpace(whitespaceSeq.ReplaceAllString(s, " "))
}

// CanonicalSubject resolves one raw subject label: a "CCF XX (...)" wrapper is
// reduced to its inner text, then the vocabulary maps known spellings onto
// their canonical labels. Labels unknown to the vocabulary pass through
// cleaned but unchanged.
func CanonicalSubject(label string, vocab *catalog.Vocabulary) string {
	s := NormSpace(label)

	if m := ccfWrapperRe.FindStringSubmatch(s); m != nil {
		s = NormSpace(m[1])
	}
	// Spacing variants such as "CCF NW(Network System) " still carry the
	// label in the trailing parentheses.
	if ccfPrefixRe.MatchString(s) {
		if m := trailParenRe.FindStringSubmatch(s); m != nil {
			s = NormSpace(m[1])
		}
	}

	if canonical, ok := vocab.Canonical(s); ok {
		return canonical
	}
	return s
}

// CanonicalSubjects canonicalizes and deduplicates a subject list, keeping
// first-seen order. An empty result falls back to Uncategorized.
func CanonicalSubjects(subs []string, vocab *catalog.Vocabulary) []string {
	seen := make(map[string]struct{}, len(subs))
	out := make([]string, 0, len(subs))
	for _, raw := range subs {
		s := CanonicalSubject(raw, vocab)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		out = []string{catalog.Uncategorized}
	}
	return out
}

// Normalize returns the entry with every contract field in canonical form:
// whitespace collapsed, date fields in DisplayDate (or ISO) form and subjects
// resolved against the vocabulary. Provenance fields are trimmed only.
func Normalize(e Entry, vocab *catalog.Vocabulary) Entry {
	out := Entry{
		Name:               NormSpace(e.Name),
		Sub:                e.Sub,
		Location:           NormSpace(e.Location),
		StartDate:          NormSpace(e.StartDate),
		EndDate:            NormSpace(e.EndDate),
		AbstractDeadline:   NormSpace(e.AbstractDeadline),
		SubmissionDeadline: NormSpace(e.SubmissionDeadline),
		Notification:       NormSpace(e.Notification),
		Link:               NormSpace(e.Link),
		Source:             strings.TrimSpace(e.Source),
		SeriesID:           strings.TrimSpace(e.SeriesID),
		CCF:                strings.TrimSpace(e.CCF),
	}

	out.StartDate = CleanDisplayDate(out.StartDate)
	out.EndDate = CleanDisplayDate(out.EndDate)
	out.AbstractDeadline = CleanDisplayDate(out.AbstractDeadline)
	out.SubmissionDeadline = CleanDisplayDate(out.SubmissionDeadline)
	out.Notification = CleanDisplayDate(out.Notification)

	out.Sub = CanonicalSubjects(out.Sub, vocab)
	return out
}

// NormalizeAll normalizes a whole dataset in place order.
func NormalizeAll(entries []Entry, vocab *catalog.Vocabulary) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Normalize(e, vocab)
	}
	return out
}
