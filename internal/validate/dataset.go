// SPDX-License-Identifier: MIT

package validate

import (
	"fmt"
	"net/url"

	"github.com/conftrack/conftrack/internal/catalog"
	"github.com/conftrack/conftrack/internal/conference"
)

// Issue is one data-contract violation found in the dataset.
type Issue struct {
	Entry   string `json:"entry"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Report is the outcome of a dataset or catalog check.
type Report struct {
	Checked int     `json:"checked"`
	Issues  []Issue `json:"issues,omitempty"`
}

// OK reports whether the check found no issues.
func (r Report) OK() bool {
	return len(r.Issues) == 0
}

func (r *Report) add(entry, field, message string) {
	r.Issues = append(r.Issues, Issue{Entry: entry, Field: field, Message: message})
}

// entryRef names an entry in issue reports. Falls back to the position for
// entries without a name, which are themselves reported as issues.
func entryRef(i int, e conference.Entry) string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("entry %d", i)
}

// Dataset checks every entry against the data contract: a non-empty name,
// at least one track from the vocabulary, date fields either empty or in a
// recognized form, and an absolute http(s) link when a link is present.
func Dataset(entries []conference.Entry, vocab *catalog.Vocabulary) Report {
	r := Report{Checked: len(entries)}

	for i, e := range entries {
		ref := entryRef(i, e)

		if e.Name == "" {
			r.add(ref, "name", "name is empty")
		}

		if len(e.Sub) == 0 {
			r.add(ref, "sub", "no tracks assigned")
		}
		for _, label := range e.Sub {
			if !vocab.Contains(label) {
				r.add(ref, "sub", fmt.Sprintf("track %q is not in the vocabulary", label))
			}
		}

		dates := []struct {
			field string
			value string
		}{
			{"Start Date", e.StartDate},
			{"End Date", e.EndDate},
			{"Abstract Deadline", e.AbstractDeadline},
			{"Submission Deadline", e.SubmissionDeadline},
			{"Notification", e.Notification},
		}
		for _, d := range dates {
			if !conference.WellTypedDate(d.value) {
				r.add(ref, d.field, fmt.Sprintf("unrecognized date %q", d.value))
			}
		}

		if e.Link != "" && !absoluteHTTPURL(e.Link) {
			r.add(ref, "link", fmt.Sprintf("not an absolute http(s) URL: %q", e.Link))
		}
	}
	return r
}

// Catalog checks the curated series list against the vocabulary: every
// hand-assigned track must resolve, series ids must be unique and links
// must be absolute http(s) URLs.
func Catalog(vocab *catalog.Vocabulary, series []catalog.Series) Report {
	r := Report{Checked: len(series)}

	seenIDs := make(map[string]string)
	seenKeys := make(map[string]string)
	for _, s := range series {
		ref := s.Name
		if ref == "" {
			ref = "series with empty name"
			r.add(ref, "name", "name is empty")
		}

		if s.ID != "" {
			if prev, dup := seenIDs[s.ID]; dup {
				r.add(ref, "id", fmt.Sprintf("id %q already used by %q", s.ID, prev))
			} else {
				seenIDs[s.ID] = s.Name
			}
		}

		if key := conference.NormKeySeries(s.Name); key != "" {
			if prev, dup := seenKeys[key]; dup {
				r.add(ref, "name", fmt.Sprintf("matches the same conferences as %q", prev))
			} else {
				seenKeys[key] = s.Name
			}
		}

		if len(s.Tracks) == 0 {
			r.add(ref, "tracks", "no tracks assigned")
		}
		for _, trk := range s.Tracks {
			if _, ok := vocab.Canonical(trk); !ok {
				r.add(ref, "tracks", fmt.Sprintf("track %q is not in the vocabulary", trk))
			}
		}

		if s.Link != "" && !absoluteHTTPURL(s.Link) {
			r.add(ref, "link", fmt.Sprintf("not an absolute http(s) URL: %q", s.Link))
		}
	}
	return r
}

func absoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
