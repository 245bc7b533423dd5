// SPDX-License-Identifier: MIT

// Package conference holds the conference instance model and the dataset
// semantics: normalization, matching, merging and ordering.
package conference

// Entry is one conference instance as published in data/conferences.json.
// The JSON names and their order are the data contract consumed by the
// preview page; the mixed casing is deliberate and must not change.
type Entry struct {
	Name               string   `json:"name"`
	Sub                []string `json:"sub"`
	Location           string   `json:"Location"`
	StartDate          string   `json:"Start Date"`
	EndDate            string   `json:"End Date"`
	AbstractDeadline   string   `json:"Abstract Deadline"`
	SubmissionDeadline string   `json:"Submission Deadline"`
	Notification       string   `json:"Notification"`
	Link               string   `json:"link"`

	// Provenance, omitted from the JSON when unknown.
	Source   string `json:"source,omitempty"`
	SeriesID string `json:"series_id,omitempty"`
	CCF      string `json:"ccf,omitempty"`
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	out := e
	if e.Sub != nil {
		out.Sub = make([]string, len(e.Sub))
		copy(out.Sub, e.Sub)
	}
	return out
}
