// SPDX-License-Identifier: MIT

// Package catalog loads the curated inputs of the dataset: the track
// vocabulary, the curated series list and the EDAS watchlist.
package catalog

import (
	"fmt"
	"strings"
)

// Uncategorized is the fallback track for entries without a usable subject.
const Uncategorized = "Uncategorized"

// Track is one canonical subject label plus the raw labels that resolve to it.
type Track struct {
	Label       string   `yaml:"label"`
	Aliases     []string `yaml:"aliases,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// Vocabulary is the closed set of track labels entries may carry. Lookups go
// through a case-insensitive index over labels and aliases.
type Vocabulary struct {
	tracks []Track
	index  map[string]string
	labels map[string]struct{}
}

// Series is one curated conference series. Its tracks are hand-assigned and
// take precedence over anything inferred from upstream sources.
type Series struct {
	ID     string   `yaml:"id,omitempty"`
	Name   string   `yaml:"name"`
	Tracks []string `yaml:"tracks"`
	Link   string   `yaml:"link,omitempty"`
}

// normKey folds a label for index lookups: lower-cased, whitespace collapsed.
func normKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// NewVocabulary builds a vocabulary from the given tracks. The Uncategorized
// track is appended when missing so normalization always has a fallback.
func NewVocabulary(tracks []Track) (*Vocabulary, error) {
	v := &Vocabulary{
		index:  make(map[string]string),
		labels: make(map[string]struct{}),
	}

	hasFallback := false
	for _, t := range tracks {
		label := strings.TrimSpace(t.Label)
		if label == "" {
			return nil, fmt.Errorf("vocabulary: track with empty label")
		}
		key := normKey(label)
		if _, dup := v.index[key]; dup {
			return nil, fmt.Errorf("vocabulary: duplicate label %q", label)
		}
		v.index[key] = label
		v.labels[label] = struct{}{}
		if label == Uncategorized {
			hasFallback = true
		}

		for _, a := range t.Aliases {
			akey := normKey(a)
			if akey == "" {
				continue
			}
			if prev, dup := v.index[akey]; dup {
				return nil, fmt.Errorf("vocabulary: alias %q already maps to %q", a, prev)
			}
			v.index[akey] = label
		}
		v.tracks = append(v.tracks, t)
	}

	if !hasFallback {
		v.tracks = append(v.tracks, Track{Label: Uncategorized})
		v.index[normKey(Uncategorized)] = Uncategorized
		v.labels[Uncategorized] = struct{}{}
	}
	return v, nil
}

// DefaultVocabulary returns the built-in track vocabulary. It mirrors the
// shipped config/tracks.yaml and is used when no tracks file is configured.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(defaultTracks())
	if err != nil {
		// The built-in table is static; a failure here is a programming error.
		panic(err)
	}
	return v
}

func defaultTracks() []Track {
	return []Track{
		{Label: "Artificial Intelligence"},
		{Label: "Computer Architecture/Parallel Programming/Storage Technology"},
		{Label: "Computer–Human Interaction"},
		{Label: "Computing Theory"},
		{Label: "Database/Data Mining/Information Retrieval"},
		{Label: "Graphics"},
		{Label: "Interdiscipline/Mixture/Emerging"},
		{Label: "Network System", Aliases: []string{
			"networking & systems",
			"networking and systems",
			"networks and systems",
		}},
		{Label: "Network and System Security"},
		{Label: "Security & Privacy"},
		{Label: "Software Engineering/Operating System/Programming Language Design"},
		{Label: "Wireless/Communication", Aliases: []string{
			"wireless & communication",
			"wireless and communication",
		}},
		{Label: Uncategorized},
	}
}

// Canonical resolves a raw subject label to its canonical vocabulary label.
// The second return reports whether the label is part of the vocabulary.
func (v *Vocabulary) Canonical(raw string) (string, bool) {
	label, ok := v.index[normKey(raw)]
	return label, ok
}

// Contains reports whether label is an exact member of the vocabulary.
func (v *Vocabulary) Contains(label string) bool {
	_, ok := v.labels[label]
	return ok
}

// Labels returns the track labels in declaration order.
func (v *Vocabulary) Labels() []string {
	out := make([]string, 0, len(v.tracks))
	for _, t := range v.tracks {
		out = append(out, t.Label)
	}
	return out
}
