// SPDX-License-Identifier: MIT

package conference

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	unicodeDashRe = regexp.MustCompile("[‐‑‒–—−]")
	nonKeyCharRe  = regexp.MustCompile(`[^a-z0-9\- ]+`)
	yearTokenRe   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	cycleTokenRe  = regexp.MustCompile(`(?i)(?:[-\x{2013}\x{2014}]?\s*)?cycle\s*(?:\d+|spring|fall)\b`)
)

// NormKeyExact builds a strict match key from a name: lower-cased, whitespace
// collapsed, unicode dashes unified and everything outside [a-z0-9- ]
// dropped. Years and cycle markers are kept.
func NormKeyExact(name string) string {
	s := strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
	s = NormSpace(s)
	s = unicodeDashRe.ReplaceAllString(s, "-")
	s = nonKeyCharRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// NormKeySeries builds a looser key with year and cycle tokens removed, so
// "ICML 2026" and "ICML 2027 - Cycle 2" fall onto the same series.
func NormKeySeries(name string) string {
	s := norm.NFC.String(name)
	s = yearTokenRe.ReplaceAllString(s, "")
	s = cycleTokenRe.ReplaceAllString(s, "")
	return NormKeyExact(s)
}

// MatchKeys returns the three match keys of an entry in priority order:
// link, exact name, series name. Empty keys mean the dimension is unusable.
func MatchKeys(e Entry) (linkKey, exactKey, seriesKey string) {
	if link := strings.TrimSpace(e.Link); link != "" {
		linkKey = strings.ToLower(link)
	}
	exactKey = NormKeyExact(e.Name)
	seriesKey = NormKeySeries(e.Name)
	return linkKey, exactKey, seriesKey
}

// Index maps match keys onto positions in a dataset slice. The first entry
// claiming a key keeps it.
type Index struct {
	m map[string]int
}

// NewIndex builds an index over the given entries.
func NewIndex(entries []Entry) *Index {
	ix := &Index{m: make(map[string]int, len(entries)*3)}
	for i, e := range entries {
		ix.Add(e, i)
	}
	return ix
}

// Add registers the entry's keys for position i, keeping earlier claims.
func (ix *Index) Add(e Entry, i int) {
	linkKey, exactKey, seriesKey := MatchKeys(e)
	if linkKey != "" {
		if _, taken := ix.m["L:"+linkKey]; !taken {
			ix.m["L:"+linkKey] = i
		}
	}
	if exactKey != "" {
		if _, taken := ix.m["N:"+exactKey]; !taken {
			ix.m["N:"+exactKey] = i
		}
	}
	if seriesKey != "" {
		if _, taken := ix.m["S:"+seriesKey]; !taken {
			ix.m["S:"+seriesKey] = i
		}
	}
}

// Find locates the position matching the entry, trying the link key first,
// then the exact name, then the series fallback.
func (ix *Index) Find(e Entry) (int, bool) {
	linkKey, exactKey, seriesKey := MatchKeys(e)
	if linkKey != "" {
		if i, ok := ix.m["L:"+linkKey]; ok {
			return i, true
		}
	}
	if exactKey != "" {
		if i, ok := ix.m["N:"+exactKey]; ok {
			return i, true
		}
	}
	if seriesKey != "" {
		if i, ok := ix.m["S:"+seriesKey]; ok {
			return i, true
		}
	}
	return 0, false
}
