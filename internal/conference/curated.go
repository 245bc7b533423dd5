// SPDX-License-Identifier: MIT

package conference

import (
	"strings"

	"github.com/conftrack/conftrack/internal/catalog"
)

// ApplyCurated overrides inferred subjects with the hand-assigned tracks of
// matching curated series. A series matches an entry by link first, then by
// the year-less series key of its name. Returns the number of entries
// touched.
func ApplyCurated(entries []Entry, series []catalog.Series, vocab *catalog.Vocabulary) int {
	if len(series) == 0 {
		return 0
	}

	type curated struct {
		linkKey   string
		seriesKey string
		tracks    []string
		id        string
	}
	curatedList := make([]curated, 0, len(series))
	for _, s := range series {
		c := curated{
			seriesKey: NormKeySeries(s.Name),
			tracks:    CanonicalSubjects(s.Tracks, vocab),
			id:        s.ID,
		}
		if link := strings.TrimSpace(s.Link); link != "" {
			c.linkKey = strings.ToLower(link)
		}
		curatedList = append(curatedList, c)
	}

	touched := 0
	for i := range entries {
		linkKey, _, seriesKey := MatchKeys(entries[i])
		for _, c := range curatedList {
			match := (c.linkKey != "" && c.linkKey == linkKey) ||
				(c.seriesKey != "" && c.seriesKey == seriesKey)
			if !match {
				continue
			}
			entries[i].Sub = append([]string(nil), c.tracks...)
			if entries[i].SeriesID == "" && c.id != "" {
				entries[i].SeriesID = c.id
			}
			touched++
			break
		}
	}
	return touched
}
