// SPDX-License-Identifier: MIT

package conference

import (
	"sort"
	"strings"
)

// Sort orders the dataset for publication: entries with a parseable
// Submission Deadline first in ascending order, everything else after,
// both groups tie-broken by lower-cased name. The sort is stable, so equal
// entries keep their merge order.
func Sort(entries []Entry) {
	type keyed struct {
		entry       Entry
		unparseable bool
		ts          int64
		name        string
	}

	ks := make([]keyed, len(entries))
	for i, e := range entries {
		k := keyed{entry: e, name: strings.ToLower(e.Name)}
		if t, ok := deadlineTime(e.SubmissionDeadline); ok {
			k.ts = t.Unix()
		} else {
			k.unparseable = true
		}
		ks[i] = k
	}

	sort.SliceStable(ks, func(a, b int) bool {
		ka, kb := ks[a], ks[b]
		if ka.unparseable != kb.unparseable {
			return !ka.unparseable
		}
		if !ka.unparseable && ka.ts != kb.ts {
			return ka.ts < kb.ts
		}
		return ka.name < kb.name
	})

	for i := range ks {
		entries[i] = ks[i].entry
	}
}
