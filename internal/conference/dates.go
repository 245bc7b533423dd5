// SPDX-License-Identifier: MIT

package conference

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DisplayDate is the human-readable date layout used across the dataset.
const DisplayDate = "Jan 02 2006"

var (
	strikeRe = regexp.MustCompile(`(?i)</?strike>`)
	parenRe  = regexp.MustCompile(`\(.*?\)`)
	inDaysRe = regexp.MustCompile(`(?i)in\s+\d+\s+days`)
	clockRe  = regexp.MustCompile(`(?i);?\s*\d{1,2}:\d{2}\s*(AM|PM)`)

	utcOffsetRe = regexp.MustCompile(`^UTC([+-])(\d{1,2})$`)
)

// cleanDateLayouts are the accepted input forms, most common first.
var cleanDateLayouts = []string{
	"Jan 2 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
}

// CleanDisplayDate converts common date spellings into the DisplayDate form.
// Strike markup, parenthesized annotations ("(AoE)"), countdown phrases and
// clock times are stripped first. Input that still does not parse is returned
// cleaned but otherwise unchanged, so ISO deadlines pass through untouched.
func CleanDisplayDate(val string) string {
	if strings.TrimSpace(val) == "" {
		return ""
	}
	s := strikeRe.ReplaceAllString(val, "")
	s = parenRe.ReplaceAllString(s, "")
	s = inDaysRe.ReplaceAllString(s, "")
	s = clockRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ";", "")
	s = NormSpace(s)

	for _, layout := range cleanDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DisplayDate)
		}
	}
	return s
}

// tzFromLabel maps a ccf-deadlines timezone label to a location. Supported
// forms are "AoE" (UTC-12), "UTC" and "UTC±N"; anything else falls back to
// UTC.
func tzFromLabel(tz string) *time.Location {
	s := strings.TrimSpace(tz)
	if s == "" {
		return time.UTC
	}
	if strings.EqualFold(s, "aoe") {
		return time.FixedZone("UTC-12", -12*3600)
	}
	up := strings.ToUpper(s)
	if up == "UTC" {
		return time.UTC
	}
	if m := utcOffsetRe.FindStringSubmatch(up); m != nil {
		hours := 0
		for _, c := range m[2] {
			hours = hours*10 + int(c-'0')
		}
		if m[1] == "-" {
			hours = -hours
		}
		return time.FixedZone(up, hours*3600)
	}
	return time.UTC
}

// isoLayout renders the UTC offset numerically ("+00:00" instead of "Z").
const isoLayout = "2006-01-02T15:04:05-07:00"

// DeadlineToISO converts a ccf-deadlines "2006-01-02 15:04:05" deadline plus
// timezone label into an ISO 8601 timestamp with offset. Empty and "TBD"
// deadlines become ""; values that do not parse are returned as-is.
func DeadlineToISO(deadline, tz string) string {
	ds := strings.TrimSpace(deadline)
	if ds == "" || strings.EqualFold(ds, "TBD") {
		return ""
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", ds, tzFromLabel(tz))
	if err != nil {
		return ds
	}
	return t.Format(isoLayout)
}

type monthExpansion struct {
	re   *regexp.Regexp
	full string
}

var monthExpansions = []monthExpansion{
	{regexp.MustCompile(`\bJan\b`), "January"},
	{regexp.MustCompile(`\bFeb\b`), "February"},
	{regexp.MustCompile(`\bMar\b`), "March"},
	{regexp.MustCompile(`\bApr\b`), "April"},
	{regexp.MustCompile(`\bJun\b`), "June"},
	{regexp.MustCompile(`\bJul\b`), "July"},
	{regexp.MustCompile(`\bAug\b`), "August"},
	{regexp.MustCompile(`\bSep\b`), "September"},
	{regexp.MustCompile(`\bSept\b`), "September"},
	{regexp.MustCompile(`\bOct\b`), "October"},
	{regexp.MustCompile(`\bNov\b`), "November"},
	{regexp.MustCompile(`\bDec\b`), "December"},
}

var (
	rangeWordRe     = regexp.MustCompile(`\b[A-Za-z]+\b`)
	rangeDayOnlyRe  = regexp.MustCompile(`^([A-Za-z]+)\s+\d{1,2}$`)
	fullMonthLayout = "January 2, 2006"
)

// ParseDateRange parses a ccf-deadlines congress date ("June 12-17, 2026",
// "April 29-May 4, 2026", "May 19, 2026") into start and end DisplayDate
// values. Unparseable input yields two empty strings.
func ParseDateRange(dateStr string, year int) (string, string) {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return "", ""
	}

	yearTrail := regexp.MustCompile(fmt.Sprintf(`,\s*%d\b`, year))
	yearBare := regexp.MustCompile(fmt.Sprintf(`\b%d\b`, year))
	s = yearTrail.ReplaceAllString(s, "")
	s = strings.TrimSpace(yearBare.ReplaceAllString(s, ""))

	for _, m := range monthExpansions {
		s = m.re.ReplaceAllString(s, m.full)
	}

	if !strings.Contains(s, "-") {
		t, err := time.Parse(fullMonthLayout, fmt.Sprintf("%s, %d", s, year))
		if err != nil {
			return "", ""
		}
		d := t.Format(DisplayDate)
		return d, d
	}

	parts := strings.SplitN(s, "-", 2)
	left := strings.TrimSpace(parts[0])
	right := strings.TrimSpace(parts[1])

	// "June 12-17" carries the month only on the left side.
	if !rangeWordRe.MatchString(right) {
		if m := rangeDayOnlyRe.FindStringSubmatch(left); m != nil {
			right = m[1] + " " + right
		}
	}

	start, err := time.Parse(fullMonthLayout, fmt.Sprintf("%s, %d", left, year))
	if err != nil {
		return "", ""
	}
	end, err := time.Parse(fullMonthLayout, fmt.Sprintf("%s, %d", right, year))
	if err != nil {
		return "", ""
	}
	return start.Format(DisplayDate), end.Format(DisplayDate)
}

// deadlineTime parses a Submission Deadline for ordering. It accepts the ISO
// form first, then the DisplayDate form, then bare dates.
func deadlineTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "Jan 2 2006", "January 2 2006", "2006-01-02", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WellTypedDate reports whether a date field holds an accepted value: empty,
// a DisplayDate, or an ISO timestamp.
func WellTypedDate(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	_, ok := deadlineTime(s)
	return ok
}
