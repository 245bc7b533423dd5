// SPDX-License-Identifier: MIT

package export

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/renameio/v2"

	"github.com/conftrack/conftrack/internal/conference"
)

// CalendarName labels the published calendar in subscribing clients.
const CalendarName = "Conference deadlines"

const calendarProductID = "-//conftrack//conftrack//EN"

// BuildCalendar renders every entry with a parseable submission deadline as
// a VEVENT. Exact timestamps become one-hour timed events, display dates
// become all-day events, anything else (TBD, free text) is skipped. Output
// is deterministic for a fixed dataset and clock.
func BuildCalendar(entries []conference.Entry, now time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(CalendarName)
	cal.SetXPublishedTTL("PT1H")

	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		at, timed, ok := parseDeadline(e.SubmissionDeadline)
		if !ok {
			continue
		}

		event := cal.AddEvent(eventUID(e.Name))
		if timed {
			event.SetStartAt(at)
			event.SetEndAt(at.Add(time.Hour))
		} else {
			event.SetAllDayStartAt(at)
			event.SetAllDayEndAt(at.AddDate(0, 0, 1))
		}

		event.SetDtStampTime(now.UTC())
		event.SetSummary(e.Name + " submission deadline")
		if desc := eventDescription(e); desc != "" {
			event.SetDescription(desc)
		}
		if e.Location != "" {
			event.SetLocation(e.Location)
		}
		if e.Link != "" {
			event.SetURL(e.Link)
		}
	}
	return cal
}

// WriteICS atomically replaces path with the serialized calendar and
// reports how many events it carries.
func WriteICS(path string, entries []conference.Entry, now time.Time) (int, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("create calendar directory %s: %w", dir, err)
		}
	}

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return 0, fmt.Errorf("create pending calendar file: %w", err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()

	cal := BuildCalendar(entries, now)
	if _, err := pending.WriteString(cal.Serialize()); err != nil {
		return 0, fmt.Errorf("write calendar: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return 0, fmt.Errorf("replace calendar %s: %w", path, err)
	}
	return len(cal.Events()), nil
}

// parseDeadline classifies a submission deadline as an exact timestamp or a
// plain date. Free-text values report ok=false.
func parseDeadline(s string) (at time.Time, timed, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true, true
	}
	if d, err := time.Parse(conference.DisplayDate, s); err == nil {
		return d, false, true
	}
	return time.Time{}, false, false
}

// eventUID derives a stable identifier from the entry's canonical name so a
// moved deadline updates the existing event instead of duplicating it.
func eventUID(name string) string {
	sum := sha256.Sum256([]byte(conference.NormKeyExact(name)))
	return "conf-" + hex.EncodeToString(sum[:])
}

func eventDescription(e conference.Entry) string {
	var parts []string
	if len(e.Sub) > 0 {
		parts = append(parts, "Tracks: "+strings.Join(e.Sub, ", "))
	}
	if e.AbstractDeadline != "" {
		parts = append(parts, "Abstract deadline: "+e.AbstractDeadline)
	}
	if e.Notification != "" {
		parts = append(parts, "Notification: "+e.Notification)
	}
	return strings.Join(parts, "; ")
}
