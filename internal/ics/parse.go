package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "clubsync/internal/log"
)

// Entry is the normalized representation of a VEVENT as produced by the
// feed parser. Description carries the raw feed text; boilerplate
// stripping happens in the classifier.
type Entry struct {
	UID string

	Summary     string
	Description string
	Location    string

	Start time.Time
	End   time.Time

	// RawRRule and ExDates are kept for recurrence projection
	// (see ProjectRecurrence); they never reach the store.
	RawRRule string
	ExDates  []time.Time
}

// ParseFeed parses a single ICS payload into entries.
//
// Per-entry problems (missing UID, missing start or end time) skip that
// entry with a log line and keep parsing the rest: a partial feed must
// not abort the whole club's cycle. A payload that does not parse at
// all is an error for the caller.
func ParseFeed(body []byte) ([]Entry, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(cal.Events()))

	for _, ve := range cal.Events() {
		entry, perr := parseVEvent(ve)
		if perr != nil {
			appLog.Warn("skipping unusable feed entry", "reason", perr.Error(), "uid", rawUID(ve))
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseVEvent(ve *ical.VEvent) (Entry, error) {
	var out Entry

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if out.Summary == "" {
		out.Summary = "Untitled Event"
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	start, serr := ve.GetStartAt()
	if serr != nil || start.IsZero() {
		return out, errors.New("missing start time")
	}
	end, eerr := ve.GetEndAt()
	if eerr != nil || end.IsZero() {
		return out, errors.New("missing end time")
	}
	out.Start = start
	out.End = end

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, terr := parseICSTime(part); terr == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	return out, nil
}

func rawUID(ve *ical.VEvent) string {
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		return p.Value
	}
	return ""
}

// parseICSTime parses a basic ICS date/date-time string. EXDATE values
// arrive without full parameter context, so this handles the UTC,
// floating date-time and date-only forms.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}

	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, time.Local)
	}

	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, time.Local)
}
