package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "clubsync/internal/log"
)

// ProjectRecurrence rewrites the start/end of every RRULE-bearing entry
// to its next occurrence at or after now, looking no further than
// horizonDays ahead. EXDATEs are honored. The entry keeps its UID, so a
// recurring feed entry stays a single event row whose timing tracks the
// upcoming instance.
//
// Entries without an RRULE, entries whose rule fails to parse and
// entries with no occurrence inside the horizon pass through with their
// base times intact.
func ProjectRecurrence(entries []Entry, now time.Time, horizonDays int) []Entry {
	if horizonDays <= 0 {
		horizonDays = 90
	}
	horizonEnd := now.AddDate(0, 0, horizonDays)

	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.RawRRule == "" {
			out = append(out, entry)
			continue
		}

		next, ok := nextOccurrence(entry, now, horizonEnd)
		if ok {
			dur := entry.End.Sub(entry.Start)
			entry.Start = next
			entry.End = next.Add(dur)
		}
		out = append(out, entry)
	}
	return out
}

func nextOccurrence(entry Entry, from, until time.Time) (time.Time, bool) {
	r, err := rrule.StrToRRule(entry.RawRRule)
	if err != nil {
		appLog.Warn("unparseable RRULE, keeping base times", "uid", entry.UID, "rrule", entry.RawRRule)
		return time.Time{}, false
	}
	r.DTStart(entry.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range entry.ExDates {
		// Align EXDATE location with the entry's start for comparison.
		set.ExDate(ex.In(entry.Start.Location()))
	}

	occ := set.Between(from.In(entry.Start.Location()), until.In(entry.Start.Location()), true)
	if len(occ) == 0 {
		return time.Time{}, false
	}
	return occ[0], true
}
