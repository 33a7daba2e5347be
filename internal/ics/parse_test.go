package ics_test

import (
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"clubsync/internal/ics"
)

func calendar(vevents ...string) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//clubsync//test//EN",
	}
	lines = append(lines, vevents...)
	lines = append(lines, "END:VCALENDAR", "")
	return []byte(strings.Join(lines, "\r\n"))
}

func TestParseFeed(t *testing.T) {
	Convey("Given an ICS payload", t, func() {
		Convey("When it contains a complete VEVENT", func() {
			body := calendar(
				"BEGIN:VEVENT",
				"UID:evt-1",
				"SUMMARY:General Meeting",
				"DESCRIPTION:Agenda attached",
				"LOCATION:Room 101",
				"DTSTART:20250110T180000Z",
				"DTEND:20250110T190000Z",
				"END:VEVENT",
			)

			entries, err := ics.ParseFeed(body)

			Convey("Then the entry is parsed with all fields", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].UID, ShouldEqual, "evt-1")
				So(entries[0].Summary, ShouldEqual, "General Meeting")
				So(entries[0].Description, ShouldEqual, "Agenda attached")
				So(entries[0].Location, ShouldEqual, "Room 101")
				So(entries[0].Start.UTC().Equal(time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(entries[0].End.UTC().Equal(time.Date(2025, 1, 10, 19, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})
		})

		Convey("When a VEVENT is missing its end time", func() {
			body := calendar(
				"BEGIN:VEVENT",
				"UID:evt-broken",
				"SUMMARY:No end",
				"DTSTART:20250110T180000Z",
				"END:VEVENT",
				"BEGIN:VEVENT",
				"UID:evt-good",
				"SUMMARY:Fine",
				"DTSTART:20250111T180000Z",
				"DTEND:20250111T190000Z",
				"END:VEVENT",
			)

			entries, err := ics.ParseFeed(body)

			Convey("Then that entry is skipped and the rest still parse", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].UID, ShouldEqual, "evt-good")
			})
		})

		Convey("When a VEVENT is missing its UID", func() {
			body := calendar(
				"BEGIN:VEVENT",
				"SUMMARY:Anonymous",
				"DTSTART:20250110T180000Z",
				"DTEND:20250110T190000Z",
				"END:VEVENT",
			)

			entries, err := ics.ParseFeed(body)

			Convey("Then that entry is skipped", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})

		Convey("When a VEVENT has no summary", func() {
			body := calendar(
				"BEGIN:VEVENT",
				"UID:evt-untitled",
				"DTSTART:20250110T180000Z",
				"DTEND:20250110T190000Z",
				"END:VEVENT",
			)

			entries, err := ics.ParseFeed(body)

			Convey("Then a placeholder title is used", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Summary, ShouldEqual, "Untitled Event")
			})
		})

		Convey("When a VEVENT carries an RRULE", func() {
			body := calendar(
				"BEGIN:VEVENT",
				"UID:evt-weekly",
				"SUMMARY:Weekly sync",
				"DTSTART:20250106T180000Z",
				"DTEND:20250106T190000Z",
				"RRULE:FREQ=WEEKLY",
				"END:VEVENT",
			)

			entries, err := ics.ParseFeed(body)

			Convey("Then the raw rule is captured", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].RawRRule, ShouldEqual, "FREQ=WEEKLY")
			})
		})

		Convey("When the payload is empty", func() {
			_, err := ics.ParseFeed(nil)

			Convey("Then parsing fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the payload is not ICS at all", func() {
			_, err := ics.ParseFeed([]byte("<html>not a calendar</html>"))

			Convey("Then parsing fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestProjectRecurrence(t *testing.T) {
	Convey("Given parsed entries", t, func() {
		now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

		Convey("When an entry has a weekly RRULE starting in the past", func() {
			entries := []ics.Entry{{
				UID:      "evt-weekly",
				Summary:  "Weekly sync",
				Start:    time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC),
				End:      time.Date(2025, 1, 6, 19, 0, 0, 0, time.UTC),
				RawRRule: "FREQ=WEEKLY",
			}}

			out := ics.ProjectRecurrence(entries, now, 30)

			Convey("Then start and end move to the next occurrence, keeping duration", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0].Start.Equal(time.Date(2025, 2, 3, 18, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(out[0].End.Equal(time.Date(2025, 2, 3, 19, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})
		})

		Convey("When the next occurrence is excluded by EXDATE", func() {
			entries := []ics.Entry{{
				UID:      "evt-weekly",
				Start:    time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC),
				End:      time.Date(2025, 1, 6, 19, 0, 0, 0, time.UTC),
				RawRRule: "FREQ=WEEKLY",
				ExDates:  []time.Time{time.Date(2025, 2, 3, 18, 0, 0, 0, time.UTC)},
			}}

			out := ics.ProjectRecurrence(entries, now, 30)

			Convey("Then the occurrence after the exclusion is picked", func() {
				So(out[0].Start.Equal(time.Date(2025, 2, 10, 18, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})
		})

		Convey("When an entry has no RRULE", func() {
			base := ics.Entry{
				UID:   "evt-single",
				Start: time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 1, 6, 19, 0, 0, 0, time.UTC),
			}

			out := ics.ProjectRecurrence([]ics.Entry{base}, now, 30)

			Convey("Then its times are untouched", func() {
				So(out[0].Start.Equal(base.Start), ShouldBeTrue)
				So(out[0].End.Equal(base.End), ShouldBeTrue)
			})
		})

		Convey("When the RRULE does not parse", func() {
			base := ics.Entry{
				UID:      "evt-bad",
				Start:    time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC),
				End:      time.Date(2025, 1, 6, 19, 0, 0, 0, time.UTC),
				RawRRule: "FREQ=NONSENSE",
			}

			out := ics.ProjectRecurrence([]ics.Entry{base}, now, 30)

			Convey("Then the base times survive", func() {
				So(out[0].Start.Equal(base.Start), ShouldBeTrue)
				So(out[0].End.Equal(base.End), ShouldBeTrue)
			})
		})

		Convey("When a rule has no occurrence inside the horizon", func() {
			base := ics.Entry{
				UID:      "evt-ended",
				Start:    time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC),
				End:      time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC),
				RawRRule: "FREQ=WEEKLY;UNTIL=20240301T000000Z",
			}

			out := ics.ProjectRecurrence([]ics.Entry{base}, now, 30)

			Convey("Then the base times survive", func() {
				So(out[0].Start.Equal(base.Start), ShouldBeTrue)
			})
		})
	})
}

func TestRedactURL(t *testing.T) {
	Convey("Given feed URLs that may embed tokens", t, func() {
		Convey("When the URL has a path and query", func() {
			So(ics.RedactURL("https://calendar.example.edu/feeds/club.ics?token=abcd"),
				ShouldEqual, "https://calendar.example.edu/...(redacted)")
		})

		Convey("When the URL has no scheme", func() {
			So(ics.RedactURL("not-a-url"), ShouldEqual, "ics://...(redacted)")
		})
	})
}
