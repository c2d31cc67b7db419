// Package normalize converts loosely-typed meeting records into the canonical
// shape used for persistence: ISO date, 24-hour HH:MM time and an attendee list.
//
// Normalization never fails. Unparseable dates fall back to today's date and times
// without a clock pattern fall back to 09:00, so callers cannot assume the normalized
// value reflects the source when the input was garbage.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"meetingprep-ai/internal/meeting/domain"
)

const (
	isoDate     = "2006-01-02"
	DefaultTime = "09:00"
)

var (
	weekdayPrefix = regexp.MustCompile(`(?i)^\s*(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues|tue|wed|thurs|thur|thu|fri|sat|sun)\.?(?:\s*,\s*|\s+)`)
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	yearPattern   = regexp.MustCompile(`\b\d{4}\b`)
	clockPattern  = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

var dateLayouts = []string{
	"2006-01-02",
	"2 January 2006",
	"2 Jan 2006",
	"2 January, 2006",
	"January 2 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"1/2/2006",
	"2006/1/2",
}

// Normalizer applies the normalization rules relative to a clock
type Normalizer struct {
	now func() time.Time
}

// New creates a Normalizer using the wall clock
func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewWithClock creates a Normalizer with a fixed clock, mainly for tests
func NewWithClock(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Meeting returns a copy of rec with date, time and attendees canonicalized
func (n *Normalizer) Meeting(rec domain.MeetingRecord) domain.MeetingRecord {
	now := n.now()
	out := rec
	out.Title = strings.TrimSpace(rec.Title)
	out.Date = Date(rec.Date, now)
	out.Time = Time(rec.Time)
	out.Attendees = Attendees(rec.Attendees)
	return out
}

// Date converts a free-text date ("Thursday, 23 October", "Thursday 23 October", "2025-10-23")
// to YYYY-MM-DD.
// Missing years are filled with the year of now; anything unparseable becomes today.
func Date(raw string, now time.Time) string {
	s := strings.TrimSpace(raw)
	s = weekdayPrefix.ReplaceAllString(s, "")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = strings.Join(strings.Fields(s), " ")

	if !yearPattern.MatchString(s) {
		s = strings.TrimSpace(fmt.Sprintf("%s %d", s, now.Year()))
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}
	return now.Format(isoDate)
}

// Time converts a free-text time or range ("2:00 – 3:00pm") to the 24-hour start time.
// The first H:MM wins. Its own am/pm marker decides when present ("10:00am – 2:00pm" is 10:00);
// otherwise a marker later in the range applies ("2:00 – 3:00pm" is 14:00). pm shifts hours
// below 12 by 12 and am maps 12 to 0. No clock pattern yields DefaultTime.
func Time(raw string) string {
	loc := clockPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return DefaultTime
	}

	hour, err := strconv.Atoi(raw[loc[2]:loc[3]])
	if err != nil {
		return DefaultTime
	}
	minute := raw[loc[4]:loc[5]]

	switch meridiem(raw[loc[1]:]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	return fmt.Sprintf("%02d:%s", hour, minute)
}

// meridiem returns the marker right after the clock, else the first one later in rest
func meridiem(rest string) string {
	rest = strings.ToLower(rest)
	head := strings.TrimLeft(rest, " \t.")
	switch {
	case strings.HasPrefix(head, "pm"), strings.HasPrefix(head, "p.m"):
		return "pm"
	case strings.HasPrefix(head, "am"), strings.HasPrefix(head, "a.m"):
		return "am"
	case strings.Contains(rest, "pm"):
		return "pm"
	case strings.Contains(rest, "am"):
		return "am"
	}
	return ""
}

// Attendees returns the list unchanged, or an empty list for nil
func Attendees(list domain.AttendeeList) domain.AttendeeList {
	if list == nil {
		return domain.AttendeeList{}
	}
	return list
}

// AttendeesFromValue wraps a raw decoded value (string, []string, []interface{}) into a list
func AttendeesFromValue(v interface{}) domain.AttendeeList {
	switch t := v.(type) {
	case nil:
		return domain.AttendeeList{}
	case string:
		return domain.WrapAttendee(t)
	case []string:
		return domain.AttendeeList(t)
	case domain.AttendeeList:
		return t
	case []interface{}:
		out := make(domain.AttendeeList, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return domain.WrapAttendee(fmt.Sprint(t))
	}
}
