package normalize_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/internal/normalize"
)

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 15, 4, 0, 0, time.UTC) }
}

func TestDate(t *testing.T) {
	now := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"weekday prefix without year", "Thursday, 23 October", "2025-10-23"},
		{"weekday prefix without comma", "Thursday 23 October", "2025-10-23"},
		{"abbreviated weekday without comma", "Thu. 23 Oct 2026", "2026-10-23"},
		{"no weekday without year", "23 October", "2025-10-23"},
		{"explicit year", "Friday, 24 October 2026", "2026-10-24"},
		{"already iso", "2024-10-23", "2024-10-23"},
		{"month first", "October 23", "2025-10-23"},
		{"month first with comma and year", "October 23, 2027", "2027-10-23"},
		{"abbreviated weekday", "Thu, 23 Oct", "2025-10-23"},
		{"ordinal", "Thursday, 23rd October", "2025-10-23"},
		{"case insensitive month", "thursday, 23 OCTOBER", "2025-10-23"},
		{"garbage falls back to today", "next sprint planning", "2025-03-03"},
		{"empty falls back to today", "", "2025-03-03"},
		{"invalid day falls back to today", "Monday, 31 February", "2025-03-03"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, normalize.Date(tc.input, now), tc.expected)
		})
	}
}

func TestDateUsesCurrentYear(t *testing.T) {
	for _, year := range []int{2024, 2025, 2031} {
		now := time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
		gt.Equal(t, normalize.Date("Thursday, 23 October", now), time.Date(year, time.October, 23, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
	}
}

func TestTime(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"2:00 – 3:00pm", "14:00"},
		{"10:00 – 11:00pm", "22:00"},
		{"2:30 PM - 3:30 PM", "14:30"},
		{"10:00am – 2:00pm", "10:00"},
		{"11:30 AM - 12:30 PM", "11:30"},
		{"9:00 a.m. – 5:00 p.m.", "09:00"},
		{"12:15pm", "12:15"},
		{"12:45 am", "00:45"},
		{"9:05", "09:05"},
		{"9:05am", "09:05"},
		{"22:00", "22:00"},
		{"", "09:00"},
		{"all day", "09:00"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			gt.Equal(t, normalize.Time(tc.input), tc.expected)
		})
	}
}

func TestMeetingIsDeterministic(t *testing.T) {
	n := normalize.NewWithClock(fixedClock(2025, time.October, 1))
	rec := domain.MeetingRecord{
		Title:     "  Quarterly review ",
		Date:      "Thursday, 23 October",
		Time:      "10:00 – 11:00pm",
		Attendees: domain.AttendeeList{"a@example.com", "a@example.com"},
	}

	first := n.Meeting(rec)
	second := n.Meeting(rec)
	gt.Equal(t, first, second)
	gt.Equal(t, first.Title, "Quarterly review")
	gt.Equal(t, first.Date, "2025-10-23")
	gt.Equal(t, first.Time, "22:00")
	gt.A(t, first.Attendees).Length(2)
}

func TestMeetingIsIdempotentOnCanonicalInput(t *testing.T) {
	n := normalize.NewWithClock(fixedClock(2025, time.January, 5))
	once := n.Meeting(domain.MeetingRecord{Date: "23 October", Time: "3:15pm"})
	twice := n.Meeting(once)
	gt.Equal(t, once, twice)
}

func TestAttendees(t *testing.T) {
	t.Run("nil becomes empty list", func(t *testing.T) {
		gt.A(t, normalize.Attendees(nil)).Length(0)
	})

	t.Run("single string is wrapped", func(t *testing.T) {
		list := normalize.AttendeesFromValue("olivia@example.com")
		gt.A(t, list).Length(1)
		gt.Equal(t, list[0], "olivia@example.com")
	})

	t.Run("decoded json string is wrapped", func(t *testing.T) {
		var rec domain.MeetingRecord
		gt.NoError(t, json.Unmarshal([]byte(`{"title":"x","attendees":"Olivia Stanford"}`), &rec))
		gt.A(t, rec.Attendees).Length(1)
		gt.Equal(t, rec.Attendees[0], "Olivia Stanford")
	})

	t.Run("interface slice keeps order", func(t *testing.T) {
		list := normalize.AttendeesFromValue([]interface{}{"b", "a", 3, "b"})
		gt.Equal(t, []string(list), []string{"b", "a", "b"})
	})
}
