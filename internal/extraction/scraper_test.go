package extraction_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"meetingprep-ai/internal/extraction"
	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/internal/normalize"
)

const calendarURL = "https://calendar.google.com/calendar/u/0/r/week"

const popupPage = `<html><body>
<div role="dialog">
  <h2>Roadmap review</h2>
  <div>Thursday, 23 October</div>
  <div>10:00 – 11:00pm</div>
  <div>Join with Google Meet</div>
  <div>3 guests</div>
  <span data-email="olivia@example.com">Olivia Stanford</span>
  <div>Marcus Chen</div>
  <span title="ben@example.com">ben</span>
</div>
</body></html>`

func mustParse(t *testing.T, page string) *extraction.HTMLDocument {
	t.Helper()
	doc, err := extraction.ParseHTMLString(page, calendarURL)
	gt.NoError(t, err)
	return doc
}

func TestExtractFromPopup(t *testing.T) {
	res, err := extraction.NewScraper().Extract(mustParse(t, popupPage))
	gt.NoError(t, err)

	gt.Equal(t, res.Strategy, "popup")
	gt.Equal(t, res.Meeting.Title, "Roadmap review")
	gt.Equal(t, res.Meeting.Date, "Thursday, 23 October")
	gt.Equal(t, res.Meeting.Time, "10:00 – 11:00pm")
	gt.Equal(t, []string(res.Meeting.Attendees), []string{
		"olivia@example.com",
		"ben@example.com",
		"Olivia Stanford",
		"Marcus Chen",
	})
}

func TestExtractExcludedNames(t *testing.T) {
	scraper := extraction.NewScraper(extraction.WithExcludedNames("Google Meet", "Marcus Chen"))
	res, err := scraper.Extract(mustParse(t, popupPage))
	gt.NoError(t, err)

	gt.A(t, res.Meeting.Attendees).Length(3)
	gt.False(t, contains(res.Meeting.Attendees, "Marcus Chen"))
}

func TestExtractExcludedNamesIgnoreCase(t *testing.T) {
	scraper := extraction.NewScraper(extraction.WithExcludedNames("marcus CHEN"))
	res, err := scraper.Extract(mustParse(t, popupPage))
	gt.NoError(t, err)

	gt.Equal(t, []string(res.Meeting.Attendees), []string{
		"olivia@example.com",
		"ben@example.com",
		"Olivia Stanford",
	})
}

func TestExtractedDateWithoutCommaNormalizes(t *testing.T) {
	page := `<html><body>
<div role="dialog">
  <h2>Roadmap sync</h2>
  <span>Thursday 23 October</span>
  <span>2:00 – 3:00pm</span>
</div>
</body></html>`

	res, err := extraction.NewScraper().Extract(mustParse(t, page))
	gt.NoError(t, err)
	gt.Equal(t, res.Meeting.Date, "Thursday 23 October")

	n := normalize.NewWithClock(func() time.Time { return time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC) })
	rec := n.Meeting(res.Meeting)
	gt.Equal(t, rec.Date, "2025-10-23")
	gt.Equal(t, rec.Time, "14:00")
}

func TestExtractRejectsNonEventDialog(t *testing.T) {
	page := `<html><body><div role="dialog"><p>Settings saved</p></div></body></html>`

	res, err := extraction.NewScraper().Extract(mustParse(t, page))
	gt.Nil(t, res)
	gt.True(t, errors.Is(err, domain.ErrMeetingNotFound))
}

func TestExtractBroadSweep(t *testing.T) {
	page := `<html><body>
<div class="popup"><h1>Vendor call</h1><p>Organizer: procurement</p></div>
</body></html>`

	res, err := extraction.NewScraper().Extract(mustParse(t, page))
	gt.NoError(t, err)
	gt.Equal(t, res.Strategy, "popup")
	gt.Equal(t, res.Meeting.Title, "Vendor call")
	gt.Equal(t, res.Meeting.Date, "")
}

func TestExtractSelectedEventFallback(t *testing.T) {
	page := `<html><body>
<div class="calendar-event selected"><span class="title"> Design sync </span></div>
</body></html>`

	res, err := extraction.NewScraper().Extract(mustParse(t, page))
	gt.NoError(t, err)
	gt.Equal(t, res.Strategy, "selected")
	gt.Equal(t, res.Meeting.Title, "Design sync")
	gt.A(t, res.Meeting.Attendees).Length(0)
}

func TestIsEventPopup(t *testing.T) {
	cases := []struct {
		name string
		page string
		want bool
	}{
		{"clock", `<div role="dialog">Starts 9:30</div>`, true},
		{"email descendant", `<div role="dialog"><i data-email="x"></i></div>`, true},
		{"weekday", `<div role="dialog">See you MONDAY</div>`, true},
		{"plain", `<div role="dialog">Nothing to see</div>`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			els := mustParse(t, tc.page).Find(`[role="dialog"]`)
			gt.A(t, els).Length(1)
			gt.Equal(t, extraction.IsEventPopup(els[0]), tc.want)
		})
	}
}

type panicStrategy struct{}

func (panicStrategy) Name() string { return "broken" }

func (panicStrategy) Extract(extraction.Document) (domain.MeetingRecord, bool) {
	panic("selector engine exploded")
}

type fixedStrategy struct{ title string }

func (fixedStrategy) Name() string { return "fixed" }

func (s fixedStrategy) Extract(extraction.Document) (domain.MeetingRecord, bool) {
	return domain.MeetingRecord{Title: s.title}, true
}

func TestExtractRecoversStrategyPanic(t *testing.T) {
	scraper := extraction.NewScraper(extraction.WithStrategies(panicStrategy{}, fixedStrategy{title: "Backup"}))

	res, err := scraper.Extract(mustParse(t, `<html></html>`))
	gt.NoError(t, err)
	gt.Equal(t, res.Strategy, "fixed")
	gt.Equal(t, res.Meeting.Title, "Backup")
}

func contains(list domain.AttendeeList, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
