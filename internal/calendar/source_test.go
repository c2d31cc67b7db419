package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func TestEventToRecord(t *testing.T) {
	t.Run("timed event", func(t *testing.T) {
		ev := &gcal.Event{
			Summary:     " Roadmap review ",
			Description: "Q4 plans",
			Start:       &gcal.EventDateTime{DateTime: "2025-10-23T22:00:00Z"},
			HangoutLink: "https://meet.google.com/abc-defg-hij",
			Attendees: []*gcal.EventAttendee{
				{Email: "olivia@example.com", DisplayName: "Olivia Stanford"},
				{Email: "connor@example.com"},
				{Email: "room-1@resource.calendar.google.com", Resource: true},
			},
		}

		rec := EventToRecord(ev, time.UTC)
		gt.Equal(t, rec.Title, "Roadmap review")
		gt.Equal(t, rec.Date, "2025-10-23")
		gt.Equal(t, rec.Time, "22:00")
		gt.Equal(t, rec.Location, "https://meet.google.com/abc-defg-hij")
		gt.A(t, []string(rec.Attendees)).Length(2)
		gt.Equal(t, rec.Attendees[0], "Olivia Stanford")
		gt.Equal(t, rec.Attendees[1], "connor@example.com")
	})

	t.Run("time follows location", func(t *testing.T) {
		tokyo := time.FixedZone("JST", 9*3600)
		ev := &gcal.Event{Start: &gcal.EventDateTime{DateTime: "2025-10-23T22:00:00Z"}}
		rec := EventToRecord(ev, tokyo)
		gt.Equal(t, rec.Date, "2025-10-24")
		gt.Equal(t, rec.Time, "07:00")
	})

	t.Run("all-day event", func(t *testing.T) {
		ev := &gcal.Event{Summary: "Offsite", Start: &gcal.EventDateTime{Date: "2025-11-01"}, Location: "HQ"}
		rec := EventToRecord(ev, time.UTC)
		gt.Equal(t, rec.Date, "2025-11-01")
		gt.Equal(t, rec.Time, "")
		gt.Equal(t, rec.Location, "HQ")
	})
}

func TestUpcoming(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"summary":"Standup","status":"confirmed","start":{"dateTime":"2025-10-20T09:30:00Z"}},
			{"summary":"Dropped","status":"cancelled","start":{"dateTime":"2025-10-20T10:00:00Z"}}
		]}`))
	}))
	defer srv.Close()

	src, err := NewSourceWithOptions(context.Background(), "",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	gt.NoError(t, err)
	src.SetLocation(time.UTC)

	records, err := src.Upcoming(context.Background(), time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), 24*time.Hour, 5)
	gt.NoError(t, err)
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].Title, "Standup")
	gt.Equal(t, records[0].Time, "09:30")
	gt.S(t, gotPath).Contains("calendars/primary/events")
}

func TestNewSourceRequiresToken(t *testing.T) {
	_, err := NewSource(context.Background(), "", "")
	gt.Error(t, err)
}
