package calendar

import (
	"context"
	"strings"
	"time"

	"meetingprep-ai/internal/meeting/domain"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const DefaultCalendarID = "primary"

// Source lists meetings straight from the Google Calendar API
type Source struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
}

// NewSource authenticates with a user access token
func NewSource(ctx context.Context, accessToken, calendarID string) (*Source, error) {
	if accessToken == "" {
		return nil, goerr.New("calendar access token is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return NewSourceWithOptions(ctx, calendarID, option.WithTokenSource(ts))
}

func NewSourceWithOptions(ctx context.Context, calendarID string, opts ...option.ClientOption) (*Source, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create calendar service")
	}
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	return &Source{svc: svc, calendarID: calendarID, loc: time.Local}, nil
}

// SetLocation sets the zone used to render event dates and times
func (s *Source) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

// Upcoming returns the meetings starting between from and from+window, earliest first
func (s *Source) Upcoming(ctx context.Context, from time.Time, window time.Duration, limit int64) ([]domain.MeetingRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	events, err := s.svc.Events.List(s.calendarID).
		Context(ctx).
		SingleEvents(true).
		OrderBy("startTime").
		ShowDeleted(false).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(from.Add(window).Format(time.RFC3339)).
		MaxResults(limit).
		Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list calendar events", goerr.V("calendar", s.calendarID))
	}

	records := make([]domain.MeetingRecord, 0, len(events.Items))
	for _, ev := range events.Items {
		if ev.Status == "cancelled" {
			continue
		}
		records = append(records, EventToRecord(ev, s.loc))
	}
	return records, nil
}

// EventToRecord converts a Calendar API event into the canonical meeting shape.
// All-day events carry a date and no time.
func EventToRecord(ev *gcal.Event, loc *time.Location) domain.MeetingRecord {
	if loc == nil {
		loc = time.Local
	}

	rec := domain.MeetingRecord{
		Title:       strings.TrimSpace(ev.Summary),
		Description: strings.TrimSpace(ev.Description),
		Location:    strings.TrimSpace(ev.Location),
	}

	if ev.Start != nil {
		if ev.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, ev.Start.DateTime); err == nil {
				t = t.In(loc)
				rec.Date = t.Format("2006-01-02")
				rec.Time = t.Format("15:04")
			}
		} else if ev.Start.Date != "" {
			rec.Date = ev.Start.Date
		}
	}

	if rec.Location == "" && ev.HangoutLink != "" {
		rec.Location = ev.HangoutLink
	}

	for _, a := range ev.Attendees {
		if a == nil || a.Resource {
			continue
		}
		if name := strings.TrimSpace(a.DisplayName); name != "" {
			rec.Attendees = append(rec.Attendees, name)
		} else if email := strings.TrimSpace(a.Email); email != "" {
			rec.Attendees = append(rec.Attendees, email)
		}
	}
	return rec
}
