package popup

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/internal/messaging"
	"meetingprep-ai/pkg/logging"
)

// NoMeetingMessage is shown when the active page is not a calendar
const NoMeetingMessage = "Open a Google Calendar event to generate a brief"

const calendarHost = "calendar.google.com"

// Source tells where a detected meeting came from
type Source string

const (
	SourcePage     Source = "page"
	SourceFallback Source = "fallback"
)

// Requester sends a message to the page context and waits for its reply
type Requester interface {
	Request(ctx context.Context, msg messaging.Message) (messaging.Reply, error)
}

// Detection is the outcome of looking for a meeting on the active page. Meeting is nil
// only when the page is not a calendar.
type Detection struct {
	Meeting *domain.MeetingRecord
	Source  Source
	Reason  error
	Message string
}

// Detector asks the page for the meeting it shows
type Detector struct {
	page Requester
	now  func() time.Time
}

// NewDetector creates a detector talking to the page through page
func NewDetector(page Requester) *Detector {
	return &Detector{page: page, now: time.Now}
}

// SetClock replaces the clock used for the placeholder meeting
func (d *Detector) SetClock(now func() time.Time) {
	d.now = now
}

// IsCalendarURL reports whether rawURL points at Google Calendar
func IsCalendarURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.Contains(rawURL, calendarHost)
	}
	return strings.EqualFold(u.Hostname(), calendarHost)
}

// Detect returns the meeting on pageURL. A calendar page that yields nothing, or does not
// answer, gets a placeholder meeting so the user can still generate a brief; the reason
// is kept on the Detection.
func (d *Detector) Detect(ctx context.Context, pageURL string) Detection {
	if !IsCalendarURL(pageURL) {
		return Detection{Message: NoMeetingMessage}
	}

	reply, err := d.page.Request(ctx, messaging.Message{Action: messaging.ActionGetMeetingData})
	switch {
	case err != nil:
		logging.From(ctx).Debug("page did not answer, using placeholder", "error", err)
		return d.fallback(goerr.Wrap(err, "page request failed"))
	case reply.Meeting == nil:
		return d.fallback(domain.ErrMeetingNotFound)
	default:
		return Detection{Meeting: reply.Meeting, Source: SourcePage}
	}
}

func (d *Detector) fallback(reason error) Detection {
	m := PlaceholderMeeting(d.now())
	return Detection{Meeting: &m, Source: SourceFallback, Reason: reason}
}

// PlaceholderMeeting is the editable meeting offered when nothing could be read from the page
func PlaceholderMeeting(now time.Time) domain.MeetingRecord {
	return domain.MeetingRecord{
		Title:       domain.DefaultTitle,
		Date:        now.Format("2006-01-02"),
		Time:        "09:00",
		Attendees:   domain.AttendeeList{},
		Description: "Meeting details could not be read from the calendar page",
	}
}
