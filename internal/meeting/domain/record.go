package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Display defaults used wherever a meeting field is missing
const (
	DefaultTitle         = "Untitled Meeting"
	DefaultDate          = "Not specified"
	DefaultAttendees     = "None listed"
	DefaultViewerDate    = "Date not specified"
	DefaultViewerTime    = "Time not specified"
	DefaultViewerPeople  = "No attendees listed"
	DefaultBriefContent  = "No brief content available"
	DefaultNoAttendeeTag = "No attendees"
)

// MeetingRecord is the loosely-typed meeting shape produced by extraction or typed into a form.
// Every field may be empty.
type MeetingRecord struct {
	ID          string       `json:"id,omitempty"`
	Title       string       `json:"title"`
	Date        string       `json:"date"`
	Time        string       `json:"time"`
	Attendees   AttendeeList `json:"attendees"`
	Description string       `json:"description,omitempty"`
	Location    string       `json:"location,omitempty"`
}

// TitleOrDefault returns the title, or DefaultTitle when it is blank
func (m MeetingRecord) TitleOrDefault() string {
	if t := strings.TrimSpace(m.Title); t != "" {
		return t
	}
	return DefaultTitle
}

// AttendeeList is an ordered list of attendee strings (emails, names or raw fragments).
// It decodes from either a JSON array or a single JSON string.
type AttendeeList []string

func (a *AttendeeList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*a = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*a = WrapAttendee(single)
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	list := make(AttendeeList, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			list = append(list, s)
		}
	}
	*a = list
	return nil
}

func (a AttendeeList) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// Join renders the list for display, returning fallback when empty
func (a AttendeeList) Join(fallback string) string {
	if len(a) == 0 {
		return fallback
	}
	return strings.Join(a, ", ")
}

// WrapAttendee turns a single attendee value into a one-element list
func WrapAttendee(value string) AttendeeList {
	if strings.TrimSpace(value) == "" {
		return AttendeeList{}
	}
	return AttendeeList{value}
}

// BriefContent is the generated brief text. The wire format is either a bare string or an
// object carrying a content field; both decode into this type.
type BriefContent struct {
	ID        string     `json:"id,omitempty"`
	Content   string     `json:"content"`
	AIModel   string     `json:"ai_model,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (b *BriefContent) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*b = BriefContent{}
		return nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*b = BriefContent{Content: text}
		return nil
	}

	type alias BriefContent
	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*b = BriefContent(out)
	return nil
}

// Text returns the brief body
func (b BriefContent) Text() string {
	return b.Content
}

// BriefRecord is the unit of persistence and display on the client side
type BriefRecord struct {
	Meeting     MeetingRecord `json:"meeting"`
	Brief       BriefContent  `json:"brief"`
	GeneratedAt time.Time     `json:"generated_at"`
	MeetingID   string        `json:"meetingId,omitempty"`
}

// UnmarshalJSON tolerates a missing or unparseable generated_at, which decodes as the zero time
func (r *BriefRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Meeting     MeetingRecord `json:"meeting"`
		Brief       BriefContent  `json:"brief"`
		GeneratedAt string        `json:"generated_at"`
		MeetingID   string        `json:"meetingId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	generated, err := time.Parse(time.RFC3339Nano, raw.GeneratedAt)
	if err != nil {
		generated = time.Time{}
	}
	*r = BriefRecord{
		Meeting:     raw.Meeting,
		Brief:       raw.Brief,
		GeneratedAt: generated,
		MeetingID:   raw.MeetingID,
	}
	return nil
}

// RemoteID returns the identifier the remote store knows this record by, or "" for
// records that only exist locally.
func (r BriefRecord) RemoteID() string {
	if r.MeetingID != "" {
		return r.MeetingID
	}
	return r.Meeting.ID
}

// HasRemoteID reports whether the record can be deleted remotely
func (r BriefRecord) HasRemoteID() bool {
	return r.RemoteID() != ""
}

// IsUpcoming reports whether the meeting date is today or later.
// Meetings with an unparseable date count as upcoming.
func (r BriefRecord) IsUpcoming(now time.Time) bool {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(r.Meeting.Date), now.Location())
	if err != nil {
		return true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !d.Before(today)
}
