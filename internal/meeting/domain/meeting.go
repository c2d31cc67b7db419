package domain

import (
	"time"

	"github.com/lib/pq"
)

// Meeting is a persisted meeting owned by a user
type Meeting struct {
	ID              string         `json:"id" gorm:"primaryKey"`
	UserID          string         `json:"user_id" gorm:"index;not null"`
	Title           string         `json:"title" gorm:"not null"`
	Date            string         `json:"date" gorm:"index"` // YYYY-MM-DD
	Time            string         `json:"time"`              // HH:MM
	Attendees       pq.StringArray `json:"attendees" gorm:"type:text[]"`
	Company         string         `json:"company,omitempty"`
	MeetingType     string         `json:"meeting_type" gorm:"default:general"`
	Location        string         `json:"location,omitempty"`
	Description     string         `json:"description,omitempty" gorm:"type:text"`
	CalendarEventID string         `json:"calendar_event_id,omitempty" gorm:"index"`
	Briefs          []Brief        `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// Record converts the stored meeting back to the wire shape
func (m *Meeting) Record() MeetingRecord {
	attendees := make(AttendeeList, len(m.Attendees))
	copy(attendees, m.Attendees)
	return MeetingRecord{
		ID:          m.ID,
		Title:       m.Title,
		Date:        m.Date,
		Time:        m.Time,
		Attendees:   attendees,
		Description: m.Description,
		Location:    m.Location,
	}
}

// Brief stores a generated brief; deleting the meeting cascades to its briefs
type Brief struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	MeetingID        string    `json:"meeting_id" gorm:"index;not null"`
	UserID           string    `json:"user_id" gorm:"index;not null"`
	Content          string    `json:"content" gorm:"type:text"`
	BriefType        string    `json:"brief_type" gorm:"default:standard"`
	AIModel          string    `json:"ai_model"`
	GenerationTimeMs *int64    `json:"generation_time_ms,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Brief) TableName() string {
	return "briefs"
}

// Wire converts the stored brief to the wire shape
func (b *Brief) Wire() BriefContent {
	created := b.CreatedAt
	return BriefContent{
		ID:        b.ID,
		Content:   b.Content,
		AIModel:   b.AIModel,
		CreatedAt: &created,
	}
}

// MeetingWithBrief pairs a meeting with its most recent brief (nil when none exists)
type MeetingWithBrief struct {
	Meeting *Meeting
	Brief   *Brief
}

// Record converts the pair to the wire shape the extension lists and caches.
// Meetings without a brief are dated by their creation time.
func (mb MeetingWithBrief) Record() BriefRecord {
	rec := BriefRecord{
		Meeting:     mb.Meeting.Record(),
		MeetingID:   mb.Meeting.ID,
		GeneratedAt: mb.Meeting.CreatedAt,
	}
	if mb.Brief != nil {
		rec.Brief = mb.Brief.Wire()
		rec.GeneratedAt = mb.Brief.CreatedAt
	}
	return rec
}
