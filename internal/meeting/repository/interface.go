package repository

import "meetingprep-ai/internal/meeting/domain"

// MeetingRepository persists meetings and their briefs
type MeetingRepository interface {
	// CreateWithBrief stores a new meeting and its first brief atomically
	CreateWithBrief(meeting *domain.Meeting, brief *domain.Brief) error
	// AddBrief attaches another brief to an existing meeting
	AddBrief(brief *domain.Brief) error
	FindByID(userID, meetingID string) (*domain.Meeting, error)
	// FindBySlot returns the user's meeting with the same title, date and time, if any
	FindBySlot(userID, title, date, clock string) (*domain.Meeting, error)
	// ListWithLatestBrief returns the user's meetings, newest meeting date first,
	// each paired with its most recent brief
	ListWithLatestBrief(userID string, limit int) ([]domain.MeetingWithBrief, error)
	// Delete removes the meeting and, by cascade, its briefs. Reports whether a row was deleted.
	Delete(userID, meetingID string) (bool, error)
}
