package repository

import (
	"errors"
	"time"

	"meetingprep-ai/internal/meeting/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type meetingRepository struct {
	db *gorm.DB
}

func NewMeetingRepository(db *gorm.DB) MeetingRepository {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) CreateWithBrief(meeting *domain.Meeting, brief *domain.Brief) error {
	now := time.Now()
	if meeting.ID == "" {
		meeting.ID = uuid.New().String()
	}
	meeting.CreatedAt, meeting.UpdatedAt = now, now

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Briefs").Create(meeting).Error; err != nil {
			return err
		}
		brief.MeetingID = meeting.ID
		brief.UserID = meeting.UserID
		return createBrief(tx, brief, now)
	})
}

func (r *meetingRepository) AddBrief(brief *domain.Brief) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := createBrief(tx, brief, now); err != nil {
			return err
		}
		return tx.Model(&domain.Meeting{}).
			Where("id = ? AND user_id = ?", brief.MeetingID, brief.UserID).
			Update("updated_at", now).Error
	})
}

func createBrief(tx *gorm.DB, brief *domain.Brief, now time.Time) error {
	if brief.ID == "" {
		brief.ID = uuid.New().String()
	}
	brief.CreatedAt, brief.UpdatedAt = now, now
	return tx.Create(brief).Error
}

func (r *meetingRepository) FindByID(userID, meetingID string) (*domain.Meeting, error) {
	var meeting domain.Meeting
	err := r.db.Where("id = ? AND user_id = ?", meetingID, userID).First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

func (r *meetingRepository) FindBySlot(userID, title, date, clock string) (*domain.Meeting, error) {
	var meeting domain.Meeting
	err := r.db.
		Where("user_id = ? AND title = ? AND date = ? AND time = ?", userID, title, date, clock).
		Order("updated_at DESC").
		First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

func (r *meetingRepository) ListWithLatestBrief(userID string, limit int) ([]domain.MeetingWithBrief, error) {
	var meetings []domain.Meeting
	err := r.db.
		Preload("Briefs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&meetings).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.MeetingWithBrief, 0, len(meetings))
	for i := range meetings {
		m := &meetings[i]
		item := domain.MeetingWithBrief{Meeting: m}
		if len(m.Briefs) > 0 {
			b := m.Briefs[0]
			item.Brief = &b
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *meetingRepository) Delete(userID, meetingID string) (bool, error) {
	// Briefs are removed by the ON DELETE CASCADE constraint on briefs.meeting_id
	res := r.db.Where("id = ? AND user_id = ?", meetingID, userID).Delete(&domain.Meeting{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
