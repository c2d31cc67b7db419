package repository

import (
	"errors"
	"time"

	"meetingprep-ai/internal/subscription/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository defines persistence for user subscriptions
type SubscriptionRepository interface {
	FindByUserID(userID string) (*domain.Subscription, error)
	// Create inserts the subscription, or leaves an existing row for the same user untouched
	Create(sub *domain.Subscription) error
	Save(sub *domain.Subscription) error
	IncrementUsage(userID string) error
	FindExpired(now time.Time, limit int) ([]domain.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) FindByUserID(userID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) Create(sub *domain.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(sub).Error
}

func (r *subscriptionRepository) Save(sub *domain.Subscription) error {
	sub.UpdatedAt = time.Now()
	return r.db.Save(sub).Error
}

// IncrementUsage bumps the counter in SQL so concurrent generations are not lost
func (r *subscriptionRepository) IncrementUsage(userID string) error {
	return r.db.Model(&domain.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"briefs_used_this_month": gorm.Expr("briefs_used_this_month + 1"),
			"updated_at":             time.Now(),
		}).Error
}

func (r *subscriptionRepository) FindExpired(now time.Time, limit int) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	err := r.db.Where("current_period_end <= ?", now).
		Order("current_period_end ASC").
		Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
