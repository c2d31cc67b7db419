package repository

import (
	"time"

	authdomain "meetingprep-ai/internal/auth/domain"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository keeps the push tokens used for "brief ready" notifications
type DeviceTokenRepository interface {
	Register(userID, token, deviceInfo string) error
	TokensForUser(userID string) ([]string, error)
	Unregister(tokens ...string) error
}

type deviceTokenRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &deviceTokenRepository{db: db, now: time.Now}
}

// Register binds a token to a user. A token seen before moves to the new user,
// since a browser profile can sign in with another account.
func (r *deviceTokenRepository) Register(userID, token, deviceInfo string) error {
	now := r.now()
	row := &authdomain.FCMToken{
		ID:         uuid.New().String(),
		UserID:     userID,
		Token:      token,
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_info", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return goerr.Wrap(err, "failed to register device token", goerr.V("user_id", userID))
	}
	return nil
}

func (r *deviceTokenRepository) TokensForUser(userID string) ([]string, error) {
	var tokens []string
	err := r.db.Model(&authdomain.FCMToken{}).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load device tokens", goerr.V("user_id", userID))
	}
	return tokens, nil
}

func (r *deviceTokenRepository) Unregister(tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	if err := r.db.Where("token IN ?", tokens).Delete(&authdomain.FCMToken{}).Error; err != nil {
		return goerr.Wrap(err, "failed to unregister device tokens", goerr.V("count", len(tokens)))
	}
	return nil
}
