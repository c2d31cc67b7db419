package repository

import (
	"errors"
	"strings"
	"time"

	authdomain "meetingprep-ai/internal/auth/domain"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"
)

type userRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// first runs q and maps "no rows" to (nil, nil)
func first[T any](q *gorm.DB) (*T, error) {
	var row T
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *userRepository) Create(user *authdomain.User) error {
	return r.create(r.db, user)
}

func (r *userRepository) create(tx *gorm.DB, user *authdomain.User) error {
	now := r.now()
	user.ID = uuid.New().String()
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt, user.UpdatedAt = now, now
	if err := tx.Create(user).Error; err != nil {
		return goerr.Wrap(err, "failed to create user", goerr.V("email", user.Email))
	}
	return nil
}

func (r *userRepository) FindByEmail(email string) (*authdomain.User, error) {
	user, err := first[authdomain.User](r.db.Where("email = ?", normalizeEmail(email)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find user by email")
	}
	return user, nil
}

func (r *userRepository) FindByID(id string) (*authdomain.User, error) {
	user, err := first[authdomain.User](r.db.Where("id = ?", id))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find user", goerr.V("user_id", id))
	}
	return user, nil
}

func (r *userRepository) UpsertGoogleProfile(email, name, avatarURL string) (*authdomain.User, error) {
	var user *authdomain.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		existing, err := first[authdomain.User](tx.Where("email = ?", normalizeEmail(email)))
		if err != nil {
			return err
		}
		if existing == nil {
			user = &authdomain.User{Email: email, Name: name, AvatarURL: avatarURL, Provider: "google"}
			return r.create(tx, user)
		}

		existing.Name, existing.AvatarURL, existing.UpdatedAt = name, avatarURL, r.now()
		user = existing
		return tx.Model(existing).Select("name", "avatar_url", "updated_at").Updates(existing).Error
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert google profile", goerr.V("email", email))
	}
	return user, nil
}

// SaveRefreshToken stores token and prunes the user's expired ones. Other devices keep theirs.
func (r *userRepository) SaveRefreshToken(token *authdomain.RefreshToken) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND expires_at < ?", token.UserID, r.now()).
			Delete(&authdomain.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return goerr.Wrap(err, "failed to save refresh token", goerr.V("user_id", token.UserID))
	}
	return nil
}

func (r *userRepository) ConsumeRefreshToken(token string, now time.Time) (*authdomain.RefreshToken, error) {
	var consumed *authdomain.RefreshToken
	err := r.db.Transaction(func(tx *gorm.DB) error {
		stored, err := first[authdomain.RefreshToken](tx.Where("token = ?", token))
		if err != nil || stored == nil {
			return err
		}
		// Deleted under the transaction, so two concurrent refreshes cannot both succeed
		res := tx.Where("token = ?", token).Delete(&authdomain.RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 && stored.ExpiresAt.After(now) {
			consumed = stored
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to consume refresh token")
	}
	return consumed, nil
}

func (r *userRepository) DeleteRefreshToken(token string) error {
	if err := r.db.Where("token = ?", token).Delete(&authdomain.RefreshToken{}).Error; err != nil {
		return goerr.Wrap(err, "failed to delete refresh token")
	}
	return nil
}
