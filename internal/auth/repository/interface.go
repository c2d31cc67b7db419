package repository

import (
	"time"

	authdomain "meetingprep-ai/internal/auth/domain"
)

// UserRepository persists accounts and the refresh tokens issued to them
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByEmail(email string) (*authdomain.User, error)
	FindByID(id string) (*authdomain.User, error)
	// UpsertGoogleProfile creates the account on first Google sign-in, otherwise refreshes
	// its display name and avatar. Email accounts keep their provider.
	UpsertGoogleProfile(email, name, avatarURL string) (*authdomain.User, error)

	SaveRefreshToken(token *authdomain.RefreshToken) error
	// ConsumeRefreshToken deletes token and returns it when it was stored and not expired at now
	ConsumeRefreshToken(token string, now time.Time) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(token string) error
}
