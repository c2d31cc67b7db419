package usecase

import (
	"context"

	authdomain "meetingprep-ai/internal/auth/domain"
	authdto "meetingprep-ai/internal/auth/dto"
)

// AuthUsecase covers account sign-in for the extension and device registration for pushes
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	GoogleSignIn(ctx context.Context, idToken string) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)

	RegisterFCMToken(userID string, req *authdto.RegisterFCMTokenRequest) error
	UnregisterFCMToken(token string) error
}
