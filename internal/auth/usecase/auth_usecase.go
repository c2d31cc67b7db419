package usecase

import (
	"context"
	"time"

	authdomain "meetingprep-ai/internal/auth/domain"
	authdto "meetingprep-ai/internal/auth/dto"
	"meetingprep-ai/internal/auth/repository"
	"meetingprep-ai/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/idtoken"
)

var (
	ErrInvalidCredentials = goerr.New("invalid email or password")
	ErrEmailTaken         = goerr.New("email already registered")
	ErrGoogleAccount      = goerr.New("please use Google Sign-In for this account")
	ErrInvalidToken       = goerr.New("invalid or expired token")
)

// IDTokenValidator verifies a Google ID token for the given audience
type IDTokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo      repository.UserRepository
	fcmTokenRepo  repository.DeviceTokenRepository
	config        *config.Config
	validateToken IDTokenValidator
	now           func() time.Time
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, fcmTokenRepo repository.DeviceTokenRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:      userRepo,
		fcmTokenRepo:  fcmTokenRepo,
		config:        cfg,
		validateToken: idtoken.Validate,
		now:           time.Now,
	}
}

func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up user")
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.Provider != "email" {
		return nil, ErrGoogleAccount
	}

	if !passwordMatches(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return u.generateTokens(user)
}

func (u *authUsecase) Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error) {
	existing, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up user")
	}

	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hash password")
	}

	user := &authdomain.User{
		Email:    req.Email,
		Password: hashedPassword,
		Name:     req.Name,
		Provider: "email",
	}

	if err := u.userRepo.Create(user); err != nil {
		return nil, goerr.Wrap(err, "failed to create user")
	}

	return u.generateTokens(user)
}

func (u *authUsecase) GoogleSignIn(ctx context.Context, token string) (*authdto.TokenResponse, error) {
	payload, err := u.validateToken(ctx, token, u.config.GoogleClientID)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "failed to verify Google token", goerr.V("cause", err.Error()))
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return nil, goerr.Wrap(ErrInvalidToken, "google email is not verified")
	}

	user, err := u.userRepo.UpsertGoogleProfile(email, name, picture)
	if err != nil {
		return nil, err
	}
	return u.generateTokens(user)
}

func (u *authUsecase) RefreshToken(refreshToken string) (*authdto.TokenResponse, error) {
	userID, err := u.parseUserID(refreshToken)
	if err != nil {
		return nil, err
	}

	// Single use: the presented token is gone whether or not it was still valid
	stored, err := u.userRepo.ConsumeRefreshToken(refreshToken, u.now())
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.UserID != userID {
		return nil, ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up user")
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	return u.generateTokens(user)
}

func (u *authUsecase) Logout(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return u.userRepo.DeleteRefreshToken(refreshToken)
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	userID, err := u.parseUserID(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up user")
	}

	if user == nil {
		return nil, ErrInvalidToken
	}

	return user, nil
}

func (u *authUsecase) RegisterFCMToken(userID string, req *authdto.RegisterFCMTokenRequest) error {
	if u.fcmTokenRepo == nil {
		return goerr.New("push notifications are not configured")
	}
	return u.fcmTokenRepo.Register(userID, req.Token, req.DeviceInfo)
}

func (u *authUsecase) UnregisterFCMToken(token string) error {
	if u.fcmTokenRepo == nil {
		return nil
	}
	return u.fcmTokenRepo.Unregister(token)
}

func (u *authUsecase) parseUserID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, goerr.New("unexpected signing method", goerr.V("alg", token.Header["alg"]))
		}
		return []byte(u.config.JWTSecret), nil
	}, jwt.WithTimeFunc(u.now))

	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (u *authUsecase) generateTokens(user *authdomain.User) (*authdto.TokenResponse, error) {
	accessToken, err := u.signToken(jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
	}, u.config.JWTAccessExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.signToken(jwt.MapClaims{
		"user_id":  user.ID,
		"token_id": uuid.New().String(),
	}, u.config.JWTRefreshExpiry)
	if err != nil {
		return nil, err
	}

	refreshTokenEntity := &authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: u.now().Add(u.config.JWTRefreshExpiry),
	}
	if err := u.userRepo.SaveRefreshToken(refreshTokenEntity); err != nil {
		return nil, goerr.Wrap(err, "failed to store refresh token")
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (u *authUsecase) signToken(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	now := u.now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(u.config.JWTSecret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token")
	}
	return signed, nil
}
