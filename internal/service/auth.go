package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookradio/bookradio-server/internal/auth"
	"github.com/bookradio/bookradio-server/internal/domain"
	domainerrors "github.com/bookradio/bookradio-server/internal/errors"
	"github.com/bookradio/bookradio-server/internal/id"
	"github.com/bookradio/bookradio-server/internal/media/avatars"
	"github.com/bookradio/bookradio-server/internal/store"
	"github.com/bookradio/bookradio-server/internal/validation"
)

// AuthService handles account registration, login, token verification,
// and profile management.
type AuthService struct {
	store        *store.Store
	tokenService *auth.TokenService
	avatars      *avatars.Storage
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewAuthService creates an authentication service.
func NewAuthService(s *store.Store, tokens *auth.TokenService, av *avatars.Storage, v *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        s,
		tokenService: tokens,
		avatars:      av,
		validator:    v,
		logger:       logger,
	}
}

// RegisterRequest contains new account data.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Username string `json:"username" validate:"required,min=3,max=64"`
}

// LoginRequest contains account credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the access token and the account profile.
type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      domain.Profile `json:"user"`
}

// Register creates a new account and signs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.New()
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
		Username:     strings.TrimSpace(req.Username),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Users.Create(ctx, userID, user); err != nil {
		if domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User registered", "user_id", userID, "email", user.Email)
	}

	return s.issueToken(user)
}

// Login verifies credentials and returns a fresh access token.
// Unknown emails and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.Users.GetByIndex(ctx, "email", req.Email)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID)
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokenService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &AuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenService.TokenDuration()),
		User:      user.Profile(s.avatarURL(user)),
	}, nil
}

// VerifyToken validates an access token and returns its claims.
func (s *AuthService) VerifyToken(tokenString string) (*auth.Claims, error) {
	claims, err := s.tokenService.VerifyToken(tokenString)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// GetProfile returns the profile for a user ID.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile(s.avatarURL(user))
	return &profile, nil
}

// ProfileUpdate carries the editable profile fields. Nil pointers leave
// the current value unchanged.
type ProfileUpdate struct {
	Username *string
	Bio      *string

	// Avatar image bytes, when a new avatar was uploaded.
	Avatar []byte

	// Changing the password requires the current one.
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile applies a profile update and returns the new profile.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.Profile, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		name := strings.TrimSpace(*update.Username)
		if len(name) < 3 {
			return nil, domainerrors.Validation("username must be at least 3 characters")
		}
		if len(name) > 64 {
			return nil, domainerrors.Validation("username must not exceed 64 characters")
		}
		user.Username = name
	}

	if update.Bio != nil {
		user.Bio = strings.TrimSpace(*update.Bio)
	}

	if update.NewPassword != "" {
		ok, err := auth.VerifyPassword(user.PasswordHash, update.CurrentPassword)
		if err != nil {
			return nil, fmt.Errorf("verify password: %w", err)
		}
		if !ok {
			return nil, domainerrors.InvalidCredentials("current password is incorrect")
		}
		if len(update.NewPassword) < 8 {
			return nil, domainerrors.Validation("password must be at least 8 characters")
		}
		user.PasswordHash, err = auth.HashPassword(update.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if len(update.Avatar) > 0 {
		filename, blur, err := s.avatars.Save(user.ID, update.Avatar)
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "avatar must be a valid JPEG, PNG, GIF, or WebP image")
		}
		user.AvatarPath = filename
		user.AvatarBlur = blur
	}

	user.UpdatedAt = time.Now()
	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Profile updated", "user_id", userID)
	}

	profile := user.Profile(s.avatarURL(user))
	return &profile, nil
}

// avatarURL maps a stored avatar file to its public serving path.
func (s *AuthService) avatarURL(user *domain.User) string {
	if user.AvatarPath == "" {
		return ""
	}
	return "/uploads/avatars/" + user.AvatarPath
}
