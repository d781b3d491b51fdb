package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/events"
	"github.com/Skotchmaster/grocery_shop/internal/hash"
	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/tokens"
)

const minPasswordLen = 6

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Events        events.Publisher
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Address  string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ErrValidation)
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
		Address:      strings.TrimSpace(in.Address),
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("user already exists: %w", ErrConflict)
		}
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUser, user.ID.String(), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
	})
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*tokens.Pair, *models.RefreshToken, error) {
	now := time.Now()
	accessExp := now.Add(tokens.AccessTTL)
	refreshExp := now.Add(tokens.RefreshTTL)

	access, err := tokens.SignAccessToken(user.ID, user.Role, s.JWTSecret, accessExp)
	if err != nil {
		return nil, nil, err
	}
	refresh, jti, err := tokens.SignRefreshToken(user.ID, s.RefreshSecret, refreshExp)
	if err != nil {
		return nil, nil, err
	}

	stored := &models.RefreshToken{
		Token:     hash.Sha256Hex(refresh),
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}
	pair := &tokens.Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		Role:         user.Role,
	}
	return pair, stored, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	user, err := s.Repo.UserExist(ctx, strings.TrimSpace(email), password)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCredentials) {
			l.Warn("login_failed", "reason", "invalid email or password")
			return nil, nil, fmt.Errorf("invalid email or password: %w", ErrUnauthenticated)
		}
		return nil, nil, err
	}

	pair, stored, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, stored); err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued. Reusing a rotated token fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	if refreshToken == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthenticated)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token subject: %w", ErrUnauthenticated)
	}

	stored, err := s.Repo.FindRefreshByJTI(ctx, claims.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("refresh token not found: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if stored.Token != hash.Sha256Hex(refreshToken) || stored.UserID != userID {
		return nil, fmt.Errorf("refresh token mismatch: %w", ErrUnauthenticated)
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user not found: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}

	pair, next, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, next); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) {
			return nil, fmt.Errorf("refresh token expired or revoked: %w", ErrUnauthenticated)
		}
		return nil, err
	}
	return pair, nil
}

func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefreshToken(ctx, refreshToken)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return user, err
}

type ProfileUpdate struct {
	Name         *string
	Address      *string
	ProfileImage *string
}

// UpdateProfile returns the updated user and the image URL it replaced, if any.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*models.User, string, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, "", fmt.Errorf("name must not be empty: %w", ErrValidation)
	}

	before, err := s.Me(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	user, err := s.Repo.UpdateUserProfile(ctx, userID, in.Name, in.Address, in.ProfileImage)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("user not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, "", err
	}

	replaced := ""
	if in.ProfileImage != nil && before.ProfileImage != "" && before.ProfileImage != *in.ProfileImage {
		replaced = before.ProfileImage
	}
	return user, replaced, nil
}
