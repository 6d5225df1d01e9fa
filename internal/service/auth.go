package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
	"golang.org/x/crypto/bcrypt"
)

const (
	// bcrypt cost factor (10-14 recommended for production)
	bcryptCost = 12
)

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	TouchLogin(ctx context.Context, userID string) error
}

// CoupleOnboarder prepares a new couple account's planning data
type CoupleOnboarder interface {
	SetupCouple(ctx context.Context, userID string) error
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo     UserRepository
	tokenService *TokenService
	onboarding   CoupleOnboarder
	events       *EventHub
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	UserRepo     UserRepository
	TokenService *TokenService
	Onboarding   CoupleOnboarder // optional
	Events       *EventHub       // optional
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	return &AuthService{
		userRepo:     cfg.UserRepo,
		tokenService: cfg.TokenService,
		onboarding:   cfg.Onboarding,
		events:       cfg.Events,
	}
}

// Register creates a couple or vendor account with email/password
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	role := req.AccountType
	switch role {
	case "":
		role = model.UserRoleCouple
	case model.UserRoleCouple, model.UserRoleVendor:
	default:
		return nil, ErrInvalidAccountType
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:     email,
		Hash:      &hash,
		Firstname: trimmedPtr(req.Firstname),
		Lastname:  trimmedPtr(req.Lastname),
		Role:      role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent sign up for the same email
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	// Profile, budget and timeline are also created on first use, so a
	// failure here does not fail the sign up
	if role == model.UserRoleCouple && s.onboarding != nil {
		if err := s.onboarding.SetupCouple(ctx, user.ID); err != nil {
			slog.Warn("couple onboarding failed",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()))
		}
	}

	tokenPair, err := s.tokenService.GenerateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(user.ID, EventSignedIn)
	return &model.AuthResponse{User: user, Tokens: tokenPair}, nil
}

// Login authenticates a user with email/password. Unknown email and wrong
// password return the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Hash == nil || *user.Hash == "" {
		return nil, ErrInvalidCredentials
	}

	if !checkPassword(req.Password, *user.Hash) {
		return nil, ErrInvalidCredentials
	}

	tokenPair, err := s.tokenService.GenerateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to record login", slog.String("user_id", user.ID), slog.String("error", err.Error()))
	}

	s.publish(user.ID, EventSignedIn)
	return &model.AuthResponse{User: user, Tokens: tokenPair}, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// RefreshTokens validates a refresh token and issues new tokens
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	storedToken, err := s.tokenService.LookupRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.tokenService.RefreshTokens(ctx, refreshToken, user)
	if err != nil {
		return nil, err
	}

	s.publish(user.ID, EventRefreshed)
	return pair, nil
}

// Logout revokes the user's refresh tokens
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.tokenService.RevokeAllUserTokens(ctx, userID); err != nil {
		return err
	}
	s.publish(userID, EventSignedOut)
	return nil
}

func (s *AuthService) publish(userID string, eventType EventType) {
	if s.events == nil {
		return
	}
	s.events.SendToUser(userID, eventType, map[string]string{"user_id": userID})
}

// Helper functions

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	n := utf8.RuneCountInString(password)
	if n < model.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if n > model.MaxPasswordLength || len(password) > model.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	return model.IsValidEmail(email)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
