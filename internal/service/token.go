package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/pkg/jwt"
)

// TokenRepository defines the interface for refresh token storage
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*model.RefreshToken, error)
	ConsumeRefreshToken(ctx context.Context, hash string) (bool, error)
	RevokeAllUserTokens(ctx context.Context, userID string) error
	DeleteExpiredTokens(ctx context.Context) error
}

// TokenService issues access tokens and rotates refresh tokens
type TokenService struct {
	jwtService      *jwt.Service
	tokenRepo       TokenRepository
	refreshDuration time.Duration
}

// TokenServiceConfig holds configuration for the token service
type TokenServiceConfig struct {
	JWTService      *jwt.Service
	TokenRepo       TokenRepository
	RefreshDuration time.Duration // Default: 30 days
}

// NewTokenService creates a new token service
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	if cfg.RefreshDuration == 0 {
		cfg.RefreshDuration = 30 * 24 * time.Hour
	}

	return &TokenService{
		jwtService:      cfg.JWTService,
		tokenRepo:       cfg.TokenRepo,
		refreshDuration: cfg.RefreshDuration,
	}
}

// GenerateTokenPair creates a new access token and refresh token for a user
func (s *TokenService) GenerateTokenPair(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	accessToken, err := s.jwtService.Sign(jwt.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	// Only the hash is stored
	storedToken := &model.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: time.Now().Add(s.refreshDuration),
	}
	if err := s.tokenRepo.CreateRefreshToken(ctx, storedToken); err != nil {
		return nil, err
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.jwtService.GetExpiration().Seconds()),
	}, nil
}

// LookupRefreshToken returns the stored token for a raw refresh token
func (s *TokenService) LookupRefreshToken(ctx context.Context, refreshToken string) (*model.RefreshToken, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	stored, err := s.tokenRepo.GetRefreshTokenByHash(ctx, hashToken(refreshToken))
	if err != nil || stored == nil {
		return nil, ErrInvalidRefreshToken
	}
	return stored, nil
}

// RefreshTokens validates a refresh token and issues new tokens.
// Tokens are single use: presenting a revoked token revokes every token
// the user holds.
func (s *TokenService) RefreshTokens(ctx context.Context, refreshToken string, user *model.User) (*model.TokenPair, error) {
	storedToken, err := s.LookupRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if storedToken.Revoked {
		s.revokeOnReuse(ctx, storedToken.UserID)
		return nil, ErrRefreshTokenRevoked
	}

	if time.Now().After(storedToken.ExpiresAt) {
		return nil, ErrRefreshTokenExpired
	}

	consumed, err := s.tokenRepo.ConsumeRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if !consumed {
		// another request rotated this token between the lookup and now
		s.revokeOnReuse(ctx, storedToken.UserID)
		return nil, ErrRefreshTokenRevoked
	}

	return s.GenerateTokenPair(ctx, user)
}

func (s *TokenService) revokeOnReuse(ctx context.Context, userID string) {
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		slog.Error("failed to revoke tokens after refresh token reuse",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}
}

// ValidateAccessToken validates an access token and returns the claims
func (s *TokenService) ValidateAccessToken(token string) (*jwt.Claims, error) {
	return s.jwtService.Validate(token)
}

// RevokeAllUserTokens revokes all refresh tokens for a user
func (s *TokenService) RevokeAllUserTokens(ctx context.Context, userID string) error {
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID)
}

// CleanupExpired deletes expired and long-revoked refresh tokens
func (s *TokenService) CleanupExpired(ctx context.Context) error {
	return s.tokenRepo.DeleteExpiredTokens(ctx)
}

// generateRefreshToken creates a 256-bit random token
func generateRefreshToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// hashToken creates a SHA-256 hash of the token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
