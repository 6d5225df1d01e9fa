package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/pkg/jwt"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockTokenRepo struct {
	createRefreshTokenFunc    func(ctx context.Context, token *model.RefreshToken) error
	getRefreshTokenByHashFunc func(ctx context.Context, hash string) (*model.RefreshToken, error)
	consumeRefreshTokenFunc   func(ctx context.Context, hash string) (bool, error)
	revokeAllUserTokensFunc   func(ctx context.Context, userID string) error
	deleteExpiredTokensFunc   func(ctx context.Context) error
}

func (m *mockTokenRepo) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	if m.createRefreshTokenFunc != nil {
		return m.createRefreshTokenFunc(ctx, token)
	}
	return nil
}

func (m *mockTokenRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	if m.getRefreshTokenByHashFunc != nil {
		return m.getRefreshTokenByHashFunc(ctx, hash)
	}
	return nil, nil
}

func (m *mockTokenRepo) ConsumeRefreshToken(ctx context.Context, hash string) (bool, error) {
	if m.consumeRefreshTokenFunc != nil {
		return m.consumeRefreshTokenFunc(ctx, hash)
	}
	return true, nil
}

func (m *mockTokenRepo) RevokeAllUserTokens(ctx context.Context, userID string) error {
	if m.revokeAllUserTokensFunc != nil {
		return m.revokeAllUserTokensFunc(ctx, userID)
	}
	return nil
}

func (m *mockTokenRepo) DeleteExpiredTokens(ctx context.Context) error {
	if m.deleteExpiredTokensFunc != nil {
		return m.deleteExpiredTokensFunc(ctx)
	}
	return nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func createTestJWTService(t *testing.T) *jwt.Service {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	return jwt.NewTestService(privateKey, "test-issuer", time.Hour)
}

func storedTokenFor(raw, userID string, expires time.Time, revoked bool) func(ctx context.Context, hash string) (*model.RefreshToken, error) {
	want := hashToken(raw)
	return func(ctx context.Context, hash string) (*model.RefreshToken, error) {
		if hash != want {
			return nil, nil
		}
		return &model.RefreshToken{UserID: userID, TokenHash: want, ExpiresAt: expires, Revoked: revoked}, nil
	}
}

// ============================================================================
// hashToken / generateRefreshToken Tests
// ============================================================================

func TestHashToken_Deterministic(t *testing.T) {
	t.Parallel()

	if hashToken("refresh-a") != hashToken("refresh-a") {
		t.Error("hash should be deterministic")
	}
	if hashToken("refresh-a") == hashToken("refresh-b") {
		t.Error("different tokens should have different hashes")
	}
	if len(hashToken("x")) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(hashToken("x")))
	}
}

func TestGenerateRefreshToken_UniqueAndHex(t *testing.T) {
	t.Parallel()

	a, err := generateRefreshToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := generateRefreshToken()

	if a == b {
		t.Error("tokens should be unique")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 characters, got %d", len(a))
	}
}

// ============================================================================
// GenerateTokenPair Tests
// ============================================================================

func TestNewTokenService_DefaultDuration(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(TokenServiceConfig{})
	if svc.refreshDuration != 30*24*time.Hour {
		t.Errorf("expected 30 day default, got %v", svc.refreshDuration)
	}
}

func TestGenerateTokenPair_CarriesRoleClaim(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var stored *model.RefreshToken
	svc := NewTokenService(TokenServiceConfig{
		JWTService: createTestJWTService(t),
		TokenRepo: &mockTokenRepo{
			createRefreshTokenFunc: func(ctx context.Context, token *model.RefreshToken) error {
				stored = token
				return nil
			},
		},
		RefreshDuration: 7 * 24 * time.Hour,
	})

	user := &model.User{ID: "user:v1", Email: "vendor@example.com", Role: model.UserRoleVendor}
	pair, err := svc.GenerateTokenPair(ctx, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pair.TokenType != "Bearer" || pair.ExpiresIn != 3600 {
		t.Errorf("unexpected pair metadata: %+v", pair)
	}
	if stored.TokenHash != hashToken(pair.RefreshToken) {
		t.Error("only the hash of the refresh token should be stored")
	}
	if d := time.Until(stored.ExpiresAt) - 7*24*time.Hour; d > time.Second || d < -time.Second {
		t.Errorf("refresh expiry off by %v", d)
	}

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("access token should validate: %v", err)
	}
	if claims.UserID != "user:v1" || claims.Role != "vendor" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestGenerateTokenPair_RepoError(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(TokenServiceConfig{
		JWTService: createTestJWTService(t),
		TokenRepo: &mockTokenRepo{
			createRefreshTokenFunc: func(ctx context.Context, token *model.RefreshToken) error {
				return errors.New("database error")
			},
		},
	})

	_, err := svc.GenerateTokenPair(context.Background(), &model.User{ID: "user:1"})
	if err == nil || err.Error() != "database error" {
		t.Errorf("expected database error, got %v", err)
	}
}

// ============================================================================
// RefreshTokens Tests
// ============================================================================

func TestRefreshTokens_RotatesToken(t *testing.T) {
	t.Parallel()

	var revoked string
	svc := NewTokenService(TokenServiceConfig{
		JWTService: createTestJWTService(t),
		TokenRepo: &mockTokenRepo{
			getRefreshTokenByHashFunc: storedTokenFor("raw", "user:1", time.Now().Add(time.Hour), false),
			consumeRefreshTokenFunc: func(ctx context.Context, hash string) (bool, error) {
				revoked = hash
				return true, nil
			},
		},
	})

	pair, err := svc.RefreshTokens(context.Background(), "raw", &model.User{ID: "user:1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if revoked != hashToken("raw") {
		t.Error("old token should be revoked")
	}
	if pair.RefreshToken == "raw" {
		t.Error("a new refresh token should be issued")
	}
}

func TestRefreshTokens_UnknownToken_Invalid(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(TokenServiceConfig{
		JWTService: createTestJWTService(t),
		TokenRepo:  &mockTokenRepo{},
	})

	for _, raw := range []string{"", "missing"} {
		_, err := svc.RefreshTokens(context.Background(), raw, &model.User{ID: "user:1"})
		if !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("%q: expected ErrInvalidRefreshToken, got %v", raw, err)
		}
	}
}

func TestRefreshTokens_ReusedToken_RevokesAll(t *testing.T) {
	t.Parallel()

	var revokedUser string
	svc := NewTokenService(TokenServiceConfig{
		JWTService: createTestJWTService(t),
		TokenRepo: &mockTokenRepo{
			getRefreshTokenByHashFunc: storedTokenFor("raw", "user:1", time.Now().Add(time.Hour), true),
			revokeAllUserTokensFunc: func(ctx context.Context, userID string) error {
				revokedUser = userID
				return nil
			},
		},
	})

	_, err := svc.RefreshTokens(context.Background(), "raw", &model.User{ID: "user:1"})
	if !errors.Is(err, ErrRefreshTokenRevoked) {
		t.Errorf("expected ErrRefreshTokenRevoked, got %v", err)
	}
	if revokedUser != "user:1" {
		t.Error("reuse should revoke every token of the user")
	}
}

func TestRefreshTokens_LostRotationRace_RevokesAll(t *testing.T) {
	t.Parallel()

	// the lookup still sees a live token but another request consumed it first
	var revokedUser string
	svc := NewTokenService(TokenServiceConfig{
		JWTService: createTestJWTService(t),
		TokenRepo: &mockTokenRepo{
			getRefreshTokenByHashFunc: storedTokenFor("raw", "user:1", time.Now().Add(time.Hour), false),
			consumeRefreshTokenFunc: func(ctx context.Context, hash string) (bool, error) {
				return false, nil
			},
			createRefreshTokenFunc: func(ctx context.Context, token *model.RefreshToken) error {
				t.Error("no new token should be issued")
				return nil
			},
			revokeAllUserTokensFunc: func(ctx context.Context, userID string) error {
				revokedUser = userID
				return nil
			},
		},
	})

	_, err := svc.RefreshTokens(context.Background(), "raw", &model.User{ID: "user:1"})
	if !errors.Is(err, ErrRefreshTokenRevoked) {
		t.Errorf("expected ErrRefreshTokenRevoked, got %v", err)
	}
	if revokedUser != "user:1" {
		t.Error("a lost rotation should revoke every token of the user")
	}
}

func TestRefreshTokens_ConcurrentRefreshIssuesOnePair(t *testing.T) {
	t.Parallel()

	repo := newMemTokenRepo()
	svc := NewTokenService(TokenServiceConfig{JWTService: createTestJWTService(t), TokenRepo: repo})
	user := &model.User{ID: "user:1", Email: "a@example.com", Role: model.UserRoleCouple}

	pair, err := svc.GenerateTokenPair(context.Background(), user)
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RefreshTokens(context.Background(), pair.RefreshToken, user); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly one successful refresh, got %d", succeeded)
	}
	if _, err := svc.RefreshTokens(context.Background(), pair.RefreshToken, user); !errors.Is(err, ErrRefreshTokenRevoked) {
		t.Errorf("expected reused token to be rejected, got %v", err)
	}
}

func TestRefreshTokens_ExpiredToken(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(TokenServiceConfig{
		JWTService: createTestJWTService(t),
		TokenRepo: &mockTokenRepo{
			getRefreshTokenByHashFunc: storedTokenFor("raw", "user:1", time.Now().Add(-time.Minute), false),
		},
	})

	_, err := svc.RefreshTokens(context.Background(), "raw", &model.User{ID: "user:1"})
	if !errors.Is(err, ErrRefreshTokenExpired) {
		t.Errorf("expected ErrRefreshTokenExpired, got %v", err)
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(TokenServiceConfig{JWTService: createTestJWTService(t)})
	if _, err := svc.ValidateAccessToken("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}
