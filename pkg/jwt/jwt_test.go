package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewTestService(newTestKey(t), "aisle-test", 15*time.Minute)
}

// ============================================================================
// Sign Tests
// ============================================================================

func TestSign_ValidClaims_RoundTrips(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	token, err := svc.Sign(Claims{UserID: "user:abc", Email: "a@b.co", Role: "couple"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected three token segments, got %q", token)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user:abc" || claims.Email != "a@b.co" || claims.Role != "couple" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.Subject != "user:abc" {
		t.Errorf("expected subject to default to user id, got %q", claims.Subject)
	}
	if claims.Issuer != "aisle-test" {
		t.Errorf("expected issuer aisle-test, got %q", claims.Issuer)
	}
}

func TestSign_SetsDefaultExpiration(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	token, _ := svc.Sign(Claims{UserID: "user:1"})
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 14*time.Minute || remaining > 15*time.Minute+time.Second {
		t.Errorf("expected ~15m expiry, got %v", remaining)
	}
}

func TestSign_NilPrivateKey_ReturnsErrInvalidKey(t *testing.T) {
	t.Parallel()

	svc := &Service{}
	if _, err := svc.Sign(Claims{UserID: "user:1"}); err != ErrInvalidKey {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

// ============================================================================
// Validate Tests
// ============================================================================

func TestValidate_Expired_ReturnsErrTokenExpired(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	claims := Claims{UserID: "user:1"}
	claims.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(-time.Minute))
	token, _ := svc.Sign(claims)

	if _, err := svc.Validate(token); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidate_NotBeforeInFuture_ReturnsErrTokenNotYetValid(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	claims := Claims{UserID: "user:1"}
	claims.NotBefore = gojwt.NewNumericDate(time.Now().Add(time.Hour))
	token, _ := svc.Sign(claims)

	if _, err := svc.Validate(token); err != ErrTokenNotYetValid {
		t.Errorf("expected ErrTokenNotYetValid, got %v", err)
	}
}

func TestValidate_OtherKey_ReturnsErrInvalidSignature(t *testing.T) {
	t.Parallel()

	signer := newTestService(t)
	verifier := newTestService(t)
	token, _ := signer.Sign(Claims{UserID: "user:1"})

	if _, err := verifier.Validate(token); err != ErrInvalidSignature {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestValidate_WrongIssuer_ReturnsErrInvalidToken(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	token, _ := NewTestService(key, "someone-else", time.Minute).Sign(Claims{UserID: "user:1"})

	if _, err := NewTestService(key, "aisle-test", time.Minute).Validate(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_HS256_Rejected(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	hs := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{UserID: "user:1"})
	token, err := hs.SignedString([]byte("shared"))
	if err != nil {
		t.Fatalf("sign hs256: %v", err)
	}

	if _, err := svc.Validate(token); err == nil {
		t.Error("expected HS256 token to be rejected")
	}
}

func TestValidate_Garbage_ReturnsErrInvalidToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	for _, token := range []string{"", "a.b", "a.b.c.d", "not-a-token"} {
		if _, err := svc.Validate(token); err != ErrInvalidToken {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestValidate_MissingUserID_ReturnsErrInvalidToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	token, _ := svc.Sign(Claims{Email: "a@b.co"})

	if _, err := svc.Validate(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_NilPublicKey_ReturnsErrInvalidKey(t *testing.T) {
	t.Parallel()

	if _, err := (&Service{}).Validate("a.b.c"); err != ErrInvalidKey {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

// ============================================================================
// Key Files
// ============================================================================

func TestGenerateKeyPair_LoadsIntoService(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	if err := GenerateKeyPair(priv, pub); err != nil {
		t.Fatalf("generate: %v", err)
	}

	signer, err := NewService(Config{PrivateKeyPath: priv, Issuer: "aisle", ExpirationMins: 5})
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	verifier, err := NewService(Config{PublicKeyPath: pub, Issuer: "aisle"})
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}

	token, err := signer.Sign(Claims{UserID: "user:1", Role: "vendor"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := verifier.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !claims.IsVendor() || claims.IsAdmin() {
		t.Errorf("unexpected role flags for %+v", claims)
	}
	if signer.GetExpiration() != 5*time.Minute {
		t.Errorf("expected 5m expiration, got %v", signer.GetExpiration())
	}

	if _, err := verifier.Sign(Claims{UserID: "user:1"}); err != ErrInvalidKey {
		t.Errorf("public-key-only service must not sign, got %v", err)
	}
}

func TestNewService_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := NewService(Config{PrivateKeyPath: filepath.Join(t.TempDir(), "nope.pem")}); err == nil {
		t.Error("expected error for missing key file")
	}
}
