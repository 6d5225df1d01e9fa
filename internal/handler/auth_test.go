package handler

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
	"github.com/forgo/aisle/api/pkg/jwt"
)

// ============================================================================
// In-memory repositories
// ============================================================================

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (m *memUserRepo) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = "user:" + strings.Split(user.Email, "@")[0]
	user.CreatedOn = time.Now()
	user.UpdatedOn = user.CreatedOn
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) TouchLogin(ctx context.Context, userID string) error { return nil }

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
}

func (m *memTokenRepo) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *memTokenRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[hash], nil
}

func (m *memTokenRepo) ConsumeRefreshToken(ctx context.Context, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[hash]
	if !ok || t.Revoked {
		return false, nil
	}
	t.Revoked = true
	return true, nil
}

func (m *memTokenRepo) RevokeAllUserTokens(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (m *memTokenRepo) DeleteExpiredTokens(ctx context.Context) error { return nil }

var testKey = sync.OnceValue(func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
})

func newTestAuthHandler(t *testing.T) (*AuthHandler, *memUserRepo) {
	t.Helper()
	users := &memUserRepo{users: make(map[string]*model.User)}
	tokens := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwt.NewTestService(testKey(), "aisle-test", 15*time.Minute),
		TokenRepo:  &memTokenRepo{tokens: make(map[string]*model.RefreshToken)},
	})
	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     users,
		TokenService: tokens,
	})
	return NewAuthHandler(authService), users
}

// ============================================================================
// Register Tests
// ============================================================================

func TestRegister_ValidInput_ReturnsCreated(t *testing.T) {
	t.Parallel()
	h, _ := newTestAuthHandler(t)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", model.RegisterRequest{
		Email:    "Ann@Example.com",
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	var resp model.AuthResponse
	decodeData(t, rr.Body.Bytes(), &resp)

	if resp.User == nil || resp.User.Email != "ann@example.com" {
		t.Errorf("expected normalised email, got %+v", resp.User)
	}
	if resp.User.Role != model.UserRoleCouple {
		t.Errorf("expected default role couple, got %q", resp.User.Role)
	}
	if resp.Tokens == nil || resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Error("expected a token pair")
	}
	if strings.Contains(rr.Body.String(), "$2a$") {
		t.Error("password hash leaked into response")
	}
}

func TestRegister_InvalidInput_ReturnsValidationErrors(t *testing.T) {
	t.Parallel()
	h, _ := newTestAuthHandler(t)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", model.RegisterRequest{
		Email:       "not-an-email",
		Password:    "short",
		AccountType: model.UserRoleAdmin,
	})
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}

	problem := parseErrorResponse(t, rr.Body.Bytes())
	fields := map[string]bool{}
	for _, e := range problem.Errors {
		fields[e.Field] = true
	}
	for _, want := range []string{"email", "password", "account_type"} {
		if !fields[want] {
			t.Errorf("expected a %q field error, got %+v", want, problem.Errors)
		}
	}
}

func TestRegister_DuplicateEmail_ReturnsConflict(t *testing.T) {
	t.Parallel()
	h, _ := newTestAuthHandler(t)

	body := model.RegisterRequest{Email: "bo@example.com", Password: "securepassword123"}
	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(http.MethodPost, "/v1/auth/register", body))
	if rr.Code != http.StatusCreated {
		t.Fatalf("first register: expected %d, got %d", http.StatusCreated, rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(http.MethodPost, "/v1/auth/register", body))
	if rr.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rr.Code)
	}
}

func TestRegister_UnknownField_ReturnsBadRequest(t *testing.T) {
	t.Parallel()
	h, _ := newTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"email":"a@b.co","password":"securepassword123","role":"admin"}`))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

// ============================================================================
// Login / Refresh / Logout Tests
// ============================================================================

func TestLogin_WrongPassword_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()
	h, _ := newTestAuthHandler(t)

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(http.MethodPost, "/v1/auth/register", model.RegisterRequest{
		Email: "cy@example.com", Password: "securepassword123",
	}))

	rr = httptest.NewRecorder()
	h.Login(rr, makeJSONRequest(http.MethodPost, "/v1/auth/login", model.LoginRequest{
		Email: "cy@example.com", Password: "wrongpassword",
	}))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Login(rr, makeJSONRequest(http.MethodPost, "/v1/auth/login", model.LoginRequest{
		Email: "nobody@example.com", Password: "securepassword123",
	}))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRefresh_RotatesAndRejectsReuse(t *testing.T) {
	t.Parallel()
	h, _ := newTestAuthHandler(t)

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(http.MethodPost, "/v1/auth/register", model.RegisterRequest{
		Email: "di@example.com", Password: "securepassword123",
	}))
	var registered model.AuthResponse
	decodeData(t, rr.Body.Bytes(), &registered)
	first := registered.Tokens.RefreshToken

	rr = httptest.NewRecorder()
	h.Refresh(rr, makeJSONRequest(http.MethodPost, "/v1/auth/refresh", model.RefreshRequest{RefreshToken: first}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var pair model.TokenPair
	decodeData(t, rr.Body.Bytes(), &pair)
	if pair.RefreshToken == "" || pair.RefreshToken == first {
		t.Error("expected a new refresh token")
	}

	rr = httptest.NewRecorder()
	h.Refresh(rr, makeJSONRequest(http.MethodPost, "/v1/auth/refresh", model.RefreshRequest{RefreshToken: first}))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("reused token: expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRefresh_MissingToken_ReturnsValidationError(t *testing.T) {
	t.Parallel()
	h, _ := newTestAuthHandler(t)

	rr := httptest.NewRecorder()
	h.Refresh(rr, makeJSONRequest(http.MethodPost, "/v1/auth/refresh", model.RefreshRequest{}))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}
}

func TestLogout_RequiresUser(t *testing.T) {
	t.Parallel()
	h, _ := newTestAuthHandler(t)

	rr := httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Logout(rr, withUserContext(httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil), "user:ann"))
	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
}

func TestMe_ReturnsUser(t *testing.T) {
	t.Parallel()
	h, users := newTestAuthHandler(t)
	users.users["user:eve"] = &model.User{ID: "user:eve", Email: "eve@example.com", Role: model.UserRoleVendor}

	rr := httptest.NewRecorder()
	h.Me(rr, withUserContext(httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil), "user:eve"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var user model.User
	decodeData(t, rr.Body.Bytes(), &user)
	if user.Role != model.UserRoleVendor {
		t.Errorf("expected vendor role, got %q", user.Role)
	}

	rr = httptest.NewRecorder()
	h.Me(rr, withUserContext(httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil), "user:gone"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing user: expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}
