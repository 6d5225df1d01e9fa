package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// ============================================================================
// Bucket Tests
// ============================================================================

func TestNewRateLimiter_Defaults(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{})
	defer rl.Stop()

	if rl.rate != 100 || rl.window != time.Minute || rl.burst != 20 {
		t.Errorf("defaults = %d/%v/%d, want 100/1m/20", rl.rate, rl.window, rl.burst)
	}
	if rl.prefix != "aisle:ratelimit:" {
		t.Errorf("prefix = %q", rl.prefix)
	}
}

func TestAllow_RateAndBurst(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 5, Window: time.Minute, Burst: 3})
	defer rl.Stop()
	ctx := context.Background()

	count := 0
	for i := 0; i < 12; i++ {
		if ok, _, _ := rl.Allow(ctx, "user:ann"); ok {
			count++
		}
	}
	if count != 8 {
		t.Errorf("allowed %d requests, want 8", count)
	}

	ok, remaining, _ := rl.Allow(ctx, "user:bo")
	if !ok || remaining != 7 {
		t.Errorf("fresh key = %v/%d, want true/7", ok, remaining)
	}
}

func TestAllow_RefillAfterWindow(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 2, Window: 40 * time.Millisecond, Burst: 1})
	defer rl.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rl.Allow(ctx, "k")
	}
	if ok, _, _ := rl.Allow(ctx, "k"); ok {
		t.Fatal("expected denial once the bucket is empty")
	}

	time.Sleep(60 * time.Millisecond)

	ok, remaining, _ := rl.Allow(ctx, "k")
	if !ok || remaining != 2 {
		t.Errorf("after refill = %v/%d, want true/2", ok, remaining)
	}
}

func TestAllow_Concurrent(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 50, Window: time.Minute, Burst: 10})
	defer rl.Stop()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if ok, _, _ := rl.Allow(ctx, "shared"); ok {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if allowed != 60 {
		t.Errorf("allowed %d, want 60", allowed)
	}
}

func TestCleanup_RemovesExpiredBuckets(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 10, Window: 20 * time.Millisecond, Cleanup: 10 * time.Millisecond})
	defer rl.Stop()

	rl.Allow(context.Background(), "user:ann")
	time.Sleep(100 * time.Millisecond)

	rl.mu.Lock()
	_, exists := rl.buckets["user:ann"]
	rl.mu.Unlock()
	if exists {
		t.Error("expired bucket should have been removed")
	}
}

func TestAllow_SharedStoreDownFallsBackToLocal(t *testing.T) {
	t.Parallel()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	rl := NewRateLimiter(RateLimitConfig{Rate: 1, Window: time.Minute, Burst: 1, Redis: client})
	defer rl.Stop()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _, _ := rl.Allow(ctx, "user:ann"); !ok {
			t.Fatalf("request %d should be allowed by the local bucket", i+1)
		}
	}
	if ok, _, _ := rl.Allow(ctx, "user:ann"); ok {
		t.Error("local bucket should still enforce the limit")
	}
}

// ============================================================================
// Middleware Tests
// ============================================================================

func TestRateLimitMiddleware_Headers(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 1, Window: time.Minute, Burst: 1})
	defer rl.Stop()

	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/guests", nil)
		req.RemoteAddr = "10.0.0.7:51234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}
	if got := first.Header().Get("X-RateLimit-Limit"); got != "1" {
		t.Errorf("X-RateLimit-Limit = %q", got)
	}
	if got := first.Header().Get("X-RateLimit-Remaining"); got != "1" {
		t.Errorf("X-RateLimit-Remaining = %q", got)
	}

	send()
	denied := send()
	if denied.Code != http.StatusTooManyRequests {
		t.Fatalf("third status = %d, want 429", denied.Code)
	}
	retry, err := strconv.Atoi(denied.Header().Get("Retry-After"))
	if err != nil || retry < 1 {
		t.Errorf("Retry-After = %q", denied.Header().Get("Retry-After"))
	}
	if ct := denied.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRateLimitMiddleware_KeysByUser(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 1, Window: time.Minute, Burst: 1})
	defer rl.Stop()

	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, user := range []string{"user:ann", "user:ann", "user:bo"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/guests", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, user))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", user, rec.Code)
		}
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.4:8080"
	if got := clientIP(req); got != "192.0.2.4" {
		t.Errorf("clientIP = %q", got)
	}
	req.RemoteAddr = "pipe"
	if got := clientIP(req); got != "pipe" {
		t.Errorf("clientIP = %q", got)
	}
}
