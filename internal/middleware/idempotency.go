package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/forgo/aisle/api/internal/model"
)

// maxFingerprintBody bounds how much of a request body is buffered.
// Larger requests bypass idempotency handling.
const maxFingerprintBody = 2 << 20

// IdempotencyStore remembers responses to requests that carried an
// Idempotency-Key header
type IdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

type idempotencyEntry struct {
	fingerprint string
	status      int
	headers     http.Header
	body        []byte
	expiresAt   time.Time
	inFlight    bool
	done        chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep results (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
}

// NewIdempotencyStore creates a new idempotency store
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Hour
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		stopChan: make(chan struct{}),
	}

	go store.cleanupLoop(cfg.Cleanup)

	return store
}

// Stop stops the cleanup goroutine
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if !entry.inFlight && entry.expiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

func hashParts(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// idempotencyResponseWriter captures the response for caching
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func replay(w http.ResponseWriter, entry *idempotencyEntry) {
	for k, v := range entry.headers {
		for _, val := range v {
			w.Header().Add(k, val)
		}
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}

// Idempotency returns middleware that replays the first successful response
// for a repeated Idempotency-Key. Reusing a key with a different request is
// a conflict. Failed responses are not kept so the client can retry.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID := GetUserID(r.Context())
			if userID == "" {
				userID = clientIP(r)
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxFingerprintBody+1))
			if err != nil {
				model.NewBadRequestError("could not read request body").WriteJSON(w)
				return
			}
			if len(body) > maxFingerprintBody {
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := hashParts([]byte(userID), []byte(idempotencyKey))
			fingerprint := hashParts([]byte(r.Method), []byte(r.URL.Path), body)

			store.mu.Lock()
			entry, exists := store.entries[key]
			if exists && !entry.inFlight && entry.expiresAt.Before(time.Now()) {
				delete(store.entries, key)
				exists = false
			}

			if exists {
				if entry.fingerprint != fingerprint {
					store.mu.Unlock()
					model.NewConflictError("Idempotency-Key was already used for a different request").WriteJSON(w)
					return
				}
				if entry.inFlight {
					done := entry.done
					store.mu.Unlock()
					<-done

					store.mu.Lock()
					entry, exists = store.entries[key]
					store.mu.Unlock()
					if !exists {
						model.NewConflictError("the original request failed; retry with a new Idempotency-Key").WriteJSON(w)
						return
					}
					replay(w, entry)
					return
				}
				store.mu.Unlock()
				replay(w, entry)
				return
			}

			entry = &idempotencyEntry{
				fingerprint: fingerprint,
				inFlight:    true,
				done:        make(chan struct{}),
			}
			store.entries[key] = entry
			store.mu.Unlock()

			irw := &idempotencyResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(irw, r)

			store.mu.Lock()
			if irw.status >= 200 && irw.status < 300 {
				entry.status = irw.status
				entry.headers = irw.Header().Clone()
				entry.body = irw.body.Bytes()
				entry.expiresAt = time.Now().Add(store.ttl)
				entry.inFlight = false
			} else {
				delete(store.entries, key)
			}
			close(entry.done)
			store.mu.Unlock()
		})
	}
}
