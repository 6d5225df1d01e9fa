package storage

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// MemoryStore keeps objects in process; used in development and tests
type MemoryStore struct {
	buckets map[string]*MemoryBucket
}

// NewMemoryStore creates the API buckets under baseURL
func NewMemoryStore(baseURL string) *MemoryStore {
	s := &MemoryStore{buckets: make(map[string]*MemoryBucket)}
	for _, name := range []string{BucketVendorMedia, BucketFloorPlans, BucketMoodboards} {
		s.buckets[name] = NewMemoryBucket(strings.TrimSuffix(baseURL, "/") + "/" + name)
	}
	return s
}

// Bucket returns the named bucket
func (s *MemoryStore) Bucket(name string) (Bucket, error) {
	b, ok := s.buckets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBucket, name)
	}
	return b, nil
}

// ServeHTTP serves GET /media/{bucket}/{key...} so development URLs resolve
func (s *MemoryStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, ok := s.buckets[r.PathValue("bucket")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	obj, ok := b.Get(r.PathValue("key"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(obj.Data)
}

// MemoryObject is a stored object
type MemoryObject struct {
	ContentType string
	Data        []byte
}

// MemoryBucket is a map-backed Bucket
type MemoryBucket struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]MemoryObject
}

// NewMemoryBucket creates an empty bucket
func NewMemoryBucket(baseURL string) *MemoryBucket {
	return &MemoryBucket{baseURL: baseURL, objects: make(map[string]MemoryObject)}
}

// Put stores a copy of data
func (b *MemoryBucket) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyObject
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	b.mu.Lock()
	b.objects[key] = MemoryObject{ContentType: contentType, Data: cp}
	b.mu.Unlock()

	return b.URL(key), nil
}

// Delete removes key
func (b *MemoryBucket) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	delete(b.objects, key)
	b.mu.Unlock()
	return nil
}

// URL returns the public URL of key
func (b *MemoryBucket) URL(key string) string {
	return b.baseURL + "/" + key
}

// Get returns a stored object
func (b *MemoryBucket) Get(key string) (MemoryObject, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, ok := b.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (b *MemoryBucket) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
