package storage

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestDetectImageType(t *testing.T) {
	t.Parallel()

	ct, err := DetectImageType(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = DetectImageType([]byte("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = DetectImageType(nil)
	assert.ErrorIs(t, err, ErrEmptyObject)
}

func TestObjectKey_UsesOwnerAndExtension(t *testing.T) {
	t.Parallel()

	key := ObjectKey("user:abc123", "image/png")
	assert.True(t, strings.HasPrefix(key, "user-abc123/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.NotEqual(t, key, ObjectKey("user:abc123", "image/png"))
}

func TestDecodeBase64Image(t *testing.T) {
	t.Parallel()

	raw := base64.StdEncoding.EncodeToString(pngHeader)

	data, err := DecodeBase64Image(raw)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	data, err = DecodeBase64Image("data:image/png;base64," + raw)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	_, err = DecodeBase64Image("%%%")
	assert.ErrorIs(t, err, ErrInvalidBase64)
}

func TestMemoryStore_PutDeleteAndKeyFromURL(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore("http://localhost:8080/media/")
	b, err := store.Bucket(BucketMoodboards)
	require.NoError(t, err)

	url, err := b.Put(context.Background(), "user-1/a.png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/moodboards/user-1/a.png", url)

	key, ok := KeyFromURL(b, url)
	require.True(t, ok)
	assert.Equal(t, "user-1/a.png", key)

	mb := b.(*MemoryBucket)
	obj, ok := mb.Get(key)
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)

	require.NoError(t, b.Delete(context.Background(), key))
	assert.Equal(t, 0, mb.Len())

	_, ok = KeyFromURL(b, "https://elsewhere.example/x.png")
	assert.False(t, ok)
}

func TestMemoryStore_UnknownBucket(t *testing.T) {
	t.Parallel()

	_, err := NewMemoryStore("http://x").Bucket("nope")
	assert.ErrorIs(t, err, ErrUnknownBucket)
}

func TestMemoryBucket_RejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := NewMemoryBucket("http://x").Put(context.Background(), "k", "image/png", nil)
	assert.ErrorIs(t, err, ErrEmptyObject)
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://cdn.example.com/moodboards",
		publicURL(S3Config{PublicBaseURL: "https://cdn.example.com/"}, "moodboards"))
	assert.Equal(t, "http://minio:9000/floor-plans",
		publicURL(S3Config{Endpoint: "http://minio:9000"}, "floor-plans"))
	assert.Equal(t, "https://media.s3.us-east-1.amazonaws.com",
		publicURL(S3Config{Region: "us-east-1"}, "media"))
}

func TestMemoryStore_ServeHTTP(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore("http://localhost:8080/media")
	bucket, err := store.Bucket(BucketMoodboards)
	require.NoError(t, err)
	_, err = bucket.Put(context.Background(), "user1/a.png", "image/png", pngHeader)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.Handle("GET /media/{bucket}/{key...}", store)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/moodboards/user1/a.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/moodboards/user1/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/nope/user1/a.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
