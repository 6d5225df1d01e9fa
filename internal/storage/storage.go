// Package storage puts uploaded and generated media into object storage
// buckets and hands back public URLs.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Bucket names used by the API
const (
	BucketVendorMedia = "vendor-media"
	BucketFloorPlans  = "floor-plans"
	BucketMoodboards  = "moodboards"
)

// MaxUploadBytes caps a single media upload
const MaxUploadBytes = 10 << 20

var (
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrEmptyObject     = errors.New("empty object")
	ErrInvalidBase64   = errors.New("invalid base64 image")
	ErrUnknownBucket   = errors.New("unknown bucket")
)

// Bucket stores objects under keys and serves them from a public URL
type Bucket interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Buckets resolves a bucket by name
type Buckets interface {
	Bucket(name string) (Bucket, error)
}

// allowedImageTypes maps accepted content types to file extensions
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DetectImageType sniffs data and returns its content type, or
// ErrUnsupportedType when it is not an accepted image.
func DetectImageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyObject
	}
	ct := http.DetectContentType(data)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	if _, ok := allowedImageTypes[ct]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
	return ct, nil
}

// ObjectKey builds a unique key such as "<owner>/<uuid>.png".
func ObjectKey(owner, contentType string) string {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	return path.Join(sanitizeSegment(owner), uuid.NewString()+ext)
}

// KeyFromURL recovers the object key from a URL produced by b.
func KeyFromURL(b Bucket, url string) (string, bool) {
	prefix := strings.TrimSuffix(b.URL(""), "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// DecodeBase64Image decodes raw or data-URL base64 image bytes.
func DecodeBase64Image(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		parts := strings.SplitN(s, ",", 2)
		if len(parts) != 2 {
			return nil, ErrInvalidBase64
		}
		s = parts[1]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return data, nil
}

// sanitizeSegment keeps record ids like "user:abc" usable as a path segment.
func sanitizeSegment(s string) string {
	s = strings.NewReplacer(":", "-", "/", "-", "⟨", "", "⟩", "").Replace(s)
	if s == "" {
		return "anon"
	}
	return s
}
