package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/forgo/aisle/api/internal/storage"
)

// storeImage sniffs data, rejects non-images and writes it to bucket under
// the owner's prefix. It returns the public URL and content type.
func storeImage(ctx context.Context, buckets storage.Buckets, bucketName, owner string, data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", ErrEmptyUpload
	}
	if len(data) > storage.MaxUploadBytes {
		return "", "", fmt.Errorf("%w: larger than %d bytes", ErrUnsupportedMedia, storage.MaxUploadBytes)
	}

	contentType, err := storage.DetectImageType(data)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return "", "", fmt.Errorf("%w: %v", ErrUnsupportedMedia, err)
		}
		return "", "", err
	}

	bucket, err := buckets.Bucket(bucketName)
	if err != nil {
		return "", "", err
	}

	url, err := bucket.Put(ctx, storage.ObjectKey(owner, contentType), contentType, data)
	if err != nil {
		return "", "", err
	}
	return url, contentType, nil
}

// removeObject deletes the object behind url when it lives in the bucket.
// Failures are logged; a dangling object is not worth failing a request.
func removeObject(ctx context.Context, buckets storage.Buckets, bucketName, url string) {
	bucket, err := buckets.Bucket(bucketName)
	if err != nil {
		return
	}
	key, ok := storage.KeyFromURL(bucket, url)
	if !ok {
		return
	}
	if err := bucket.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete object",
			slog.String("bucket", bucketName),
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}
