package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures an S3 compatible object store
type S3Config struct {
	Region          string
	Endpoint        string // optional, for MinIO and other S3 compatible stores
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PublicBaseURL   string            // e.g. a CDN origin; bucket name is appended
	BucketNames     map[string]string // logical name -> physical bucket
}

// S3Store hands out buckets backed by a single S3 client
type S3Store struct {
	client  *s3.Client
	cfg     S3Config
	buckets map[string]*S3Bucket
}

// NewS3Store loads AWS configuration and builds the client.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	store := &S3Store{client: client, cfg: cfg, buckets: make(map[string]*S3Bucket)}
	for _, name := range []string{BucketVendorMedia, BucketFloorPlans, BucketMoodboards} {
		physical := cfg.BucketNames[name]
		if physical == "" {
			physical = name
		}
		store.buckets[name] = &S3Bucket{
			client:  client,
			bucket:  physical,
			baseURL: publicURL(cfg, physical),
		}
	}
	return store, nil
}

// Bucket returns the named bucket
func (s *S3Store) Bucket(name string) (Bucket, error) {
	b, ok := s.buckets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBucket, name)
	}
	return b, nil
}

func publicURL(cfg S3Config, bucket string) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(cfg.PublicBaseURL, "/") + "/" + bucket
	}
	if cfg.Endpoint != "" {
		return strings.TrimSuffix(cfg.Endpoint, "/") + "/" + bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
}

// S3Bucket is one bucket of an S3Store
type S3Bucket struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// Put uploads data and returns its public URL
func (b *S3Bucket) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyObject
	}
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put %s/%s: %w", b.bucket, key, err)
	}
	return b.URL(key), nil
}

// Delete removes an object; missing objects are not an error in S3
func (b *S3Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", b.bucket, key, err)
	}
	return nil
}

// URL returns the public URL of key
func (b *S3Bucket) URL(key string) string {
	return b.baseURL + "/" + key
}
