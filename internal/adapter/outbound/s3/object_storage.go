package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/arix/server/internal/infra/resilience"
	"github.com/arix/server/internal/port/outbound"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds object storage configuration.
type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// PublicBaseURL serves objects without signing, for example a CDN in front of the bucket.
	PublicBaseURL   string
	SignedURLExpiry time.Duration
}

// NewClient creates an S3 client for any S3-compatible endpoint.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	region := cfg.Region
	if region == "" || region == "auto" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		// S3-compatible stores reject the newer default checksum trailers.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	}), nil
}

// ObjectStorageAdapter implements outbound.ObjectStoragePort on S3.
type ObjectStorageAdapter struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	bucket        string
	publicBaseURL string
	expiry        time.Duration
	guard         *resilience.Guard
}

// NewObjectStorageAdapter creates a new object storage adapter.
func NewObjectStorageAdapter(client *s3.Client, cfg Config, guard *resilience.Guard) *ObjectStorageAdapter {
	if guard == nil {
		guard = resilience.NewGuard("storage", resilience.DefaultConfig(), nil, nil)
	}
	expiry := cfg.SignedURLExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &ObjectStorageAdapter{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		expiry:        expiry,
		guard:         guard,
	}
}

func (a *ObjectStorageAdapter) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	return a.guard.Do(ctx, func(ctx context.Context) error {
		if _, err := a.client.PutObject(ctx, input); err != nil {
			return fmt.Errorf("put object: %w", err)
		}
		return nil
	})
}

func (a *ObjectStorageAdapter) Delete(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (a *ObjectStorageAdapter) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = a.expiry
	}
	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

func (a *ObjectStorageAdapter) DurableURL(ctx context.Context, key string) (string, error) {
	if a.publicBaseURL == "" {
		return a.PresignedURL(ctx, key, a.expiry)
	}
	escaped := make([]string, 0)
	for _, seg := range strings.Split(key, "/") {
		escaped = append(escaped, url.PathEscape(seg))
	}
	return a.publicBaseURL + "/" + strings.Join(escaped, "/"), nil
}

// Compile-time check
var _ outbound.ObjectStoragePort = (*ObjectStorageAdapter)(nil)
