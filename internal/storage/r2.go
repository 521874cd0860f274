package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/DarthQach/news-cast/internal/config"
)

// Scheme is the URL scheme that selects the object store.
const Scheme = "s3"

// ErrNotObjectURL is returned by ParseObjectURL for paths that are not s3:// URLs.
var ErrNotObjectURL = errors.New("not an s3:// object url")

// ObjectGetter is the subset of the S3 client used here.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectStore reads objects from an S3 compatible bucket (Cloudflare R2).
type ObjectStore struct {
	client  ObjectGetter
	maxSize int64
}

// NewObjectStore wraps an existing client.
func NewObjectStore(client ObjectGetter) *ObjectStore {
	return &ObjectStore{client: client, maxSize: 1 << 20}
}

// NewR2Store builds a store from the R2 settings in cfg.
func NewR2Store(ctx context.Context, cfg *config.Config) (*ObjectStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.R2Region),
	}
	if cfg.R2AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load object store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.R2Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.R2Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewObjectStore(client), nil
}

// ParseObjectURL splits s3://bucket/key into its parts.
func ParseObjectURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != Scheme {
		return "", "", ErrNotObjectURL
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("object url %q needs both bucket and key", raw)
	}
	return u.Host, key, nil
}

// Read returns the body of the object named by an s3://bucket/key URL.
func (s *ObjectStore) Read(ctx context.Context, objectURL string) ([]byte, error) {
	bucket, key, err := ParseObjectURL(objectURL)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucket, key, err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("object %s/%s exceeds %d bytes", bucket, key, s.maxSize)
	}
	return data, nil
}
