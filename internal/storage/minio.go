package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/imgdrop/internal/logging"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore writes objects with minio-go. The endpoint may carry a scheme;
// https selects TLS.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
	logger     logging.Logger
}

func NewMinioStore(opts Options, l logging.Logger) (*MinioStore, error) {
	host, secure, err := splitEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStore{
		client:     client,
		bucket:     opts.Bucket,
		publicBase: opts.PublicBase,
		logger:     l,
	}, nil
}

func splitEndpoint(endpoint string) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return endpoint, false, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}

// Upload streams r under key. size must be exact, or -1 when unknown.
func (s *MinioStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error(ctx, "put object failed", "bucket", s.bucket, "key", key, "error", err)
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

func (s *MinioStore) PublicURL(key string) string {
	return joinURL(s.publicBase, key)
}

func (s *MinioStore) BucketExists(ctx context.Context) (bool, error) {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	return ok, nil
}
