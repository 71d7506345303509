// Package storage uploads image binaries to S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/imgdrop/internal/logging"
	"github.com/minio/minio-go/v7"
)

// ObjectStore is the part of object storage the managed transport needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

// BucketChecker is implemented by stores that can check their bucket.
type BucketChecker interface {
	BucketExists(ctx context.Context) (bool, error)
}

// Options configure either driver.
type Options struct {
	Driver     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Region     string
	Bucket     string
	PublicBase string
}

var ErrUnknownDriver = errors.New("unknown storage driver")

// New builds the store selected by opts.Driver ("s3" or "minio").
func New(ctx context.Context, opts Options, l logging.Logger) (ObjectStore, error) {
	switch opts.Driver {
	case "", "s3":
		return NewS3Store(ctx, opts, l)
	case "minio":
		return NewMinioStore(opts, l)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// Message extracts the backend's own error message from err, falling back
// to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) && minioErr.Message != "" {
		return minioErr.Message
	}
	return err.Error()
}
