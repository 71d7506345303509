package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/imgdrop/internal/logging"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Store writes objects through aws-sdk-go-v2. Path-style addressing is
// used so that MinIO and other S3-compatible endpoints work unchanged.
type S3Store struct {
	client     s3API
	bucket     string
	publicBase string
	logger     logging.Logger
}

func NewS3Store(ctx context.Context, opts Options, l logging.Logger) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return newS3Store(client, opts.Bucket, opts.PublicBase, l), nil
}

func newS3Store(client s3API, bucket, publicBase string, l logging.Logger) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicBase: publicBase, logger: l}
}

func (s *S3Store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		in.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		s.logger.Error(ctx, "put object failed", "bucket", s.bucket, "key", key, "error", err)
		return fmt.Errorf("put object %q: %w", key, err)
	}
	s.logger.Debug(ctx, "object stored", "bucket", s.bucket, "key", key, "size", size)
	return nil
}

func (s *S3Store) PublicURL(key string) string {
	return joinURL(s.publicBase, key)
}

func (s *S3Store) BucketExists(ctx context.Context) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return true, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchBucket") {
		return false, nil
	}
	return false, fmt.Errorf("head bucket %q: %w", s.bucket, err)
}
