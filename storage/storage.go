// Package storage writes upload payloads to the staging bucket named by the
// service-issued temporary credentials.
//
// Each Store is bound to one credential bundle and therefore to one
// bucket/key destination; the whole payload is written in a single PutObject
// call. Memory usage is O(payload size); very large files are a known
// limitation of the upload workflow, not handled specially here.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"

	uperrors "github.com/yurivangeffen/mapbox-utils/errors"
	"github.com/yurivangeffen/mapbox-utils/internal/s3api"
)

const (
	// DefaultRegion is the fixed region the staging bucket lives in.
	DefaultRegion = "us-east-1"

	// DefaultContentType is used when content type detection fails
	DefaultContentType = "application/octet-stream"
)

// Credentials is the temporary authorization bundle used for exactly one
// staging write. The bundle names the destination; callers never choose
// the bucket or key themselves.
type Credentials struct {
	Bucket          string
	Key             string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Store writes payloads to the staging destination named by its credentials.
type Store struct {
	// api is the underlying S3 client
	api s3api.S3API

	// bucket and key are the staging destination from the credentials
	bucket string
	key    string

	// logger is used for structured logging of operations; nil disables logging
	logger *slog.Logger
}

// storeOptions holds configuration options for the Store.
type storeOptions struct {
	region         string
	endpoint       string
	forcePathStyle bool
	logger         *slog.Logger
}

// Option is a functional option for configuring the Store.
type Option func(*storeOptions)

// WithRegion overrides the staging region. The service contract fixes it to
// us-east-1; this exists for test doubles and S3-compatible endpoints.
func WithRegion(region string) Option {
	return func(o *storeOptions) {
		o.region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing.
func WithEndpoint(endpoint string) Option {
	return func(o *storeOptions) {
		o.endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
// Required for most S3-compatible test servers.
func WithForcePathStyle(forcePathStyle bool) Option {
	return func(o *storeOptions) {
		o.forcePathStyle = forcePathStyle
	}
}

// WithLogger configures the store with a structured logger.
// If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// New creates a Store from the temporary credentials. The credentials are
// used as a static provider; expiry is enforced server-side, so a Store
// must be used promptly after the credentials are issued.
func New(creds Credentials, opts ...Option) (*Store, error) {
	if creds.Bucket == "" || creds.Key == "" {
		return nil, uperrors.NewError("newStore", uperrors.ErrInvalidInput).
			WithMessage("credentials must name a bucket and key")
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return nil, uperrors.NewError("newStore", uperrors.ErrInvalidInput).
			WithKey(creds.Key).
			WithMessage("credentials missing access key material")
	}

	o := &storeOptions{
		region: DefaultRegion,
	}
	for _, opt := range opts {
		opt(o)
	}

	cfg := aws.Config{
		Region: o.region,
		Credentials: awscreds.NewStaticCredentialsProvider(
			creds.AccessKeyID,
			creds.SecretAccessKey,
			creds.SessionToken,
		),
	}

	var s3Opts []func(*s3.Options)
	if o.endpoint != "" {
		endpoint := o.endpoint
		s3Opts = append(s3Opts, func(so *s3.Options) {
			so.BaseEndpoint = aws.String(endpoint)
		})
	}
	if o.forcePathStyle {
		s3Opts = append(s3Opts, func(so *s3.Options) {
			so.UsePathStyle = true
		})
	}

	return &Store{
		api:    s3.NewFromConfig(cfg, s3Opts...),
		bucket: creds.Bucket,
		key:    creds.Key,
		logger: o.logger,
	}, nil
}

// NewWithClient creates a Store with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(api s3api.S3API, creds Credentials, opts ...Option) *Store {
	o := &storeOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return &Store{
		api:    api,
		bucket: creds.Bucket,
		key:    creds.Key,
		logger: o.logger,
	}
}

// Put writes the payload to the staging destination in a single PutObject
// call. Success carries no result beyond completion; any storage failure is
// fatal to the surrounding workflow and is returned wrapped as ErrStorage.
func (s *Store) Put(ctx context.Context, data []byte, contentType string) error {
	if contentType == "" {
		contentType = DefaultContentType
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "staging object",
			"bucket", s.bucket,
			"key", s.key,
			"size", len(data),
			"content_type", contentType)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "staging write failed",
				"bucket", s.bucket,
				"key", s.key,
				"error", err)
		}
		return uperrors.NewError("putObject", uperrors.ErrStorage).
			WithKey(s.key).
			WithMessage(describeAWSError(err))
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "object staged",
			"bucket", s.bucket,
			"key", s.key)
	}

	return nil
}

// Bucket returns the staging bucket this store writes to.
func (s *Store) Bucket() string { return s.bucket }

// Key returns the staging object key this store writes to.
func (s *Store) Key() string { return s.key }

// describeAWSError flattens an AWS SDK error into the message surfaced to
// the user, preferring the structured code and message of API errors.
func describeAWSError(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return err.Error()
}

// DetectContentType determines the content type of a payload, sniffing the
// bytes first and falling back to extension-based lookup on the source path.
func DetectContentType(path string, data []byte) string {
	if len(data) > 0 {
		if mt := mimetype.Detect(data); mt != nil && mt.String() != DefaultContentType {
			return mt.String()
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}
