// Package testutil provides test utilities and mocks for staging-storage
// operations. This package is internal and should only be used for testing
// within this module.
package testutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yurivangeffen/mapbox-utils/internal/s3api"
)

// MockS3Client is a mock implementation of the S3API interface for testing.
// It allows customization of each operation through function fields.
type MockS3Client struct {
	PutObjectFunc func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)

	// PutObjectCalls counts how many times PutObject was invoked
	PutObjectCalls int
}

// PutObject mocks the S3 PutObject operation.
func (m *MockS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	m.PutObjectCalls++
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

// Verify the mock satisfies the interface
var _ s3api.S3API = (*MockS3Client)(nil)
