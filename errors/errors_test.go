package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "operation only",
			err:      NewError("credentials", errors.New("boom")),
			expected: "upload.credentials: boom",
		},
		{
			name:     "with tileset",
			err:      NewError("start", errors.New("boom")).WithTileset("alice.streets"),
			expected: "upload.start alice.streets: boom",
		},
		{
			name:     "with key",
			err:      NewError("stage", errors.New("boom")).WithKey("staging/abc"),
			expected: "upload.stage object staging/abc: boom",
		},
		{
			name:     "with tileset and key",
			err:      NewError("stage", errors.New("boom")).WithTileset("alice.streets").WithKey("staging/abc"),
			expected: "upload.stage alice.streets (staging/abc): boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewError("status", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.ErrorIs(t, err, cause)
}

func TestError_WithMessage(t *testing.T) {
	err := NewError("read", ErrLocalIO).WithMessage("open /tmp/missing.mbtiles: no such file")

	assert.ErrorIs(t, err, ErrLocalIO)
	assert.Contains(t, err.Error(), "no such file")
}

func TestRemoteError(t *testing.T) {
	t.Run("status failure", func(t *testing.T) {
		err := NewRemoteError(422, "422 Unprocessable Entity")
		assert.Equal(t, "tileset service: unexpected status 422 422 Unprocessable Entity", err.Error())
		assert.True(t, IsRemote(err))
	})

	t.Run("decode failure", func(t *testing.T) {
		cause := errors.New("unexpected end of JSON input")
		err := &RemoteError{StatusCode: 200, Status: "200 OK", Err: cause}
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "unexpected end of JSON input")
	})

	t.Run("wrapped remote error is detected", func(t *testing.T) {
		err := NewError("credentials", NewRemoteError(500, "500 Internal Server Error"))
		assert.True(t, IsRemote(err))
	})
}

func TestSentinelHelpers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		matches func(error) bool
	}{
		{
			name:    "local IO",
			err:     fmt.Errorf("reading source: %w", ErrLocalIO),
			matches: IsLocalIO,
		},
		{
			name:    "storage",
			err:     NewError("stage", ErrStorage).WithKey("k"),
			matches: IsStorage,
		},
		{
			name:    "processing",
			err:     NewError("status", ErrProcessing).WithMessage("bad file"),
			matches: IsProcessing,
		},
		{
			name:    "invalid input",
			err:     ErrInvalidInput,
			matches: IsInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.matches(tt.err))
			assert.False(t, tt.matches(errors.New("unrelated")))
		})
	}
}
