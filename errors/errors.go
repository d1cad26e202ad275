// Package errors provides error types and handling for tileset upload operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a failed upload operation with context about where it failed.
// It wraps the underlying error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "credentials", "stage", "status")
	Op string

	// Tileset is the target tileset identifier (if applicable)
	Tileset string

	// Key is the staging object key (if applicable)
	Key string

	// Err is the underlying error from the service, storage layer, or filesystem
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Tileset != "" && e.Key != "" {
		return fmt.Sprintf("upload.%s %s (%s): %v", e.Op, e.Tileset, e.Key, e.Err)
	}
	if e.Tileset != "" {
		return fmt.Sprintf("upload.%s %s: %v", e.Op, e.Tileset, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("upload.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("upload.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithTileset adds tileset context to an existing error.
func (e *Error) WithTileset(tileset string) *Error {
	e.Tileset = tileset
	return e
}

// WithKey adds staging object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// RemoteError describes an unexpected response from the tileset-hosting
// service: a non-success HTTP status, or a response body that does not match
// the expected shape. It carries the status code and status text so callers
// can distinguish service failures programmatically.
type RemoteError struct {
	// StatusCode is the HTTP status code the service returned
	StatusCode int

	// Status is the HTTP status text accompanying the code
	Status string

	// Err is the underlying transport or decode error, nil for plain
	// status failures
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *RemoteError) Error() string {
	if e.Err != nil {
		if e.StatusCode != 0 {
			return fmt.Sprintf("tileset service: %s: %v", e.Status, e.Err)
		}
		return fmt.Sprintf("tileset service: %v", e.Err)
	}
	return fmt.Sprintf("tileset service: unexpected status %d %s", e.StatusCode, e.Status)
}

// Unwrap returns the underlying error for error chaining support.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewRemoteError creates a RemoteError for a non-success response status.
func NewRemoteError(statusCode int, status string) *RemoteError {
	return &RemoteError{
		StatusCode: statusCode,
		Status:     status,
	}
}

// Sentinel errors for the failure classes an upload run can produce.
// These can be used with errors.Is() for error checking.
var (
	// ErrLocalIO indicates that the source file could not be read
	ErrLocalIO = errors.New("upload: source file unreadable")

	// ErrStorage indicates that the staging write to object storage failed
	ErrStorage = errors.New("upload: storage write failed")

	// ErrProcessing indicates that the processing job reported an error
	ErrProcessing = errors.New("upload: processing failed")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("upload: invalid input")

	// ErrPollLimit indicates that the configured poll budget was exhausted
	// before the processing job reached a terminal state
	ErrPollLimit = errors.New("upload: poll limit reached")
)

// IsRemote checks if an error originated as an unexpected service response.
// This is a convenience function that handles wrapped errors.
func IsRemote(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote)
}

// IsLocalIO checks if an error indicates an unreadable source file.
func IsLocalIO(err error) bool {
	return errors.Is(err, ErrLocalIO)
}

// IsStorage checks if an error indicates a failed staging write.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsProcessing checks if an error indicates a failed processing job.
func IsProcessing(err error) bool {
	return errors.Is(err, ErrProcessing)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
