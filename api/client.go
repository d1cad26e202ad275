// Package api provides the HTTP client for the Mapbox Uploads API.
//
// The client covers the three endpoints the upload workflow drives
// (credentials, upload-start, status) plus the list and delete operations
// of the same API family. All methods take a context for timeout and
// cancellation control and return structured errors from the errors
// package; a non-success response status is never retried here.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	resty "github.com/go-resty/resty/v2"

	uperrors "github.com/yurivangeffen/mapbox-utils/errors"
)

// DefaultBaseURL is the production endpoint of the upload service.
const DefaultBaseURL = "https://api.mapbox.com"

// Client talks to the Mapbox Uploads API. It is safe for concurrent use.
type Client struct {
	// http is the underlying resty client
	http *resty.Client

	// logger is used for structured logging of operations; nil disables logging
	logger *slog.Logger
}

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*clientOptions)

// WithBaseURL overrides the service base URL. Useful for staging
// environments and httptest servers.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout. Default is no timeout; each
// exchange runs until it completes or the context is cancelled.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithLogger configures the client with a structured logger.
// If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// New creates a new Uploads API client with the provided options.
func New(opts ...Option) *Client {
	o := &clientOptions{
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := resty.New().
		SetBaseURL(o.baseURL).
		SetHeader("Content-Type", "application/json")
	if o.timeout > 0 {
		httpClient.SetTimeout(o.timeout)
	}

	return &Client{
		http:   httpClient,
		logger: o.logger,
	}
}

// CreateCredentials requests temporary staging credentials for username.
// It POSTs to /uploads/v1/{username}/credentials and expects HTTP 200.
func (c *Client) CreateCredentials(ctx context.Context, username, token string) (*UploadCredentials, error) {
	if c.logger != nil {
		c.logger.InfoContext(ctx, "requesting staging credentials",
			"username", username)
	}

	creds := &UploadCredentials{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("username", username).
		SetQueryParam("access_token", token).
		SetResult(creds).
		Post("/uploads/v1/{username}/credentials")
	if err != nil {
		return nil, c.exchangeError(ctx, "CreateCredentials", resp, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.statusError(ctx, "CreateCredentials", resp)
	}

	// A 200 with a payload missing the staging destination is a schema
	// mismatch, treated the same as an unexpected status.
	if creds.Bucket == "" || creds.Key == "" {
		return nil, &uperrors.RemoteError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Err:        errMissingField("bucket or key"),
		}
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "staging credentials issued",
			"username", username,
			"bucket", creds.Bucket,
			"key", creds.Key)
	}

	return creds, nil
}

// CreateUpload registers a staged object for processing. It POSTs the
// UploadRequest as JSON to /uploads/v1/{username} with Cache-Control:
// no-cache and expects HTTP 201, returning the initial job snapshot.
func (c *Client) CreateUpload(ctx context.Context, username, token string, req UploadRequest) (*Upload, error) {
	if c.logger != nil {
		c.logger.InfoContext(ctx, "starting processing job",
			"username", username,
			"tileset", req.Tileset)
	}

	upload := &Upload{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("username", username).
		SetQueryParam("access_token", token).
		SetHeader("Cache-Control", "no-cache").
		SetBody(req).
		SetResult(upload).
		Post("/uploads/v1/{username}")
	if err != nil {
		return nil, c.exchangeError(ctx, "CreateUpload", resp, err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, c.statusError(ctx, "CreateUpload", resp)
	}
	if upload.ID == "" {
		return nil, &uperrors.RemoteError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Err:        errMissingField("id"),
		}
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "processing job started",
			"username", username,
			"tileset", req.Tileset,
			"upload_id", upload.ID)
	}

	return upload, nil
}

// GetUpload fetches the current state of a processing job by id.
// It GETs /uploads/v1/{username}/{uploadId} and expects HTTP 200.
func (c *Client) GetUpload(ctx context.Context, username, token, uploadID string) (*Upload, error) {
	upload := &Upload{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"username": username,
			"uploadId": uploadID,
		}).
		SetQueryParam("access_token", token).
		SetResult(upload).
		Get("/uploads/v1/{username}/{uploadId}")
	if err != nil {
		return nil, c.exchangeError(ctx, "GetUpload", resp, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.statusError(ctx, "GetUpload", resp)
	}

	return upload, nil
}

// ListUploads returns the caller's processing jobs, most recent first.
// It GETs /uploads/v1/{username} and expects HTTP 200.
func (c *Client) ListUploads(ctx context.Context, username, token string) ([]Upload, error) {
	uploads := []Upload{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("username", username).
		SetQueryParam("access_token", token).
		SetResult(&uploads).
		Get("/uploads/v1/{username}")
	if err != nil {
		return nil, c.exchangeError(ctx, "ListUploads", resp, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.statusError(ctx, "ListUploads", resp)
	}

	return uploads, nil
}

// DeleteUpload removes a completed or errored job from the listing.
// It DELETEs /uploads/v1/{username}/{uploadId} and expects HTTP 204.
func (c *Client) DeleteUpload(ctx context.Context, username, token, uploadID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"username": username,
			"uploadId": uploadID,
		}).
		SetQueryParam("access_token", token).
		Delete("/uploads/v1/{username}/{uploadId}")
	if err != nil {
		return c.exchangeError(ctx, "DeleteUpload", resp, err)
	}
	if resp.StatusCode() != http.StatusNoContent {
		return c.statusError(ctx, "DeleteUpload", resp)
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "processing job deleted",
			"username", username,
			"upload_id", uploadID)
	}

	return nil
}

// exchangeError wraps transport and decode failures. resty surfaces both
// through the returned error; the response may be nil or partial.
func (c *Client) exchangeError(ctx context.Context, op string, resp *resty.Response, err error) error {
	remote := &uperrors.RemoteError{Err: err}
	if resp != nil && resp.RawResponse != nil {
		remote.StatusCode = resp.StatusCode()
		remote.Status = resp.Status()
	}

	if c.logger != nil {
		c.logger.ErrorContext(ctx, "upload service exchange failed",
			"operation", op,
			"error", err)
	}

	return remote
}

// statusError wraps a response whose status does not match the endpoint's
// contract.
func (c *Client) statusError(ctx context.Context, op string, resp *resty.Response) error {
	if c.logger != nil {
		c.logger.ErrorContext(ctx, "upload service returned unexpected status",
			"operation", op,
			"status_code", resp.StatusCode(),
			"status", resp.Status())
	}

	return uperrors.NewRemoteError(resp.StatusCode(), resp.Status())
}

// errMissingField reports a success response whose body lacks a field the
// workflow depends on.
func errMissingField(field string) error {
	return fmt.Errorf("response missing %s", field)
}
