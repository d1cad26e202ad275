// Package api provides the HTTP client for the Mapbox Uploads API.
package api

import (
	"fmt"
	"time"
)

// UploadCredentials is the time-limited authorization bundle the service
// hands out for staging an object. The caller must write the payload to
// exactly the bucket/key pair named here, before the credentials expire
// (expiry is enforced server-side, not tracked locally).
type UploadCredentials struct {
	// Bucket is the staging bucket the object must be written to
	Bucket string `json:"bucket"`

	// Key is the object key within the staging bucket
	Key string `json:"key"`

	// AccessKeyID is the temporary AWS access key id
	AccessKeyID string `json:"accessKeyId"`

	// SecretAccessKey is the temporary AWS secret access key
	SecretAccessKey string `json:"secretAccessKey"`

	// SessionToken is the temporary AWS session token
	SessionToken string `json:"sessionToken"`

	// URL is the object URL as reported by the service
	URL string `json:"url"`
}

// ObjectURL returns the public URL of the staged object in the fixed
// form the upload-start endpoint expects. The scheme and host pattern
// are part of the service contract and are deliberately not configurable.
func (c *UploadCredentials) ObjectURL() string {
	return fmt.Sprintf("http://%s.s3.amazonaws.com/%s", c.Bucket, c.Key)
}

// UploadRequest describes the staged object to ingest: its public URL,
// the target tileset identifier ({username}.{slug}) and a human-readable
// display name. It is constructed locally and sent once.
type UploadRequest struct {
	URL     string `json:"url"`
	Tileset string `json:"tileset"`
	Name    string `json:"name"`
}

// Upload is the server-side processing job state, returned both when the
// job starts and on each status poll. ID is the stable job identifier used
// for all subsequent status queries; the other fields may be refreshed on
// each poll.
type Upload struct {
	// ID is the stable job identifier
	ID string `json:"id"`

	// Tileset is the tileset identifier the job ingests into
	Tileset string `json:"tileset"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Complete reports terminal success
	Complete bool `json:"complete"`

	// Error is empty while the job is healthy; a non-empty value is a
	// terminal failure
	Error string `json:"error"`

	// Progress is a fraction in [0,1]
	Progress float64 `json:"progress"`

	// Owner is the account that started the job
	Owner string `json:"owner"`

	// Created is when the job was created
	Created time.Time `json:"created"`

	// Modified is when the job state last changed
	Modified time.Time `json:"modified"`
}

// Failed reports whether the job reached a terminal failure state.
func (u *Upload) Failed() bool {
	return u.Error != ""
}

// Done reports whether the job reached terminal success. The service sets
// Complete on terminal success; Progress >= 1 is accepted as well so a run
// never stalls on a snapshot where only the fraction has been updated.
func (u *Upload) Done() bool {
	return u.Complete || u.Progress >= 1
}
