package upload

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/yurivangeffen/mapbox-utils/api"
	uperrors "github.com/yurivangeffen/mapbox-utils/errors"
	"github.com/yurivangeffen/mapbox-utils/internal/validation"
	"github.com/yurivangeffen/mapbox-utils/storage"
)

// DefaultPollInterval is the fixed delay between status queries.
const DefaultPollInterval = time.Second

// Service is the subset of the Uploads API the workflow drives.
// It is satisfied by *api.Client and by test doubles.
type Service interface {
	// CreateCredentials requests temporary staging credentials
	CreateCredentials(ctx context.Context, username, token string) (*api.UploadCredentials, error)

	// CreateUpload registers a staged object for processing
	CreateUpload(ctx context.Context, username, token string, req api.UploadRequest) (*api.Upload, error)

	// GetUpload fetches the current state of a processing job
	GetUpload(ctx context.Context, username, token, uploadID string) (*api.Upload, error)
}

// Verify that the API client implements the workflow's service interface
var _ Service = (*api.Client)(nil)

// ObjectPutter is the single storage capability the workflow needs:
// write one payload to the destination the credentials name.
type ObjectPutter interface {
	Put(ctx context.Context, data []byte, contentType string) error
}

// StoreFactory builds a staging store from service-issued credentials.
type StoreFactory func(creds storage.Credentials) (ObjectPutter, error)

// Request names the file to publish and the tileset to publish it as.
type Request struct {
	// Path is the local source file
	Path string

	// Name is the human-readable display name for the tileset
	Name string

	// Slug is the caller-chosen tileset name component; the tileset
	// identifier is {Username}.{Slug}, and reusing a slug overwrites
	// the existing tileset
	Slug string

	// Username is the account to publish under
	Username string

	// Token is the caller's access token
	Token string
}

// Workflow runs the four-stage upload sequence. A Workflow is stateless
// across runs and safe for concurrent use; each Run is independent.
type Workflow struct {
	service  Service
	newStore StoreFactory

	wait         bool
	pollInterval time.Duration
	maxPolls     int

	logger   *slog.Logger
	reporter StageReporter
}

// New creates a Workflow over the given service client.
func New(service Service, opts ...Option) *Workflow {
	w := &Workflow{
		service:      service,
		pollInterval: DefaultPollInterval,
		reporter:     NopReporter{},
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.newStore == nil {
		logger := w.logger
		w.newStore = func(creds storage.Credentials) (ObjectPutter, error) {
			return storage.New(creds, storage.WithLogger(logger))
		}
	}

	return w
}

// Run executes the upload sequence for one file. On success it returns the
// last observed job snapshot: the initial one when polling is skipped, the
// terminal one when waiting. Any failure aborts the remaining stages and is
// returned as a structured error from the errors package.
func (w *Workflow) Run(ctx context.Context, req Request) (*api.Upload, error) {
	if err := validation.ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidateSlug(req.Slug); err != nil {
		return nil, err
	}
	if err := validation.ValidateToken(req.Token); err != nil {
		return nil, err
	}

	tileset := req.Username + "." + req.Slug

	// Stage 1: read the source file. Fails before any network activity.
	w.reporter.StageStarted(StageRead)
	data, err := os.ReadFile(req.Path)
	if err != nil {
		rerr := uperrors.NewError("readSource", uperrors.ErrLocalIO).
			WithTileset(tileset).
			WithMessage(err.Error())
		w.reporter.StageFailed(StageRead, rerr)
		return nil, rerr
	}
	w.reporter.StageSucceeded(StageRead)

	if w.logger != nil {
		w.logger.InfoContext(ctx, "starting upload run",
			"tileset", tileset,
			"path", req.Path,
			"size", len(data),
			"wait", w.wait)
	}

	// Stage 2: fetch temporary staging credentials.
	w.reporter.StageStarted(StageCredentials)
	creds, err := w.service.CreateCredentials(ctx, req.Username, req.Token)
	if err != nil {
		w.reporter.StageFailed(StageCredentials, err)
		return nil, err
	}
	w.reporter.StageSucceeded(StageCredentials)

	// Stage 3: write the payload to the staging destination. The credential
	// fetch is wasted if this fails; there is no cleanup.
	w.reporter.StageStarted(StageStage)
	store, err := w.newStore(storage.Credentials{
		Bucket:          creds.Bucket,
		Key:             creds.Key,
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
	})
	if err != nil {
		w.reporter.StageFailed(StageStage, err)
		return nil, err
	}
	if err := store.Put(ctx, data, storage.DetectContentType(req.Path, data)); err != nil {
		w.reporter.StageFailed(StageStage, err)
		return nil, err
	}
	w.reporter.StageSucceeded(StageStage)

	// Stage 4: register the staged object for processing.
	w.reporter.StageStarted(StageStart)
	job, err := w.service.CreateUpload(ctx, req.Username, req.Token, api.UploadRequest{
		URL:     creds.ObjectURL(),
		Tileset: tileset,
		Name:    req.Name,
	})
	if err != nil {
		w.reporter.StageFailed(StageStart, err)
		return nil, err
	}
	w.reporter.StageSucceeded(StageStart)

	if !w.wait {
		if w.logger != nil {
			w.logger.InfoContext(ctx, "processing started, not waiting",
				"tileset", tileset,
				"upload_id", job.ID)
		}
		return job, nil
	}

	// Stage 5: poll until the job is terminal.
	w.reporter.StageStarted(StageAwait)
	final, err := w.awaitProcessing(ctx, req.Username, req.Token, job)
	if err != nil {
		w.reporter.StageFailed(StageAwait, err)
		return final, err
	}
	w.reporter.StageSucceeded(StageAwait)

	return final, nil
}

// awaitProcessing polls the job at the configured fixed interval until it
// reports a terminal state. A job-level error is terminal and never retried.
// With no poll cap configured the loop runs until the job finishes or the
// context is cancelled.
func (w *Workflow) awaitProcessing(ctx context.Context, username, token string, first *api.Upload) (*api.Upload, error) {
	current := first
	polls := 0

	for {
		if current.Failed() {
			return current, uperrors.NewError("status", uperrors.ErrProcessing).
				WithTileset(current.Tileset).
				WithMessage(current.Error)
		}
		if current.Done() {
			if w.logger != nil {
				w.logger.InfoContext(ctx, "processing complete",
					"tileset", current.Tileset,
					"upload_id", current.ID,
					"polls", polls)
			}
			return current, nil
		}
		if w.maxPolls > 0 && polls >= w.maxPolls {
			return current, uperrors.NewError("status", uperrors.ErrPollLimit).
				WithTileset(current.Tileset)
		}

		select {
		case <-ctx.Done():
			return current, ctx.Err()
		case <-time.After(w.pollInterval):
		}

		next, err := w.service.GetUpload(ctx, username, token, first.ID)
		if err != nil {
			return current, err
		}
		polls++
		current = next

		if w.logger != nil {
			w.logger.DebugContext(ctx, "processing progress",
				"upload_id", first.ID,
				"progress", current.Progress,
				"polls", polls)
		}
	}
}
