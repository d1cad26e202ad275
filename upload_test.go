package upload

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurivangeffen/mapbox-utils/api"
	uperrors "github.com/yurivangeffen/mapbox-utils/errors"
	"github.com/yurivangeffen/mapbox-utils/storage"
)

// mockService is a mock implementation of the Service interface.
// It records the order of workflow calls through the shared calls slice.
type mockService struct {
	CreateCredentialsFunc func(ctx context.Context, username, token string) (*api.UploadCredentials, error)
	CreateUploadFunc      func(ctx context.Context, username, token string, req api.UploadRequest) (*api.Upload, error)
	GetUploadFunc         func(ctx context.Context, username, token, uploadID string) (*api.Upload, error)

	calls []string
	polls int
}

func (m *mockService) CreateCredentials(ctx context.Context, username, token string) (*api.UploadCredentials, error) {
	m.calls = append(m.calls, "credentials")
	if m.CreateCredentialsFunc != nil {
		return m.CreateCredentialsFunc(ctx, username, token)
	}
	return &api.UploadCredentials{
		Bucket:          "uploads-staging",
		Key:             "ab12cd/source.mbtiles",
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
		SessionToken:    "session",
	}, nil
}

func (m *mockService) CreateUpload(ctx context.Context, username, token string, req api.UploadRequest) (*api.Upload, error) {
	m.calls = append(m.calls, "start")
	if m.CreateUploadFunc != nil {
		return m.CreateUploadFunc(ctx, username, token, req)
	}
	return &api.Upload{ID: "up1", Tileset: req.Tileset, Name: req.Name}, nil
}

func (m *mockService) GetUpload(ctx context.Context, username, token, uploadID string) (*api.Upload, error) {
	m.calls = append(m.calls, "status")
	m.polls++
	if m.GetUploadFunc != nil {
		return m.GetUploadFunc(ctx, username, token, uploadID)
	}
	return &api.Upload{ID: uploadID, Complete: true, Progress: 1}, nil
}

// mockStore records staging writes and shares the call log with its service.
type mockStore struct {
	service *mockService
	putErr  error

	data        []byte
	contentType string
}

func (m *mockStore) Put(ctx context.Context, data []byte, contentType string) error {
	m.service.calls = append(m.service.calls, "stage")
	if m.putErr != nil {
		return m.putErr
	}
	m.data = data
	m.contentType = contentType
	return nil
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.geojson")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestWorkflow(service *mockService, store *mockStore, opts ...Option) *Workflow {
	opts = append(opts, WithStoreFactory(func(creds storage.Credentials) (ObjectPutter, error) {
		return store, nil
	}))
	return New(service, opts...)
}

func testRequest(path string) Request {
	return Request{
		Path:     path,
		Name:     "Street data",
		Slug:     "streets",
		Username: "alice",
		Token:    "sk.token",
	}
}

func TestWorkflow_Run_SuccessWithoutWait(t *testing.T) {
	service := &mockService{}
	store := &mockStore{service: service}
	path := writeSource(t, `{"type":"FeatureCollection","features":[]}`)

	wf := newTestWorkflow(service, store)
	job, err := wf.Run(context.Background(), testRequest(path))

	require.NoError(t, err)
	assert.Equal(t, "up1", job.ID)

	// Strict stage order, and zero status queries when not waiting.
	assert.Equal(t, []string{"credentials", "stage", "start"}, service.calls)
	assert.Equal(t, 0, service.polls)

	// The staged payload is the file contents, verbatim.
	assert.Equal(t, `{"type":"FeatureCollection","features":[]}`, string(store.data))
}

func TestWorkflow_Run_RequestFormats(t *testing.T) {
	service := &mockService{}
	service.CreateUploadFunc = func(ctx context.Context, username, token string, req api.UploadRequest) (*api.Upload, error) {
		// The identifier and object URL are exact formats, no escaping.
		assert.Equal(t, "alice.streets", req.Tileset)
		assert.Equal(t, "http://uploads-staging.s3.amazonaws.com/ab12cd/source.mbtiles", req.URL)
		assert.Equal(t, "Street data", req.Name)
		return &api.Upload{ID: "up1", Tileset: req.Tileset}, nil
	}
	store := &mockStore{service: service}
	path := writeSource(t, "data")

	wf := newTestWorkflow(service, store)
	_, err := wf.Run(context.Background(), testRequest(path))
	require.NoError(t, err)
}

func TestWorkflow_Run_MissingSourceFile(t *testing.T) {
	service := &mockService{}
	store := &mockStore{service: service}

	wf := newTestWorkflow(service, store)
	req := testRequest(filepath.Join(t.TempDir(), "missing.mbtiles"))
	_, err := wf.Run(context.Background(), req)

	require.Error(t, err)
	assert.True(t, uperrors.IsLocalIO(err))
	// No network activity of any kind.
	assert.Empty(t, service.calls)
}

func TestWorkflow_Run_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{name: "bad slug", mutate: func(r *Request) { r.Slug = "streets.v2" }},
		{name: "bad username", mutate: func(r *Request) { r.Username = "alice.b" }},
		{name: "missing token", mutate: func(r *Request) { r.Token = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockService{}
			store := &mockStore{service: service}
			req := testRequest(writeSource(t, "data"))
			tt.mutate(&req)

			wf := newTestWorkflow(service, store)
			_, err := wf.Run(context.Background(), req)

			assert.True(t, uperrors.IsInvalidInput(err))
			assert.Empty(t, service.calls)
		})
	}
}

func TestWorkflow_Run_CredentialFailureSkipsStaging(t *testing.T) {
	service := &mockService{}
	service.CreateCredentialsFunc = func(ctx context.Context, username, token string) (*api.UploadCredentials, error) {
		return nil, uperrors.NewRemoteError(http.StatusUnauthorized, "401 Unauthorized")
	}
	store := &mockStore{service: service}
	path := writeSource(t, "data")

	wf := newTestWorkflow(service, store)
	_, err := wf.Run(context.Background(), testRequest(path))

	require.Error(t, err)
	assert.True(t, uperrors.IsRemote(err))
	// No staging write, no processing start.
	assert.Equal(t, []string{"credentials"}, service.calls)
}

func TestWorkflow_Run_StorageFailureSkipsStart(t *testing.T) {
	service := &mockService{}
	store := &mockStore{
		service: service,
		putErr:  uperrors.NewError("putObject", uperrors.ErrStorage).WithKey("ab12cd/source.mbtiles"),
	}
	path := writeSource(t, "data")

	wf := newTestWorkflow(service, store)
	_, err := wf.Run(context.Background(), testRequest(path))

	require.Error(t, err)
	assert.True(t, uperrors.IsStorage(err))
	assert.Equal(t, []string{"credentials", "stage"}, service.calls)
}

func TestWorkflow_Run_StartFailureSkipsPolling(t *testing.T) {
	service := &mockService{}
	service.CreateUploadFunc = func(ctx context.Context, username, token string, req api.UploadRequest) (*api.Upload, error) {
		return nil, uperrors.NewRemoteError(http.StatusUnprocessableEntity, "422 Unprocessable Entity")
	}
	store := &mockStore{service: service}
	path := writeSource(t, "data")

	wf := newTestWorkflow(service, store, WithWait(true), WithPollInterval(time.Millisecond))
	_, err := wf.Run(context.Background(), testRequest(path))

	require.Error(t, err)
	assert.True(t, uperrors.IsRemote(err))
	assert.Equal(t, 0, service.polls)
}

func TestWorkflow_Run_PollsUntilComplete(t *testing.T) {
	responses := []*api.Upload{
		{ID: "up1", Tileset: "alice.streets", Progress: 0.2},
		{ID: "up1", Tileset: "alice.streets", Progress: 0.6},
		{ID: "up1", Tileset: "alice.streets", Progress: 1.0},
	}

	service := &mockService{}
	service.GetUploadFunc = func(ctx context.Context, username, token, uploadID string) (*api.Upload, error) {
		assert.Equal(t, "up1", uploadID)
		return responses[service.polls-1], nil
	}
	store := &mockStore{service: service}
	path := writeSource(t, "data")

	wf := newTestWorkflow(service, store, WithWait(true), WithPollInterval(time.Millisecond))
	job, err := wf.Run(context.Background(), testRequest(path))

	require.NoError(t, err)
	// Exactly one query per response, terminating on progress reaching 1.
	assert.Equal(t, 3, service.polls)
	assert.Equal(t, 1.0, job.Progress)
}

func TestWorkflow_Run_CompleteFlagTerminates(t *testing.T) {
	// A snapshot marked complete ends the loop even if the progress
	// fraction never quite reaches 1.
	service := &mockService{}
	service.GetUploadFunc = func(ctx context.Context, username, token, uploadID string) (*api.Upload, error) {
		return &api.Upload{ID: "up1", Complete: true, Progress: 0.999}, nil
	}
	store := &mockStore{service: service}
	path := writeSource(t, "data")

	wf := newTestWorkflow(service, store, WithWait(true), WithPollInterval(time.Millisecond))
	job, err := wf.Run(context.Background(), testRequest(path))

	require.NoError(t, err)
	assert.Equal(t, 1, service.polls)
	assert.True(t, job.Complete)
}

func TestWorkflow_Run_JobErrorStopsPolling(t *testing.T) {
	responses := []*api.Upload{
		{ID: "up1", Tileset: "alice.streets", Progress: 0.3},
		{ID: "up1", Tileset: "alice.streets", Error: "bad file"},
		{ID: "up1", Tileset: "alice.streets", Progress: 1.0},
	}

	service := &mockService{}
	service.GetUploadFunc = func(ctx context.Context, username, token, uploadID string) (*api.Upload, error) {
		return responses[service.polls-1], nil
	}
	store := &mockStore{service: service}
	path := writeSource(t, "data")

	wf := newTestWorkflow(service, store, WithWait(true), WithPollInterval(time.Millisecond))
	job, err := wf.Run(context.Background(), testRequest(path))

	require.Error(t, err)
	assert.True(t, uperrors.IsProcessing(err))
	assert.Contains(t, err.Error(), "bad file")
	// The errored snapshot is the second response; no further queries.
	assert.Equal(t, 2, service.polls)
	assert.Equal(t, "bad file", job.Error)
}

func TestWorkflow_Run_InitialSnapshotError(t *testing.T) {
	service := &mockService{}
	service.CreateUploadFunc = func(ctx context.Context, username, token string, req api.UploadRequest) (*api.Upload, error) {
		return &api.Upload{ID: "up1", Tileset: req.Tileset, Error: "rejected"}, nil
	}
	store := &mockStore{service: service}
	path := writeSource(t, "data")

	wf := newTestWorkflow(service, store, WithWait(true), WithPollInterval(time.Millisecond))
	_, err := wf.Run(context.Background(), testRequest(path))

	require.Error(t, err)
	assert.True(t, uperrors.IsProcessing(err))
	assert.Equal(t, 0, service.polls)
}

func TestWorkflow_Run_PollLimit(t *testing.T) {
	service := &mockService{}
	service.GetUploadFunc = func(ctx context.Context, username, token, uploadID string) (*api.Upload, error) {
		return &api.Upload{ID: "up1", Progress: 0.5}, nil
	}
	store := &mockStore{service: service}
	path := writeSource(t, "data")

	wf := newTestWorkflow(service, store,
		WithWait(true),
		WithPollInterval(time.Millisecond),
		WithMaxPolls(3),
	)
	_, err := wf.Run(context.Background(), testRequest(path))

	require.Error(t, err)
	assert.ErrorIs(t, err, uperrors.ErrPollLimit)
	assert.Equal(t, 3, service.polls)
}

func TestWorkflow_Run_ContextCancelStopsPolling(t *testing.T) {
	service := &mockService{}
	service.GetUploadFunc = func(ctx context.Context, username, token, uploadID string) (*api.Upload, error) {
		return &api.Upload{ID: "up1", Progress: 0.5}, nil
	}
	store := &mockStore{service: service}
	path := writeSource(t, "data")

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	wf := newTestWorkflow(service, store, WithWait(true), WithPollInterval(5*time.Millisecond))
	_, err := wf.Run(ctx, testRequest(path))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkflow_Run_ReportsStages(t *testing.T) {
	service := &mockService{}
	store := &mockStore{service: service}
	path := writeSource(t, "data")

	var events []string
	reporter := &recordingReporter{events: &events}

	wf := newTestWorkflow(service, store, WithReporter(reporter), WithWait(true), WithPollInterval(time.Millisecond))
	_, err := wf.Run(context.Background(), testRequest(path))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"started " + string(StageRead),
		"done " + string(StageRead),
		"started " + string(StageCredentials),
		"done " + string(StageCredentials),
		"started " + string(StageStage),
		"done " + string(StageStage),
		"started " + string(StageStart),
		"done " + string(StageStart),
		"started " + string(StageAwait),
		"done " + string(StageAwait),
	}, events)
}

type recordingReporter struct {
	events *[]string
}

func (r *recordingReporter) StageStarted(stage Stage) {
	*r.events = append(*r.events, "started "+string(stage))
}

func (r *recordingReporter) StageSucceeded(stage Stage) {
	*r.events = append(*r.events, "done "+string(stage))
}

func (r *recordingReporter) StageFailed(stage Stage, err error) {
	*r.events = append(*r.events, "failed "+string(stage))
}
