// Package upload orchestrates publishing a local file as a hosted tileset.
// It drives four sequential stages: fetch temporary staging credentials from
// the upload service, write the file to the staging bucket those credentials
// name, register the staged object for processing under a tileset
// identifier, and optionally poll the processing job until it reaches a
// terminal state.
//
// The workflow is strictly sequential: each stage's success is a
// precondition for the next, and a failure at any stage aborts the run.
// There are no retries, no resume, and no reconciliation: once the staging
// write succeeds the object exists remotely regardless of whether the later
// stages fail.
//
// Example usage:
//
//	client := api.New()
//	wf := upload.New(client, upload.WithWait(true))
//	job, err := wf.Run(ctx, upload.Request{
//	    Path:     "streets.mbtiles",
//	    Name:     "Street data",
//	    Slug:     "streets",
//	    Username: "alice",
//	    Token:    os.Getenv("MAPBOX_ACCESS_TOKEN"),
//	})
package upload
