package remote

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/envelopa/dpgf-ingest/internal/logger"
)

// HTTPConfig carries the connection settings for a remote file server.
type HTTPConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// HTTPSource fetches candidate files from an HTTP document server.
type HTTPSource struct {
	client    *resty.Client
	appLogger *logger.Logger
}

// NewHTTPSource builds a source with retries and a bounded request timeout.
func NewHTTPSource(config HTTPConfig, appLogger *logger.Logger) *HTTPSource {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")
	if config.Token != "" {
		client.SetAuthToken(config.Token)
	}

	return &HTTPSource{
		client:    client,
		appLogger: appLogger,
	}
}

type listEnvelope struct {
	Files []File `json:"files"`
}

// List fetches the server's file listing. Entries the server did not score
// get a confidence from ScoreFilename.
func (hs *HTTPSource) List(ctx context.Context) ([]File, error) {
	const component = "remote.HTTPSource.List"

	var envelope listEnvelope
	resp, err := hs.client.R().
		SetContext(ctx).
		SetResult(&envelope).
		Get("/files")
	if err != nil {
		return nil, fmt.Errorf("failed to list remote files: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to list remote files: status %s", resp.Status())
	}

	files := envelope.Files
	for i := range files {
		if files[i].Confidence == 0 {
			files[i].Confidence = ScoreFilename(files[i].Name)
		}
	}

	hs.appLogger.Info(component, "remote listing fetched: files=%d", len(files))
	return files, nil
}

// Download streams one file into destDir and returns the local path. The
// destination name is reduced to its base so a hostile listing cannot write
// outside destDir.
func (hs *HTTPSource) Download(ctx context.Context, f File, destDir string) (string, error) {
	const component = "remote.HTTPSource.Download"

	dest := filepath.Join(destDir, filepath.Base(f.Name))
	resp, err := hs.client.R().
		SetContext(ctx).
		SetOutput(dest).
		Get("/files/" + url.PathEscape(f.ID))
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to download %s: status %s", f.Name, resp.Status())
	}

	hs.appLogger.Debug(component, "file downloaded: name=%s dest=%s sizeMB=%.2f", f.Name, dest, f.SizeMB)
	return dest, nil
}
