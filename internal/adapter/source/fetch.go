// Package source reads the one-shot input datasets from local files or
// http(s) URLs.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is quoted in errors.
const maxErrorBody = 512

// Fetcher opens dataset locations. A location with an http:// or https://
// prefix is fetched with a GET; anything else is opened as a file.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher whose remote requests time out after timeout.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Open returns the dataset body. The caller must close it.
func (f *Fetcher) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !isRemote(location) {
		file, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", location, err)
		}
		return file, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("fetch %s: status %d: %s", location, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	f.logger.Debug("dataset fetched", "location", location, "duration", time.Since(start))
	return resp.Body, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
