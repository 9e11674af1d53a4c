package client

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileFetcher reads static resources from an http(s) URL or the local filesystem.
type FileFetcher struct {
	baseDir    string
	httpClient *http.Client
}

// NewFileFetcher creates a fetcher. Relative local paths resolve against baseDir.
func NewFileFetcher(baseDir string, timeout time.Duration) *FileFetcher {
	return &FileFetcher{
		baseDir:    baseDir,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch returns the raw bytes at location.
func (f *FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, fmt.Errorf("empty file location")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return get(ctx, f.httpClient, location)
	}

	path := location
	if !filepath.IsAbs(path) && f.baseDir != "" {
		path = filepath.Join(f.baseDir, path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
