package packs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"creed-trivia/internal/domain"
)

// maxPackBytes caps a single pack download.
const maxPackBytes = 16 << 20

// Fetcher returns the raw bytes of a pack path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// HTTPFetcher downloads packs over HTTP. Relative paths are resolved against baseURL.
type HTTPFetcher struct {
	client  *http.Client
	baseURL string
}

func NewHTTPFetcher(client *http.Client, baseURL string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	reqURL := path
	if !isRemote(path) {
		reqURL = f.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrSourceUnavailable, reqURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPackBytes))
}

// FileFetcher reads packs from a directory on disk.
type FileFetcher struct {
	root string
}

func NewFileFetcher(root string) *FileFetcher {
	if root == "" {
		root = "."
	}
	return &FileFetcher{root: root}
}

func (f *FileFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.root, filepath.Clean("/"+path)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return data, nil
}

// DatabasePrefix marks pack paths stored in the database, e.g. "pg:office".
const DatabasePrefix = "pg:"

// SchemeFetcher sends http(s) paths to Remote, pg: paths to Database and
// everything else to Local.
type SchemeFetcher struct {
	Remote   Fetcher
	Database Fetcher
	Local    Fetcher
}

func (f SchemeFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if isRemote(path) && f.Remote != nil {
		return f.Remote.Fetch(ctx, path)
	}
	if strings.HasPrefix(path, DatabasePrefix) {
		if f.Database == nil {
			return nil, fmt.Errorf("%w: no database configured for %s", domain.ErrSourceUnavailable, path)
		}
		return f.Database.Fetch(ctx, path)
	}
	if f.Local == nil {
		return nil, fmt.Errorf("%w: no fetcher for %s", domain.ErrSourceUnavailable, path)
	}
	return f.Local.Fetch(ctx, path)
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
