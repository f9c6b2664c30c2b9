package object

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher resolves a document reference that may be a public URL issued by
// the store, a bare storage path, or an external http(s) URL.
type Fetcher struct {
	Store  ObjectStore
	Client *http.Client
}

// NewFetcher returns a Fetcher with a bounded HTTP client.
func NewFetcher(store ObjectStore) *Fetcher {
	return &Fetcher{Store: store, Client: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch returns the referenced bytes.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if f.Store != nil {
		if p, ok := f.Store.PathFromURL(ref); ok {
			return Download(ctx, f.Store, p)
		}
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return f.fetchHTTP(ctx, ref)
	}
	if f.Store != nil && ValidPath(ref) {
		return Download(ctx, f.Store, ref)
	}
	return nil, fmt.Errorf("%w: unresolvable reference %q", ErrNotFound, ref)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrStorage, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrStorage, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrStorage, url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, url, err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrStorage, url, maxDownloadBytes)
	}
	return data, nil
}
