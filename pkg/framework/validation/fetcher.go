package validation

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetcher reports the HTTP status of url. Implementations must stop work
// when ctx is cancelled.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (int, error)
}

type FetcherFunc func(ctx context.Context, url string) (int, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (int, error) {
	return f(ctx, url)
}

// HTTPFetcher issues a GET and discards the body.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{Client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	return resp.StatusCode, nil
}
