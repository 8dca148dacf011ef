package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxSnapshotBytes = 4 << 20

// Fetcher retrieves the raw NBU snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]byte, error) { return f(ctx) }

// HTTPFetcher issues a single unauthenticated GET against the rates endpoint.
type HTTPFetcher struct {
	client    *http.Client
	url       string
	userAgent string
}

func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	if url == "" {
		url = DefaultRatesURL
	}
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		url:       url,
		userAgent: "rate-converter/1.0 (+https://github.com/omerorhan/rate-converter)",
	}
}

// NewHTTPFetcherWithClient uses a caller-provided client, e.g. one with a custom transport.
func NewHTTPFetcherWithClient(url string, client *http.Client) *HTTPFetcher {
	f := NewHTTPFetcher(url, 0)
	if client != nil {
		f.client = client
	}
	return f
}

func (f *HTTPFetcher) URL() string { return f.url }

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rates http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxSnapshotBytes {
		return nil, fmt.Errorf("rates response exceeds %d bytes", maxSnapshotBytes)
	}
	return body, nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
