package provider

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 2 << 20 // 2 MiB, enough for a 500px avatar
)

// FetchResponse is the status and body of a completed GET.
type FetchResponse struct {
	StatusCode int
	Body       []byte
}

// Fetcher issues GET requests. Redirects are followed; any status is returned
// as-is and callers decide what a non-200 means.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (*FetchResponse, error)
}

// HTTPFetcher is the net/http Fetcher. Every fetch is a client span under the
// global TracerProvider unless opts override it.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration, opts ...otelhttp.Option) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport, opts...),
		},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (*FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxResponseBytes)
	}
	return &FetchResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// Hasher fingerprints content. Providers use it both to build hash-keyed URLs
// and to recognise placeholder images, so it must be stable across runs.
type Hasher interface {
	Sum(data []byte) string
}

// MD5Hasher returns lower-case hex MD5, the Gravatar addressing scheme.
type MD5Hasher struct{}

func (MD5Hasher) Sum(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// probeHealth treats any response below 500 as reachable.
func probeHealth(ctx context.Context, f Fetcher, url string, headers map[string]string) (bool, int64, error) {
	start := time.Now()
	resp, err := f.Fetch(ctx, url, headers)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return false, latency, err
	}
	return resp.StatusCode < http.StatusInternalServerError, latency, nil
}
