package ratelimit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher issues GET requests against a single upstream host, spaced by a
// shared Limiter.
type Fetcher struct {
	service    string
	userAgent  string
	limiter    *Limiter
	httpClient *http.Client
}

// NewFetcher builds a Fetcher. service names the upstream in errors and logs.
func NewFetcher(service, userAgent string, limiter *Limiter, httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		service:    service,
		userAgent:  userAgent,
		limiter:    limiter,
		httpClient: httpClient,
	}
}

// Fetch waits for a dispatch slot and performs the request. A non-2xx status
// yields *UpstreamError and the body is closed; the caller owns the body
// otherwise. No retries are attempted.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*http.Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &UpstreamError{Service: f.service, Status: resp.StatusCode}
	}

	return resp, nil
}
