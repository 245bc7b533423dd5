// SPDX-License-Identifier: MIT

package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent identifies API traffic from this tool.
	DefaultUserAgent = "academic-conference-tracker/1.0"
	// BrowserUserAgent is sent to HTML pages that vary markup by client.
	BrowserUserAgent = "Mozilla/5.0"

	// maxResponseBytes caps upstream bodies; anything larger is not a
	// conference listing.
	maxResponseBytes = 10 << 20
)

// HTTPClient is the polite client shared by all sources: one timeout, a
// request rate limiter and traced transport.
type HTTPClient struct {
	http    *http.Client
	limiter *rate.Limiter
}

// NewHTTPClient returns a client with the given per-request timeout.
// A non-positive timeout falls back to 30s.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(4), 8),
	}
}

// Get fetches rawURL and returns the body and status code. Transport
// failures come back as typed errors; HTTP error statuses are returned to
// the caller, which classifies them with source-specific knowledge.
func (c *HTTPClient) Get(ctx context.Context, source, operation, rawURL string, header http.Header) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, &Error{Sentinel: ErrTimeout, Source: source, Operation: operation, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, &Error{Sentinel: ErrBadResponse, Source: source, Operation: operation, Err: err}
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	for key, values := range header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		sentinel := ErrUnavailable
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			sentinel = ErrTimeout
		}
		return nil, 0, &Error{Sentinel: sentinel, Source: source, Operation: operation, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes+1))
	if err != nil {
		sentinel := ErrBadResponse
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			sentinel = ErrTimeout
		}
		return nil, res.StatusCode, &Error{Sentinel: sentinel, Source: source, Operation: operation, Status: res.StatusCode, Err: err}
	}
	if len(body) > maxResponseBytes {
		return nil, res.StatusCode, &Error{
			Sentinel:  ErrBadResponse,
			Source:    source,
			Operation: operation,
			Status:    res.StatusCode,
			Err:       fmt.Errorf("response exceeds %d bytes", maxResponseBytes),
		}
	}
	return body, res.StatusCode, nil
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// HTTPError classifies a non-2xx response into a typed source error.
func HTTPError(source, operation string, status int, body []byte) *Error {
	sentinel := ErrBadResponse
	switch {
	case status == http.StatusForbidden:
		sentinel = ErrForbidden
	case status == http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	case status >= 500:
		sentinel = ErrUnavailable
	}
	return &Error{
		Sentinel:  sentinel,
		Source:    source,
		Operation: operation,
		Status:    status,
		Body:      snippet(body),
	}
}

// snippet keeps error bodies loggable.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 256 {
		s = s[:256]
	}
	return s
}
