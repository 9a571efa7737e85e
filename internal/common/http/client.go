// internal/common/http/client.go
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"healing-guide/internal/common/metrics"
)

var (
	ErrTimeout         = errors.New("UPSTREAM_TIMEOUT")
	ErrRequestFailed   = errors.New("UPSTREAM_REQUEST_FAILED")
	ErrRetriesExceeded = errors.New("UPSTREAM_RETRIES_EXCEEDED")
)

// Client issues vendor API calls with bounded retries and records
// upstream metrics under provider.
type Client struct {
	httpClient *http.Client
	provider   string
	maxRetries int
	baseDelay  time.Duration
}

func NewClient(provider string, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		provider:   provider,
		maxRetries: maxRetries,
		baseDelay:  100 * time.Millisecond,
	}
}

// WithHTTPClient swaps the transport, used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Provider() string {
	return c.provider
}

// RequestFactory builds a fresh request per attempt so bodies can be replayed.
type RequestFactory func(ctx context.Context) (*http.Request, error)

// Do sends a single request without retries.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// DoWithRetry retries network failures, 429 and 5xx responses with
// exponential backoff (100ms, 200ms, 400ms, ...). Any other response is
// returned to the caller unread, including 4xx.
func (c *Client) DoWithRetry(ctx context.Context, operation string, build RequestFactory) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			}
		}

		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		c.observe(operation, resp, err, time.Since(start))

		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			}
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			lastErr = &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
			continue
		}

		return resp, nil
	}

	var statusErr *StatusError
	if errors.As(lastErr, &statusErr) {
		return nil, statusErr
	}
	return nil, fmt.Errorf("%w: %v", ErrRetriesExceeded, lastErr)
}

func (c *Client) observe(operation string, resp *http.Response, err error, elapsed time.Duration) {
	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(c.provider, operation, status).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(c.provider, operation).Observe(elapsed.Seconds())
}

// StatusError is a non-success vendor response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// ReadError drains a failed response into a StatusError.
func ReadError(resp *http.Response) *StatusError {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
