package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/PeterMaltzoff/huh/pkg/observability"
)

// Sentinel errors for HTTP operations.
var (
	// ErrNetwork is returned for transport failures and 5xx responses.
	ErrNetwork = errors.New("network error")

	// ErrStatus is returned for non-2xx responses that are not retried.
	ErrStatus = errors.New("unexpected status")
)

// DefaultTimeout bounds a single request. Model calls are slow, so this is
// generous.
const DefaultTimeout = 5 * time.Minute

// maxErrorBody limits how much of an error response is kept for messages.
const maxErrorBody = 4 << 10

// StatusError carries the status and body of a failed response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Client posts JSON documents with retry on transient failures.
type Client struct {
	http     *http.Client
	attempts int
	delay    time.Duration
}

// NewClient returns a client using hc, or a client with [DefaultTimeout]
// when hc is nil. Failed requests are tried 3 times with backoff starting
// at one second.
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{http: hc, attempts: 3, delay: time.Second}
}

// WithRetry returns a copy of c with a different retry policy.
func (c *Client) WithRetry(attempts int, delay time.Duration) *Client {
	cp := *c
	cp.attempts = attempts
	cp.delay = delay
	return &cp
}

// PostJSON encodes in, posts it to url and decodes a 2xx response into out.
// Transport errors and 5xx responses are retried; other statuses fail with
// a [*StatusError] wrapping [ErrStatus].
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return Retry(ctx, c.attempts, c.delay, func() error {
		return c.post(ctx, url, body, out)
	})
}

func (c *Client) post(ctx context.Context, url string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	se := &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	if resp.StatusCode >= 500 {
		return &RetryableError{Err: fmt.Errorf("%w: %w", ErrNetwork, se)}
	}
	return fmt.Errorf("%w: %w", ErrStatus, se)
}

// IsTimeout reports whether err is a network timeout.
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
