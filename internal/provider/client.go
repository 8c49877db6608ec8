package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// ClientOptions holds every numeric knob of the fetch client. Zero values
// fall back to the defaults below.
type ClientOptions struct {
	BaseDelay         time.Duration // linear backoff unit
	MaxAttempts       int           // cap for simple calls
	MaxPagedAttempts  int           // cap used inside pagination loops
	RequestsPerMinute int           // token-bucket pacing
	Timeout           time.Duration
}

const (
	defaultBaseDelay   = time.Second
	defaultAttempts    = 3
	defaultPagedCap    = 10
	defaultPerMinute   = 60
	defaultHTTPTimeout = 30 * time.Second
)

// Client issues paced, retrying GET requests against upstream JSON APIs.
// Calls are strictly sequential; upstream rate limits are tight enough that
// concurrency would only trade progress for 429 responses.
type Client struct {
	httpClient       *http.Client
	limiter          *rate.Limiter
	baseDelay        time.Duration
	maxAttempts      int
	maxPagedAttempts int
	logger           *slog.Logger

	// sleep is swapped out by tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a fetch client with rate limiting and retry/backoff.
func NewClient(opts ClientOptions, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultAttempts
	}
	if opts.MaxPagedAttempts <= 0 {
		opts.MaxPagedAttempts = defaultPagedCap
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = defaultPerMinute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultHTTPTimeout
	}
	rps := float64(opts.RequestsPerMinute) / 60.0
	return &Client{
		httpClient:       &http.Client{Timeout: opts.Timeout},
		limiter:          rate.NewLimiter(rate.Limit(rps), opts.RequestsPerMinute),
		baseDelay:        opts.BaseDelay,
		maxAttempts:      opts.MaxAttempts,
		maxPagedAttempts: opts.MaxPagedAttempts,
		logger:           logger,
		sleep:            sleepCtx,
	}
}

// GetJSON fetches url and decodes the 2xx body into out, retrying transient
// failures up to the simple-call attempt cap.
func (c *Client) GetJSON(ctx context.Context, url string, headers http.Header, out interface{}) error {
	return c.getJSON(ctx, url, headers, out, c.maxAttempts)
}

// GetJSONPaged behaves like GetJSON with the higher attempt cap meant for
// pagination loops, where a single lost page aborts the whole traversal.
func (c *Client) GetJSONPaged(ctx context.Context, url string, headers http.Header, out interface{}) error {
	return c.getJSON(ctx, url, headers, out, c.maxPagedAttempts)
}

func (c *Client) getJSON(ctx context.Context, url string, headers http.Header, out interface{}, attempts int) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		body, status, retryAfter, err := c.do(ctx, url, headers)
		if err != nil {
			// Transport failure: transient, backoff and retry.
			lastErr = err
			c.logger.Warn("upstream request failed", "url", url, "attempt", attempt, "error", err)
			if err := c.backoff(ctx, attempt, ""); err != nil {
				return err
			}
			continue
		}

		switch {
		case status == http.StatusUnauthorized:
			// Credential is presumed permanently invalid for this call.
			return &UpstreamError{StatusCode: status, URL: url}

		case status == http.StatusTooManyRequests:
			lastErr = &UpstreamError{StatusCode: status, URL: url}
			c.logger.Warn("upstream rate limited", "url", url, "attempt", attempt, "retry_after", retryAfter)
			if err := c.backoff(ctx, attempt, retryAfter); err != nil {
				return err
			}
			continue

		case status >= http.StatusInternalServerError:
			lastErr = &UpstreamError{StatusCode: status, URL: url}
			c.logger.Warn("upstream server error", "url", url, "status", status, "attempt", attempt)
			if err := c.backoff(ctx, attempt, ""); err != nil {
				return err
			}
			continue

		case status < 200 || status >= 300:
			// Remaining 4xx are not transient; surface immediately.
			return &UpstreamError{StatusCode: status, URL: url}
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrMalformed, url, err)
		}
		return nil
	}
	return lastErr
}

// do performs one GET and returns the body, status, and any Retry-After hint.
func (c *Client) do(ctx context.Context, url string, headers http.Header) (body []byte, status int, retryAfter string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, "", fmt.Errorf("create request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, "", fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, resp.Header.Get("Retry-After"), nil
}

// backoff sleeps for the upstream's Retry-After hint when given, else
// baseDelay * attempt (linear).
func (c *Client) backoff(ctx context.Context, attempt int, retryAfter string) error {
	wait := c.baseDelay * time.Duration(attempt)
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	return c.sleep(ctx, wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
