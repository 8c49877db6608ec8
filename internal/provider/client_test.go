package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client whose backoff sleeps are recorded instead
// of performed.
func newTestClient(t *testing.T, opts ClientOptions) (*Client, *[]time.Duration) {
	t.Helper()
	if opts.RequestsPerMinute == 0 {
		opts.RequestsPerMinute = 6000 // do not pace tests
	}
	c := NewClient(opts, nil)
	var slept []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestGetJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[1,2,3]}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, ClientOptions{})
	var out struct {
		Data []int `json:"data"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil, &out))
	assert.Equal(t, []int{1, 2, 3}, out.Data)
}

func TestGetJSONUnauthorizedNeverRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, slept := newTestClient(t, ClientOptions{MaxAttempts: 3})
	var out map[string]any
	err := c.GetJSON(context.Background(), srv.URL, nil, &out)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, *slept)
}

func TestGetJSONRateLimitedRetriesWithRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, slept := newTestClient(t, ClientOptions{MaxAttempts: 3, BaseDelay: time.Second})
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil, &out))
	assert.True(t, out.OK)
	assert.Equal(t, int32(2), calls.Load())
	// Retry-After wins over the linear schedule.
	require.Len(t, *slept, 1)
	assert.Equal(t, 7*time.Second, (*slept)[0])
}

func TestGetJSONRateLimitedExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, slept := newTestClient(t, ClientOptions{MaxAttempts: 3, BaseDelay: time.Second})
	err := c.GetJSON(context.Background(), srv.URL, nil, &map[string]any{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load())
	// Linear backoff without a Retry-After hint.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, *slept)
}

func TestGetJSONServerErrorRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, ClientOptions{MaxAttempts: 3})
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil, &out))
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSONServerErrorExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, ClientOptions{MaxAttempts: 2})
	err := c.GetJSON(context.Background(), srv.URL, nil, &map[string]any{})

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestGetJSONOtherClientErrorImmediate(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, ClientOptions{MaxAttempts: 3})
	err := c.GetJSON(context.Background(), srv.URL, nil, &map[string]any{})

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSONMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [unterminated`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, ClientOptions{})
	err := c.GetJSON(context.Background(), srv.URL, nil, &map[string]any{})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestGetJSONPagedUsesHigherCap(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 5 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, ClientOptions{MaxAttempts: 2, MaxPagedAttempts: 6})

	// Simple call gives up before the server recovers.
	err := c.GetJSON(context.Background(), srv.URL, nil, &map[string]any{})
	require.Error(t, err)

	calls.Store(0)
	// Paged call has headroom to ride it out.
	require.NoError(t, c.GetJSONPaged(context.Background(), srv.URL, nil, &map[string]any{}))
}
