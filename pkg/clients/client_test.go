package clients

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(maxRetries int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxRetries = maxRetries
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestClientAttachesCredentialHeader(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("x-api-key"))
	}))
	defer srv.Close()

	client := New(Config{Credential: "secret-token", Retry: fastRetry(0)})
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "secret-token", seen.Load())
}

func TestClientCustomHeaderName(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("X-Custom-Auth"))
	}))
	defer srv.Close()

	client := New(Config{Credential: "tok", HeaderName: "X-Custom-Auth", Retry: fastRetry(0)})
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "tok", seen.Load())
}

func TestClientBearerAuth(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	client := New(Config{Credential: "tok", AuthStyle: AuthStyleBearer, Retry: fastRetry(0)})
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok", seen.Load())
}

func TestRetryTransientThenSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry(3))}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetryExhaustionReturnsLastResponse(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry(3))}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	// the terminal status is handed back, not swallowed into an error
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestRetrySkipsNonTransientStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry(3))}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryNetworkErrorExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from now on

	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry(2))}
	_, err := client.Get(srv.URL)
	assert.Error(t, err)
}

func TestRetryReplaysRewindableBody(t *testing.T) {
	var calls int32
	var bodies sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		body, _ := io.ReadAll(r.Body)
		bodies.Store(n, string(body))
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry(3))}
	resp, err := client.Post(srv.URL, "application/json", bytes.NewReader([]byte(`{"id":1}`)))
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
	for _, n := range []int32{1, 2} {
		body, ok := bodies.Load(n)
		require.True(t, ok)
		assert.Equal(t, `{"id":1}`, body)
	}
}

func TestRetrySkippedWhenBodyNotRewindable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
	require.NoError(t, err)
	// a streamed body with no way to replay it
	req.Body = io.NopCloser(strings.NewReader("one-shot"))
	req.ContentLength = -1

	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry(3))}
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	// the transient status is handed back after a single attempt
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryDelayGrowsAndCaps(t *testing.T) {
	tr := &retryTransport{config: RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     300 * time.Millisecond,
		Multiplier:   2.0,
	}}

	assert.Equal(t, 100*time.Millisecond, tr.delay(0))
	assert.Equal(t, 200*time.Millisecond, tr.delay(1))
	assert.Equal(t, 300*time.Millisecond, tr.delay(2))
	assert.Equal(t, 300*time.Millisecond, tr.delay(5))
}
