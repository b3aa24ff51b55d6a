// Package clients builds the authenticated, retrying HTTP clients
// used by wrappers.
//
// Every request carries a fixed custom header with the credential;
// the header value is sensitive and never appears in logs or error
// text. Transient failures (network errors and configurable transient
// status codes) are retried with exponential backoff up to a fixed
// bound, so worst-case latency per request is MaxRetries+1 attempts.
// Non-transient responses pass through once and are the caller's
// business-logic concern, not a retry concern.
package clients

import (
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/openfdw/openfdw/pkg/logger"
	"github.com/openfdw/openfdw/pkg/metrics"
)

// RetryConfig controls the retry middleware.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// InitialDelay is the backoff before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
	// Multiplier grows the backoff exponentially.
	Multiplier float64
	// RandomizeFactor applies jitter to each delay.
	RandomizeFactor float64
	// TransientStatuses are the response codes considered transient.
	TransientStatuses []int
}

// DefaultRetryConfig mirrors the reference behavior: three retries
// with exponential backoff, retrying only rate limits and gateway
// failures.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		Multiplier:        2.0,
		RandomizeFactor:   0.25,
		TransientStatuses: []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
	}
}

// retryTransport is a RoundTripper wrapping another transport with
// exponential-backoff retry for transient failures.
type retryTransport struct {
	next   http.RoundTripper
	config RetryConfig
	logger *zap.Logger
}

// NewRetryTransport wraps next with the retry middleware. A nil next
// uses http.DefaultTransport.
func NewRetryTransport(next http.RoundTripper, cfg RetryConfig) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &retryTransport{
		next:   next,
		config: cfg,
		logger: logger.Get().With(zap.String("component", "retry_transport")),
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var (
		resp    *http.Response
		lastErr error
	)

	attempts := t.config.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := t.rewind(req); err != nil {
				return nil, err
			}
			delay := t.delay(attempt - 1)
			t.logger.Debug("retrying request",
				zap.Int("attempt", attempt+1),
				zap.String("host", req.URL.Host),
				zap.Duration("delay", delay))
			metrics.RequestRetries.WithLabelValues(req.URL.Host).Inc()

			timer := time.NewTimer(delay)
			select {
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			case <-timer.C:
			}
		}

		resp, lastErr = t.next.RoundTrip(req)
		if lastErr != nil {
			// network-level failure, transient by definition
			if !t.rewindable(req) {
				return nil, lastErr
			}
			continue
		}
		if !t.transient(resp.StatusCode) {
			return resp, nil
		}
		// transient status: the final attempt's response is handed back
		// so the caller sees the terminal status, as is any response
		// whose request body cannot be replayed.
		if attempt == attempts-1 || !t.rewindable(req) {
			return resp, nil
		}
		// drain before closing so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	return nil, lastErr
}

// rewindable reports whether the request body can be replayed for
// another attempt. A consumed body without GetBody cannot.
func (t *retryTransport) rewindable(req *http.Request) bool {
	return req.Body == nil || req.GetBody != nil
}

func (t *retryTransport) rewind(req *http.Request) error {
	if req.Body == nil || req.GetBody == nil {
		return nil
	}
	body, err := req.GetBody()
	if err != nil {
		return err
	}
	req.Body = body
	return nil
}

func (t *retryTransport) transient(status int) bool {
	for _, s := range t.config.TransientStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (t *retryTransport) delay(attempt int) time.Duration {
	d := float64(t.config.InitialDelay) * math.Pow(t.config.Multiplier, float64(attempt))
	if max := float64(t.config.MaxDelay); d > max {
		d = max
	}
	if f := t.config.RandomizeFactor; f > 0 {
		delta := d * f
		d = d - delta + rand.Float64()*2*delta
	}
	return time.Duration(d)
}
