package rest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/saturnines/ledger-core/pkg/config"
)

// maxBackoff caps a single wait between attempts
const maxBackoff = 30 * time.Second

// RetryTransport retries idempotent requests on timeouts and on the status
// codes listed in the config, with full-jitter exponential backoff.
type RetryTransport struct {
	Base http.RoundTripper
	Cfg  *config.RetryConfig
}

// NewRetryTransport wraps base, or http.DefaultTransport when nil
func NewRetryTransport(base http.RoundTripper, cfg *config.RetryConfig) *RetryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RetryTransport{Base: base, Cfg: cfg}
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Cfg == nil || t.Cfg.MaxAttempts <= 1 {
		return t.Base.RoundTrip(req)
	}

	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodPut,
		http.MethodDelete, http.MethodOptions, http.MethodTrace:
	default:
		return t.Base.RoundTrip(req)
	}

	body, err := readBody(req)
	if err != nil {
		return nil, fmt.Errorf("retry transport: read request body: %w", err)
	}

	var lastErr error
	var lastResp *http.Response

	for attempt := 0; attempt < t.Cfg.MaxAttempts; attempt++ {
		resp, err := t.Base.RoundTrip(cloneRequest(req, body))

		if err != nil {
			var netErr net.Error
			if !errors.As(err, &netErr) || !netErr.Timeout() {
				closeBody(lastResp)
				return nil, err
			}
			lastErr = err
		} else {
			if !slices.Contains(t.Cfg.RetryableStatuses, resp.StatusCode) {
				closeBody(lastResp)
				return resp, nil
			}
			closeBody(lastResp)
			lastResp = resp
		}

		if attempt == t.Cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-req.Context().Done():
			closeBody(lastResp)
			return nil, req.Context().Err()
		case <-time.After(t.backoff(attempt)):
		}
	}

	// the last retryable response is handed back for the caller to report
	if lastResp != nil {
		return lastResp, nil
	}
	return nil, fmt.Errorf("retry transport failed after %d attempts: %w", t.Cfg.MaxAttempts, lastErr)
}

// readBody buffers the request body so every attempt can resend it
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

// cloneRequest copies the request with a fresh reader over body
func cloneRequest(r *http.Request, body []byte) *http.Request {
	r2 := r.Clone(r.Context())
	if body != nil {
		r2.Body = io.NopCloser(bytes.NewReader(body))
		r2.ContentLength = int64(len(body))
	}
	return r2
}

// backoff picks a random wait in [0, initial * multiplier^attempt]
func (t *RetryTransport) backoff(attempt int) time.Duration {
	base := time.Duration(t.Cfg.InitialBackoff * float64(time.Second))
	ceiling := time.Duration(float64(base) * math.Pow(t.Cfg.BackoffMultiplier, float64(attempt)))
	if ceiling > maxBackoff {
		ceiling = maxBackoff
	}
	return time.Duration(rand.Float64() * float64(ceiling))
}

func closeBody(resp *http.Response) {
	if resp != nil {
		resp.Body.Close()
	}
}
