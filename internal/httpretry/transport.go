// Package httpretry provides an http.RoundTripper that retries transient
// failures with exponential backoff. The ingestion pipeline performs no
// retries of its own; this transport is the single place retry policy lives.
package httpretry

import (
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxRetries is the retry budget after the initial attempt.
const DefaultMaxRetries = 3

// Transport retries requests that fail with a network error, a 429 or a 5xx
// response. Requests whose body cannot be replayed are passed through
// untouched.
type Transport struct {
	// Base is the underlying round tripper; http.DefaultTransport when nil.
	Base http.RoundTripper

	// MaxRetries bounds retry attempts; DefaultMaxRetries when zero.
	MaxRetries uint64

	// backOff overrides the backoff policy, for tests.
	backOff func() backoff.BackOff
}

// New returns a Transport with default policy on http.DefaultTransport.
func New() *Transport {
	return &Transport{}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		return t.base().RoundTrip(req)
	}

	var resp *http.Response
	operation := func() error {
		if req.Body != nil {
			body, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(err)
			}
			req.Body = body
		}

		r, err := t.base().RoundTrip(req)
		if err != nil {
			return err
		}
		if retryable(r.StatusCode) {
			// Drain so the underlying connection can be reused.
			_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, 4<<10))
			_ = r.Body.Close()
			return fmt.Errorf("transient status: %s", r.Status)
		}

		resp = r
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(t.newBackOff(), t.maxRetries()), req.Context())
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}
	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) maxRetries() uint64 {
	if t.MaxRetries > 0 {
		return t.MaxRetries
	}
	return DefaultMaxRetries
}

func (t *Transport) newBackOff() backoff.BackOff {
	if t.backOff != nil {
		return t.backOff()
	}
	return backoff.NewExponentialBackOff()
}

// retryable reports whether a status code is worth another attempt.
// 4xx responses other than 429 are deterministic and never retried.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
