package telegram

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/geeksandijan/hrbot/core/retry"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultResponseTimeout   = 5 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	defaultRetryAttempts     = 3
	defaultRetryBackoff      = 2 * time.Second
	defaultClientTimeout     = 30 * time.Second
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// pollTimeout is how long getUpdates may hold a request open. Dial and
// timeout failures are retried with a linear backoff.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	clientTimeout := defaultClientTimeout
	if floor := pollTimeout + 2*defaultResponseTimeout; floor > clientTimeout {
		clientTimeout = floor
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ResponseHeaderTimeout: defaultResponseTimeout + pollTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout: clientTimeout,
		Transport: &retryTransport{
			base: transport,
			policy: retry.Policy{
				MaxAttempts: defaultRetryAttempts + 1,
				Backoff:     defaultRetryBackoff,
				Linear:      true,
			},
		},
	}
}

type retryTransport struct {
	base   http.RoundTripper
	policy retry.Policy
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	// a consumed body without GetBody cannot be sent again
	rewindable := req.Body == nil || req.GetBody != nil
	policy := t.policy
	policy.Retryable = func(err error) bool { return rewindable && retry.Transient(err) }

	var (
		resp    *http.Response
		attempt int
	)
	_, err := policy.Do(req.Context(), func(ctx context.Context) error {
		attempt++
		curr := req
		if attempt > 1 {
			curr = req.Clone(ctx)
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return err
				}
				curr.Body = body
			}
		}
		r, err := base.RoundTrip(curr)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
