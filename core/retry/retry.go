// Package retry holds the bounded retry policy shared by outbound Telegram
// calls and staff notifications.
package retry

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"
)

// Policy describes how many times an operation is attempted and how long to
// wait between attempts.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// Backoff is the pause after a failed attempt.
	Backoff time.Duration
	// Linear multiplies Backoff by the attempt number.
	Linear bool
	// Retryable decides whether an error deserves another attempt.
	// Nil retries every error.
	Retryable func(error) bool
	// OnRetry is called before sleeping between attempts.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Default returns three attempts with a fixed one second pause.
func Default() Policy {
	return Policy{MaxAttempts: 3, Backoff: time.Second}
}

// Do runs fn until it succeeds, the attempts are exhausted, the error is not
// retryable or ctx is done. It reports how many attempts were made.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return attempt - 1, errors.Join(lastErr, err)
			}
			return attempt - 1, err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt, nil
		}
		if attempt == attempts || (p.Retryable != nil && !p.Retryable(lastErr)) {
			return attempt, lastErr
		}

		delay := p.delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, lastErr)
		}
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}
	}
	return attempts, lastErr
}

func (p Policy) delay(attempt int) time.Duration {
	if p.Linear {
		return p.Backoff * time.Duration(attempt)
	}
	return p.Backoff
}

// Transient reports whether a network error is worth retrying.
// It focuses on dial and timeout failures produced by net/http while
// contacting the Telegram API.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() || opErr.Op == "dial" {
			return true
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return Transient(urlErr.Err)
		}
	}

	return false
}
