package request

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	// MaxAttempts is the total number of tries for one logical request.
	// A request failing transiently is sent exactly this many times
	// before the failure surfaces.
	MaxAttempts = 3
)

// Response is one platform reply, body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Call describes one logical platform request for the executor.
// Send performs a single attempt; the executor decides how often Send
// runs. Send must be safe to invoke repeatedly.
type Call struct {
	// Send performs one attempt and returns the reply.
	// A returned error means the request never produced a reply
	// (network failure) and is treated as transient.
	Send func(ctx context.Context) (*Response, error)

	// Classify maps a reply to an error classification: nil for
	// success, or an error recognised by IsTransient, IsAuthExpired
	// or IsPermanent. When nil, DefaultClassify is used.
	Classify func(resp *Response) error

	// Usage extracts rate-limit signals from a reply. Optional.
	Usage func(resp *Response) Usage
}

// Executor issues logical requests against one platform, consulting
// the shared rate-limit tracker before each attempt, feeding every
// reply back into the tracker, and retrying transient failures with
// jittered exponential backoff up to MaxAttempts.
type Executor struct {
	tracker     *Tracker
	backoff     BackoffPolicy
	maxAttempts int
}

// NewExecutor creates an executor bound to a tracker and policy.
func NewExecutor(tracker *Tracker, backoff BackoffPolicy) *Executor {
	return &Executor{
		tracker:     tracker,
		backoff:     backoff,
		maxAttempts: MaxAttempts,
	}
}

// Tracker returns the executor's rate-limit tracker.
func (e *Executor) Tracker() *Tracker {
	return e.tracker
}

// Do runs one logical request to completion.
//
// Transient failures (network errors, 5xx, rate-limit rejections) are
// retried with backoff until the attempt ceiling, then surfaced as a
// TransientError. Authentication expiry surfaces immediately with zero
// retries, as does any permanent rejection. Every reply updates the
// tracker, win or lose, since quota is consumed regardless of outcome.
func (e *Executor) Do(ctx context.Context, call Call) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := e.sleep(ctx, e.backoff.Delay(attempt-1)); err != nil {
				return nil, err
			}
		}

		if err := e.tracker.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		resp, err := call.Send(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if call.Usage != nil {
			e.tracker.Observe(call.Usage(resp))
		}

		classify := call.Classify
		if classify == nil {
			classify = DefaultClassify
		}

		switch cls := classify(resp); {
		case cls == nil:
			return resp, nil
		case IsAuthExpired(cls):
			return nil, cls
		case IsTransient(cls):
			lastErr = cls
		default:
			return nil, cls
		}
	}

	if IsTransient(lastErr) {
		return nil, lastErr
	}
	return nil, Transient(lastErr)
}

// sleep waits for d or until the context is cancelled, whichever
// comes first. Backoff sleeps must return early on cancellation.
func (e *Executor) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// DefaultClassify applies plain HTTP semantics: 2xx success, 429 and
// 5xx transient, 401 auth expired, any other 4xx permanent.
func DefaultClassify(resp *Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return Transient(fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return Transient(fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusUnauthorized:
		return AuthExpired(fmt.Errorf("status %d", resp.StatusCode))
	default:
		return Permanent(fmt.Errorf("status %d", resp.StatusCode))
	}
}
