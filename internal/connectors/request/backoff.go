package request

import (
	"math/rand"
	"time"
)

const (
	// DefaultBackoffBase is the first retry delay before jitter.
	DefaultBackoffBase = 500 * time.Millisecond

	// MaxJitter bounds the random component added to each delay.
	MaxJitter = time.Second
)

// BackoffPolicy maps a retry attempt number to a delay.
// Delay grows exponentially: base * 2^attempt + jitter, with attempt
// starting at 0. Deterministic apart from the jitter source, which is
// injectable for tests.
type BackoffPolicy struct {
	// Base is the delay for attempt 0 before jitter.
	Base time.Duration

	// Jitter returns a random duration in [0, max). Defaults to the
	// package-level source when nil.
	Jitter func(max time.Duration) time.Duration
}

// DefaultBackoff returns the policy used by all platform connectors.
func DefaultBackoff() BackoffPolicy {
	return BackoffPolicy{Base: DefaultBackoffBase}
}

// Delay returns the wait before retry number attempt (0-based).
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	base := p.Base
	if base <= 0 {
		base = DefaultBackoffBase
	}

	jitter := p.Jitter
	if jitter == nil {
		jitter = randomJitter
	}

	return base<<uint(attempt) + jitter(MaxJitter)
}

// randomJitter returns a uniformly random duration in [0, max).
func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}
