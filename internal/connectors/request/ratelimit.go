package request

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultHighWater is the quota fraction above which calls wait
	// for the window to recover.
	DefaultHighWater = 0.85

	// DefaultMaxThrottle caps a single throttle wait. A platform
	// reporting an out-of-range reset epoch must not stall a run for
	// hours.
	DefaultMaxThrottle = 5 * time.Minute

	// defaultRecovery is the throttle wait used when the platform
	// reported no usable reset epoch.
	defaultRecovery = 60 * time.Second
)

// Usage carries the rate-limit signals extracted from one response.
// Zero-valued fields mean the response carried no such signal and the
// tracker keeps its last known good state (fail open, not closed).
type Usage struct {
	// Consumed is the quota used so far in the current window.
	Consumed int
	// Ceiling is the window's call allowance.
	Ceiling int
	// ResetAt is when the window is believed to reset.
	ResetAt time.Time
}

// TrackerConfig tunes a Tracker for one platform.
type TrackerConfig struct {
	// Ceiling is the assumed call allowance before the platform
	// reports one.
	Ceiling int
	// RequestsPerSecond is the proactive pacing rate.
	RequestsPerSecond float64
	// Burst is the pacing bucket size.
	Burst int
	// HighWater overrides DefaultHighWater when in (0, 1].
	HighWater float64
	// MaxThrottle overrides DefaultMaxThrottle when positive.
	MaxThrottle time.Duration
}

// Tracker maintains a rolling estimate of consumed platform quota for
// one (merchant, platform) pair, fed by live response signals.
//
// Concurrent sync runs for the same pair must share one Tracker:
// quota is a platform-side shared resource, and two unaware trackers
// would double-estimate the available budget.
type Tracker struct {
	mu          sync.Mutex
	consumed    int
	ceiling     int
	resetAt     time.Time
	pace        *rate.Limiter
	highWater   float64
	maxThrottle time.Duration
}

// NewTracker creates a tracker with the given tuning.
func NewTracker(cfg TrackerConfig) *Tracker {
	highWater := cfg.HighWater
	if highWater <= 0 || highWater > 1 {
		highWater = DefaultHighWater
	}
	maxThrottle := cfg.MaxThrottle
	if maxThrottle <= 0 {
		maxThrottle = DefaultMaxThrottle
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2.0
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Tracker{
		ceiling:     cfg.Ceiling,
		pace:        rate.NewLimiter(rate.Limit(rps), burst),
		highWater:   highWater,
		maxThrottle: maxThrottle,
	}
}

// Observe updates the tracker from one response's usage signals.
// Called after every request, win or lose: quota is consumed
// regardless of outcome. Absent or malformed signals leave the prior
// state unchanged. Consumption reported over the ceiling is clamped
// and treated as "at limit".
func (t *Tracker) Observe(u Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if u.Ceiling > 0 {
		t.ceiling = u.Ceiling
	}
	if u.Consumed > 0 {
		t.consumed = u.Consumed
		if t.ceiling > 0 && t.consumed > t.ceiling {
			t.consumed = t.ceiling
		}
	}
	if !u.ResetAt.IsZero() {
		t.resetAt = u.ResetAt
	}
}

// PercentUsed returns consumed/ceiling as a fraction in [0, 1].
// Returns 0 when no ceiling is known.
func (t *Tracker) PercentUsed() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percentUsedLocked()
}

func (t *Tracker) percentUsedLocked() float64 {
	if t.ceiling <= 0 {
		return 0
	}
	return float64(t.consumed) / float64(t.ceiling)
}

// ShouldThrottle returns the duration to wait before the next call,
// or zero when the budget allows an immediate call. The wait is capped
// at the configured maximum.
func (t *Tracker) ShouldThrottle() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.percentUsedLocked() < t.highWater {
		return 0
	}

	wait := defaultRecovery
	if !t.resetAt.IsZero() {
		if until := time.Until(t.resetAt); until > 0 {
			wait = until
		}
	}
	if wait > t.maxThrottle {
		wait = t.maxThrottle
	}
	return wait
}

// Wait blocks until it is safe to make a request. It first serves any
// reactive throttle wait, then the proactive pacing bucket, so a small
// inter-request delay applies even when well under quota. Returns
// early with the context's error on cancellation.
func (t *Tracker) Wait(ctx context.Context) error {
	if wait := t.ShouldThrottle(); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return t.pace.Wait(ctx)
}

// Snapshot returns the current consumed and ceiling estimates.
func (t *Tracker) Snapshot() (consumed, ceiling int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consumed, t.ceiling
}
