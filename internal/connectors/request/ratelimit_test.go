package request

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Observe(t *testing.T) {
	t.Run("tracks consumption and ceiling from signals", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{})

		tracker.Observe(Usage{Consumed: 40, Ceiling: 200})

		consumed, ceiling := tracker.Snapshot()
		assert.Equal(t, 40, consumed)
		assert.Equal(t, 200, ceiling)
	})

	t.Run("keeps last known state on absent signals", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{})
		tracker.Observe(Usage{Consumed: 40, Ceiling: 200})

		tracker.Observe(Usage{})

		consumed, ceiling := tracker.Snapshot()
		assert.Equal(t, 40, consumed)
		assert.Equal(t, 200, ceiling)
	})

	t.Run("clamps consumption over the ceiling", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{})

		tracker.Observe(Usage{Consumed: 350, Ceiling: 200})

		consumed, _ := tracker.Snapshot()
		assert.Equal(t, 200, consumed)
		assert.Equal(t, 1.0, tracker.PercentUsed())
	})
}

func TestTracker_PercentUsed(t *testing.T) {
	t.Run("is consumed over ceiling", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{})
		tracker.Observe(Usage{Consumed: 50, Ceiling: 200})

		assert.InDelta(t, 0.25, tracker.PercentUsed(), 1e-9)
	})

	t.Run("is zero with no known ceiling", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{})

		assert.Zero(t, tracker.PercentUsed())
	})
}

func TestTracker_ShouldThrottle(t *testing.T) {
	t.Run("fails open with no signals seen", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{})

		assert.Zero(t, tracker.ShouldThrottle())
	})

	t.Run("passes below the high-water mark", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{})
		tracker.Observe(Usage{Consumed: 84, Ceiling: 100})

		assert.Zero(t, tracker.ShouldThrottle())
	})

	t.Run("throttles at the high-water mark", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{})
		tracker.Observe(Usage{Consumed: 85, Ceiling: 100})

		assert.Positive(t, tracker.ShouldThrottle())
	})

	t.Run("waits until the reported reset", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{})
		tracker.Observe(Usage{Consumed: 95, Ceiling: 100, ResetAt: time.Now().Add(10 * time.Second)})

		wait := tracker.ShouldThrottle()
		assert.Greater(t, wait, 8*time.Second)
		assert.LessOrEqual(t, wait, 10*time.Second)
	})

	t.Run("uses the default recovery without a reset epoch", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{})
		tracker.Observe(Usage{Consumed: 95, Ceiling: 100})

		assert.Equal(t, defaultRecovery, tracker.ShouldThrottle())
	})

	t.Run("caps the wait at the configured maximum", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{MaxThrottle: 2 * time.Second})
		// An absurd reset hours out must not stall the run.
		tracker.Observe(Usage{Consumed: 100, Ceiling: 100, ResetAt: time.Now().Add(6 * time.Hour)})

		assert.Equal(t, 2*time.Second, tracker.ShouldThrottle())
	})

	t.Run("honours a custom high-water mark", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{HighWater: 0.5})
		tracker.Observe(Usage{Consumed: 51, Ceiling: 100})

		assert.Positive(t, tracker.ShouldThrottle())
	})
}

func TestTracker_Wait(t *testing.T) {
	t.Run("returns promptly under quota", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{RequestsPerSecond: 10000, Burst: 10})

		start := time.Now()
		err := tracker.Wait(context.Background())

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("returns the context error on cancellation", func(t *testing.T) {
		tracker := NewTracker(TrackerConfig{MaxThrottle: time.Minute})
		tracker.Observe(Usage{Consumed: 100, Ceiling: 100})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := tracker.Wait(ctx)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestTrackerRegistry(t *testing.T) {
	t.Run("shares one tracker per merchant and platform", func(t *testing.T) {
		registry := NewTrackerRegistry()

		a := registry.For("merchant-1", "facebook", TrackerConfig{})
		b := registry.For("merchant-1", "facebook", TrackerConfig{})

		assert.Same(t, a, b)
	})

	t.Run("separates merchants and platforms", func(t *testing.T) {
		registry := NewTrackerRegistry()

		a := registry.For("merchant-1", "facebook", TrackerConfig{})
		b := registry.For("merchant-2", "facebook", TrackerConfig{})
		c := registry.For("merchant-1", "pinterest", TrackerConfig{})

		assert.NotSame(t, a, b)
		assert.NotSame(t, a, c)
	})

	t.Run("concurrent runs feed the same budget", func(t *testing.T) {
		registry := NewTrackerRegistry()

		a := registry.For("merchant-1", "facebook", TrackerConfig{})
		a.Observe(Usage{Consumed: 90, Ceiling: 100})

		b := registry.For("merchant-1", "facebook", TrackerConfig{})
		assert.Positive(t, b.ShouldThrottle())
	})
}
