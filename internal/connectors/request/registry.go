package request

import (
	"fmt"
	"sync"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// TrackerRegistry hands out one shared Tracker per (merchant,
// platform) pair for the life of the process. Concurrent sync runs for
// the same pair draw from the same quota estimate instead of
// double-counting the platform's budget.
//
// Tracker state is deliberately not persisted: live response signals
// are authoritative, so reconstructing from zero on restart is safe.
type TrackerRegistry struct {
	mu       sync.Mutex
	trackers map[string]*Tracker
}

// NewTrackerRegistry creates an empty registry.
func NewTrackerRegistry() *TrackerRegistry {
	return &TrackerRegistry{
		trackers: make(map[string]*Tracker),
	}
}

// For returns the tracker for the pair, creating it with cfg on first
// use. Later calls for the same pair ignore cfg.
func (r *TrackerRegistry) For(merchantID string, platform domain.Platform, cfg TrackerConfig) *Tracker {
	key := fmt.Sprintf("%s/%s", merchantID, platform)

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.trackers[key]; ok {
		return t
	}
	t := NewTracker(cfg)
	r.trackers[key] = t
	return t
}
