package domain

import (
	"fmt"
	"time"
)

// ScheduledTask represents a recurring catalog sync for one merchant
// and platform.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// MerchantID identifies the merchant whose catalog is synced.
	MerchantID string

	// Platform is the target platform.
	Platform Platform

	// Interval defines how often the sync should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// SyncTaskID builds the canonical task ID for a merchant and platform.
func SyncTaskID(merchantID string, platform Platform) string {
	return fmt.Sprintf("sync:%s:%s", merchantID, platform)
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	// TaskID identifies which task was run.
	TaskID string

	// StartedAt is when the task started.
	StartedAt time.Time

	// EndedAt is when the task completed.
	EndedAt time.Time

	// Success indicates whether the task completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// ItemsSynced counts items published during the run.
	ItemsSynced int

	// ItemsFailed counts items that failed during the run.
	ItemsFailed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// DefaultInterval applies to tasks without an explicit interval.
	DefaultInterval time.Duration
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:         true,
		DefaultInterval: 6 * time.Hour,
	}
}
