package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedPlatform indicates an unknown platform identifier.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrSyncInProgress indicates a sync is already running for the
	// same merchant and platform.
	ErrSyncInProgress = errors.New("sync in progress")

	// Authentication errors.

	// ErrAuthRequired indicates no credential is stored for the
	// merchant and platform.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the access token expired and refresh
	// was impossible or failed. Terminal for a sync run.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrTokenRefreshFailed indicates the token refresh call failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Sync errors.

	// ErrPrerequisiteFailed indicates the platform-side container
	// (catalog, board, shop) could not be found or created. Aborts the
	// run before any items are attempted.
	ErrPrerequisiteFailed = errors.New("platform prerequisite failed")

	// ErrAdapterClosed indicates the platform adapter has been closed.
	ErrAdapterClosed = errors.New("adapter closed")

	// ErrRateLimited indicates the platform rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
