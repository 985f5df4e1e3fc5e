package request

import (
	"errors"
	"fmt"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// TransientError wraps a failure that may succeed on a later attempt:
// a network blip, a 5xx, or a momentary rate-limit rejection.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// PermanentError wraps a failure that retrying cannot fix: a malformed
// request or a business-rule rejection.
type PermanentError struct {
	Cause error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Cause)
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// Transient wraps err as a transient failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Cause: err}
}

// Permanent wraps err as a permanent failure.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Cause: err}
}

// AuthExpired wraps err as an authentication-expired failure.
func AuthExpired(err error) error {
	if err == nil {
		return domain.ErrAuthExpired
	}
	return fmt.Errorf("%w: %w", domain.ErrAuthExpired, err)
}

// IsTransient checks if the error is a retryable failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsPermanent checks if the error is a non-retryable rejection.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// IsAuthExpired checks if the error signals dead credentials.
func IsAuthExpired(err error) bool {
	return errors.Is(err, domain.ErrAuthExpired)
}
