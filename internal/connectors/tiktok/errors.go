package tiktok

import (
	"errors"
	"fmt"
)

// Shop-specific errors.
var (
	// ErrNoShop indicates the seller has no authorised shop to push to.
	ErrNoShop = errors.New("tiktok: no authorised shop")

	// ErrAmbiguousShop indicates several shops are authorised and none
	// is configured, so the adapter cannot pick one.
	ErrAmbiguousShop = errors.New("tiktok: multiple authorised shops, none configured")
)

// Shop API business codes with special handling. The envelope code is
// authoritative; the HTTP status is frequently 200 even on failure.
const (
	codeSuccess            = 0
	codeTokenExpired       = 105002
	codeTokenInvalid       = 105001
	codeTooManyRequests    = 429
	codeInternalError      = 500
	codeServiceUnavailable = 503
)

// APIError represents a Shop API error envelope.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tiktok: API error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// IsRateLimited reports whether the error is a throttling rejection.
func (e *APIError) IsRateLimited() bool {
	return e.Code == codeTooManyRequests
}

// IsAuthExpired reports whether the error means the token is dead.
func (e *APIError) IsAuthExpired() bool {
	return e.Code == codeTokenExpired || e.Code == codeTokenInvalid
}

// IsTransient reports whether the error is worth retrying.
func (e *APIError) IsTransient() bool {
	return e.IsRateLimited() || e.Code == codeInternalError || e.Code == codeServiceUnavailable
}
