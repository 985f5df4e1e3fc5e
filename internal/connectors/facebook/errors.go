package facebook

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Facebook-specific errors.
var (
	// ErrCatalogNotFound indicates no usable product catalog exists.
	ErrCatalogNotFound = errors.New("facebook: product catalog not found")

	// ErrMissingPage indicates the credential carries no page or
	// business identifier a catalog could be created under.
	ErrMissingPage = errors.New("facebook: no page id configured")
)

// Graph API error codes with special handling.
const (
	codeTooManyCalls    = 4   // app-level throttling
	codeUserTooMany     = 17  // user-level throttling
	codePageTooMany     = 32  // page-level throttling
	codeCustomThrottle  = 613 // custom rate limit
	codeOAuthException  = 190 // dead access token
	subcodeTokenExpired = 463
)

// APIError represents a Graph API error response.
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Subcode    int    `json:"error_subcode"`
	Type       string `json:"type"`
	Message    string `json:"message"`
	TraceID    string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("facebook: API error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// IsRateLimited reports whether the error is a throttling signal.
func (e *APIError) IsRateLimited() bool {
	switch e.Code {
	case codeTooManyCalls, codeUserTooMany, codePageTooMany, codeCustomThrottle:
		return true
	}
	return false
}

// IsAuthExpired reports whether the error means the token is dead.
func (e *APIError) IsAuthExpired() bool {
	return e.Code == codeOAuthException || e.Subcode == subcodeTokenExpired
}

// parseAPIError decodes a Graph error envelope from a response body.
// Returns nil if the body carries no recognisable error.
func parseAPIError(statusCode int, body []byte) *APIError {
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return nil
	}
	envelope.Error.StatusCode = statusCode
	return envelope.Error
}
