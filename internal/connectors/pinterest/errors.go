package pinterest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrBoardNotFound indicates no usable board exists for the merchant.
var ErrBoardNotFound = errors.New("pinterest: board not found")

// APIError represents a Pinterest API error response.
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pinterest: API error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// IsRateLimited reports whether the error is a throttling rejection.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsAuthExpired reports whether the error means the token is dead.
func (e *APIError) IsAuthExpired() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// parseAPIError decodes a Pinterest error body. Returns nil if the
// body carries no recognisable error.
func parseAPIError(statusCode int, body []byte) *APIError {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		return nil
	}
	apiErr.StatusCode = statusCode
	return &apiErr
}
