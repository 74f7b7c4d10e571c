package sources

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoContent is returned when a chapter resolves but has no usable paragraphs.
var ErrNoContent = errors.New("chapter has no content")

// ErrNoIdentifier is returned when a lookup answer carries no URN.
var ErrNoIdentifier = errors.New("no identifier in response")

// RequestLimitCode is the code ctext uses when the caller is over quota.
const RequestLimitCode = "ERR_REQUEST_LIMIT"

// DefaultRateLimitMarkers are message fragments that identify a hard rate limit.
var DefaultRateLimitMarkers = []string{RequestLimitCode, "达到请求限制"}

// APIError is an error answer from the ctext API.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("ctext: %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("ctext: %s", e.Code)
}

// RateLimited reports whether the API told us to stop sending requests.
func (e *APIError) RateLimited() bool {
	return e.Code == RequestLimitCode || e.Status == http.StatusTooManyRequests
}

// ResolutionError carries the causes of both failed URN lookups.
type ResolutionError struct {
	URL       string
	Primary   error
	Secondary error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: readlink: %v; api: %v", e.URL, e.Primary, e.Secondary)
}

func (e *ResolutionError) Unwrap() []error {
	return []error{e.Primary, e.Secondary}
}

// IsRateLimit reports whether err signals a hard rate limit, either as a
// typed API error anywhere in the chain or through one of the markers in
// its message.
func IsRateLimit(err error, markers []string) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RateLimited() {
		return true
	}
	msg := err.Error()
	for _, marker := range markers {
		if marker != "" && strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
