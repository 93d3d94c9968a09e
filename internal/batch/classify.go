package batch

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// StatusError carries an HTTP status code from a provider call so the
// classifier can recognize throttling without string matching.
type StatusError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.Cause
}

// rateLimitMarkers are message fragments that indicate throttling when no
// status code is available. Matched case-insensitively.
var rateLimitMarkers = []string{
	"rate limit",
	"too many requests",
	"quota",
}

// IsRetryable reports whether err is a transient rate-limit condition worth
// retrying. It returns true for any error carrying HTTP 429 (directly or
// wrapped), or whose message mentions throttling. nil is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if status, ok := httpStatus(err); ok && status == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

// httpStatus extracts an HTTP status code from err, looking through wrapped
// errors for our own StatusError and for Google API errors.
func httpStatus(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}

	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return ge.Code, true
	}

	return 0, false
}
