package ai

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// APIError is returned by providers when the remote API answers with a
// non-2xx status.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	// RetryAfter is the server-suggested wait, zero when absent.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: non-2xx status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Transient reports whether the status is worth retrying: rate limits,
// overload and gateway failures.
func (e *APIError) Transient() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		529: // "overloaded", emitted by some gateways
		return true
	}
	return false
}

// IsRetryable reports whether err wraps a transient *APIError.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	return false
}

// ParseRetryAfter reads a Retry-After header expressed in seconds or as an
// HTTP date. It returns zero when the header is absent or unparsable.
func ParseRetryAfter(h http.Header, now time.Time) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	var secs int
	if _, err := fmt.Sscanf(v, "%d", &secs); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}
