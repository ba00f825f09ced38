package apierr

import (
	"fmt"
	"net/http"
	"time"
)

// Error is an HTTP-layer failure that already knows its status and code.
// RetryAfter, when set, is sent back as a Retry-After header.
type Error struct {
	Status     int
	Code       string
	Err        error
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

// TooManyRequests reports an exhausted limiter. retryAfter is rounded up to
// whole seconds, the header's resolution.
func TooManyRequests(err error, retryAfter time.Duration) *Error {
	e := New(http.StatusTooManyRequests, "rate_limited", err)
	if retryAfter > 0 {
		e.RetryAfter = retryAfter.Truncate(time.Second)
		if e.RetryAfter < retryAfter {
			e.RetryAfter += time.Second
		}
	}
	return e
}

// RetryAfterSeconds renders RetryAfter for the header, or "" when unset.
func (e *Error) RetryAfterSeconds() string {
	if e == nil || e.RetryAfter <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", int(e.RetryAfter/time.Second))
}
