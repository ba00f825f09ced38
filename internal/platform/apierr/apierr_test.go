package apierr

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTooManyRequestsRoundsRetryAfterUp(t *testing.T) {
	e := TooManyRequests(errors.New("slow down"), 1500*time.Millisecond)
	assert.Equal(t, http.StatusTooManyRequests, e.Status)
	assert.Equal(t, "rate_limited", e.Code)
	assert.Equal(t, "2", e.RetryAfterSeconds())
	assert.Equal(t, "slow down", e.Error())

	assert.Equal(t, "6", TooManyRequests(nil, 6*time.Second).RetryAfterSeconds())
	assert.Equal(t, "", TooManyRequests(nil, 0).RetryAfterSeconds())
}

func TestErrorMessageFallbacks(t *testing.T) {
	assert.Equal(t, "invalid_limit", BadRequest("invalid_limit", nil).Error())
	assert.Equal(t, "api error (503)", New(http.StatusServiceUnavailable, "", nil).Error())
	var nilErr *Error
	assert.Equal(t, "", nilErr.Error())

	cause := errors.New("boom")
	assert.ErrorIs(t, New(http.StatusBadGateway, "x", cause), cause)
}
