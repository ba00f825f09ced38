package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/platform/apierr"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domainagg.Validation("op", "bad"), http.StatusBadRequest, "validation"},
		{"not found", domainagg.NotFound("op", "missing"), http.StatusNotFound, "not_found"},
		{"invalid state", domainagg.InvalidState("op", "done"), http.StatusConflict, "invalid_state"},
		{"conflict", domainagg.NewError(domainagg.CodeConflict, "op", "dup", nil), http.StatusConflict, "conflict"},
		{"upstream", domainagg.NewError(domainagg.CodeUpstreamGeneration, "op", "boom", nil), http.StatusBadGateway, "upstream_generation"},
		{"rate limited", apierr.TooManyRequests(errors.New("slow down"), time.Second), http.StatusTooManyRequests, "rate_limited"},
		{"plain", errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := Classify(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestRespondErrHidesInternalMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		err  error
		want string
	}{
		{errors.New("pq: relation missing"), "internal error"},
		{domainagg.Validation("op", "stepId, decisionId, and points are required"), "stepId, decisionId, and points are required"},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		RespondErr(c, tc.err)

		var body ErrorEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.want, body.Error.Message)
	}
}

func TestRespondErrSetsRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondErr(c, apierr.TooManyRequests(errors.New("slow down"), 2500*time.Millisecond))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("Retry-After"))
	require.Len(t, c.Errors, 1)
}
