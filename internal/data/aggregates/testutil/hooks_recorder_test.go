package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
)

func TestHooksRecorderCapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Learning.Progress.Start", "success", 10*time.Millisecond)
	h.ObserveOperation("Learning.Progress.Complete", "not_found", time.Millisecond)
	h.ObserveOperation("Learning.Progress.Start", "conflict", time.Millisecond)
	h.ObserveTransition(learning.StateNotStarted, learning.StateInProgress)
	h.IncConflict("Learning.Progress.Start")
	h.IncRetry("Learning.Progress.Complete")

	assert.Len(t, h.Operations, 3)
	assert.Equal(t, []string{"success", "conflict"}, h.Statuses("Learning.Progress.Start"))
	assert.Equal(t, []string{"not_started->in_progress"}, h.Moves())
	assert.Equal(t, []string{"Learning.Progress.Start"}, h.Conflicts)
	assert.Equal(t, []string{"Learning.Progress.Complete"}, h.Retries)
}
