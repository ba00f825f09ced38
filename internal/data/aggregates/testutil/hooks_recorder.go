package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/agilecoach-backend/internal/data/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
)

// HooksRecorder keeps every hook call for later assertions.
type HooksRecorder struct {
	mu sync.Mutex

	Operations  []OperationEvent
	Transitions []Transition
	Conflicts   []string
	Retries     []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

type Transition struct {
	From learning.ProgressState
	To   learning.ProgressState
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) ObserveTransition(from, to learning.ProgressState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Transitions = append(h.Transitions, Transition{From: from, To: to})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

// Statuses returns the recorded statuses for one operation in call order.
func (h *HooksRecorder) Statuses(name string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, op := range h.Operations {
		if op.Name == name {
			out = append(out, op.Status)
		}
	}
	return out
}

// Moves lists transitions as "from->to" strings.
func (h *HooksRecorder) Moves() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.Transitions))
	for _, tr := range h.Transitions {
		out = append(out, string(tr.From)+"->"+string(tr.To))
	}
	return out
}
