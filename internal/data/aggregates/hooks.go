package aggregates

import (
	"time"

	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/observability"
)

// Hooks observes aggregate writes. ObserveTransition fires only after the
// transaction that moved the record has committed.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	ObserveTransition(from, to learning.ProgressState)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration)                   {}
func (noopHooks) ObserveTransition(learning.ProgressState, learning.ProgressState) {}
func (noopHooks) IncConflict(string)                                               {}
func (noopHooks) IncRetry(string)                                                  {}

// NewObservabilityHooks reports aggregate events as Prometheus samples.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{m: metrics}
}

type metricsHooks struct {
	m *observability.Metrics
}

func (h metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.m.ObserveAggregateOperation(name, status, dur)
}

func (h metricsHooks) ObserveTransition(from, to learning.ProgressState) {
	h.m.IncProgressTransition(string(from), string(to))
}

func (h metricsHooks) IncConflict(name string) { h.m.IncAggregateConflict(name) }
func (h metricsHooks) IncRetry(name string)    { h.m.IncAggregateRetry(name) }
