package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/agilecoach-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
)

func TestExecuteWriteStatuses(t *testing.T) {
	cases := []struct {
		name      string
		bodyErr   error
		status    string
		conflicts int
		retries   int
	}{
		{name: "success", status: "success"},
		{name: "invalid state", bodyErr: InvalidStateError("scenario not started"), status: string(domainagg.CodeInvalidState)},
		{name: "conflict", bodyErr: ConflictError("progress completed concurrently"), status: string(domainagg.CodeConflict), conflicts: 1},
		{name: "deadline", bodyErr: context.DeadlineExceeded, status: string(domainagg.CodeRetryable), retries: 1},
		{name: "plain", bodyErr: errors.New("disk on fire"), status: string(domainagg.CodeInternal)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			err := executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks},
				"Learning.Progress.Complete", func(dbctx.Context) error { return tc.bodyErr })

			if tc.bodyErr == nil {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tc.status, string(domainagg.CodeOf(err)))
			}
			require.Len(t, hooks.Operations, 1)
			assert.Equal(t, tc.status, hooks.Operations[0].Status)
			assert.Len(t, hooks.Conflicts, tc.conflicts)
			assert.Len(t, hooks.Retries, tc.retries)
			assert.Empty(t, hooks.Transitions, "executeWrite never reports transitions itself")
		})
	}
}

func TestExecuteWriteDefaultsOpName(t *testing.T) {
	hooks := &spyHooks{}
	require.NoError(t, executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "",
		func(dbctx.Context) error { return nil }))
	require.Len(t, hooks.Operations, 1)
	assert.Equal(t, "aggregate.write", hooks.Operations[0].Name)
}

func TestAggregateErrorStatus(t *testing.T) {
	assert.Equal(t, "success", aggregateErrorStatus(nil))
	assert.Equal(t, string(domainagg.CodeInvalidState), aggregateErrorStatus(MapError("op", InvalidStateError("x"))))
	assert.Equal(t, string(domainagg.CodeRetryable), aggregateErrorStatus(MapError("op", RetryableError("x"))))
	assert.Equal(t, "failure", aggregateErrorStatus(errors.New("unmapped")))
}

func TestGormTxRunnerRejectsNilDB(t *testing.T) {
	ran := false
	err := NewGormTxRunner(nil).InTx(context.Background(), func(dbctx.Context) error {
		ran = true
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, domainagg.CodeInternal, domainagg.CodeOf(err))
	assert.False(t, ran)
}

func TestGormTxRunnerSkipsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	err := NewGormTxRunner(testutil.DB(t)).InTx(ctx, func(dbctx.Context) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
	assert.Equal(t, domainagg.CodeRetryable, domainagg.CodeOf(MapError("op", err)))
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations  []spyOperation
	Transitions []string
	Conflicts   []string
	Retries     []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) ObserveTransition(from, to learning.ProgressState) {
	h.Transitions = append(h.Transitions, string(from)+"->"+string(to))
}

func (h *spyHooks) IncConflict(name string) { h.Conflicts = append(h.Conflicts, name) }
func (h *spyHooks) IncRetry(name string)    { h.Retries = append(h.Retries, name) }
