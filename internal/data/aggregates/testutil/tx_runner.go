package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/agilecoach-backend/internal/data/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
)

// FaultyTxRunner wraps a runner and fails transactions on demand.
// FailAfterBody is returned once the body has run, still inside the inner
// transaction, so every write the body made is rolled back. Unavailable
// fails before the body runs.
type FaultyTxRunner struct {
	mu sync.Mutex

	Inner aggregates.TxRunner

	Unavailable   error
	FailAfterBody error

	Attempts  int
	Commits   int
	Rollbacks int
}

var _ aggregates.TxRunner = (*FaultyTxRunner)(nil)

func (r *FaultyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.Attempts++
	unavailable, failAfter, inner := r.Unavailable, r.FailAfterBody, r.Inner
	r.mu.Unlock()

	if unavailable != nil {
		return unavailable
	}
	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return failAfter
	}

	var err error
	if inner != nil {
		err = inner.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.Rollbacks++
	} else {
		r.Commits++
	}
	return err
}
