package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/agilecoach-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
)

func TestRequireCASSuccess(t *testing.T) {
	require.NoError(t, RequireCASSuccess(true, "ok"))
	err := MapError("op", RequireCASSuccess(false, "stale"))
	assert.True(t, domainagg.IsCode(err, domainagg.CodeConflict), "got %v", err)
}

func TestCASGuardUpdate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "guard.user")
	sc := testutil.SeedScenario(t, ctx, tx, "scrum", testutil.StepPoints([]int{5}, []int{10}))
	p := learning.NewProgress(u.ID, sc, sc.CreatedAt)
	require.NoError(t, tx.Create(p).Error)

	guard := NewCASGuard(db)
	ok, err := guard.Update(dbc, progressTable, p.ID, Expect{"current_step": 0, "completed": false}, map[string]any{"current_step": 1})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = guard.Update(dbc, progressTable, p.ID, Expect{"current_step": 0}, map[string]any{"current_step": 2})
	require.NoError(t, err)
	assert.False(t, ok, "stale cursor must not apply")

	require.NoError(t, tx.Table(progressTable).Where("id = ?", p.ID).Update("completed", true).Error)
	ok, err = guard.Update(dbc, progressTable, p.ID, Expect{"current_step": 1, "completed": false}, map[string]any{"current_step": 2})
	require.NoError(t, err)
	assert.False(t, ok, "completed record must not advance")

	var stored learning.Progress
	require.NoError(t, tx.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, 1, stored.CurrentStep)
}

func TestCASGuardRejectsIncompleteInput(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	guard := NewCASGuard(db)
	id := uuid.New()

	for name, call := range map[string]func() error{
		"nil id": func() error {
			_, err := guard.Update(dbc, progressTable, uuid.Nil, Expect{"completed": false}, map[string]any{"score": 1})
			return err
		},
		"no expect": func() error {
			_, err := guard.Update(dbc, progressTable, id, nil, map[string]any{"score": 1})
			return err
		},
		"no updates": func() error {
			_, err := guard.Update(dbc, progressTable, id, Expect{"completed": false}, nil)
			return err
		},
	} {
		err := call()
		assert.True(t, domainagg.IsCode(MapError("op", err), domainagg.CodeValidation), "%s: %v", name, err)
	}

	_, err := CASGuard{}.Update(dbc, progressTable, id, Expect{"completed": false}, map[string]any{"score": 1})
	assert.Error(t, err)
}
