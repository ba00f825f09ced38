package aggregates_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/agilecoach-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/agilecoach-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/agilecoach-backend/internal/data/repos"
	"github.com/yungbote/agilecoach-backend/internal/data/repos/testutil"
	types "github.com/yungbote/agilecoach-backend/internal/domain"
	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
)

type fixture struct {
	db    *gorm.DB
	agg   domainagg.ProgressAggregate
	hooks *aggtestutil.HooksRecorder
	users repos.UserRepo
	prog  repos.ProgressRepo
	now   time.Time
}

func newFixture(t *testing.T, runner func(db *gorm.DB) aggregates.TxRunner) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &fixture{
		db:    db,
		hooks: &aggtestutil.HooksRecorder{},
		users: repos.NewUserRepo(db, log),
		prog:  repos.NewProgressRepo(db, log),
		now:   time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC),
	}
	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: f.hooks,
		Now:   func() time.Time { return f.now },
	}
	if runner != nil {
		base.Runner = runner(db)
	}
	f.agg = aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		Base:      base,
		Users:     f.users,
		Scenarios: repos.NewScenarioRepo(db, log),
		Progress:  f.prog,
	})
	return f
}

func (f *fixture) dbc() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

func TestProgressStartIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "start.user")
	sc := testutil.SeedScenario(t, ctx, f.db, "scrum", testutil.StepPoints([]int{10, 5}, []int{20}))

	first, err := f.agg.Start(ctx, domainagg.StartProgressInput{UserID: u.ID, ScenarioID: sc.ID})
	require.NoError(t, err)
	require.True(t, first.Created)
	assert.Equal(t, 0, first.Progress.CurrentStep)
	assert.Equal(t, 2, first.Progress.TotalSteps)
	assert.Equal(t, 0, first.Progress.Score)
	assert.Empty(t, first.Progress.Decisions)

	f.now = f.now.Add(time.Hour)
	second, err := f.agg.Start(ctx, domainagg.StartProgressInput{UserID: u.ID, ScenarioID: sc.ID})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Progress.ID, second.Progress.ID)
	assert.True(t, first.Progress.StartedAt.Equal(second.Progress.StartedAt))

	all, err := f.prog.ListByUser(f.dbc(), u.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, []string{"success", "success"}, f.hooks.Statuses("Learning.Progress.Start"))
	assert.Equal(t, []string{"not_started->in_progress"}, f.hooks.Moves(), "re-start is not a transition")
}

// staleProgressRepo misses every record on its first read, as a start
// racing another start for the same pair would.
type staleProgressRepo struct {
	repos.ProgressRepo
	mu     sync.Mutex
	missed bool
}

func (r *staleProgressRepo) GetByUserAndScenario(dbc dbctx.Context, userID, scenarioID uuid.UUID) (*types.Progress, error) {
	r.mu.Lock()
	miss := !r.missed
	r.missed = true
	r.mu.Unlock()
	if miss {
		return nil, nil
	}
	return r.ProgressRepo.GetByUserAndScenario(dbc, userID, scenarioID)
}

func TestProgressStartLosingRaceReturnsWinner(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "race.user")
	sc := testutil.SeedScenario(t, ctx, f.db, "scrum", testutil.StepPoints([]int{10}, []int{5}))

	winner, err := f.agg.Start(ctx, domainagg.StartProgressInput{UserID: u.ID, ScenarioID: sc.ID})
	require.NoError(t, err)
	require.True(t, winner.Created)

	log := testutil.Logger(t)
	loser := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		Base:      aggregates.BaseDeps{DB: f.db, Log: log, Hooks: f.hooks, Now: func() time.Time { return f.now }},
		Users:     f.users,
		Scenarios: repos.NewScenarioRepo(f.db, log),
		Progress:  &staleProgressRepo{ProgressRepo: f.prog},
	})
	got, err := loser.Start(ctx, domainagg.StartProgressInput{UserID: u.ID, ScenarioID: sc.ID})
	require.NoError(t, err)
	assert.False(t, got.Created)
	assert.Equal(t, winner.Progress.ID, got.Progress.ID)

	all, err := f.prog.ListByUser(f.dbc(), u.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, []string{"Learning.Progress.Start"}, f.hooks.Conflicts)
	assert.Equal(t, []string{"not_started->in_progress"}, f.hooks.Moves(), "only the winner starts the record")
}

func TestProgressConcurrentStartsShareOneRecord(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "parallel.user")
	sc := testutil.SeedScenario(t, ctx, f.db, "kanban", testutil.StepPoints([]int{10}))

	const n = 4
	ids := make([]uuid.UUID, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.agg.Start(ctx, domainagg.StartProgressInput{UserID: u.ID, ScenarioID: sc.ID})
			errs[i] = err
			if err == nil {
				ids[i] = res.Progress.ID
			}
		}(i)
	}
	wg.Wait()

	all, err := f.prog.ListByUser(f.dbc(), u.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	for i := range ids {
		require.NoError(t, errs[i], "start %d", i)
		assert.Equal(t, all[0].ID, ids[i])
	}
}

func TestProgressStartRejections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "reject.user")
	sc := testutil.SeedScenario(t, ctx, f.db, "scrum", testutil.StepPoints([]int{10}))

	_, err := f.agg.Start(ctx, domainagg.StartProgressInput{UserID: u.ID, ScenarioID: uuid.New()})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "unknown scenario: %v", err)

	_, err = f.agg.Start(ctx, domainagg.StartProgressInput{UserID: uuid.New(), ScenarioID: sc.ID})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "unknown user: %v", err)

	empty := testutil.SeedScenario(t, ctx, f.db, "scrum", types.ScenarioContent{})
	_, err = f.agg.Start(ctx, domainagg.StartProgressInput{UserID: u.ID, ScenarioID: empty.ID})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeInvalidState), "no steps: %v", err)

	_, err = f.agg.Start(ctx, domainagg.StartProgressInput{ScenarioID: sc.ID})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "missing user: %v", err)
}

func TestProgressRecordDecision(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "decide.user")
	sc := testutil.SeedScenario(t, ctx, f.db, "scrum", testutil.StepPoints([]int{10, 25}, []int{5, 15}))

	in := func(step, decision int) domainagg.RecordDecisionInput {
		return domainagg.RecordDecisionInput{UserID: u.ID, ScenarioID: sc.ID, StepID: step, DecisionID: decision}
	}

	_, err := f.agg.RecordDecision(ctx, in(1, 1))
	require.True(t, domainagg.IsCode(err, domainagg.CodeInvalidState), "not started: %v", err)

	_, err = f.agg.Start(ctx, domainagg.StartProgressInput{UserID: u.ID, ScenarioID: sc.ID})
	require.NoError(t, err)

	_, err = f.agg.RecordDecision(ctx, in(2, 1))
	require.True(t, domainagg.IsCode(err, domainagg.CodeInvalidState), "out of order: %v", err)

	_, err = f.agg.RecordDecision(ctx, in(1, 7))
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "unknown decision: %v", err)

	stored, err := f.prog.GetByUserAndScenario(f.dbc(), u.ID, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentStep)
	assert.Empty(t, stored.Decisions)

	res, err := f.agg.RecordDecision(ctx, in(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 25, res.Decision.Points)
	assert.Equal(t, "option 2", res.Option.Text)
	assert.Equal(t, 1, res.Progress.CurrentStep)

	res, err = f.agg.RecordDecision(ctx, in(2, 1))
	require.NoError(t, err)
	assert.Equal(t, 30, res.Progress.Score)
	assert.Equal(t, 2, res.Progress.CurrentStep)

	_, err = f.agg.RecordDecision(ctx, in(2, 2))
	require.True(t, domainagg.IsCode(err, domainagg.CodeInvalidState), "no remaining steps: %v", err)

	stored, err = f.prog.GetByUserAndScenario(f.dbc(), u.ID, sc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Decisions, 2)
	sum := 0
	for _, d := range stored.Decisions {
		sum += d.Points
	}
	assert.Equal(t, stored.Score, sum)
	assert.False(t, stored.Completed)
}

func TestProgressCompleteAppliesProfileOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "complete.user")
	require.NoError(t, f.db.Model(u).Updates(map[string]any{"completed_scenarios": 24, "success_rate": 87}).Error)
	sc := testutil.SeedScenario(t, ctx, f.db, "scrum", testutil.StepPoints([]int{25}, []int{25}, []int{25}, []int{15}))

	_, err := f.agg.Complete(ctx, domainagg.CompleteProgressInput{UserID: u.ID, ScenarioID: sc.ID})
	require.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "no record: %v", err)

	_, err = f.agg.Start(ctx, domainagg.StartProgressInput{UserID: u.ID, ScenarioID: sc.ID})
	require.NoError(t, err)
	for step := 1; step <= 4; step++ {
		_, err := f.agg.RecordDecision(ctx, domainagg.RecordDecisionInput{UserID: u.ID, ScenarioID: sc.ID, StepID: step, DecisionID: 1})
		require.NoError(t, err)
	}

	f.now = f.now.Add(90 * time.Second)
	res, err := f.agg.Complete(ctx, domainagg.CompleteProgressInput{UserID: u.ID, ScenarioID: sc.ID})
	require.NoError(t, err)
	require.True(t, res.FirstCompletion)
	assert.True(t, res.Progress.Completed)
	assert.Equal(t, 90, res.Progress.Score)
	assert.Equal(t, 2, res.Progress.TimeSpent)
	require.NotNil(t, res.Progress.CompletedAt)
	firstCompletedAt := *res.Progress.CompletedAt

	profile, err := f.users.GetByID(f.dbc(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, profile.CompletedScenarios)
	assert.Equal(t, 87, profile.SuccessRate)
	assert.Equal(t, 1, profile.AIInsights)
	assert.Equal(t, 2, profile.TimeInvested)
	assert.Equal(t, 1, profile.CurrentStreak)

	f.now = f.now.Add(time.Hour)
	again, err := f.agg.Complete(ctx, domainagg.CompleteProgressInput{UserID: u.ID, ScenarioID: sc.ID})
	require.NoError(t, err)
	assert.False(t, again.FirstCompletion)
	assert.Nil(t, again.User)
	require.NotNil(t, again.Progress.CompletedAt)
	assert.True(t, firstCompletedAt.Equal(*again.Progress.CompletedAt))

	profile, err = f.users.GetByID(f.dbc(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, profile.CompletedScenarios)
	assert.Equal(t, 1, profile.AIInsights)
	assert.Equal(t, []string{
		"not_started->in_progress",
		"in_progress->in_progress",
		"in_progress->in_progress",
		"in_progress->in_progress",
		"in_progress->in_progress",
		"in_progress->completed",
	}, f.hooks.Moves())

	_, err = f.agg.RecordDecision(ctx, domainagg.RecordDecisionInput{UserID: u.ID, ScenarioID: sc.ID, StepID: 4, DecisionID: 1})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeInvalidState), "decision after completion: %v", err)
}

func TestProgressCompleteRollsBackOnCommitFailure(t *testing.T) {
	commitErr := errors.New("commit failed")
	var injected *aggtestutil.FaultyTxRunner
	f := newFixture(t, func(db *gorm.DB) aggregates.TxRunner {
		injected = &aggtestutil.FaultyTxRunner{Inner: aggregates.NewGormTxRunner(db)}
		return injected
	})
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "rollback.user")
	sc := testutil.SeedScenario(t, ctx, f.db, "scrum", testutil.StepPoints([]int{10}))

	_, err := f.agg.Start(ctx, domainagg.StartProgressInput{UserID: u.ID, ScenarioID: sc.ID})
	require.NoError(t, err)

	injected.FailAfterBody = commitErr
	_, err = f.agg.Complete(ctx, domainagg.CompleteProgressInput{UserID: u.ID, ScenarioID: sc.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, commitErr)
	assert.Equal(t, 1, injected.Rollbacks)

	stored, err := f.prog.GetByUserAndScenario(f.dbc(), u.ID, sc.ID)
	require.NoError(t, err)
	assert.False(t, stored.Completed)
	assert.Nil(t, stored.CompletedAt)

	profile, err := f.users.GetByID(f.dbc(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.CompletedScenarios)
	assert.Equal(t, []string{"success"}, f.hooks.Statuses("Learning.Progress.Start"))
	assert.Equal(t, []string{"internal"}, f.hooks.Statuses("Learning.Progress.Complete"))
	assert.Equal(t, []string{"not_started->in_progress"}, f.hooks.Moves(), "rolled back completion must not count")
}
