package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/agilecoach-backend/internal/data/repos/testutil"
	types "github.com/yungbote/agilecoach-backend/internal/domain"
	domainlearning "github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
)

func TestScenarioRepoListFiltersFrameworkExactly(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewScenarioRepo(db, testutil.Logger(t))

	content := testutil.StepPoints([]int{10, 5})
	scrum := testutil.SeedScenario(t, ctx, tx, "scrum", content)
	testutil.SeedScenario(t, ctx, tx, "kanban", content)
	testutil.SeedScenario(t, ctx, tx, "scrumban", content)

	all, err := repo.List(dbc, "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	only, err := repo.List(dbc, "scrum")
	require.NoError(t, err)
	require.Len(t, only, 1)
	require.Equal(t, scrum.ID, only[0].ID)

	none, err := repo.List(dbc, "Scrum")
	require.NoError(t, err)
	require.Empty(t, none)

	got, err := repo.GetByID(dbc, scrum.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Steps(), 1)
	require.Equal(t, 10, got.Steps()[0].Decisions[0].Points)

	missing, err := repo.GetByID(dbc, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)

	rows, err := repo.GetByIDs(dbc, []uuid.UUID{scrum.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestScenarioRepoUpsertBySlug(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewScenarioRepo(db, testutil.Logger(t))

	id := domainlearning.SeedID("scenario", "daily-standup")
	mk := func(title string) *types.Scenario {
		return &types.Scenario{
			ID:                 id,
			Slug:               "daily-standup",
			Title:              title,
			Description:        "d",
			Framework:          "scrum",
			Difficulty:         domainlearning.DifficultyBeginner,
			Duration:           10,
			LearningObjectives: datatypes.NewJSONSlice([]string{"a"}),
			Content:            datatypes.NewJSONType(testutil.StepPoints([]int{25})),
			Source:             domainlearning.SourceSeed,
			CreatedAt:          time.Now().UTC(),
		}
	}
	require.NoError(t, repo.UpsertBySlug(dbc, []*types.Scenario{mk("First")}))
	require.NoError(t, repo.UpsertBySlug(dbc, []*types.Scenario{mk("Second")}))

	all, err := repo.List(dbc, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "Second", all[0].Title)
	require.Equal(t, id, all[0].ID)
}

func TestProgressRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProgressRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "progress.user")
	sc := testutil.SeedScenario(t, ctx, tx, "scrum", testutil.StepPoints([]int{10, 20}, []int{5}))

	now := time.Now().UTC()
	p := domainlearning.NewProgress(u.ID, sc, now)
	require.NoError(t, repo.Create(dbc, p))

	dup := domainlearning.NewProgress(u.ID, sc, now)
	require.Error(t, repo.Create(dbc, dup), "unique (user, scenario)")

	got, err := repo.GetForUpdate(dbc, u.ID, sc.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 2, got.TotalSteps)
	require.Empty(t, got.Decisions)

	_, err = got.ApplyDecision(sc.Content.Data(), 1, 2, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(dbc, got))

	got, err = repo.GetByUserAndScenario(dbc, u.ID, sc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.CurrentStep)
	require.Equal(t, 20, got.Score)
	require.Len(t, got.Decisions, 1)
	require.Equal(t, 2, got.Decisions[0].DecisionID)

	missing, err := repo.GetByUserAndScenario(dbc, u.ID, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)

	list, err := repo.ListByUser(dbc, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.Error(t, repo.Save(dbc, &types.Progress{ID: uuid.New()}))
}

func TestInsightRepoNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewInsightRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "insight.user")
	base := time.Now().UTC().Add(-time.Hour)
	var rows []*types.Insight
	for i, title := range []string{"oldest", "middle", "newest"} {
		rows = append(rows, &types.Insight{
			UserID:      u.ID,
			Type:        domainlearning.InsightTypeStrength,
			Priority:    domainlearning.PriorityHigh,
			Title:       title,
			Description: "d",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	_, err := repo.Create(dbc, rows)
	require.NoError(t, err)

	got, err := repo.ListByUser(dbc, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "newest", got[0].Title)
	require.Equal(t, "oldest", got[2].Title)

	limited, err := repo.ListByUser(dbc, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)

	n, err := repo.CountByUser(dbc, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	other, err := repo.ListByUser(dbc, uuid.New(), 0)
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestLearningPathRepoOrdersByOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLearningPathRepo(db, testutil.Logger(t))

	sc := testutil.SeedScenario(t, ctx, tx, "scrum", testutil.StepPoints([]int{10}))
	now := time.Now().UTC()
	paths := []*types.LearningPath{
		{ID: uuid.New(), Slug: "second", Name: "Second", Description: "d", Framework: "kanban", ScenarioIDs: datatypes.NewJSONSlice([]uuid.UUID{}), Order: 2, CreatedAt: now},
		{ID: uuid.New(), Slug: "first", Name: "First", Description: "d", Framework: "scrum", ScenarioIDs: datatypes.NewJSONSlice([]uuid.UUID{sc.ID}), Order: 1, CreatedAt: now},
	}
	require.NoError(t, repo.UpsertBySlug(dbc, paths))

	got, err := repo.List(dbc)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "first", got[0].Slug)
	require.Equal(t, []uuid.UUID{sc.ID}, []uuid.UUID(got[0].ScenarioIDs))

	one, err := repo.GetByID(dbc, paths[0].ID)
	require.NoError(t, err)
	require.NotNil(t, one)
	require.Equal(t, "Second", one.Name)

	missing, err := repo.GetByID(dbc, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)
}
