package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/agilecoach-backend/internal/data/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/data/repos"
	"github.com/yungbote/agilecoach-backend/internal/data/repos/testutil"
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.Len(t, c.Users, 1)
	assert.Equal(t, DemoUsername, c.Users[0].Username)
	assert.Len(t, c.Scenarios, 15)
	assert.Len(t, c.LearningPaths, 8)

	rows, err := c.Rows(catalogEpoch)
	require.NoError(t, err)
	assert.Equal(t, DemoUserID(), rows.Users[0].ID)
	assert.Equal(t, 87, rows.Users[0].SuccessRate)

	last := rows.LearningPaths[len(rows.LearningPaths)-1]
	assert.Equal(t, "certification", last.Framework)
	assert.Len(t, last.ScenarioIDs, 7)
	assert.Equal(t, learning.SeedID("scenario", "daily-standup-facilitation"), last.ScenarioIDs[0])
}

func TestLoadHonorsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
users:
  - username: pat
    firstName: Pat
scenarios:
  - slug: tiny
    title: Tiny
    framework: XP
    difficulty: beginner
    steps:
      - id: 1
        situation: Something happens.
        decisions:
          - {id: 1, text: Act, points: 10}
learningPaths: []
`), 0o600))
	t.Setenv(catalogEnv, path)

	c, err := Load()
	require.NoError(t, err)
	rows, err := c.Rows(catalogEpoch)
	require.NoError(t, err)
	require.Len(t, rows.Scenarios, 1)
	assert.Equal(t, "xp", rows.Scenarios[0].Framework)
}

func TestParseRejectsBrokenCatalogs(t *testing.T) {
	cases := map[string]string{
		"unknown key": "users: []\nextras: 1\n",
		"dangling path reference": `
learningPaths:
  - slug: p
    name: P
    scenarios: [missing]
`,
		"invalid scenario": `
scenarios:
  - slug: s
    title: S
    framework: scrum
    difficulty: beginner
    steps: []
`,
		"duplicate user": "users:\n  - username: a\n  - username: a\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	deps := Deps{
		Runner:    aggregates.NewGormTxRunner(db),
		Log:       log,
		Users:     repos.NewUserRepo(db, log),
		Scenarios: repos.NewScenarioRepo(db, log),
		Paths:     repos.NewLearningPathRepo(db, log),
	}
	c, err := Load()
	require.NoError(t, err)

	res, err := Apply(ctx, deps, c)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 1, Scenarios: 15, LearningPaths: 8}, res)

	dbc := dbctx.Context{Ctx: ctx}
	demo, err := deps.Users.GetByID(dbc, DemoUserID())
	require.NoError(t, err)
	require.NotNil(t, demo)
	assert.Equal(t, 24, demo.CompletedScenarios)

	demo.CompletedScenarios = 30
	require.NoError(t, deps.Users.UpdateStats(dbc, demo))

	_, err = Apply(ctx, deps, c)
	require.NoError(t, err)

	all, err := deps.Scenarios.List(dbc, "")
	require.NoError(t, err)
	require.Len(t, all, 15)
	assert.Equal(t, "daily-standup-facilitation", all[0].Slug)
	assert.Equal(t, "xp-test-driven-development-crisis", all[14].Slug)

	scrum, err := deps.Scenarios.List(dbc, "scrum")
	require.NoError(t, err)
	assert.Len(t, scrum, 3)

	paths, err := deps.Paths.List(dbc)
	require.NoError(t, err)
	require.Len(t, paths, 8)
	assert.Equal(t, "Scrum Fundamentals", paths[0].Name)

	demo, err = deps.Users.GetByID(dbc, DemoUserID())
	require.NoError(t, err)
	assert.Equal(t, 30, demo.CompletedScenarios)
}
