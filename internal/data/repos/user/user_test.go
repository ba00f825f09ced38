package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/agilecoach-backend/internal/data/repos/testutil"
	types "github.com/yungbote/agilecoach-backend/internal/domain"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	u := &types.User{
		ID:                 uuid.New(),
		Username:           "repo.user",
		FirstName:          "Repo",
		LastName:           "User",
		Email:              "repo.user@example.com",
		CompletedScenarios: 3,
		SuccessRate:        80,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := repo.Create(dbc, []*types.User{u}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(dbc, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "repo.user", got.Username)

	got, err = repo.GetByUsername(dbc, "repo.user")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, u.ID, got.ID)

	missing, err := repo.GetByID(dbc, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)

	locked, err := repo.GetByIDForUpdate(dbc, u.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)

	last := now.Add(-time.Hour)
	locked.CompletedScenarios = 4
	locked.SuccessRate = 82
	locked.AIInsights = 1
	locked.TimeInvested = 15
	locked.CurrentStreak = 2
	locked.LastCompletedAt = &last
	locked.UpdatedAt = now
	require.NoError(t, repo.UpdateStats(dbc, locked))

	got, err = repo.GetByID(dbc, u.ID)
	require.NoError(t, err)
	require.Equal(t, 4, got.CompletedScenarios)
	require.Equal(t, 82, got.SuccessRate)
	require.Equal(t, 1, got.AIInsights)
	require.Equal(t, 15, got.TimeInvested)
	require.Equal(t, 2, got.CurrentStreak)
	require.NotNil(t, got.LastCompletedAt)

	err = repo.UpdateStats(dbc, &types.User{ID: uuid.New()})
	require.Error(t, err)
}

func TestUserRepoUpsertByUsernameKeepsCounters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	id := uuid.New()
	first := &types.User{
		ID:                 id,
		Username:           "seeded",
		FirstName:          "Old",
		LastName:           "Name",
		Email:              "old@example.com",
		CompletedScenarios: 24,
		SuccessRate:        87,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, repo.UpsertByUsername(dbc, first))

	stored, err := repo.GetByID(dbc, id)
	require.NoError(t, err)
	stored.CompletedScenarios = 30
	require.NoError(t, repo.UpdateStats(dbc, stored))

	again := &types.User{
		ID:                 id,
		Username:           "seeded",
		FirstName:          "New",
		LastName:           "Name",
		Email:              "new@example.com",
		CompletedScenarios: 24,
		CreatedAt:          now,
		UpdatedAt:          now.Add(time.Minute),
	}
	require.NoError(t, repo.UpsertByUsername(dbc, again))

	got, err := repo.GetByUsername(dbc, "seeded")
	require.NoError(t, err)
	require.Equal(t, "New", got.FirstName)
	require.Equal(t, "new@example.com", got.Email)
	require.Equal(t, 30, got.CompletedScenarios)
}
