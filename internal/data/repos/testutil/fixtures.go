package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/agilecoach-backend/internal/domain"
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	now := time.Now().UTC()
	u := &types.User{
		ID:        uuid.New(),
		Username:  username,
		FirstName: "Test",
		LastName:  "Learner",
		Email:     username + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// StepPoints builds step content where step i offers one decision per
// entry of points[i], with decision ids 1..n.
func StepPoints(points ...[]int) types.ScenarioContent {
	steps := make([]types.Step, 0, len(points))
	for i, opts := range points {
		st := types.Step{
			ID:        i + 1,
			Title:     fmt.Sprintf("Step %d", i+1),
			Situation: fmt.Sprintf("situation %d", i+1),
		}
		for j, p := range opts {
			st.Decisions = append(st.Decisions, types.DecisionOption{
				ID:       j + 1,
				Text:     fmt.Sprintf("option %d", j+1),
				Points:   p,
				Feedback: "ok",
			})
		}
		steps = append(steps, st)
	}
	return types.ScenarioContent{Steps: steps}
}

func SeedScenario(tb testing.TB, ctx context.Context, tx *gorm.DB, framework string, content types.ScenarioContent) *types.Scenario {
	tb.Helper()
	id := uuid.New()
	sc := &types.Scenario{
		ID:                 id,
		Slug:               "scenario-" + id.String()[:8],
		Title:              "Scenario " + id.String()[:8],
		Description:        "fixture",
		Framework:          framework,
		Difficulty:         learning.DifficultyBeginner,
		Duration:           10,
		LearningObjectives: datatypes.NewJSONSlice([]string{"Facilitation"}),
		Content:            datatypes.NewJSONType(content),
		Source:             learning.SourceSeed,
		CreatedAt:          time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(sc).Error; err != nil {
		tb.Fatalf("seed scenario: %v", err)
	}
	return sc
}
