package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/domain/user"
)

// ProgressAggregate owns every write to a progress record and the profile
// cascade that follows its completion.
type ProgressAggregate interface {
	Start(ctx context.Context, in StartProgressInput) (StartProgressResult, error)
	RecordDecision(ctx context.Context, in RecordDecisionInput) (RecordDecisionResult, error)
	Complete(ctx context.Context, in CompleteProgressInput) (CompleteProgressResult, error)
}

type StartProgressInput struct {
	UserID     uuid.UUID
	ScenarioID uuid.UUID
}

type StartProgressResult struct {
	Progress *learning.Progress
	// Created is false when an existing record was returned.
	Created bool
}

type RecordDecisionInput struct {
	UserID     uuid.UUID
	ScenarioID uuid.UUID
	StepID     int
	DecisionID int
}

type RecordDecisionResult struct {
	Progress *learning.Progress
	Decision learning.DecisionRecord
	Option   learning.DecisionOption
}

type CompleteProgressInput struct {
	UserID     uuid.UUID
	ScenarioID uuid.UUID
}

type CompleteProgressResult struct {
	Progress *learning.Progress
	// User is only set when this call performed the completion.
	User            *user.User
	FirstCompletion bool
}
