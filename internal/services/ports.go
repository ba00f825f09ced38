package services

import (
	"context"

	"github.com/yungbote/agilecoach-backend/internal/content"
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/jobs/worker"
	"github.com/yungbote/agilecoach-backend/internal/realtime"
)

// Enqueuer accepts background work. *worker.Pool implements it.
type Enqueuer interface {
	Submit(t worker.Task) error
}

// Publisher delivers realtime events. Every bus.Bus implements it.
type Publisher interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
}

// ContentGenerator is the slice of *content.Generator the services use.
type ContentGenerator interface {
	GenerateScenario(ctx context.Context, req content.ScenarioRequest) (*learning.Scenario, error)
	GenerateFeedback(ctx context.Context, req content.FeedbackRequest) ([]content.Feedback, error)
	GenerateNextStep(ctx context.Context, req content.NextStepRequest) (learning.Step, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, realtime.SSEMessage) error { return nil }
