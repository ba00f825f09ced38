package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/agilecoach-backend/internal/data/repos"
	types "github.com/yungbote/agilecoach-backend/internal/domain"
	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/jobs/worker"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
	"github.com/yungbote/agilecoach-backend/internal/realtime"
)

const TaskInsightEnrich = "insights.enrich"

type ProgressService interface {
	Start(ctx context.Context, scenarioID uuid.UUID) (*types.Progress, error)
	RecordDecision(ctx context.Context, scenarioID uuid.UUID, in DecisionInput) (*DecisionOutcome, error)
	Complete(ctx context.Context, scenarioID uuid.UUID) (*types.Progress, error)
	// Get returns (nil, nil) when the caller never started the scenario.
	Get(ctx context.Context, scenarioID uuid.UUID) (*types.Progress, error)
	List(ctx context.Context) ([]*types.Progress, error)
}

// DecisionInput mirrors the request body. All fields are required; Points
// is only compared against the authored value.
type DecisionInput struct {
	StepID     *int
	DecisionID *int
	Points     *int
}

type DecisionOutcome struct {
	Progress *types.Progress
	Decision types.DecisionRecord
	Option   types.DecisionOption
}

type ProgressServiceDeps struct {
	Log       *logger.Logger
	Aggregate domainagg.ProgressAggregate
	Progress  repos.ProgressRepo
	Insights  InsightService
	Jobs      Enqueuer
	Events    Publisher
}

type progressService struct {
	log      *logger.Logger
	agg      domainagg.ProgressAggregate
	progress repos.ProgressRepo
	insights InsightService
	jobs     Enqueuer
	events   Publisher
	locks    *keyedMutex
}

func NewProgressService(deps ProgressServiceDeps) ProgressService {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Events == nil {
		deps.Events = nopPublisher{}
	}
	return &progressService{
		log:      deps.Log.With("service", "ProgressService"),
		agg:      deps.Aggregate,
		progress: deps.Progress,
		insights: deps.Insights,
		jobs:     deps.Jobs,
		events:   deps.Events,
		locks:    newKeyedMutex(),
	}
}

func recordKey(userID, scenarioID uuid.UUID) string {
	return userID.String() + ":" + scenarioID.String()
}

func (s *progressService) Start(ctx context.Context, scenarioID uuid.UUID) (*types.Progress, error) {
	userID, err := callerID(ctx, "Progress.Start")
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(recordKey(userID, scenarioID))
	defer unlock()

	res, err := s.agg.Start(ctx, domainagg.StartProgressInput{UserID: userID, ScenarioID: scenarioID})
	if err != nil {
		return nil, err
	}
	if res.Created {
		s.log.Info("Scenario started", "user_id", userID, "scenario_id", scenarioID, "total_steps", res.Progress.TotalSteps)
	}
	return res.Progress, nil
}

func (s *progressService) RecordDecision(ctx context.Context, scenarioID uuid.UUID, in DecisionInput) (*DecisionOutcome, error) {
	const op = "Progress.RecordDecision"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	if in.StepID == nil || in.DecisionID == nil || in.Points == nil {
		return nil, domainagg.Validation(op, "stepId, decisionId, and points are required")
	}

	unlock := s.locks.Lock(recordKey(userID, scenarioID))
	res, err := s.agg.RecordDecision(ctx, domainagg.RecordDecisionInput{
		UserID:     userID,
		ScenarioID: scenarioID,
		StepID:     *in.StepID,
		DecisionID: *in.DecisionID,
	})
	unlock()
	if err != nil {
		return nil, err
	}

	if *in.Points != res.Decision.Points {
		s.log.Warn("Client points differ from authored points",
			"user_id", userID,
			"scenario_id", scenarioID,
			"step_id", res.Decision.StepID,
			"decision_id", res.Decision.DecisionID,
			"client_points", *in.Points,
			"points", res.Decision.Points,
		)
	}

	s.publish(ctx, realtime.UserMessage(userID, realtime.SSEEventProgressUpdated, res.Progress))
	s.enqueueInsights(userID, scenarioID)

	return &DecisionOutcome{Progress: res.Progress, Decision: res.Decision, Option: res.Option}, nil
}

func (s *progressService) Complete(ctx context.Context, scenarioID uuid.UUID) (*types.Progress, error) {
	userID, err := callerID(ctx, "Progress.Complete")
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(recordKey(userID, scenarioID))
	res, err := s.agg.Complete(ctx, domainagg.CompleteProgressInput{UserID: userID, ScenarioID: scenarioID})
	unlock()
	if err != nil {
		return nil, err
	}

	if res.FirstCompletion {
		s.log.Info("Scenario completed",
			"user_id", userID,
			"scenario_id", scenarioID,
			"score", res.Progress.Score,
			"time_spent", res.Progress.TimeSpent,
		)
		s.publish(ctx, realtime.UserMessage(userID, realtime.SSEEventScenarioCompleted, map[string]any{
			"progress": res.Progress,
			"user":     res.User,
		}))
	}
	return res.Progress, nil
}

func (s *progressService) Get(ctx context.Context, scenarioID uuid.UUID) (*types.Progress, error) {
	userID, err := callerID(ctx, "Progress.Get")
	if err != nil {
		return nil, err
	}
	return s.progress.GetByUserAndScenario(dbctx.Context{Ctx: ctx}, userID, scenarioID)
}

func (s *progressService) List(ctx context.Context) ([]*types.Progress, error) {
	userID, err := callerID(ctx, "Progress.List")
	if err != nil {
		return nil, err
	}
	rows, err := s.progress.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*types.Progress{}
	}
	return rows, nil
}

func (s *progressService) publish(ctx context.Context, msg realtime.SSEMessage) {
	if err := s.events.Publish(ctx, msg); err != nil {
		s.log.Warn("Publish realtime event failed", "event", msg.Event, "error", err)
	}
}

// enqueueInsights schedules feedback generation. The request never waits
// on it and never fails because of it.
func (s *progressService) enqueueInsights(userID, scenarioID uuid.UUID) {
	if s.jobs == nil || s.insights == nil {
		return
	}
	err := s.jobs.Submit(worker.Task{
		Name: TaskInsightEnrich,
		Run: func(ctx context.Context) error {
			_, err := s.insights.Enrich(ctx, userID, scenarioID)
			return err
		},
	})
	if err != nil {
		s.log.Warn("Insight enrichment not scheduled", "user_id", userID, "scenario_id", scenarioID, "error", err)
	}
}
