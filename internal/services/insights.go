package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/agilecoach-backend/internal/content"
	"github.com/yungbote/agilecoach-backend/internal/data/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/data/repos"
	types "github.com/yungbote/agilecoach-backend/internal/domain"
	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
	"github.com/yungbote/agilecoach-backend/internal/realtime"
)

type InsightService interface {
	// Enrich generates and stores coaching feedback for the learner's run.
	// Failures leave the stored progress untouched and create no insights.
	Enrich(ctx context.Context, userID, scenarioID uuid.UUID) ([]*types.Insight, error)
	// List returns the caller's insights newest first.
	List(ctx context.Context, limit int) ([]*types.Insight, error)
}

type InsightServiceDeps struct {
	Log       *logger.Logger
	Runner    aggregates.TxRunner
	Users     repos.UserRepo
	Scenarios repos.ScenarioRepo
	Progress  repos.ProgressRepo
	Insights  repos.InsightRepo
	Generator ContentGenerator
	Events    Publisher
	// Timeout bounds one enrichment. Defaults to 10s.
	Timeout time.Duration
	Now     func() time.Time
}

type insightService struct {
	log     *logger.Logger
	deps    InsightServiceDeps
	timeout time.Duration
}

func NewInsightService(deps InsightServiceDeps) InsightService {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Events == nil {
		deps.Events = nopPublisher{}
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 10 * time.Second
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &insightService{
		log:     deps.Log.With("service", "InsightService"),
		deps:    deps,
		timeout: deps.Timeout,
	}
}

func (s *insightService) Enrich(ctx context.Context, userID, scenarioID uuid.UUID) ([]*types.Insight, error) {
	const op = "Insights.Enrich"
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.enrich(ctx, op, userID, scenarioID)
	if err != nil {
		s.log.Warn("Insight enrichment failed",
			"user_id", userID,
			"scenario_id", scenarioID,
			"code", domainagg.CodeOf(err),
			"error", err,
		)
		return nil, err
	}
	if len(rows) > 0 {
		if perr := s.deps.Events.Publish(ctx, realtime.UserMessage(userID, realtime.SSEEventInsightsGenerated, rows)); perr != nil {
			s.log.Warn("Publish insights event failed", "user_id", userID, "error", perr)
		}
	}
	return rows, nil
}

func (s *insightService) enrich(ctx context.Context, op string, userID, scenarioID uuid.UUID) ([]*types.Insight, error) {
	if s.deps.Generator == nil {
		return nil, domainagg.Upstream(op, "text generation is not configured", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}
	u, err := s.deps.Users.GetByID(dbc, userID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if u == nil {
		return nil, domainagg.NotFound(op, "user not found")
	}
	p, err := s.deps.Progress.GetByUserAndScenario(dbc, userID, scenarioID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if p == nil || len(p.Decisions) == 0 {
		return nil, domainagg.InvalidState(op, "no decisions recorded")
	}
	title := ""
	if sc, err := s.deps.Scenarios.GetByID(dbc, scenarioID); err == nil && sc != nil {
		title = sc.Title
	}

	feedback, err := s.deps.Generator.GenerateFeedback(ctx, content.FeedbackRequest{
		ScenarioTitle: title,
		Decisions:     []types.DecisionRecord(p.Decisions),
		Profile: content.ProfileSnapshot{
			CompletedScenarios: u.CompletedScenarios,
			SuccessRate:        u.SuccessRate,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(feedback) == 0 {
		return []*types.Insight{}, nil
	}

	now := s.deps.Now()
	sid := scenarioID
	rows := make([]*types.Insight, 0, len(feedback))
	for _, f := range feedback {
		rows = append(rows, &types.Insight{
			UserID:      userID,
			ScenarioID:  &sid,
			Type:        f.Type,
			Priority:    f.Priority,
			Title:       f.Title,
			Description: f.Description,
			CreatedAt:   now,
		})
	}

	var created []*types.Insight
	err = s.deps.Runner.InTx(ctx, func(dbc dbctx.Context) error {
		out, err := s.deps.Insights.Create(dbc, rows)
		created = out
		return err
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return created, nil
}

func (s *insightService) List(ctx context.Context, limit int) ([]*types.Insight, error) {
	userID, err := callerID(ctx, "Insights.List")
	if err != nil {
		return nil, err
	}
	rows, err := s.deps.Insights.ListByUser(dbctx.Context{Ctx: ctx}, userID, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*types.Insight{}
	}
	return rows, nil
}
