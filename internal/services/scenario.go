package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/yungbote/agilecoach-backend/internal/content"
	"github.com/yungbote/agilecoach-backend/internal/data/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/data/repos"
	types "github.com/yungbote/agilecoach-backend/internal/domain"
	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/platform/apierr"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

// FrameworkAll disables the list filter.
const FrameworkAll = "all"

type ScenarioService interface {
	// List filters by exact framework match unless framework is empty or "all".
	List(ctx context.Context, framework string) ([]types.ScenarioSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Scenario, error)
	Generate(ctx context.Context, in GenerateScenarioInput) (*types.Scenario, error)
	// NextStep writes a continuation for a decision. Nothing is stored.
	NextStep(ctx context.Context, scenarioID uuid.UUID, in NextStepInput) (types.Step, error)
}

type GenerateScenarioInput struct {
	Framework  string
	Difficulty string
	Topic      string
}

type NextStepInput struct {
	StepID     int
	DecisionID int
}

type ScenarioServiceDeps struct {
	Log       *logger.Logger
	Runner    aggregates.TxRunner
	Scenarios repos.ScenarioRepo
	Generator ContentGenerator
	// GeneratePerMinute caps scenario and next-step generation across
	// callers. Zero means unlimited.
	GeneratePerMinute int
}

type scenarioService struct {
	log       *logger.Logger
	runner    aggregates.TxRunner
	scenarios repos.ScenarioRepo
	gen       ContentGenerator
	limiter   *rate.Limiter
	flights   singleflight.Group
}

func NewScenarioService(deps ScenarioServiceDeps) ScenarioService {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if deps.GeneratePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(deps.GeneratePerMinute)), deps.GeneratePerMinute)
	}
	return &scenarioService{
		log:       deps.Log.With("service", "ScenarioService"),
		runner:    deps.Runner,
		scenarios: deps.Scenarios,
		gen:       deps.Generator,
		limiter:   limiter,
	}
}

func (s *scenarioService) List(ctx context.Context, framework string) ([]types.ScenarioSummary, error) {
	framework = strings.TrimSpace(framework)
	if framework == FrameworkAll {
		framework = ""
	}
	rows, err := s.scenarios.List(dbctx.Context{Ctx: ctx}, framework)
	if err != nil {
		return nil, err
	}
	out := make([]types.ScenarioSummary, 0, len(rows))
	for _, sc := range rows {
		out = append(out, sc.Summary())
	}
	return out, nil
}

func (s *scenarioService) Get(ctx context.Context, id uuid.UUID) (*types.Scenario, error) {
	sc, err := s.scenarios.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, domainagg.NotFound("Scenarios.Get", "scenario not found")
	}
	return sc, nil
}

func (s *scenarioService) Generate(ctx context.Context, in GenerateScenarioInput) (*types.Scenario, error) {
	const op = "Scenarios.Generate"
	if strings.TrimSpace(in.Framework) == "" || strings.TrimSpace(in.Difficulty) == "" {
		return nil, domainagg.Validation(op, "framework and difficulty are required")
	}
	if err := s.allowGeneration(); err != nil {
		return nil, err
	}
	if s.gen == nil {
		return nil, domainagg.Upstream(op, "text generation is not configured", nil)
	}

	sc, err := s.gen.GenerateScenario(ctx, content.ScenarioRequest{
		Framework:  in.Framework,
		Difficulty: in.Difficulty,
		Topic:      in.Topic,
	})
	if err != nil {
		return nil, err
	}
	err = s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		_, err := s.scenarios.Create(dbc, []*types.Scenario{sc})
		return err
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.log.Info("Scenario generated", "scenario_id", sc.ID, "framework", sc.Framework, "difficulty", sc.Difficulty, "steps", len(sc.Steps()))
	return sc, nil
}

func (s *scenarioService) NextStep(ctx context.Context, scenarioID uuid.UUID, in NextStepInput) (types.Step, error) {
	const op = "Scenarios.NextStep"
	if in.StepID <= 0 || in.DecisionID <= 0 {
		return types.Step{}, domainagg.Validation(op, "stepId and decisionId are required")
	}
	sc, err := s.Get(ctx, scenarioID)
	if err != nil {
		return types.Step{}, err
	}
	steps := sc.Steps()
	var current *types.Step
	for i := range steps {
		if steps[i].ID == in.StepID {
			current = &steps[i]
			break
		}
	}
	if current == nil {
		return types.Step{}, domainagg.Validation(op, fmt.Sprintf("scenario has no step %d", in.StepID))
	}
	opt, ok := current.Decision(in.DecisionID)
	if !ok {
		return types.Step{}, domainagg.Validation(op, fmt.Sprintf("step %d has no decision %d", in.StepID, in.DecisionID))
	}
	if s.gen == nil {
		return types.Step{}, domainagg.Upstream(op, "text generation is not configured", nil)
	}

	// Identical concurrent requests share one generation call. The shared
	// call outlives any one caller; the generator's own timeout bounds it.
	key := fmt.Sprintf("%s:%d:%d", scenarioID, in.StepID, in.DecisionID)
	shared := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(key, func() (any, error) {
		if err := s.allowGeneration(); err != nil {
			return nil, err
		}
		return s.gen.GenerateNextStep(shared, content.NextStepRequest{
			ScenarioTitle: sc.Title,
			Framework:     sc.Framework,
			Difficulty:    sc.Difficulty,
			Current:       *current,
			DecisionID:    opt.ID,
			Points:        opt.Points,
		})
	})
	select {
	case <-ctx.Done():
		return types.Step{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return types.Step{}, res.Err
		}
		return res.Val.(types.Step), nil
	}
}

// allowGeneration takes one token from the generation budget shared by
// Generate and NextStep.
func (s *scenarioService) allowGeneration() error {
	r := s.limiter.Reserve()
	if r.OK() && r.Delay() == 0 {
		return nil
	}
	wait := r.Delay()
	r.Cancel()
	return apierr.TooManyRequests(errors.New("scenario generation rate limit exceeded"), wait)
}
