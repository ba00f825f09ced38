package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/agilecoach-backend/internal/data/repos"
	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
)

const progressTable = "user_progress"

type ProgressAggregateDeps struct {
	Base BaseDeps

	Users     repos.UserRepo
	Scenarios repos.ScenarioRepo
	Progress  repos.ProgressRepo
}

type progressAggregate struct {
	deps ProgressAggregateDeps
}

func NewProgressAggregate(deps ProgressAggregateDeps) domainagg.ProgressAggregate {
	deps.Base = deps.Base.withDefaults()
	return &progressAggregate{deps: deps}
}

func (a *progressAggregate) configured() bool {
	return a.deps.Users != nil && a.deps.Scenarios != nil && a.deps.Progress != nil
}

// Start returns the caller's record for the scenario, creating it when absent.
func (a *progressAggregate) Start(ctx context.Context, in domainagg.StartProgressInput) (domainagg.StartProgressResult, error) {
	const op = "Learning.Progress.Start"
	var out domainagg.StartProgressResult
	if in.UserID == uuid.Nil {
		return out, domainagg.Validation(op, "missing user_id")
	}
	if in.ScenarioID == uuid.Nil {
		return out, domainagg.Validation(op, "missing scenario_id")
	}
	if !a.configured() {
		return out, domainagg.Internal(op, "progress aggregate repos not configured")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sc, err := a.deps.Scenarios.GetByID(dbc, in.ScenarioID)
		if err != nil {
			return err
		}
		if sc == nil {
			return domainagg.NotFound(op, "scenario not found")
		}
		if len(sc.Steps()) == 0 {
			return domainagg.InvalidState(op, "scenario has no steps")
		}
		u, err := a.deps.Users.GetByID(dbc, in.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return domainagg.NotFound(op, "user not found")
		}

		existing, err := a.deps.Progress.GetByUserAndScenario(dbc, in.UserID, in.ScenarioID)
		if err != nil {
			return err
		}
		if existing != nil {
			out.Progress = existing
			return nil
		}

		p := learning.NewProgress(in.UserID, sc, a.deps.Base.Now())
		if err := a.deps.Progress.Create(dbc, p); err != nil {
			return err
		}
		out.Progress = p
		out.Created = true
		return nil
	})
	if domainagg.IsCode(err, domainagg.CodeConflict) {
		// A concurrent start won the unique index; hand back its record.
		winner, rerr := a.deps.Progress.GetByUserAndScenario(dbctx.Context{Ctx: ctx}, in.UserID, in.ScenarioID)
		if rerr == nil && winner != nil {
			return domainagg.StartProgressResult{Progress: winner}, nil
		}
	}
	if err != nil {
		return domainagg.StartProgressResult{}, err
	}
	if out.Created {
		a.deps.Base.Hooks.ObserveTransition(learning.StateNotStarted, learning.StateInProgress)
	}
	return out, nil
}

// RecordDecision appends the choice for the current step. The score is
// credited from the authored option.
func (a *progressAggregate) RecordDecision(ctx context.Context, in domainagg.RecordDecisionInput) (domainagg.RecordDecisionResult, error) {
	const op = "Learning.Progress.RecordDecision"
	var out domainagg.RecordDecisionResult
	if in.UserID == uuid.Nil {
		return out, domainagg.Validation(op, "missing user_id")
	}
	if in.ScenarioID == uuid.Nil {
		return out, domainagg.Validation(op, "missing scenario_id")
	}
	if in.StepID <= 0 || in.DecisionID <= 0 {
		return out, domainagg.Validation(op, "stepId and decisionId must be positive")
	}
	if !a.configured() {
		return out, domainagg.Internal(op, "progress aggregate repos not configured")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		p, err := a.deps.Progress.GetForUpdate(dbc, in.UserID, in.ScenarioID)
		if err != nil {
			return err
		}
		if p == nil {
			return domainagg.InvalidState(op, "scenario not started")
		}
		if p.Completed {
			return domainagg.InvalidState(op, "scenario already completed")
		}
		sc, err := a.deps.Scenarios.GetByID(dbc, in.ScenarioID)
		if err != nil {
			return err
		}
		if sc == nil {
			return domainagg.NotFound(op, "scenario not found")
		}

		content := sc.Content.Data()
		cursor := p.CurrentStep
		rec, err := p.ApplyDecision(content, in.StepID, in.DecisionID, a.deps.Base.Now())
		if err != nil {
			return err
		}

		ok, err := a.deps.Base.CASGuard.Update(dbc, progressTable, p.ID, Expect{"current_step": cursor, "completed": false}, map[string]any{
			"current_step": p.CurrentStep,
			"decisions":    p.Decisions,
			"score":        p.Score,
			"updated_at":   p.UpdatedAt,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "progress changed while recording decision"); err != nil {
			return err
		}

		step, _ := content.StepAt(cursor)
		opt, _ := step.Decision(in.DecisionID)
		out.Progress = p
		out.Decision = rec
		out.Option = opt
		return nil
	})
	if err != nil {
		return domainagg.RecordDecisionResult{}, err
	}
	a.deps.Base.Hooks.ObserveTransition(learning.StateInProgress, learning.StateInProgress)
	return out, nil
}

// Complete finalizes the record and folds it into the user's profile.
// Completing an already completed record returns it unchanged.
func (a *progressAggregate) Complete(ctx context.Context, in domainagg.CompleteProgressInput) (domainagg.CompleteProgressResult, error) {
	const op = "Learning.Progress.Complete"
	var out domainagg.CompleteProgressResult
	if in.UserID == uuid.Nil {
		return out, domainagg.Validation(op, "missing user_id")
	}
	if in.ScenarioID == uuid.Nil {
		return out, domainagg.Validation(op, "missing scenario_id")
	}
	if !a.configured() {
		return out, domainagg.Internal(op, "progress aggregate repos not configured")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		p, err := a.deps.Progress.GetForUpdate(dbc, in.UserID, in.ScenarioID)
		if err != nil {
			return err
		}
		if p == nil {
			return domainagg.NotFound(op, "progress not found")
		}
		now := a.deps.Base.Now()
		if !p.MarkCompleted(now) {
			out.Progress = p
			return nil
		}

		ok, err := a.deps.Base.CASGuard.Update(dbc, progressTable, p.ID, Expect{"completed": false}, map[string]any{
			"completed":    true,
			"completed_at": p.CompletedAt,
			"time_spent":   p.TimeSpent,
			"updated_at":   p.UpdatedAt,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "progress completed concurrently"); err != nil {
			return err
		}

		u, err := a.deps.Users.GetByIDForUpdate(dbc, in.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return domainagg.NotFound(op, "user not found")
		}
		learning.ApplyCompletion(u, p, now)
		if err := a.deps.Users.UpdateStats(dbc, u); err != nil {
			return err
		}

		out.Progress = p
		out.User = u
		out.FirstCompletion = true
		return nil
	})
	if err != nil {
		return domainagg.CompleteProgressResult{}, err
	}
	if out.FirstCompletion {
		a.deps.Base.Hooks.ObserveTransition(learning.StateInProgress, learning.StateCompleted)
	}
	return out, nil
}
