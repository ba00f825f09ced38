package learning

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProgressState string

const (
	StateNotStarted ProgressState = "not_started"
	StateInProgress ProgressState = "in_progress"
	StateCompleted  ProgressState = "completed"
)

// Progress is the single live record for a (user, scenario) pair.
type Progress struct {
	ID          uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID                           `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_scenario" json:"userId"`
	ScenarioID  uuid.UUID                           `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_scenario;index" json:"scenarioId"`
	CurrentStep int                                 `gorm:"column:current_step;not null;default:0" json:"currentStep"`
	TotalSteps  int                                 `gorm:"column:total_steps;not null" json:"totalSteps"`
	Decisions   datatypes.JSONSlice[DecisionRecord] `gorm:"column:decisions;not null" json:"decisions"`
	Completed   bool                                `gorm:"column:completed;not null;default:false" json:"completed"`
	Score       int                                 `gorm:"column:score;not null;default:0" json:"score"`
	// minutes between start and first completion
	TimeSpent   int        `gorm:"column:time_spent;not null;default:0" json:"timeSpent"`
	StartedAt   time.Time  `gorm:"column:started_at;not null" json:"startedAt"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
}

func (Progress) TableName() string { return "user_progress" }

type DecisionRecord struct {
	StepID     int       `json:"stepId"`
	DecisionID int       `json:"decisionId"`
	Points     int       `json:"points"`
	Timestamp  time.Time `json:"timestamp"`
}

func (p *Progress) State() ProgressState {
	switch {
	case p == nil:
		return StateNotStarted
	case p.Completed:
		return StateCompleted
	default:
		return StateInProgress
	}
}

// NewProgress creates the initial record for a scenario.
func NewProgress(userID uuid.UUID, sc *Scenario, now time.Time) *Progress {
	return &Progress{
		ID:         uuid.New(),
		UserID:     userID,
		ScenarioID: sc.ID,
		TotalSteps: len(sc.Steps()),
		Decisions:  datatypes.JSONSlice[DecisionRecord]{},
		StartedAt:  now,
		UpdatedAt:  now,
	}
}

// Transition errors. The aggregate layer maps these onto error codes.
var (
	ErrProgressCompleted = errors.New("scenario already completed")
	ErrNoRemainingSteps  = errors.New("no remaining steps")
)

// StepOutOfOrderError reports a decision for a step other than the current one.
type StepOutOfOrderError struct {
	Expected, Got int
}

func (e *StepOutOfOrderError) Error() string {
	return fmt.Sprintf("step out of order: expected step %d, got %d", e.Expected, e.Got)
}

// UnknownDecisionError reports a decision id that the step does not offer.
type UnknownDecisionError struct {
	StepID, DecisionID int
}

func (e *UnknownDecisionError) Error() string {
	return fmt.Sprintf("step %d has no decision %d", e.StepID, e.DecisionID)
}

// ApplyDecision records the choice for the current step. Points come from
// the authored option, never from the caller. The cursor advances by one.
func (p *Progress) ApplyDecision(content ScenarioContent, stepID, decisionID int, now time.Time) (DecisionRecord, error) {
	if p.Completed {
		return DecisionRecord{}, ErrProgressCompleted
	}
	if p.CurrentStep >= p.TotalSteps {
		return DecisionRecord{}, ErrNoRemainingSteps
	}
	step, ok := content.StepAt(p.CurrentStep)
	if !ok {
		return DecisionRecord{}, ErrNoRemainingSteps
	}
	if step.ID != stepID {
		return DecisionRecord{}, &StepOutOfOrderError{Expected: step.ID, Got: stepID}
	}
	opt, ok := step.Decision(decisionID)
	if !ok {
		return DecisionRecord{}, &UnknownDecisionError{StepID: stepID, DecisionID: decisionID}
	}

	rec := DecisionRecord{StepID: stepID, DecisionID: decisionID, Points: opt.Points, Timestamp: now}
	p.Decisions = append(p.Decisions, rec)
	p.Score += opt.Points
	p.CurrentStep++
	p.UpdatedAt = now
	return rec, nil
}

// MarkCompleted finalizes the record. It reports false when the record was
// already completed, in which case nothing changes.
func (p *Progress) MarkCompleted(now time.Time) bool {
	if p.Completed {
		return false
	}
	p.Completed = true
	at := now
	p.CompletedAt = &at
	p.TimeSpent = ElapsedMinutes(p.StartedAt, now)
	p.UpdatedAt = now
	return true
}

// ElapsedMinutes rounds up and never returns less than one.
func ElapsedMinutes(from, to time.Time) int {
	mins := int(math.Ceil(to.Sub(from).Minutes()))
	if mins < 1 {
		return 1
	}
	return mins
}
