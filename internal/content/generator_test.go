package content

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/platform/llm"
)

const scenarioJSON = `{
  "title": "Release Train Derailment",
  "description": "Two teams disagree on a shared dependency.",
  "framework": "SAFe",
  "difficulty": "advanced",
  "duration": 20,
  "learningObjectives": ["Dependency management", " ", "Facilitation"],
  "content": {"steps": [{
    "title": "",
    "situation": "The integration demo failed an hour before the review.",
    "characters": [{"name": "Ana", "role": "RTE"}],
    "decisions": [
      {"text": "Call an emergency sync", "points": 30, "feedback": "Good instinct"},
      {"text": "Blame the platform team", "points": -5, "feedback": "Erodes trust"}
    ]
  }]}
}`

func newTestGenerator(p llm.Provider) *Generator {
	return NewGenerator(p, nil, GeneratorConfig{
		Timeout: time.Second,
		Now:     func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
}

func TestGenerateScenarioNormalizes(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(scenarioJSON)})
	g := newTestGenerator(mock)

	sc, err := g.GenerateScenario(context.Background(), ScenarioRequest{Framework: "SAFe", Difficulty: "Advanced", Topic: "dependencies"})
	require.NoError(t, err)

	assert.Equal(t, "safe", sc.Framework)
	assert.Equal(t, learning.DifficultyAdvanced, sc.Difficulty)
	assert.Equal(t, learning.SourceGenerated, sc.Source)
	assert.Equal(t, DefaultImageURL, sc.ImageURL)
	assert.Equal(t, []string{"Dependency management", "Facilitation"}, []string(sc.LearningObjectives))
	assert.Regexp(t, `^release-train-derailment-[0-9a-f]{8}$`, sc.Slug)

	steps := sc.Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, 1, steps[0].ID)
	assert.Equal(t, "Step 1", steps[0].Title)
	require.Len(t, steps[0].Decisions, 2)
	assert.Equal(t, 1, steps[0].Decisions[0].ID)
	assert.Equal(t, 2, steps[0].Decisions[1].ID)
	assert.Equal(t, learning.MaxDecisionPoints, steps[0].Decisions[0].Points)
	assert.Equal(t, learning.MinDecisionPoints, steps[0].Decisions[1].Points)

	require.Equal(t, 1, mock.CallCount())
	call := mock.Calls[0]
	assert.Equal(t, "generated_scenario", call.Schema.Name)
	assert.Contains(t, call.Messages[0].Content, "focused on dependencies")
}

func TestGenerateScenarioRejectsBadRequest(t *testing.T) {
	g := newTestGenerator(llm.NewMockProvider())
	_, err := g.GenerateScenario(context.Background(), ScenarioRequest{Difficulty: "beginner"})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
	_, err = g.GenerateScenario(context.Background(), ScenarioRequest{Framework: "scrum", Difficulty: "legendary"})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
}

func TestGenerateScenarioUpstreamFailures(t *testing.T) {
	cases := map[string]llm.MockResponse{
		"empty":         {Content: json.RawMessage(``)},
		"not json":      {Content: json.RawMessage(`hello`)},
		"schema":        {Content: json.RawMessage(`{"title": "x"}`)},
		"no steps":      {Content: json.RawMessage(`{"title": "x", "content": {"steps": []}}`)},
		"provider down": {Err: &llm.ErrProviderUnavailable{Err: errors.New("dial tcp")}},
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			g := newTestGenerator(llm.NewMockProvider(resp))
			_, err := g.GenerateScenario(context.Background(), ScenarioRequest{Framework: "scrum", Difficulty: "beginner"})
			require.Error(t, err)
			assert.True(t, domainagg.IsCode(err, domainagg.CodeUpstreamGeneration), "got %v", err)
		})
	}
}

func TestGenerateFeedbackFiltersAndNormalizes(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"feedback": [
		{"type": "strength", "title": "Calm facilitation", "description": "You kept the standup focused.", "priority": "HIGH"},
		{"type": "improvement", "title": "", "description": "missing title"},
		{"type": "recommendation", "title": "Try timeboxing", "description": "Use a visible timer.", "priority": "urgent"}
	]}`)})
	g := newTestGenerator(mock)

	items, err := g.GenerateFeedback(context.Background(), FeedbackRequest{
		ScenarioTitle: "Daily Standup Facilitation",
		Decisions:     []learning.DecisionRecord{{StepID: 1, DecisionID: 2, Points: 25}},
		Profile:       ProfileSnapshot{CompletedScenarios: 24, SuccessRate: 87},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, learning.PriorityHigh, items[0].Priority)
	assert.Equal(t, learning.PriorityMedium, items[1].Priority)

	prompt := mock.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, "Step 1: Decision 2 (25 points)")
	assert.Contains(t, prompt, "Scenario: Daily Standup Facilitation")
}

func TestGenerateFeedbackRejectsUnknownType(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"feedback": [{"type": "praise", "title": "t", "description": "d"}]}`)})
	g := newTestGenerator(mock)
	_, err := g.GenerateFeedback(context.Background(), FeedbackRequest{
		Decisions: []learning.DecisionRecord{{StepID: 1, DecisionID: 1, Points: 10}},
	})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeUpstreamGeneration), "got %v", err)
}

func TestGenerateFeedbackNeedsDecisions(t *testing.T) {
	mock := llm.NewMockProvider()
	_, err := newTestGenerator(mock).GenerateFeedback(context.Background(), FeedbackRequest{})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
	assert.Equal(t, 0, mock.CallCount())
}

func TestGenerateNextStep(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"id": 1,
		"title": "Fallout",
		"situation": "The product owner escalates to the VP.",
		"decisions": [{"id": 3, "text": "Schedule a retro", "points": 20}, {"id": 3, "text": "Ignore it", "points": 5}]
	}`)})
	g := newTestGenerator(mock)
	step, err := g.GenerateNextStep(context.Background(), NextStepRequest{
		ScenarioTitle: "Sprint Planning Crisis",
		Framework:     "scrum",
		Difficulty:    "advanced",
		Current:       learning.Step{ID: 1, Situation: "Planning is stuck."},
		DecisionID:    2,
		Points:        20,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, step.ID)
	assert.Equal(t, []int{1, 2}, []int{step.Decisions[0].ID, step.Decisions[1].ID})
	assert.NotNil(t, step.Characters)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "User chose decision 2 (20 points)")
}

func TestGenerateHonorsTimeout(t *testing.T) {
	g := NewGenerator(slowProvider{}, nil, GeneratorConfig{Timeout: 10 * time.Millisecond})
	_, err := g.GenerateNextStep(context.Background(), NextStepRequest{
		Current:    learning.Step{ID: 1, Situation: "s"},
		DecisionID: 1,
	})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeUpstreamGeneration))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, &llm.ErrProviderUnavailable{Err: ctx.Err()}
}

func (slowProvider) ModelID() string { return "slow" }

func TestSlugify(t *testing.T) {
	assert.Equal(t, "sprint-planning-crisis", Slugify("  Sprint Planning Crisis!! "))
	assert.Equal(t, "dsdm-moscow-prioritization", Slugify("DSDM MoSCoW Prioritization"))
	assert.Equal(t, "scenario", Slugify("???"))
}
