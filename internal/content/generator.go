package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/agilecoach-backend/internal/content/prompts"
	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/platform/llm"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

const (
	DefaultImageURL = "https://images.unsplash.com/photo-1552664730-d307ca884978?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=300"

	defaultDuration = 15
	minDuration     = 5
	maxDuration     = 60
	maxFeedback     = 5
)

type GeneratorConfig struct {
	// Timeout bounds each provider call. Zero means 30s.
	Timeout         time.Duration
	DefaultImageURL string
	Now             func() time.Time
}

// Generator turns provider output into validated domain content.
type Generator struct {
	llm      llm.Provider
	log      *logger.Logger
	timeout  time.Duration
	imageURL string
	now      func() time.Time
}

func NewGenerator(p llm.Provider, baseLog *logger.Logger, cfg GeneratorConfig) *Generator {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if strings.TrimSpace(cfg.DefaultImageURL) == "" {
		cfg.DefaultImageURL = DefaultImageURL
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Generator{
		llm:      p,
		log:      baseLog.With("component", "ContentGenerator"),
		timeout:  cfg.Timeout,
		imageURL: cfg.DefaultImageURL,
		now:      cfg.Now,
	}
}

type ScenarioRequest struct {
	Framework  string
	Difficulty string
	Topic      string
}

type generatedScenario struct {
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	Framework          string                   `json:"framework"`
	Difficulty         string                   `json:"difficulty"`
	Duration           int                      `json:"duration"`
	LearningObjectives []string                 `json:"learningObjectives"`
	Content            learning.ScenarioContent `json:"content"`
}

// GenerateScenario returns a new, unsaved scenario.
func (g *Generator) GenerateScenario(ctx context.Context, req ScenarioRequest) (*learning.Scenario, error) {
	const op = "Content.GenerateScenario"
	framework := strings.ToLower(strings.TrimSpace(req.Framework))
	difficulty := strings.ToLower(strings.TrimSpace(req.Difficulty))
	if framework == "" {
		return nil, domainagg.Validation(op, "framework is required")
	}
	if !learning.ValidDifficulty(difficulty) {
		return nil, domainagg.Validation(op, fmt.Sprintf("unknown difficulty %q", req.Difficulty))
	}

	var out generatedScenario
	if err := g.generate(ctx, op, prompts.PromptScenarioGenerate, prompts.Input{
		Framework:  framework,
		Difficulty: difficulty,
		Topic:      strings.TrimSpace(req.Topic),
	}, &out); err != nil {
		return nil, err
	}

	id := uuid.New()
	sc := &learning.Scenario{
		ID:                 id,
		Slug:               Slugify(out.Title) + "-" + id.String()[:8],
		Title:              strings.TrimSpace(out.Title),
		Description:        strings.TrimSpace(out.Description),
		Framework:          framework,
		Difficulty:         difficulty,
		Duration:           clampDuration(out.Duration),
		ImageURL:           g.imageURL,
		LearningObjectives: datatypes.NewJSONSlice(cleanStrings(out.LearningObjectives)),
		Content:            datatypes.NewJSONType(normalizeContent(out.Content)),
		Source:             learning.SourceGenerated,
		CreatedAt:          g.now(),
	}
	if err := sc.Validate(); err != nil {
		return nil, domainagg.Upstream(op, "generated scenario is invalid", err)
	}
	return sc, nil
}

type ProfileSnapshot struct {
	CompletedScenarios int
	SuccessRate        int
	Strengths          []string
	Weaknesses         []string
}

type FeedbackRequest struct {
	ScenarioTitle string
	Decisions     []learning.DecisionRecord
	Profile       ProfileSnapshot
}

type Feedback struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// GenerateFeedback asks for coaching notes on a decision trace. Entries
// without a title or description are dropped.
func (g *Generator) GenerateFeedback(ctx context.Context, req FeedbackRequest) ([]Feedback, error) {
	const op = "Content.GenerateFeedback"
	if len(req.Decisions) == 0 {
		return nil, domainagg.Validation(op, "no decisions to analyze")
	}
	lines := make([]string, 0, len(req.Decisions))
	for _, d := range req.Decisions {
		lines = append(lines, fmt.Sprintf("Step %d: Decision %d (%d points)", d.StepID, d.DecisionID, d.Points))
	}

	var out struct {
		Feedback []Feedback `json:"feedback"`
	}
	if err := g.generate(ctx, op, prompts.PromptCoachingFeedback, prompts.Input{
		ScenarioTitle:      req.ScenarioTitle,
		CompletedScenarios: req.Profile.CompletedScenarios,
		SuccessRate:        req.Profile.SuccessRate,
		StrengthsCSV:       strings.Join(cleanStrings(req.Profile.Strengths), ", "),
		WeaknessesCSV:      strings.Join(cleanStrings(req.Profile.Weaknesses), ", "),
		DecisionsText:      strings.Join(lines, "\n"),
	}, &out); err != nil {
		return nil, err
	}

	items := make([]Feedback, 0, len(out.Feedback))
	for _, f := range out.Feedback {
		f.Type = strings.ToLower(strings.TrimSpace(f.Type))
		f.Title = strings.TrimSpace(f.Title)
		f.Description = strings.TrimSpace(f.Description)
		if !learning.ValidInsightType(f.Type) || f.Title == "" || f.Description == "" {
			continue
		}
		f.Priority = learning.NormalizePriority(strings.ToLower(strings.TrimSpace(f.Priority)))
		items = append(items, f)
		if len(items) == maxFeedback {
			break
		}
	}
	return items, nil
}

type NextStepRequest struct {
	ScenarioTitle string
	Framework     string
	Difficulty    string
	Current       learning.Step
	DecisionID    int
	Points        int
}

// GenerateNextStep writes a continuation for the chosen decision. The step
// gets the id following the current one.
func (g *Generator) GenerateNextStep(ctx context.Context, req NextStepRequest) (learning.Step, error) {
	const op = "Content.GenerateNextStep"
	var out learning.Step
	if err := g.generate(ctx, op, prompts.PromptScenarioNextStep, prompts.Input{
		ScenarioTitle: req.ScenarioTitle,
		Framework:     req.Framework,
		Difficulty:    req.Difficulty,
		Situation:     req.Current.Situation,
		DecisionID:    req.DecisionID,
		Points:        req.Points,
	}, &out); err != nil {
		return learning.Step{}, err
	}
	out.ID = req.Current.ID + 1
	out = normalizeStep(out, out.ID)
	if err := (learning.ScenarioContent{Steps: []learning.Step{out}}).Validate(); err != nil {
		return learning.Step{}, domainagg.Upstream(op, "generated step is invalid", err)
	}
	return out, nil
}

func (g *Generator) generate(ctx context.Context, op string, name prompts.PromptName, in prompts.Input, dst any) error {
	if g == nil || g.llm == nil {
		return domainagg.Upstream(op, "text generation is not configured", nil)
	}
	p, err := prompts.Build(name, in)
	if err != nil {
		return domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	schema := &llm.Schema{Name: p.SchemaName, Definition: p.Schema}
	resp, err := g.llm.Generate(ctx, llm.UserPrompt(p.System, p.User, schema, p.Temperature))
	if err != nil {
		g.log.Warn("generation failed", "prompt", p.Name, "error", err)
		return domainagg.Upstream(op, "text generation failed", err)
	}
	if err := json.Unmarshal(resp.Content, dst); err != nil {
		return domainagg.Upstream(op, "unreadable generation output", err)
	}
	return nil
}

func normalizeContent(c learning.ScenarioContent) learning.ScenarioContent {
	steps := make([]learning.Step, 0, len(c.Steps))
	for i, st := range c.Steps {
		steps = append(steps, normalizeStep(st, i+1))
	}
	return learning.ScenarioContent{Steps: steps}
}

// normalizeStep fills a missing step id with its position, renumbers
// decisions 1..n when their ids are missing or repeated, and clamps points.
func normalizeStep(st learning.Step, position int) learning.Step {
	if st.ID <= 0 {
		st.ID = position
	}
	st.Title = strings.TrimSpace(st.Title)
	if st.Title == "" {
		st.Title = fmt.Sprintf("Step %d", st.ID)
	}
	st.Situation = strings.TrimSpace(st.Situation)
	if st.Characters == nil {
		st.Characters = []learning.Character{}
	}
	renumber := false
	seen := map[int]bool{}
	for _, d := range st.Decisions {
		if d.ID <= 0 || seen[d.ID] {
			renumber = true
			break
		}
		seen[d.ID] = true
	}
	for i := range st.Decisions {
		d := &st.Decisions[i]
		if renumber {
			d.ID = i + 1
		}
		d.Points = clampPoints(d.Points)
		d.Text = strings.TrimSpace(d.Text)
	}
	return st
}

func clampPoints(p int) int {
	switch {
	case p < learning.MinDecisionPoints:
		return learning.MinDecisionPoints
	case p > learning.MaxDecisionPoints:
		return learning.MaxDecisionPoints
	}
	return p
}

func clampDuration(d int) int {
	switch {
	case d <= 0:
		return defaultDuration
	case d < minDuration:
		return minDuration
	case d > maxDuration:
		return maxDuration
	}
	return d
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
