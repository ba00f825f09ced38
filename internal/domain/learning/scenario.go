package learning

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MinDecisionPoints = 0
	MaxDecisionPoints = 25
)

// Difficulty levels accepted for scenarios.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyExpert       = "expert"
)

const (
	SourceSeed      = "seed"
	SourceGenerated = "generated"
)

func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert:
		return true
	}
	return false
}

// Scenario is immutable once stored.
type Scenario struct {
	ID                 uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	Slug               string                              `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Title              string                              `gorm:"column:title;not null" json:"title"`
	Description        string                              `gorm:"column:description;not null" json:"description"`
	Framework          string                              `gorm:"column:framework;not null;index" json:"framework"`
	Difficulty         string                              `gorm:"column:difficulty;not null" json:"difficulty"`
	Duration           int                                 `gorm:"column:duration;not null" json:"duration"`
	Rating             int                                 `gorm:"column:rating;not null;default:0" json:"rating"`
	ImageURL           string                              `gorm:"column:image_url" json:"imageUrl"`
	LearningObjectives datatypes.JSONSlice[string]         `gorm:"column:learning_objectives" json:"learningObjectives"`
	Content            datatypes.JSONType[ScenarioContent] `gorm:"column:content;not null" json:"content"`
	Source             string                              `gorm:"column:source;not null;default:seed" json:"source"`
	CreatedAt          time.Time                           `gorm:"not null;index" json:"createdAt"`
}

func (Scenario) TableName() string { return "scenario" }

type ScenarioContent struct {
	Steps []Step `json:"steps"`
}

type Step struct {
	ID         int              `json:"id"`
	Title      string           `json:"title"`
	Situation  string           `json:"situation"`
	Characters []Character      `json:"characters"`
	Decisions  []DecisionOption `json:"decisions"`
}

type Character struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Personality string `json:"personality"`
	Avatar      string `json:"avatar"`
}

type DecisionOption struct {
	ID          int    `json:"id"`
	Text        string `json:"text"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Feedback    string `json:"feedback"`
}

// Steps returns the authored steps in order.
func (s *Scenario) Steps() []Step {
	if s == nil {
		return nil
	}
	return s.Content.Data().Steps
}

// StepAt returns the step at zero-based position i.
func (c ScenarioContent) StepAt(i int) (Step, bool) {
	if i < 0 || i >= len(c.Steps) {
		return Step{}, false
	}
	return c.Steps[i], true
}

func (s Step) Decision(id int) (DecisionOption, bool) {
	for _, d := range s.Decisions {
		if d.ID == id {
			return d, true
		}
	}
	return DecisionOption{}, false
}

// Validate checks the structural rules for authored or generated content.
func (c ScenarioContent) Validate() error {
	if len(c.Steps) == 0 {
		return fmt.Errorf("scenario has no steps")
	}
	stepIDs := make(map[int]bool, len(c.Steps))
	for i, st := range c.Steps {
		if st.ID <= 0 {
			return fmt.Errorf("step %d: id must be positive", i)
		}
		if stepIDs[st.ID] {
			return fmt.Errorf("step %d: duplicate id %d", i, st.ID)
		}
		stepIDs[st.ID] = true
		if strings.TrimSpace(st.Situation) == "" {
			return fmt.Errorf("step %d: situation is required", st.ID)
		}
		if len(st.Decisions) == 0 {
			return fmt.Errorf("step %d: no decisions", st.ID)
		}
		decisionIDs := make(map[int]bool, len(st.Decisions))
		for _, d := range st.Decisions {
			if d.ID <= 0 {
				return fmt.Errorf("step %d: decision id must be positive", st.ID)
			}
			if decisionIDs[d.ID] {
				return fmt.Errorf("step %d: duplicate decision id %d", st.ID, d.ID)
			}
			decisionIDs[d.ID] = true
			if d.Points < MinDecisionPoints || d.Points > MaxDecisionPoints {
				return fmt.Errorf("step %d decision %d: points %d outside [%d,%d]", st.ID, d.ID, d.Points, MinDecisionPoints, MaxDecisionPoints)
			}
		}
	}
	return nil
}

// Validate checks metadata and content of a scenario before it is stored.
func (s *Scenario) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(s.Framework) == "" {
		return fmt.Errorf("framework is required")
	}
	if s.Framework != strings.ToLower(s.Framework) {
		return fmt.Errorf("framework must be lowercase")
	}
	if !ValidDifficulty(s.Difficulty) {
		return fmt.Errorf("unknown difficulty %q", s.Difficulty)
	}
	return s.Content.Data().Validate()
}

// ScenarioSummary is the list view of a scenario without its content.
type ScenarioSummary struct {
	ID                 uuid.UUID `json:"id"`
	Slug               string    `json:"slug"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Framework          string    `json:"framework"`
	Difficulty         string    `json:"difficulty"`
	Duration           int       `json:"duration"`
	Rating             int       `json:"rating"`
	ImageURL           string    `json:"imageUrl"`
	LearningObjectives []string  `json:"learningObjectives"`
	StepCount          int       `json:"stepCount"`
}

func (s *Scenario) Summary() ScenarioSummary {
	objectives := []string(s.LearningObjectives)
	if objectives == nil {
		objectives = []string{}
	}
	return ScenarioSummary{
		ID:                 s.ID,
		Slug:               s.Slug,
		Title:              s.Title,
		Description:        s.Description,
		Framework:          s.Framework,
		Difficulty:         s.Difficulty,
		Duration:           s.Duration,
		Rating:             s.Rating,
		ImageURL:           s.ImageURL,
		LearningObjectives: objectives,
		StepCount:          len(s.Steps()),
	}
}

var seedNamespace = uuid.MustParse("6f1c2a4e-8b1d-4c55-9a57-3d0f0c2b7e11")

// SeedID derives a stable id for catalog entries so references survive re-seeding.
func SeedID(kind, slug string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(kind+":"+slug))
}
