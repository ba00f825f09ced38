package seed

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/yungbote/agilecoach-backend/internal/data/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/data/repos"
	types "github.com/yungbote/agilecoach-backend/internal/domain"
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

// SEED_CATALOG_YAML points at a catalog file that replaces the embedded one.
const catalogEnv = "SEED_CATALOG_YAML"

// DemoUsername is the learner used when a request carries no identity.
const DemoUsername = "sarah.chen"

//go:embed catalog.yaml
var catalogFS embed.FS

// Seeded scenarios are stamped from this instant, one second apart, so
// listing keeps catalog order across databases.
var catalogEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DemoUserID is the id the demo learner gets when seeded.
func DemoUserID() uuid.UUID { return learning.SeedID("user", DemoUsername) }

type Catalog struct {
	Users         []UserSpec     `yaml:"users"`
	Scenarios     []ScenarioSpec `yaml:"scenarios"`
	LearningPaths []PathSpec     `yaml:"learningPaths"`
}

type UserSpec struct {
	Username           string `yaml:"username"`
	FirstName          string `yaml:"firstName"`
	LastName           string `yaml:"lastName"`
	Email              string `yaml:"email"`
	CurrentStreak      int    `yaml:"currentStreak"`
	CompletedScenarios int    `yaml:"completedScenarios"`
	SuccessRate        int    `yaml:"successRate"`
	AIInsights         int    `yaml:"aiInsights"`
	TimeInvested       int    `yaml:"timeInvested"`
}

type ScenarioSpec struct {
	Slug               string     `yaml:"slug"`
	Title              string     `yaml:"title"`
	Description        string     `yaml:"description"`
	Framework          string     `yaml:"framework"`
	Difficulty         string     `yaml:"difficulty"`
	Duration           int        `yaml:"duration"`
	Rating             int        `yaml:"rating"`
	ImageURL           string     `yaml:"imageUrl"`
	LearningObjectives []string   `yaml:"learningObjectives"`
	Steps              []StepSpec `yaml:"steps"`
}

type StepSpec struct {
	ID         int             `yaml:"id"`
	Title      string          `yaml:"title"`
	Situation  string          `yaml:"situation"`
	Characters []CharacterSpec `yaml:"characters"`
	Decisions  []DecisionSpec  `yaml:"decisions"`
}

type CharacterSpec struct {
	Name        string `yaml:"name"`
	Role        string `yaml:"role"`
	Personality string `yaml:"personality"`
	Avatar      string `yaml:"avatar"`
}

type DecisionSpec struct {
	ID          int    `yaml:"id"`
	Text        string `yaml:"text"`
	Description string `yaml:"description"`
	Points      int    `yaml:"points"`
	Feedback    string `yaml:"feedback"`
}

type PathSpec struct {
	Slug        string   `yaml:"slug"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Framework   string   `yaml:"framework"`
	Order       int      `yaml:"order"`
	Scenarios   []string `yaml:"scenarios"`
}

// Load reads the catalog from SEED_CATALOG_YAML when set, otherwise the
// embedded copy.
func Load() (*Catalog, error) {
	if path := strings.TrimSpace(os.Getenv(catalogEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", catalogEnv, err)
		}
		return Parse(raw)
	}
	raw, err := catalogFS.ReadFile("catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a catalog document. Unknown keys are rejected.
func Parse(raw []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if _, err := c.Rows(catalogEpoch); err != nil {
		return nil, err
	}
	return &c, nil
}

// Rows is a catalog converted to storable models.
type Rows struct {
	Users         []*types.User
	Scenarios     []*types.Scenario
	LearningPaths []*types.LearningPath
}

// Rows validates the catalog and builds its models. Path entries refer to
// scenarios by slug.
func (c *Catalog) Rows(now time.Time) (Rows, error) {
	var out Rows
	seenUser := map[string]bool{}
	for _, u := range c.Users {
		name := strings.TrimSpace(u.Username)
		if name == "" {
			return Rows{}, errors.New("catalog user without username")
		}
		if seenUser[name] {
			return Rows{}, fmt.Errorf("duplicate catalog user %q", name)
		}
		seenUser[name] = true
		out.Users = append(out.Users, &types.User{
			ID:                 learning.SeedID("user", name),
			Username:           name,
			FirstName:          u.FirstName,
			LastName:           u.LastName,
			Email:              u.Email,
			CurrentStreak:      u.CurrentStreak,
			CompletedScenarios: u.CompletedScenarios,
			SuccessRate:        u.SuccessRate,
			AIInsights:         u.AIInsights,
			TimeInvested:       u.TimeInvested,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}

	scenarioIDs := map[string]uuid.UUID{}
	for i, s := range c.Scenarios {
		slug := strings.TrimSpace(s.Slug)
		if slug == "" {
			return Rows{}, fmt.Errorf("catalog scenario %d has no slug", i)
		}
		if _, dup := scenarioIDs[slug]; dup {
			return Rows{}, fmt.Errorf("duplicate catalog scenario %q", slug)
		}
		sc := s.model(now.Add(time.Duration(i) * time.Second))
		if err := sc.Validate(); err != nil {
			return Rows{}, fmt.Errorf("catalog scenario %q: %w", slug, err)
		}
		scenarioIDs[slug] = sc.ID
		out.Scenarios = append(out.Scenarios, sc)
	}

	seenPath := map[string]bool{}
	for _, p := range c.LearningPaths {
		slug := strings.TrimSpace(p.Slug)
		if slug == "" || seenPath[slug] {
			return Rows{}, fmt.Errorf("catalog learning path %q: missing or duplicate slug", p.Name)
		}
		seenPath[slug] = true
		ids := make([]uuid.UUID, 0, len(p.Scenarios))
		for _, ref := range p.Scenarios {
			id, ok := scenarioIDs[ref]
			if !ok {
				return Rows{}, fmt.Errorf("learning path %q references unknown scenario %q", slug, ref)
			}
			ids = append(ids, id)
		}
		out.LearningPaths = append(out.LearningPaths, &types.LearningPath{
			ID:          learning.SeedID("learning_path", slug),
			Slug:        slug,
			Name:        p.Name,
			Description: p.Description,
			Framework:   strings.ToLower(p.Framework),
			ScenarioIDs: datatypes.NewJSONSlice(ids),
			Order:       p.Order,
			CreatedAt:   now,
		})
	}
	return out, nil
}

func (s ScenarioSpec) model(createdAt time.Time) *types.Scenario {
	steps := make([]types.Step, 0, len(s.Steps))
	for _, st := range s.Steps {
		chars := make([]types.Character, 0, len(st.Characters))
		for _, c := range st.Characters {
			chars = append(chars, types.Character{Name: c.Name, Role: c.Role, Personality: c.Personality, Avatar: c.Avatar})
		}
		decisions := make([]types.DecisionOption, 0, len(st.Decisions))
		for _, d := range st.Decisions {
			decisions = append(decisions, types.DecisionOption{
				ID:          d.ID,
				Text:        d.Text,
				Description: d.Description,
				Points:      d.Points,
				Feedback:    d.Feedback,
			})
		}
		steps = append(steps, types.Step{
			ID:         st.ID,
			Title:      st.Title,
			Situation:  st.Situation,
			Characters: chars,
			Decisions:  decisions,
		})
	}
	objectives := s.LearningObjectives
	if objectives == nil {
		objectives = []string{}
	}
	slug := strings.TrimSpace(s.Slug)
	return &types.Scenario{
		ID:                 learning.SeedID("scenario", slug),
		Slug:               slug,
		Title:              s.Title,
		Description:        s.Description,
		Framework:          strings.ToLower(s.Framework),
		Difficulty:         strings.ToLower(s.Difficulty),
		Duration:           s.Duration,
		Rating:             s.Rating,
		ImageURL:           s.ImageURL,
		LearningObjectives: datatypes.NewJSONSlice(objectives),
		Content:            datatypes.NewJSONType(types.ScenarioContent{Steps: steps}),
		Source:             learning.SourceSeed,
		CreatedAt:          createdAt,
	}
}

type Deps struct {
	Runner    aggregates.TxRunner
	Log       *logger.Logger
	Users     repos.UserRepo
	Scenarios repos.ScenarioRepo
	Paths     repos.LearningPathRepo
}

type Result struct {
	Users         int
	Scenarios     int
	LearningPaths int
}

// Apply upserts the catalog in one transaction. Existing learners keep
// their counters; scenarios and paths are refreshed from the catalog.
func Apply(ctx context.Context, deps Deps, c *Catalog) (Result, error) {
	if deps.Runner == nil || deps.Users == nil || deps.Scenarios == nil || deps.Paths == nil {
		return Result{}, errors.New("seed: missing dependencies")
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	rows, err := c.Rows(catalogEpoch)
	if err != nil {
		return Result{}, err
	}

	err = deps.Runner.InTx(ctx, func(dbc dbctx.Context) error {
		for _, u := range rows.Users {
			if err := deps.Users.UpsertByUsername(dbc, u); err != nil {
				return fmt.Errorf("upsert user %q: %w", u.Username, err)
			}
		}
		if err := deps.Scenarios.UpsertBySlug(dbc, rows.Scenarios); err != nil {
			return fmt.Errorf("upsert scenarios: %w", err)
		}
		if err := deps.Paths.UpsertBySlug(dbc, rows.LearningPaths); err != nil {
			return fmt.Errorf("upsert learning paths: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{Users: len(rows.Users), Scenarios: len(rows.Scenarios), LearningPaths: len(rows.LearningPaths)}
	deps.Log.Info("catalog seeded", "users", res.Users, "scenarios", res.Scenarios, "learning_paths", res.LearningPaths)
	return res, nil
}
