package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/agilecoach-backend/internal/content"
	"github.com/yungbote/agilecoach-backend/internal/data/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/data/repos"
	"github.com/yungbote/agilecoach-backend/internal/jobs/worker"
	"github.com/yungbote/agilecoach-backend/internal/observability"
	"github.com/yungbote/agilecoach-backend/internal/platform/llm"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
	"github.com/yungbote/agilecoach-backend/internal/realtime/bus"
	"github.com/yungbote/agilecoach-backend/internal/services"
)

type Repos struct {
	User         repos.UserRepo
	Scenario     repos.ScenarioRepo
	Progress     repos.ProgressRepo
	Insight      repos.InsightRepo
	LearningPath repos.LearningPathRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Scenario:     repos.NewScenarioRepo(db, log),
		Progress:     repos.NewProgressRepo(db, log),
		Insight:      repos.NewInsightRepo(db, log),
		LearningPath: repos.NewLearningPathRepo(db, log),
	}
}

type Services struct {
	Scenario     services.ScenarioService
	Progress     services.ProgressService
	Insight      services.InsightService
	User         services.UserService
	LearningPath services.LearningPathService
}

func wireProvider(cfg Config, log *logger.Logger, metrics *observability.Metrics) (llm.Provider, error) {
	var p llm.Provider
	switch cfg.LLMProvider {
	case ProviderOpenAI:
		op, err := llm.NewOpenAIProvider(cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("init openai provider: %w", err)
		}
		p = op
	default:
		p = llm.NewMockProvider()
	}
	return llm.Instrument(p, log, metrics), nil
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	metrics *observability.Metrics,
	reposet Repos,
	provider llm.Provider,
	pool *worker.Pool,
	events bus.Bus,
) Services {
	log.Info("Wiring services...")
	runner := aggregates.NewGormTxRunner(db)
	gen := content.NewGenerator(provider, log, content.GeneratorConfig{
		Timeout:         cfg.GenerationTimeout,
		DefaultImageURL: cfg.DefaultImageURL,
	})

	insights := services.NewInsightService(services.InsightServiceDeps{
		Log:       log,
		Runner:    runner,
		Users:     reposet.User,
		Scenarios: reposet.Scenario,
		Progress:  reposet.Progress,
		Insights:  reposet.Insight,
		Generator: gen,
		Events:    events,
		Timeout:   cfg.InsightTimeout,
	})

	progressAgg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:     db,
			Log:    log,
			Runner: runner,
			Hooks:  aggregates.NewObservabilityHooks(metrics),
		},
		Users:     reposet.User,
		Scenarios: reposet.Scenario,
		Progress:  reposet.Progress,
	})

	return Services{
		Scenario: services.NewScenarioService(services.ScenarioServiceDeps{
			Log:               log,
			Runner:            runner,
			Scenarios:         reposet.Scenario,
			Generator:         gen,
			GeneratePerMinute: cfg.GeneratePerMinute,
		}),
		Progress: services.NewProgressService(services.ProgressServiceDeps{
			Log:       log,
			Aggregate: progressAgg,
			Progress:  reposet.Progress,
			Insights:  insights,
			Jobs:      pool,
			Events:    events,
		}),
		Insight:      insights,
		User:         services.NewUserService(log, reposet.User),
		LearningPath: services.NewLearningPathService(reposet.LearningPath),
	}
}

func wireBus(cfg Config, log *logger.Logger) (bus.Bus, error) {
	if cfg.RedisAddr == "" {
		log.Info("Realtime bus: in-process")
		return bus.NewMemoryBus(), nil
	}
	b, err := bus.NewRedisBus(log, bus.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Channel:  cfg.RedisChannel,
	})
	if err != nil {
		return nil, fmt.Errorf("init redis SSE bus: %w", err)
	}
	log.Info("Realtime bus: redis", "addr", cfg.RedisAddr)
	return b, nil
}
