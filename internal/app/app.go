package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/agilecoach-backend/internal/content/seed"
	"github.com/yungbote/agilecoach-backend/internal/data/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/data/db"
	apphttp "github.com/yungbote/agilecoach-backend/internal/http"
	httpH "github.com/yungbote/agilecoach-backend/internal/http/handlers"
	httpMW "github.com/yungbote/agilecoach-backend/internal/http/middleware"
	"github.com/yungbote/agilecoach-backend/internal/jobs/worker"
	"github.com/yungbote/agilecoach-backend/internal/observability"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
	"github.com/yungbote/agilecoach-backend/internal/realtime"
	"github.com/yungbote/agilecoach-backend/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Metrics  *observability.Metrics
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Bus      bus.Bus
	Pool     *worker.Pool
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New connects the database and builds the full object graph. Nothing
// runs until Start.
func New(cfg Config, log *logger.Logger) (*App, error) {
	dbs, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	metrics := observability.New()

	provider, err := wireProvider(cfg, log, metrics)
	if err != nil {
		_ = dbs.Close()
		return nil, err
	}
	events, err := wireBus(cfg, log)
	if err != nil {
		_ = dbs.Close()
		return nil, err
	}

	hub := realtime.NewSSEHub(log, realtime.WithMetrics(metrics))
	pool := worker.NewPool(log, metrics, worker.Config{
		Concurrency: cfg.WorkerConcurrency,
		QueueSize:   cfg.WorkerQueueSize,
		TaskTimeout: cfg.InsightTimeout,
	})
	reposet := wireRepos(dbs.DB(), log)
	serviceset := wireServices(dbs.DB(), log, cfg, metrics, reposet, provider, pool, events)

	var pinger httpH.Pinger
	if sqlDB, err := dbs.DB().DB(); err == nil {
		pinger = sqlDB
	}

	server := apphttp.NewServer(":"+cfg.Port, apphttp.RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		ServiceName:         cfg.ServiceName,
		CORSOrigins:         cfg.CORSOrigins,
		IdentityMiddleware:  httpMW.NewIdentityMiddleware(log, cfg.DemoUserID),
		ScenarioHandler:     httpH.NewScenarioHandler(log, serviceset.Scenario),
		ProgressHandler:     httpH.NewProgressHandler(log, serviceset.Progress),
		UserHandler:         httpH.NewUserHandler(serviceset.User, serviceset.Insight),
		LearningPathHandler: httpH.NewLearningPathHandler(serviceset.LearningPath),
		RealtimeHandler:     httpH.NewRealtimeHandler(log, hub),
		HealthHandler:       httpH.NewHealthHandler(pinger),
	})
	server.OnShutdown(hub.CloseAll)

	return &App{
		Log:      log,
		Cfg:      cfg,
		DB:       dbs,
		Metrics:  metrics,
		Repos:    reposet,
		Services: serviceset,
		SSEHub:   hub,
		Bus:      events,
		Pool:     pool,
		Server:   server,
	}, nil
}

func (a *App) Migrate() error {
	return a.DB.AutoMigrateAll()
}

// Seed loads the catalog and upserts it. Re-running it is safe.
func (a *App) Seed(ctx context.Context) (seed.Result, error) {
	catalog, err := seed.Load()
	if err != nil {
		return seed.Result{}, err
	}
	return seed.Apply(ctx, seed.Deps{
		Runner:    aggregates.NewGormTxRunner(a.DB.DB()),
		Log:       a.Log,
		Users:     a.Repos.User,
		Scenarios: a.Repos.Scenario,
		Paths:     a.Repos.LearningPath,
	}, catalog)
}

// Start launches tracing, the worker pool and the realtime forwarder.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	shutdown, err := observability.InitTracing(ctx, a.Log, a.Cfg.Tracing)
	if err != nil {
		return err
	}
	a.otelShutdown = shutdown

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.Pool.Start(ctx)
	if err := a.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		cancel()
		a.cancel = nil
		return fmt.Errorf("start realtime forwarder: %w", err)
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Server.Run()
}

// Shutdown stops the HTTP server, drains queued work, then releases
// connections. It returns every failure it hit.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.Pool != nil {
		if err := a.Pool.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("worker shutdown: %w", err))
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("bus close: %w", err))
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	a.Log.Sync()
	return errors.Join(errs...)
}
