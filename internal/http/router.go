package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/agilecoach-backend/internal/http/handlers"
	httpMW "github.com/yungbote/agilecoach-backend/internal/http/middleware"
	"github.com/yungbote/agilecoach-backend/internal/observability"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics
	// ServiceName labels request spans. Tracing middleware is skipped when empty.
	ServiceName string
	CORSOrigins []string

	IdentityMiddleware *httpMW.IdentityMiddleware

	ScenarioHandler     *httpH.ScenarioHandler
	ProgressHandler     *httpH.ProgressHandler
	UserHandler         *httpH.UserHandler
	LearningPathHandler *httpH.LearningPathHandler
	RealtimeHandler     *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins...))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.IdentityMiddleware != nil {
		api.Use(cfg.IdentityMiddleware.Attach())
	}

	// Scenarios
	if cfg.ScenarioHandler != nil {
		api.GET("/scenarios", cfg.ScenarioHandler.ListScenarios)
		api.GET("/scenarios/:id", cfg.ScenarioHandler.GetScenario)
		api.POST("/scenarios/generate", cfg.ScenarioHandler.GenerateScenario)
		api.POST("/scenarios/:id/steps/next", cfg.ScenarioHandler.NextStep)
	}

	// Progress
	if cfg.ProgressHandler != nil {
		api.POST("/scenarios/:id/start", cfg.ProgressHandler.StartScenario)
		api.POST("/scenarios/:id/decision", cfg.ProgressHandler.SubmitDecision)
		api.POST("/scenarios/:id/complete", cfg.ProgressHandler.CompleteScenario)
		api.GET("/user/progress", cfg.ProgressHandler.ListProgress)
		api.GET("/user/progress/:scenarioId", cfg.ProgressHandler.GetProgress)
	}

	// User
	if cfg.UserHandler != nil {
		api.GET("/user/current", cfg.UserHandler.GetCurrent)
		api.GET("/user/insights", cfg.UserHandler.ListInsights)
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		api.GET("/user/stream", cfg.RealtimeHandler.Stream)
	}

	// Learning paths
	if cfg.LearningPathHandler != nil {
		api.GET("/learning-paths", cfg.LearningPathHandler.ListPaths)
		api.GET("/learning-paths/:id", cfg.LearningPathHandler.GetPath)
	}

	return r
}
