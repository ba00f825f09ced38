package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/agilecoach-backend/internal/content/seed"
	"github.com/yungbote/agilecoach-backend/internal/data/db"
	"github.com/yungbote/agilecoach-backend/internal/observability"
	"github.com/yungbote/agilecoach-backend/internal/platform/envutil"
	"github.com/yungbote/agilecoach-backend/internal/platform/llm"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
)

type Config struct {
	Env         string
	Port        string
	ServiceName string
	CORSOrigins []string

	DB      db.Config
	Tracing observability.TracingConfig

	// DemoUserID stands in for callers that send no X-User-Id header.
	DemoUserID  uuid.UUID
	SeedOnStart bool

	LLMProvider       string
	OpenAI            llm.OpenAIConfig
	GenerationTimeout time.Duration
	InsightTimeout    time.Duration
	GeneratePerMinute int
	DefaultImageURL   string

	WorkerConcurrency int
	WorkerQueueSize   int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) (Config, error) {
	if err := envutil.LoadDotEnv(); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Env:         envutil.String("APP_ENV", "development"),
		Port:        envutil.String("PORT", "5000"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "agilecoach-backend"),
		CORSOrigins: splitList(envutil.String("CORS_ORIGINS", "")),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			DSN:              envutil.String("DATABASE_URL", ""),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "agilecoach"),
			SlowThreshold:    envutil.Duration("DB_SLOW_THRESHOLD", time.Second),
		},
		Tracing: observability.TracingConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: observability.ClampRatio(envutil.Float("OTEL_SAMPLER_RATIO", 0.1)),
		},
		DemoUserID:        seed.DemoUserID(),
		SeedOnStart:       envutil.Bool("SEED_ON_START", true),
		LLMProvider:       strings.ToLower(envutil.String("LLM_PROVIDER", "")),
		GenerationTimeout: envutil.Duration("GENERATION_TIMEOUT", 30*time.Second),
		InsightTimeout:    envutil.Duration("INSIGHT_TIMEOUT", 10*time.Second),
		GeneratePerMinute: envutil.Int("GENERATE_RATE_PER_MIN", 10),
		DefaultImageURL:   envutil.String("DEFAULT_SCENARIO_IMAGE_URL", "https://images.unsplash.com/photo-1552664730-d307ca884978?w=800&h=400&fit=crop"),
		OpenAI: llm.OpenAIConfig{
			APIKey:  envutil.String("OPENAI_API_KEY", ""),
			Model:   envutil.String("OPENAI_MODEL", "gpt-4o"),
			BaseURL: envutil.String("OPENAI_BASE_URL", ""),
		},
		WorkerConcurrency: envutil.Int("WORKER_CONCURRENCY", 4),
		WorkerQueueSize:   envutil.Int("WORKER_QUEUE_SIZE", 0),
		RedisAddr:         envutil.String("REDIS_ADDR", ""),
		RedisPassword:     envutil.String("REDIS_PASSWORD", ""),
		RedisDB:           envutil.Int("REDIS_DB", 0),
		RedisChannel:      envutil.String("REDIS_SSE_CHANNEL", ""),
		ShutdownTimeout:   envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	cfg.Tracing.ServiceName = cfg.ServiceName
	cfg.Tracing.Environment = cfg.Env

	if raw := envutil.String("DEMO_USER_ID", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Config{}, fmt.Errorf("DEMO_USER_ID: %w", err)
		}
		cfg.DemoUserID = id
	}

	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderMock
		if cfg.OpenAI.APIKey != "" {
			cfg.LLMProvider = ProviderOpenAI
		}
	}
	switch cfg.LLMProvider {
	case ProviderMock:
		log.Warn("LLM provider is mock; generation endpoints will fail until OPENAI_API_KEY is set")
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return Config{}, fmt.Errorf("LLM_PROVIDER=openai requires OPENAI_API_KEY")
		}
	default:
		return Config{}, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
