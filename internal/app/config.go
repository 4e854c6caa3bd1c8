package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/eventops-backend/internal/observability"
	"github.com/yungbote/eventops-backend/internal/pkg/envutil"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

type Config struct {
	Port     string `validate:"required,numeric"`
	DBDriver string `validate:"oneof=postgres sqlite"`
	// SQLitePath is only read when DBDriver is sqlite.
	SQLitePath string

	JWTSecretKey   string        `validate:"required,min=8"`
	AccessTokenTTL time.Duration `validate:"gt=0"`

	RedisAddr          string
	RateLimitPerMinute int `validate:"gte=0"`

	MetricsEnabled bool
	CORSOrigins    []string

	Otel observability.OtelConfig
}

func LoadConfig(log *logger.Logger) (Config, error) {
	accessTokenTTLSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	cfg := Config{
		Port:       envutil.GetEnv("PORT", "8080", log),
		DBDriver:   strings.ToLower(envutil.GetEnv("DB_DRIVER", "postgres", log)),
		SQLitePath: envutil.GetEnv("SQLITE_PATH", "eventops.db", log),

		JWTSecretKey:   envutil.GetEnv("JWT_SECRET_KEY", "", log),
		AccessTokenTTL: time.Duration(accessTokenTTLSeconds) * time.Second,

		RedisAddr:          envutil.GetEnv("REDIS_ADDR", "", log),
		RateLimitPerMinute: envutil.GetEnvAsInt("RATE_LIMIT_PER_MINUTE", 120, log),

		MetricsEnabled: envutil.GetEnvAsBool("METRICS_ENABLED", false, log),
		CORSOrigins:    splitList(envutil.GetEnv("CORS_ALLOW_ORIGINS", "", log)),

		Otel: observability.OtelConfig{
			Enabled:     envutil.GetEnvAsBool("OTEL_ENABLED", false, log),
			ServiceName: envutil.GetEnv("OTEL_SERVICE_NAME", "eventops-backend", log),
			Environment: envutil.GetEnv("OTEL_ENVIRONMENT", "development", log),
			Version:     envutil.GetEnv("OTEL_SERVICE_VERSION", "", log),
			Endpoint:    envutil.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     envutil.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:    envutil.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: float64(envutil.GetEnvAsInt("OTEL_SAMPLE_PERCENT", 100, log)) / 100,
		},
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
