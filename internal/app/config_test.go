package app

import (
	"testing"
	"time"

	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "a-long-enough-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ACCESS_TOKEN_TTL", "60")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example.com ,,https://b.example.com")
	t.Setenv("OTEL_SAMPLE_PERCENT", "25")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9090" || cfg.DBDriver != "sqlite" {
		t.Fatalf("port/driver: want=9090/sqlite got=%s/%s", cfg.Port, cfg.DBDriver)
	}
	if cfg.AccessTokenTTL != time.Minute {
		t.Fatalf("ttl: want=%v got=%v", time.Minute, cfg.AccessTokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("cors origins: got=%v", cfg.CORSOrigins)
	}
	if cfg.Otel.SampleRatio != 0.25 {
		t.Fatalf("sample ratio: want=0.25 got=%v", cfg.Otel.SampleRatio)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("rate limit default: want=120 got=%d", cfg.RateLimitPerMinute)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {"JWT_SECRET_KEY": ""},
		"unknown driver": {"JWT_SECRET_KEY": "a-long-enough-secret", "DB_DRIVER": "mysql"},
		"bad port":       {"JWT_SECRET_KEY": "a-long-enough-secret", "PORT": "http"},
		"zero ttl":       {"JWT_SECRET_KEY": "a-long-enough-secret", "ACCESS_TOKEN_TTL": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(logger.Nop()); err == nil {
				t.Fatalf("want error")
			}
		})
	}
}
