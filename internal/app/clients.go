package app

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/eventops-backend/internal/clients/redis"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

type Clients struct {
	// Redis is nil when REDIS_ADDR is unset.
	Redis       *goredis.Client
	RateLimiter *redis.RateLimiter
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	rdb, err := redis.NewClient(log, cfg.RedisAddr)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	if rdb == nil {
		log.Info("REDIS_ADDR not set; rate limiting disabled")
		return Clients{}, nil
	}
	return Clients{
		Redis:       rdb,
		RateLimiter: redis.NewRateLimiter(rdb, "eventops:segments", cfg.RateLimitPerMinute, time.Minute),
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
