package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/practicecoach-backend/internal/clients/generation"
	"github.com/yungbote/practicecoach-backend/internal/clients/redis"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
	"github.com/yungbote/practicecoach-backend/internal/practice/draftcache"
)

type Clients struct {
	Redis      *goredis.Client
	Generation generation.Client
}

// wireClients connects the optional external collaborators. An empty
// REDIS_ADDR or GENERATION_ENDPOINT leaves that client nil.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	var out Clients

	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	} else {
		log.Warn("REDIS_ADDR not set; drafts are cached in process memory")
	}

	if cfg.Generation.Endpoint != "" {
		gc, err := generation.New(log, cfg.Generation)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init generation client: %w", err)
		}
		out.Generation = gc
	} else {
		log.Warn("GENERATION_ENDPOINT not set; sessions come from the local fallback generator")
	}
	return out, nil
}

func (c Clients) draftStore(log *logger.Logger, cfg Config) draftcache.Store {
	if c.Redis != nil {
		return draftcache.NewRedisStore(log, c.Redis, cfg.DraftCacheTTL)
	}
	return draftcache.NewMemoryStore(cfg.DraftCacheTTL)
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
