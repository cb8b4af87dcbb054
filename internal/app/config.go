package app

import (
	"strings"
	"time"

	"github.com/yungbote/practicecoach-backend/internal/clients/generation"
	"github.com/yungbote/practicecoach-backend/internal/clients/redis"
	"github.com/yungbote/practicecoach-backend/internal/data/db"
	"github.com/yungbote/practicecoach-backend/internal/platform/envutil"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins []string

	JWTSecretKey string

	DB    db.Config
	Redis redis.Config

	DraftCacheTTL        time.Duration
	DefaultSessionLength int
	EngineIdleTTL        time.Duration
	MaxEngines           int

	Generation generation.Config
}

func LoadConfig(log *logger.Logger) Config {
	var origins []string
	for _, o := range strings.Split(envutil.String("CORS_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{
		Port:        envutil.StringLogged("PORT", "8080", log),
		Environment: envutil.String("APP_ENV", "development"),
		CORSOrigins: origins,

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),

		DB: db.Config{
			Driver:     envutil.StringLogged("DB_DRIVER", "sqlite", log),
			Host:       envutil.String("POSTGRES_HOST", "localhost"),
			Port:       envutil.String("POSTGRES_PORT", "5432"),
			User:       envutil.String("POSTGRES_USER", "postgres"),
			Password:   envutil.String("POSTGRES_PASSWORD", ""),
			Name:       envutil.String("POSTGRES_NAME", "practicecoach"),
			SSLMode:    envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath: envutil.String("SQLITE_PATH", "practicecoach.db"),
		},
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},

		DraftCacheTTL:        envutil.Duration("DRAFT_CACHE_TTL", 72*time.Hour),
		DefaultSessionLength: envutil.IntLogged("DEFAULT_SESSION_LENGTH", 60, log),
		EngineIdleTTL:        envutil.Duration("ENGINE_IDLE_TTL", 30*time.Minute),
		MaxEngines:           envutil.Int("MAX_ENGINES", 10000),

		Generation: generation.Config{
			Endpoint:   envutil.StringLogged("GENERATION_ENDPOINT", "", log),
			APIKey:     envutil.String("GENERATION_API_KEY", ""),
			Timeout:    envutil.Duration("GENERATION_TIMEOUT", 60*time.Second),
			MaxRetries: envutil.Int("GENERATION_MAX_RETRIES", 0),
		},
	}
}
