package app

import (
	server "github.com/yungbote/practicecoach-backend/internal/http"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

const serviceName = "practicecoach-api"

func wireServer(log *logger.Logger, cfg Config, handlerset Handlers, mw Middleware) *server.Server {
	return server.NewServer(server.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.CORSOrigins,
		AuthMiddleware:  mw.Auth,
		PracticeHandler: handlerset.Practice,
		HealthHandler:   handlerset.Health,
	})
}
