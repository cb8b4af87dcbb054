package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/practicecoach-backend/internal/generator/config"
	"github.com/yungbote/practicecoach-backend/internal/generator/sessiongen"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type SessionGenerator interface {
	Generate(ctx context.Context, skillSummary string, sessionLength int) ([]sessiongen.Activity, error)
}

func NewServer(cfg *config.Config, log *logger.Logger, gen SessionGenerator) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           NewHandler(cfg, log, gen),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}
}

func NewHandler(cfg *config.Config, log *logger.Logger, gen SessionGenerator) http.Handler {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(requestID(), accessLog(log), recoverJSON(log))

	r.GET("/healthz", handleHealthz)
	r.POST("/generateSession", handleGenerateSession(log, gen, cfg.HTTP.MaxRequestBytes))
	r.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

func handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
