package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/practicecoach-backend/internal/http/handlers"
	httpMW "github.com/yungbote/practicecoach-backend/internal/http/middleware"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	PracticeHandler *httpH.PracticeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Exercise catalog (public)
		if cfg.PracticeHandler != nil {
			api.GET("/exercises", cfg.PracticeHandler.ListExercises)
			api.GET("/exercises/categories", cfg.PracticeHandler.ListExerciseCategories)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Draft
		if cfg.PracticeHandler != nil {
			protected.GET("/practice/draft", cfg.PracticeHandler.GetDraft)
			protected.PUT("/practice/draft/length", cfg.PracticeHandler.SetSessionLength)
			protected.POST("/practice/draft/activities", cfg.PracticeHandler.AddExercise)
			protected.PUT("/practice/draft/activities/:index", cfg.PracticeHandler.ReplaceActivity)
			protected.PATCH("/practice/draft/activities/:index", cfg.PracticeHandler.ResizeActivity)
			protected.DELETE("/practice/draft/activities/:index", cfg.PracticeHandler.RemoveActivity)
			protected.POST("/practice/draft/reorder", cfg.PracticeHandler.Reorder)

			// Sessions
			protected.POST("/practice/sessions", cfg.PracticeHandler.Commit)
			protected.GET("/practice/sessions", cfg.PracticeHandler.ListSessions)

			protected.GET("/practice/summary", cfg.PracticeHandler.GetSummary)
			protected.PUT("/practice/preferences", cfg.PracticeHandler.UpdatePreferences)
		}
	}

	return r
}
