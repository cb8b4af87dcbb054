package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/practicecoach-backend/internal/generator/config"
	"github.com/yungbote/practicecoach-backend/internal/generator/httpapi"
	"github.com/yungbote/practicecoach-backend/internal/generator/llm"
	"github.com/yungbote/practicecoach-backend/internal/generator/sessiongen"
	"github.com/yungbote/practicecoach-backend/internal/observability"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type App struct {
	Log    *logger.Logger
	Config *config.Config

	server       *http.Server
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		log.Warn("OPENAI_API_KEY is empty; upstream calls will be unauthenticated")
	}

	client, err := llm.New(log, cfg.LLM)
	if err != nil {
		return nil, err
	}
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "practicecoach-generator",
		Environment: cfg.Env,
	})
	gen := sessiongen.New(log, client, cfg.LLM.Model)

	return &App{
		Log:          log,
		Config:       cfg,
		server:       httpapi.NewServer(cfg, log, gen),
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	defer a.Log.Sync()
	a.Log.Info("Generator listening", "addr", a.Config.HTTP.Addr, "model", a.Config.LLM.Model)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout)
		defer cancel()
		_ = a.server.Shutdown(shutdownCtx)
		_ = a.otelShutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		_ = a.otelShutdown(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
