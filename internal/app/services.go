package app

import (
	"fmt"

	"github.com/yungbote/practicecoach-backend/internal/data/repos"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
	"github.com/yungbote/practicecoach-backend/internal/practice/catalog"
	"github.com/yungbote/practicecoach-backend/internal/practice/fallback"
	"github.com/yungbote/practicecoach-backend/internal/services"
)

type Services struct {
	Practice services.PracticeService
}

func wireServices(log *logger.Logger, cfg Config, reposet repos.Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")
	cat, err := catalog.Load(log)
	if err != nil {
		return Services{}, fmt.Errorf("load exercise catalog: %w", err)
	}

	practice := services.NewPracticeService(log, services.PracticeConfig{
		DefaultSessionLength: cfg.DefaultSessionLength,
		GenerationTimeout:    cfg.Generation.Timeout,
		EngineIdleTTL:        cfg.EngineIdleTTL,
		MaxEngines:           cfg.MaxEngines,
	}, services.PracticeDeps{
		Repos:    reposet,
		Remote:   clients.Generation,
		Fallback: fallback.New(cat),
		Cache:    clients.draftStore(log, cfg),
		Catalog:  cat,
	})
	return Services{Practice: practice}, nil
}

func (s Services) Close() {
	if s.Practice != nil {
		s.Practice.Close()
	}
}
