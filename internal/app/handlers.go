package app

import (
	httpH "github.com/yungbote/practicecoach-backend/internal/http/handlers"
)

type Handlers struct {
	Practice *httpH.PracticeHandler
	Health   *httpH.HealthHandler
}

func wireHandlers(serviceset Services) Handlers {
	return Handlers{
		Practice: httpH.NewPracticeHandler(serviceset.Practice),
		Health:   httpH.NewHealthHandler(),
	}
}
