package sessiongen

import (
	"context"
	"time"

	"github.com/yungbote/practicecoach-backend/internal/generator/llm"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type TextGenerator interface {
	GenerateText(ctx context.Context, model string, messages []llm.Message, opts llm.GenerateOptions) (string, error)
}

type Generator struct {
	log   *logger.Logger
	llm   TextGenerator
	model string
	now   func() time.Time
}

func New(log *logger.Logger, text TextGenerator, model string) *Generator {
	return &Generator{
		log:   log.With("service", "SessionGenerator"),
		llm:   text,
		model: model,
		now:   time.Now,
	}
}

// Generate asks the model for a session plan and parses its answer.
func (g *Generator) Generate(ctx context.Context, skillSummary string, sessionLength int) ([]Activity, error) {
	text, err := g.llm.GenerateText(ctx, g.model, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: BuildPrompt(skillSummary, sessionLength)},
	}, llm.GenerateOptions{Temperature: 0.7})
	if err != nil {
		return nil, err
	}
	acts, err := ExtractActivities(text, g.now())
	if err != nil {
		g.log.Warn("Unparseable model output", "error", err, "output_len", len(text))
		return nil, err
	}
	g.log.Debug("Session generated", "activities", len(acts), "session_length", sessionLength)
	return acts, nil
}
