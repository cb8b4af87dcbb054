package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/practicecoach-backend/internal/platform/envutil"
)

type HTTPConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	MaxRequestBytes   int64
}

// LLMConfig points at any OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	BaseURL             string
	APIKey              string
	Model               string
	ChatCompletionsPath string
	Timeout             time.Duration
	MaxTokens           int
	MaxRetries          int
}

type Config struct {
	Env  string
	HTTP HTTPConfig
	LLM  LLMConfig
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8081",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			MaxRequestBytes:   1 << 20,
		},
		LLM: LLMConfig{
			BaseURL:             "https://api.openai.com",
			Model:               "gpt-4o-mini",
			ChatCompletionsPath: "/v1/chat/completions",
			Timeout:             60 * time.Second,
			MaxTokens:           2000,
			MaxRetries:          2,
		},
	}
}

// Load reads the generator configuration from the environment on top of the
// defaults and validates it.
func Load() (*Config, error) {
	cfg := defaultConfig()

	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	if port := envutil.String("GENERATOR_PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.ShutdownTimeout = envutil.Duration("GENERATOR_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)

	cfg.LLM.BaseURL = strings.TrimRight(envutil.String("OPENAI_BASE_URL", cfg.LLM.BaseURL), "/")
	cfg.LLM.APIKey = envutil.String("OPENAI_API_KEY", "")
	cfg.LLM.Model = envutil.String("OPENAI_MODEL", cfg.LLM.Model)
	cfg.LLM.ChatCompletionsPath = envutil.String("OPENAI_CHAT_COMPLETIONS_PATH", cfg.LLM.ChatCompletionsPath)
	cfg.LLM.Timeout = time.Duration(envutil.Int("OPENAI_TIMEOUT_SECONDS", int(cfg.LLM.Timeout/time.Second))) * time.Second
	cfg.LLM.MaxTokens = envutil.Int("OPENAI_MAX_TOKENS", cfg.LLM.MaxTokens)
	cfg.LLM.MaxRetries = envutil.Int("OPENAI_MAX_RETRIES", cfg.LLM.MaxRetries)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.LLM.BaseURL == "" {
		return errors.New("OPENAI_BASE_URL must not be empty")
	}
	if c.LLM.Model == "" {
		return errors.New("OPENAI_MODEL must not be empty")
	}
	if !strings.HasPrefix(c.LLM.ChatCompletionsPath, "/") {
		return fmt.Errorf("invalid chat completions path %q", c.LLM.ChatCompletionsPath)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("invalid OPENAI_TIMEOUT_SECONDS %s", c.LLM.Timeout)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("invalid OPENAI_MAX_TOKENS %d", c.LLM.MaxTokens)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("invalid OPENAI_MAX_RETRIES %d", c.LLM.MaxRetries)
	}
	return nil
}
