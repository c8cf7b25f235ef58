package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/medivise/medivise/pkg/log"
)

type LLMConfig struct {
	BaseURL string `env:"LLM_BASE_URL" envDefault:"http://127.0.0.1:11434"`
	APIKey  string `env:"LLM_API_KEY"`
	Model   string `env:"LLM_MODEL" envDefault:"phi4-mini"`

	// num_ctx passed to the model; prompts over this budget are rejected
	// up front instead of being silently truncated by the server.
	ContextTokens int `env:"LLM_CONTEXT_TOKENS" envDefault:"4096"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
