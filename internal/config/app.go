package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/medivise/medivise/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"MEDIVISE_RUNTIME_PATH" envDefault:".medivise"`

	// Context Management
	ContextWindowSize int `env:"CONTEXT_WINDOW_SIZE" envDefault:"30"`

	// Summarization pipeline
	MaxChunkChars   int `env:"MAX_CHUNK_CHARS" envDefault:"3000"`
	ChunkOverlap    int `env:"CHUNK_OVERLAP" envDefault:"300"`
	SnippetWindow   int `env:"SNIPPET_WINDOW" envDefault:"450"`
	MaxSnippets     int `env:"MAX_SNIPPETS" envDefault:"5"`
	SnippetsPerDoc  int `env:"SNIPPETS_PER_DOC" envDefault:"3"`
	MapParallelism  int `env:"MAP_PARALLELISM" envDefault:"4"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	// A missing .env file is fine; env vars win either way.
	_ = godotenv.Load()

	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	path := c.RuntimePath
	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.GetRuntimePath(), "medivise.db")
}
