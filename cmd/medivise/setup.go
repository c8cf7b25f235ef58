package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inbucket/html2text"

	"github.com/medivise/medivise/internal/config"
	"github.com/medivise/medivise/internal/providers/llm"
	"github.com/medivise/medivise/internal/providers/rag"
	"github.com/medivise/medivise/internal/service/chat"
	"github.com/medivise/medivise/internal/service/memory"
	"github.com/medivise/medivise/internal/service/summarizer"
	"github.com/medivise/medivise/internal/storage/sqlite"
)

// app wires configuration, storage and services for one CLI invocation.
type app struct {
	db *sql.DB

	appCfg *config.AppConfig
	llmCfg *config.LLMConfig

	docs     *sqlite.DocumentsRepo
	messages *sqlite.MessagesRepo

	gen        *llm.Ollama
	summarizer *summarizer.Service
	assembler  *chat.Assembler
	memories   *memory.Store
}

func openApp(ctx context.Context) (*app, error) {
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)

	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	docs := sqlite.NewDocumentsRepo(db)
	messages := sqlite.NewMessagesRepo(db)
	memories := memory.NewStore(sqlite.NewMemoriesRepo(db))

	gen := llm.NewOllama(llmCfg)

	summarizerSvc := summarizer.New(gen, rag.ChunkerConfig{
		MaxChars:     appCfg.MaxChunkChars,
		OverlapChars: appCfg.ChunkOverlap,
	}, appCfg.MapParallelism)

	assembler := chat.New(messages, gen, chat.Options{
		WindowSize:     appCfg.ContextWindowSize,
		SnippetsPerDoc: appCfg.SnippetsPerDoc,
		Retriever: rag.RetrieverOptions{
			MaxSnippets: appCfg.MaxSnippets,
			Window:      appCfg.SnippetWindow,
		},
	})

	return &app{
		db:         db,
		appCfg:     appCfg,
		llmCfg:     llmCfg,
		docs:       docs,
		messages:   messages,
		gen:        gen,
		summarizer: summarizerSvc,
		assembler:  assembler,
		memories:   memories,
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}

// loadDocumentText reads a document file from disk. HTML files are converted
// to plain text before they enter the pipeline.
func loadDocumentText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		text, err := html2text.FromString(string(data), html2text.Options{OmitLinks: true})
		if err != nil {
			return "", fmt.Errorf("convert html: %w", err)
		}
		return text, nil
	default:
		return string(data), nil
	}
}
