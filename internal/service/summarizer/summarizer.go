package summarizer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/medivise/medivise/internal/core"
	"github.com/medivise/medivise/internal/providers/rag"
	"github.com/medivise/medivise/internal/service/phi"
	"github.com/medivise/medivise/pkg/log"
)

const defaultParallelism = 4

type Service struct {
	gen         core.Generator
	chunkCfg    rag.ChunkerConfig
	parallelism int
}

func New(gen core.Generator, chunkCfg rag.ChunkerConfig, parallelism int) *Service {
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	return &Service{
		gen:         gen,
		chunkCfg:    chunkCfg,
		parallelism: parallelism,
	}
}

type chunkResult struct {
	partial *partialSummary
	err     error
}

// Summarize runs the full pipeline: de-identify, chunk, map each chunk
// through the generator in parallel, reduce into one canonical document.
// One bad chunk never aborts the run; the whole call fails only when the
// upstream is unreachable for every chunk or the input is invalid.
func (s *Service) Summarize(ctx context.Context, text, style, docID string) (core.SummaryDocument, error) {
	logger := log.FromCtx(ctx)

	if text == "" {
		return core.SummaryDocument{}, fmt.Errorf("%w: empty document text", core.ErrValidation)
	}
	if style == "" {
		style = core.StylePatientFriendly
	}

	clean, redacted := phi.Deidentify(text)

	chunks, err := rag.ChunkText(docID, clean, s.chunkCfg)
	if err != nil {
		return core.SummaryDocument{}, err
	}

	logger.Debug().Int("chunks", len(chunks)).Bool("redacted", redacted).Msg("mapping document chunks")

	results := make([]chunkResult, len(chunks))
	sem := make(chan struct{}, s.parallelism)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk core.DocumentChunk) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp, genErr := s.gen.Generate(ctx, summarySystemPrompt,
				buildChunkPrompt(chunk.Index, style, chunk.Text, chunk.CharStart, chunk.CharEnd))
			if genErr != nil {
				results[i] = chunkResult{err: genErr}
				return
			}

			partial, parseErr := parsePartial(resp)
			results[i] = chunkResult{partial: partial, err: parseErr}
		}(i, chunk)
	}
	wg.Wait()

	// Cancelled requests are abandoned without committing a partial
	// document as final.
	if ctx.Err() != nil {
		return core.SummaryDocument{}, ctx.Err()
	}

	var partials []*partialSummary
	var firstUpstreamErr error
	for i, res := range results {
		switch {
		case res.err == nil:
			partials = append(partials, res.partial)
		case errors.Is(res.err, core.ErrSchemaRepair):
			logger.Warn().Err(res.err).Int("chunk", i).Msg("dropping chunk contribution")
		default:
			logger.Warn().Err(res.err).Int("chunk", i).Msg("chunk generation failed")
			if firstUpstreamErr == nil {
				firstUpstreamErr = res.err
			}
		}
	}

	doc := core.SummaryDocument{
		DocID:             docID,
		Style:             style,
		RedactionsApplied: redacted,
	}

	if len(partials) == 0 {
		if firstUpstreamErr != nil {
			return core.SummaryDocument{}, fmt.Errorf("summarization failed for all %d chunks: %w", len(chunks), firstUpstreamErr)
		}
		doc.AllChunksFailed = true
		return doc, nil
	}

	doc.Sections, doc.Risks = reduce(partials)
	return doc, nil
}
