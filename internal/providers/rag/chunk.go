package rag

import (
	"fmt"

	"github.com/medivise/medivise/internal/core"
)

type ChunkerConfig struct {
	MaxChars     int
	OverlapChars int
}

// DefaultChunkerConfig matches the summarization pipeline defaults:
// 3000-char chunks with 300 chars of overlap.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxChars:     3000,
		OverlapChars: 300,
	}
}

func (c ChunkerConfig) validate() error {
	if c.MaxChars <= 0 {
		return fmt.Errorf("%w: max_chunk_chars must be positive, got %d", core.ErrValidation, c.MaxChars)
	}
	if c.OverlapChars < 0 {
		return fmt.Errorf("%w: overlap_chars must not be negative, got %d", core.ErrValidation, c.OverlapChars)
	}
	if c.OverlapChars >= c.MaxChars {
		return fmt.Errorf("%w: overlap_chars (%d) must be smaller than max_chunk_chars (%d)",
			core.ErrValidation, c.OverlapChars, c.MaxChars)
	}
	return nil
}

// ChunkText splits text into ordered, overlapping chunks. Adjacent chunks
// share exactly OverlapChars characters (clamped at the end of the text),
// so dropping each chunk's leading overlap and concatenating reproduces
// the input byte for byte. Output is deterministic for identical input.
func ChunkText(docID, text string, cfg ChunkerConfig) ([]core.DocumentChunk, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	n := len(text)
	var chunks []core.DocumentChunk

	start := 0
	for idx := 0; start < n; idx++ {
		end := start + cfg.MaxChars
		if end > n {
			end = n
		}

		chunks = append(chunks, core.DocumentChunk{
			SourceDocID: docID,
			Index:       idx,
			Text:        text[start:end],
			CharStart:   start,
			CharEnd:     end,
		})

		if end == n {
			break
		}
		start = end - cfg.OverlapChars
	}

	return chunks, nil
}

// Reassemble is the inverse of ChunkText: it strips each chunk's leading
// overlap and concatenates the remainder. Used by tests to prove the
// reconstruction contract.
func Reassemble(chunks []core.DocumentChunk) string {
	var out []byte
	prevEnd := 0
	for _, c := range chunks {
		text := c.Text
		if c.CharStart < prevEnd {
			text = text[prevEnd-c.CharStart:]
		}
		out = append(out, text...)
		prevEnd = c.CharEnd
	}
	return string(out)
}
