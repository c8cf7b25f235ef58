package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medivise/medivise/internal/core"
	"github.com/medivise/medivise/internal/providers/rag"
)

type fakeGenerator struct {
	calls   atomic.Int64
	respond func(userPrompt string) (string, error)
}

func (f *fakeGenerator) Generate(_ context.Context, _, userPrompt string) (string, error) {
	f.calls.Add(1)
	return f.respond(userPrompt)
}

func partialJSON(title string, bullets ...string) string {
	quoted := make([]string, len(bullets))
	for i, b := range bullets {
		quoted[i] = fmt.Sprintf("%q", b)
	}
	return fmt.Sprintf(`{"sections":[{"title":%q,"bullets":[%s],"citations":[]}],"risks":[]}`,
		title, strings.Join(quoted, ","))
}

func TestSummarize_MergesDuplicateSectionTitles(t *testing.T) {
	// Two chunks, keyed by the marker word each one contains.
	text := strings.Repeat("alpha ", 8) + strings.Repeat("beta ", 8)
	gen := &fakeGenerator{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "alpha") {
			return partialJSON("Summary", "first bullet", "shared bullet"), nil
		}
		return partialJSON("summary ", "shared bullet", "second bullet"), nil
	}}

	svc := New(gen, rag.ChunkerConfig{MaxChars: 48, OverlapChars: 0}, 2)
	doc, err := svc.Summarize(context.Background(), text, core.StylePatientFriendly, "doc-9")
	require.NoError(t, err)

	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Summary", doc.Sections[0].Title)
	assert.Equal(t, []string{"first bullet", "shared bullet", "second bullet"}, doc.Sections[0].Bullets)
	assert.Equal(t, "doc-9", doc.DocID)
}

func TestSummarize_RiskSeverityUnion(t *testing.T) {
	text := strings.Repeat("alpha ", 8) + strings.Repeat("beta ", 8)
	gen := &fakeGenerator{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "alpha") {
			return `{"sections":[{"title":"Summary","bullets":["b"],"citations":[]}],"risks":[{"code":"MED-DOSAGE","severity":"low","rationale":"minor","citations":["L0-10"]}]}`, nil
		}
		return `{"sections":[],"risks":[{"code":"MED-DOSAGE","severity":"high","rationale":"serious","citations":["L50-60"]}]}`, nil
	}}

	svc := New(gen, rag.ChunkerConfig{MaxChars: 48, OverlapChars: 0}, 2)
	doc, err := svc.Summarize(context.Background(), text, core.StyleClinical, "")
	require.NoError(t, err)

	require.Len(t, doc.Risks, 1)
	assert.Equal(t, core.SeverityHigh, doc.Risks[0].Severity)
	assert.Equal(t, "serious", doc.Risks[0].Rationale)
	assert.ElementsMatch(t, []string{"L0-10", "L50-60"}, doc.Risks[0].Citations)
}

func TestSummarize_OneBadChunkIsContained(t *testing.T) {
	text := strings.Repeat("alpha ", 8) + strings.Repeat("beta ", 8)
	gen := &fakeGenerator{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "alpha") {
			return "sorry, I cannot produce JSON today", nil
		}
		return partialJSON("Medications", "metformin 500mg"), nil
	}}

	svc := New(gen, rag.ChunkerConfig{MaxChars: 48, OverlapChars: 0}, 2)
	doc, err := svc.Summarize(context.Background(), text, "", "")
	require.NoError(t, err)

	assert.False(t, doc.AllChunksFailed)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Medications", doc.Sections[0].Title)
}

func TestSummarize_AllChunksFailRepair(t *testing.T) {
	gen := &fakeGenerator{respond: func(string) (string, error) {
		return "no json here", nil
	}}

	svc := New(gen, rag.ChunkerConfig{MaxChars: 48, OverlapChars: 0}, 2)
	doc, err := svc.Summarize(context.Background(), "some document text", "", "")
	require.NoError(t, err)

	assert.True(t, doc.AllChunksFailed)
	assert.Empty(t, doc.Sections)
}

func TestSummarize_UpstreamFailureSurfaced(t *testing.T) {
	gen := &fakeGenerator{respond: func(string) (string, error) {
		return "", fmt.Errorf("connect: %w", core.ErrUpstreamUnavailable)
	}}

	svc := New(gen, rag.ChunkerConfig{MaxChars: 48, OverlapChars: 0}, 2)
	_, err := svc.Summarize(context.Background(), "some document text", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUpstreamUnavailable))
}

func TestSummarize_DeidentifiesBeforeMapping(t *testing.T) {
	var sawSSN atomic.Bool
	gen := &fakeGenerator{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "123-45-6789") {
			sawSSN.Store(true)
		}
		return partialJSON("Summary", "ok"), nil
	}}

	svc := New(gen, rag.ChunkerConfig{MaxChars: 3000, OverlapChars: 300}, 2)
	doc, err := svc.Summarize(context.Background(), "Patient John Smith, SSN 123-45-6789, takes Lipitor 20mg daily", "", "")
	require.NoError(t, err)

	assert.False(t, sawSSN.Load(), "raw SSN must never reach the generator")
	assert.True(t, doc.RedactionsApplied)
}

func TestSummarize_ValidationRejectedBeforeWork(t *testing.T) {
	gen := &fakeGenerator{respond: func(string) (string, error) {
		return partialJSON("Summary", "ok"), nil
	}}

	svc := New(gen, rag.ChunkerConfig{MaxChars: 100, OverlapChars: 100}, 2)
	_, err := svc.Summarize(context.Background(), "text", "", "")
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Zero(t, gen.calls.Load(), "no generation call may happen for invalid config")
}
