package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/medivise/medivise/internal/core"
	"github.com/medivise/medivise/internal/providers/rag"
	"github.com/medivise/medivise/internal/service/phi"
	"github.com/medivise/medivise/pkg/log"
)

const DefaultWindowSize = 30

// Assembler bounds a conversation's visible context: the last N persisted
// messages plus, for a turn with an attached document, a few snippets from
// that document and nothing else.
type Assembler struct {
	messages       core.MessagesRepository
	gen            core.Generator
	windowSize     int
	snippetsPerDoc int
	retrieverOpts  rag.RetrieverOptions
}

type Options struct {
	WindowSize     int
	SnippetsPerDoc int
	Retriever      rag.RetrieverOptions
}

func New(messages core.MessagesRepository, gen core.Generator, opts Options) *Assembler {
	if opts.WindowSize <= 0 {
		opts.WindowSize = DefaultWindowSize
	}
	if opts.SnippetsPerDoc <= 0 {
		opts.SnippetsPerDoc = 3
	}
	if opts.Retriever.Window <= 0 {
		opts.Retriever = rag.DefaultRetrieverOptions()
	}
	return &Assembler{
		messages:       messages,
		gen:            gen,
		windowSize:     opts.WindowSize,
		snippetsPerDoc: opts.SnippetsPerDoc,
		retrieverOpts:  opts.Retriever,
	}
}

// Window returns the most recent n messages of the conversation in
// chronological order. n <= 0 falls back to the configured window size.
func (a *Assembler) Window(ctx context.Context, conversationID string, n int) ([]core.Message, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("%w: conversation id is empty", core.ErrValidation)
	}
	if n <= 0 {
		n = a.windowSize
	}
	return a.messages.GetMessages(ctx, conversationID, n)
}

// AnswerRequest is one question turn. Doc, when set, is the single document
// attached to this turn; its snippets are the only extra grounding allowed.
type AnswerRequest struct {
	ConversationID string
	Question       string
	Doc            *core.Document
}

func (a *Assembler) Answer(ctx context.Context, req AnswerRequest) (core.ChatAnswer, error) {
	logger := log.FromCtx(ctx)

	if strings.TrimSpace(req.Question) == "" {
		return core.ChatAnswer{}, fmt.Errorf("%w: question is empty", core.ErrValidation)
	}

	history, err := a.Window(ctx, req.ConversationID, a.windowSize)
	if err != nil {
		return core.ChatAnswer{}, fmt.Errorf("load history: %w", err)
	}

	var snippets []core.Snippet
	if req.Doc != nil && wantsContext(req.Question) {
		opts := a.retrieverOpts
		opts.MaxSnippets = a.snippetsPerDoc
		snippets = rag.ExtractSnippetsByDocument([]core.Document{*req.Doc}, req.Question, a.snippetsPerDoc, opts)
		// Snippet text goes to the generator, so it gets the same PHI
		// treatment as summarization input.
		for i := range snippets {
			snippets[i].Text, _ = phi.Deidentify(snippets[i].Text)
		}
		logger.Debug().Int("snippets", len(snippets)).Str("doc_id", req.Doc.ID).Msg("attached document context")
	}

	answer, err := a.gen.Generate(ctx, qaSystemPrompt, buildQAPrompt(req.Question, history, snippets))
	if err != nil {
		return core.ChatAnswer{}, fmt.Errorf("generate answer: %w", err)
	}

	citations := make([]string, 0, len(snippets))
	for _, snip := range snippets {
		citations = append(citations, snip.Citation)
	}

	return core.ChatAnswer{
		Answer:      strings.TrimSpace(answer),
		Citations:   citations,
		ContextUsed: len(snippets) > 0,
	}, nil
}

// wantsContext filters out turns where document retrieval would only add
// noise: very short messages and plain greetings.
func wantsContext(message string) bool {
	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return false
	}
	if len(strings.Fields(msg)) < 4 {
		return false
	}
	for _, k := range medicalContextKeywords {
		if strings.Contains(msg, k) {
			return true
		}
	}
	return false
}

var medicalContextKeywords = []string{
	"pain", "symptom", "symptoms", "lab", "labs", "report", "record", "records",
	"test", "tests", "appointment", "appointments", "medication", "medications",
	"dose", "dosing", "fever", "result", "results", "diagnosis", "condition",
	"allergy", "allergies", "side effect", "side effects", "blood pressure", "glucose",
}
