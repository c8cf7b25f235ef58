package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medivise/medivise/internal/core"
)

type fakeMessages struct {
	byConversation map[string][]core.Message
}

func (f *fakeMessages) AddMessage(_ context.Context, conversationID string, msg core.Message) error {
	if f.byConversation == nil {
		f.byConversation = map[string][]core.Message{}
	}
	f.byConversation[conversationID] = append(f.byConversation[conversationID], msg)
	return nil
}

func (f *fakeMessages) GetMessages(_ context.Context, conversationID string, limit int) ([]core.Message, error) {
	all := f.byConversation[conversationID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

type fakeGenerator struct {
	lastSystem string
	lastPrompt string
	reply      string
	err        error
	calls      int
}

func (f *fakeGenerator) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestWindow_LastNInOrder(t *testing.T) {
	msgs := &fakeMessages{}
	for i := 1; i <= 45; i++ {
		role := core.RoleUser
		if i%2 == 0 {
			role = core.RoleAssistant
		}
		require.NoError(t, msgs.AddMessage(context.Background(), "conv", core.Message{
			Role:    role,
			Content: fmt.Sprintf("message %d", i),
		}))
	}

	a := New(msgs, &fakeGenerator{}, Options{WindowSize: 30})
	got, err := a.Window(context.Background(), "conv", 30)
	require.NoError(t, err)
	require.Len(t, got, 30)
	require.Equal(t, "message 16", got[0].Content)
	require.Equal(t, "message 45", got[29].Content)
}

func TestWindow_EmptyConversationID(t *testing.T) {
	a := New(&fakeMessages{}, &fakeGenerator{}, Options{})
	_, err := a.Window(context.Background(), "", 10)
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestAnswer_AttachedDocumentGroundsTheTurn(t *testing.T) {
	gen := &fakeGenerator{reply: "According to [doc:labs L0-40], your glucose is normal."}
	a := New(&fakeMessages{}, gen, Options{SnippetsPerDoc: 2})

	doc := core.Document{
		ID:       "labs",
		FullText: "Fasting glucose result was 95 mg/dL, well within the normal range for adults.",
	}
	got, err := a.Answer(context.Background(), AnswerRequest{
		ConversationID: "conv",
		Question:       "what was my glucose test result",
		Doc:            &doc,
	})
	require.NoError(t, err)
	require.True(t, got.ContextUsed)
	require.NotEmpty(t, got.Citations)
	require.Contains(t, got.Citations[0], "doc:labs")
	require.Contains(t, gen.lastPrompt, "glucose")
	require.Contains(t, gen.lastPrompt, "Context snippets")
}

func TestAnswer_GreetingSkipsRetrieval(t *testing.T) {
	gen := &fakeGenerator{reply: "Hello! How can I help?"}
	a := New(&fakeMessages{}, gen, Options{})

	doc := core.Document{ID: "labs", FullText: "glucose 95 mg/dL"}
	got, err := a.Answer(context.Background(), AnswerRequest{
		ConversationID: "conv",
		Question:       "hi there",
		Doc:            &doc,
	})
	require.NoError(t, err)
	require.False(t, got.ContextUsed)
	require.Empty(t, got.Citations)
	require.NotContains(t, gen.lastPrompt, "Context snippets")
}

func TestAnswer_NoDocumentNoContext(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	a := New(&fakeMessages{}, gen, Options{})

	got, err := a.Answer(context.Background(), AnswerRequest{
		ConversationID: "conv",
		Question:       "what do my lab results say about cholesterol",
	})
	require.NoError(t, err)
	require.False(t, got.ContextUsed)
	require.Equal(t, 1, gen.calls)
}

func TestAnswer_SnippetsAreDeidentified(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	a := New(&fakeMessages{}, gen, Options{SnippetsPerDoc: 2})

	doc := core.Document{
		ID:       "note",
		FullText: "Patient John Smith, SSN 123-45-6789, glucose test result was 95 mg/dL today.",
	}
	_, err := a.Answer(context.Background(), AnswerRequest{
		ConversationID: "conv",
		Question:       "what was my glucose test result",
		Doc:            &doc,
	})
	require.NoError(t, err)
	require.NotContains(t, gen.lastPrompt, "123-45-6789")
	require.NotContains(t, gen.lastPrompt, "John Smith")
}

func TestAnswer_UpstreamFailureSurfaces(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("%w: connection refused", core.ErrUpstreamUnavailable)}
	a := New(&fakeMessages{}, gen, Options{})

	_, err := a.Answer(context.Background(), AnswerRequest{
		ConversationID: "conv",
		Question:       "what do my labs say",
	})
	require.ErrorIs(t, err, core.ErrUpstreamUnavailable)
}

func TestAnswer_EmptyQuestionRejected(t *testing.T) {
	gen := &fakeGenerator{}
	a := New(&fakeMessages{}, gen, Options{})

	_, err := a.Answer(context.Background(), AnswerRequest{ConversationID: "conv", Question: "   "})
	require.ErrorIs(t, err, core.ErrValidation)
	require.Zero(t, gen.calls)
}

func TestAnswer_HistoryIncludedInPrompt(t *testing.T) {
	msgs := &fakeMessages{}
	require.NoError(t, msgs.AddMessage(context.Background(), "conv", core.Message{Role: core.RoleUser, Content: "earlier question about labs"}))
	require.NoError(t, msgs.AddMessage(context.Background(), "conv", core.Message{Role: core.RoleAssistant, Content: "earlier answer"}))

	gen := &fakeGenerator{reply: "ok"}
	a := New(msgs, gen, Options{})

	_, err := a.Answer(context.Background(), AnswerRequest{
		ConversationID: "conv",
		Question:       "and what about my medication dose",
	})
	require.NoError(t, err)
	require.True(t, strings.Contains(gen.lastPrompt, "earlier question about labs"))
	require.True(t, strings.Contains(gen.lastPrompt, "earlier answer"))
}

func TestWantsContext(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"hi", false},
		{"hello there", false},
		{"", false},
		{"what do my lab results say", true},
		{"tell me about my medication dose please", true},
		{"what is the weather like today outside", false},
	}

	for _, tt := range tests {
		if got := wantsContext(tt.message); got != tt.want {
			t.Errorf("wantsContext(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}
