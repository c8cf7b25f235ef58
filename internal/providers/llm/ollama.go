package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/medivise/medivise/internal/config"
	"github.com/medivise/medivise/internal/core"
	"github.com/medivise/medivise/pkg/log"
)

// Ollama talks to a local Ollama server through its non-streaming
// /api/generate endpoint.
type Ollama struct {
	baseProvider
	contextTokens int
	counter       *tokenCounter
}

func NewOllama(cfg *config.LLMConfig) *Ollama {
	return &Ollama{
		baseProvider:  newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		contextTokens: cfg.ContextTokens,
		counter:       newTokenCounter(),
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumCtx      int     `json:"num_ctx"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (o *Ollama) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	logger := log.FromCtx(ctx)

	tokens := o.counter.Count(systemPrompt) + o.counter.Count(userPrompt)
	if tokens > o.contextTokens {
		return "", fmt.Errorf("%w: prompt is %d tokens, context window is %d",
			core.ErrValidation, tokens, o.contextTokens)
	}
	logger.Debug().Int("tokens", tokens).Str("model", o.model).Msg("sending generate request")

	body := generateRequest{
		Model:  o.model,
		System: systemPrompt,
		Prompt: userPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.3,
			TopP:        0.9,
			NumCtx:      o.contextTokens,
		},
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/api/generate", body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status %d: %s", core.ErrUpstreamUnavailable, resp.StatusCode, data)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode response: %s", core.ErrUpstreamUnavailable, err)
	}

	return result.Response, nil
}

// Health checks that the server is reachable and lists at least one model.
func (o *Ollama) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", core.ErrUpstreamUnavailable, resp.StatusCode)
	}
	return nil
}
