package core

import "context"

// Generator is the external text-generation call. Implementations must
// tolerate free text, truncation, or malformed JSON coming back; callers
// own retry/backoff policy.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
