package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenCounter estimates prompt sizes with the cl100k_base encoding. Local
// models tokenize differently, but the estimate is close enough to reject
// prompts that would blow the context window. Falls back to a bytes/4
// heuristic if the encoding cannot be loaded.
type tokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

func newTokenCounter() *tokenCounter {
	return &tokenCounter{}
}

func (c *tokenCounter) Count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}
