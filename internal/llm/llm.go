// Package llm wraps the generative backend used to produce conversation
// turns. The responder treats the backend as optional: a nil Completer (or
// a failing call) routes generation to the retrieval fallback.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vibecheck-app/vibecheck/internal/config"
)

// Completer produces a completion for a system/user prompt pair.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}

// Request is one completion call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// NewCompleter builds the configured backend, or returns nil when no
// provider is configured. A nil return is not an error; it means
// generation is disabled and callers should use their fallback path.
func NewCompleter(cfg config.LLMConfig) (Completer, error) {
	switch cfg.Provider {
	case "":
		slog.Warn("no LLM provider configured, responses will use retrieval fallback")
		return nil, nil
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
