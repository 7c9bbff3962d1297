package embedding

import (
	"log/slog"

	"github.com/vibecheck-app/vibecheck/internal/config"
)

// NewBackend constructs the embedding backend named by the config. When the
// OpenAI backend cannot be built for lack of credentials, it degrades to
// synthetic instead of failing; any other construction error is surfaced.
func NewBackend(cfg config.EmbeddingConfig) (Backend, error) {
	switch cfg.Provider {
	case config.EmbeddingOpenAI:
		backend, err := NewOpenAI(cfg.APIKey, cfg.Model, cfg.Dimension)
		if err == ErrNoAPIKey {
			slog.Warn("no OpenAI credentials, using synthetic embeddings")
			return NewSynthetic(cfg.Dimension, cfg.Seed), nil
		}
		if err != nil {
			return nil, err
		}
		slog.Info("using OpenAI embeddings", "model", cfg.Model, "dimension", cfg.Dimension)
		return backend, nil
	default:
		slog.Info("using synthetic embeddings", "dimension", cfg.Dimension)
		return NewSynthetic(cfg.Dimension, cfg.Seed), nil
	}
}
