// Package embedding maps text to fixed-dimension vectors. Two backends: a
// real OpenAI-backed one and a deterministic synthetic one used when no
// credentials are configured. The backend is chosen once at startup.
package embedding

import (
	"context"
	"errors"
)

// ErrNoAPIKey is returned when the OpenAI backend is constructed without
// credentials. Callers fall back to the synthetic backend.
var ErrNoAPIKey = errors.New("embedding: openai backend requires an api key")

// Backend produces vector representations for text. EmbedBatch is
// order-preserving and equivalent to calling Embed per item; backends may
// batch physical calls.
type Backend interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Name() string
}
