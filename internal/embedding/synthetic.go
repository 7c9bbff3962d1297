package embedding

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"unicode"

	"github.com/vibecheck-app/vibecheck/internal/metrics"
)

// jitterScale is the magnitude of the random noise added to each synthetic
// vector so distinct texts with identical features don't collapse to one
// point.
const jitterScale = 0.01

// emoji characters the feature extractor looks for; a presence flag, not
// the profiler's full range table.
const emojiChars = "😀😂🙂❤️👍🎉😭🔥💀"

var laughterTokens = []string{"lol", "haha", "lmao"}

// Synthetic is a deterministic feature-based embedding backend. It is lossy
// but never fails, for any UTF-8 input including the empty string, and is
// reproducible up to the jitter seed.
type Synthetic struct {
	dim int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthetic creates a synthetic backend producing vectors of the given
// dimension, with jitter drawn from the given seed.
func NewSynthetic(dim int, seed int64) *Synthetic {
	if dim < 8 {
		dim = 8
	}
	return &Synthetic{dim: dim, rng: rand.New(rand.NewSource(seed))}
}

func (s *Synthetic) Name() string   { return "synthetic" }
func (s *Synthetic) Dimension() int { return s.dim }

func (s *Synthetic) Embed(_ context.Context, text string) ([]float32, error) {
	features := extractFeatures(text)

	vec := make([]float32, s.dim)
	copy(vec, features)

	s.mu.Lock()
	for i := range vec {
		vec[i] += float32(s.rng.NormFloat64()) * jitterScale
	}
	s.mu.Unlock()

	metrics.EmbeddingsCreatedTotal.WithLabelValues(s.Name()).Inc()
	return vec, nil
}

func (s *Synthetic) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// extractFeatures derives the hand-designed feature prefix. Density terms
// use safe division so the empty string maps to the zero vector.
func extractFeatures(text string) []float32 {
	length := len(text)
	safeLen := length
	if safeLen == 0 {
		safeLen = 1
	}

	upper := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper++
		}
	}

	laughter := 0
	for _, tok := range laughterTokens {
		laughter += strings.Count(text, tok)
	}

	emoji := float32(0)
	if strings.ContainsAny(text, emojiChars) {
		emoji = 1
	}

	endsQuestion := float32(0)
	if strings.HasSuffix(text, "?") {
		endsQuestion = 1
	}

	return []float32{
		float32(length) / 100,
		float32(strings.Count(text, "!")) / float32(safeLen) * 10,
		float32(strings.Count(text, "?")) / float32(safeLen) * 10,
		emoji,
		float32(upper) / float32(safeLen),
		float32(len(strings.Fields(text))) / 20,
		float32(laughter),
		endsQuestion,
	}
}
