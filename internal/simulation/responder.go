package simulation

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/vibecheck-app/vibecheck/internal/embedding"
	"github.com/vibecheck-app/vibecheck/internal/llm"
	"github.com/vibecheck-app/vibecheck/internal/metrics"
	"github.com/vibecheck-app/vibecheck/internal/style"
	"github.com/vibecheck-app/vibecheck/internal/vectorindex"
)

// retrievalTopK is how many similar pairs are fetched per turn. More than
// maxPromptExamples so the retrieval fallback has slack to pick from.
const retrievalTopK = 8

// Responder generates one conversation turn at a time. Generation never
// fails outright: an unavailable or failing LLM degrades to a retrieved
// response, and an empty persona degrades to a style-matched greeting.
type Responder struct {
	index       vectorindex.Index
	embedder    embedding.Backend
	completer   llm.Completer
	rng         *rand.Rand
	temperature float64
	maxTokens   int
}

// NewResponder creates a responder. A nil completer is valid and routes all
// turns through the retrieval fallback. The rng drives fallback selection
// and may be seeded in tests.
func NewResponder(index vectorindex.Index, embedder embedding.Backend, completer llm.Completer, rng *rand.Rand, temperature float64, maxTokens int) *Responder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if temperature == 0 {
		temperature = 0.9
	}
	if maxTokens == 0 {
		maxTokens = 100
	}
	return &Responder{
		index:       index,
		embedder:    embedder,
		completer:   completer,
		rng:         rng,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// GenerateResponse produces the persona's next turn given the conversation
// so far.
func (r *Responder) GenerateResponse(ctx context.Context, persona *Persona, history []Turn) string {
	retrieved := r.retrieve(ctx, persona, history)

	if r.completer != nil {
		text, err := r.completer.Complete(ctx, llm.Request{
			SystemPrompt: systemPrompt(persona),
			UserPrompt:   userPrompt(persona.ID, history, retrieved),
			Temperature:  r.temperature,
			MaxTokens:    r.maxTokens,
		})
		if err == nil && text != "" {
			metrics.TurnsGeneratedTotal.WithLabelValues("llm").Inc()
			return text
		}
		if err != nil {
			slog.Warn("llm generation failed, using fallback", "persona_id", persona.ID, "error", err)
		}
	}

	return r.fallback(persona, retrieved)
}

func (r *Responder) retrieve(ctx context.Context, persona *Persona, history []Turn) []vectorindex.Match {
	if persona.PairCount == 0 || len(history) == 0 {
		return nil
	}

	query, err := r.embedder.Embed(ctx, retrievalContext(history))
	if err != nil {
		slog.Warn("embedding retrieval context failed", "persona_id", persona.ID, "error", err)
		return nil
	}
	metrics.EmbeddingsCreatedTotal.WithLabelValues(r.embedder.Name()).Inc()

	matches, err := r.index.Query(ctx, query, retrievalTopK, vectorindex.Filter{PersonaID: persona.ID})
	if err != nil {
		slog.Warn("retrieval query failed", "persona_id", persona.ID, "error", err)
		return nil
	}
	return matches
}

// fallback answers with a random response from the top retrieved matches,
// or a greeting matched to the persona's capitalization habit when nothing
// was retrieved.
func (r *Responder) fallback(persona *Persona, retrieved []vectorindex.Match) string {
	if len(retrieved) > 0 {
		n := len(retrieved)
		if n > 3 {
			n = 3
		}
		metrics.TurnsGeneratedTotal.WithLabelValues("retrieval").Inc()
		return retrieved[r.rng.Intn(n)].Metadata.Response
	}

	metrics.TurnsGeneratedTotal.WithLabelValues("greeting").Inc()
	if persona.Style.Capitalization == style.Lowercase {
		return "hey"
	}
	return "Hey!"
}
