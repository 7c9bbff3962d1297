package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vibecheck-app/vibecheck/internal/embedding"
	"github.com/vibecheck-app/vibecheck/internal/events"
	"github.com/vibecheck-app/vibecheck/internal/metrics"
	"github.com/vibecheck-app/vibecheck/internal/style"
	"github.com/vibecheck-app/vibecheck/internal/vectorindex"
	"github.com/vibecheck-app/vibecheck/internal/window"
)

// Persona is an indexed, style-profiled participant ready for simulation.
type Persona struct {
	ID        string
	Style     style.Profile
	PairCount int
}

// Setup turns a persona's context/response pairs into an indexed persona:
// style analysis over the responses, context embeddings into the vector
// index.
type Setup struct {
	index     vectorindex.Index
	embedder  embedding.Backend
	publisher *events.Publisher
}

// NewSetup creates a persona setup pipeline.
func NewSetup(index vectorindex.Index, embedder embedding.Backend, publisher *events.Publisher) *Setup {
	return &Setup{index: index, embedder: embedder, publisher: publisher}
}

// SetupPersona analyzes and indexes a persona's history. The persona's
// existing partition is dropped first, so repeated setup is a rebuild, not
// an append. An empty history yields a default-style persona with nothing
// indexed; the responder handles that with its cold-start path.
func (s *Setup) SetupPersona(ctx context.Context, personaID string, pairs []window.Pair) (*Persona, error) {
	responses := make([]string, len(pairs))
	contexts := make([]string, len(pairs))
	for i, p := range pairs {
		responses[i] = p.Response
		contexts[i] = p.Context
	}

	profile := style.Analyze(responses)
	profile.PersonaID = personaID

	if err := s.index.DeletePersona(ctx, personaID); err != nil {
		return nil, fmt.Errorf("clearing persona %s: %w", personaID, err)
	}

	if len(pairs) > 0 {
		embeddings, err := s.embedder.EmbedBatch(ctx, contexts)
		if err != nil {
			return nil, fmt.Errorf("embedding persona %s history: %w", personaID, err)
		}
		metrics.EmbeddingsCreatedTotal.WithLabelValues(s.embedder.Name()).Add(float64(len(embeddings)))

		for i, emb := range embeddings {
			id := fmt.Sprintf("%s_%d", personaID, i)
			md := vectorindex.Metadata{
				PersonaID: personaID,
				Context:   pairs[i].Context,
				Response:  pairs[i].Response,
				Timestamp: pairs[i].Timestamp,
			}
			if err := s.index.Upsert(ctx, id, emb, md); err != nil {
				return nil, fmt.Errorf("indexing pair %s: %w", id, err)
			}
		}
		metrics.PairsIndexedTotal.Add(float64(len(pairs)))
	}

	metrics.PersonasIndexedTotal.Inc()

	if err := s.publisher.PublishPersonaIndexed(ctx, events.PersonaIndexed{
		PersonaID: personaID,
		PairCount: len(pairs),
		Backend:   s.embedder.Name(),
		IndexedAt: time.Now().UTC(),
	}); err != nil {
		slog.Warn("failed to publish persona indexed event", "error", err)
	}

	slog.Info("persona indexed",
		"persona_id", personaID,
		"pairs", len(pairs),
		"avg_length", profile.AvgLength,
		"capitalization", profile.Capitalization,
		"punctuation", profile.PunctuationStyle,
	)

	return &Persona{ID: personaID, Style: profile, PairCount: len(pairs)}, nil
}
