package simulation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecheck-app/vibecheck/internal/embedding"
	"github.com/vibecheck-app/vibecheck/internal/style"
	"github.com/vibecheck-app/vibecheck/internal/vectorindex"
	"github.com/vibecheck-app/vibecheck/internal/window"
)

func TestSetupPersona_IndexesAllPairs(t *testing.T) {
	ctx := context.Background()
	embedder := embedding.NewSynthetic(8, 1)
	index := vectorindex.NewMemoryIndex(embedder.Dimension())
	setup := NewSetup(index, embedder, nil)

	pairs := window.FromResponses([]string{"hey there", "what's up", "not much"}, "alice")
	persona, err := setup.SetupPersona(ctx, "alice", pairs)
	require.NoError(t, err)

	assert.Equal(t, "alice", persona.ID)
	assert.Equal(t, 3, persona.PairCount)

	count, err := index.Count(ctx, vectorindex.Filter{PersonaID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSetupPersona_AnalyzesStyle(t *testing.T) {
	ctx := context.Background()
	embedder := embedding.NewSynthetic(8, 1)
	index := vectorindex.NewMemoryIndex(embedder.Dimension())
	setup := NewSetup(index, embedder, nil)

	pairs := window.FromResponses([]string{"hey!", "omg yes!", "so fun!"}, "alice")
	persona, err := setup.SetupPersona(ctx, "alice", pairs)
	require.NoError(t, err)

	assert.Equal(t, style.Lowercase, persona.Style.Capitalization)
	assert.Equal(t, style.Exclamatory, persona.Style.PunctuationStyle)
	assert.Equal(t, "alice", persona.Style.PersonaID)
}

func TestSetupPersona_RebuildReplacesPartition(t *testing.T) {
	ctx := context.Background()
	embedder := embedding.NewSynthetic(8, 1)
	index := vectorindex.NewMemoryIndex(embedder.Dimension())
	setup := NewSetup(index, embedder, nil)

	first := window.FromResponses([]string{"one here", "two here", "three here", "four here"}, "alice")
	_, err := setup.SetupPersona(ctx, "alice", first)
	require.NoError(t, err)

	second := window.FromResponses([]string{"only one", "and two"}, "alice")
	persona, err := setup.SetupPersona(ctx, "alice", second)
	require.NoError(t, err)
	assert.Equal(t, 2, persona.PairCount)

	count, err := index.Count(ctx, vectorindex.Filter{PersonaID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSetupPersona_EmptyHistoryGetsDefaultStyle(t *testing.T) {
	ctx := context.Background()
	embedder := embedding.NewSynthetic(8, 1)
	index := vectorindex.NewMemoryIndex(embedder.Dimension())
	setup := NewSetup(index, embedder, nil)

	persona, err := setup.SetupPersona(ctx, "ghost", nil)
	require.NoError(t, err)

	assert.Zero(t, persona.PairCount)
	want := style.DefaultProfile()
	want.PersonaID = "ghost"
	assert.Equal(t, want, persona.Style)

	count, err := index.Count(ctx, vectorindex.Filter{PersonaID: "ghost"})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSetupPersona_PartitionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	embedder := embedding.NewSynthetic(8, 1)
	index := vectorindex.NewMemoryIndex(embedder.Dimension())
	setup := NewSetup(index, embedder, nil)

	_, err := setup.SetupPersona(ctx, "alice", window.FromResponses([]string{"aa bb", "cc dd"}, "alice"))
	require.NoError(t, err)
	_, err = setup.SetupPersona(ctx, "bob", window.FromResponses([]string{"ee ff", "gg hh", "ii jj"}, "bob"))
	require.NoError(t, err)

	aliceCount, err := index.Count(ctx, vectorindex.Filter{PersonaID: "alice"})
	require.NoError(t, err)
	bobCount, err := index.Count(ctx, vectorindex.Filter{PersonaID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, 2, aliceCount)
	assert.Equal(t, 3, bobCount)
}

func TestUserPrompt_CapsExamples(t *testing.T) {
	matches := make([]vectorindex.Match, 10)
	for i := range matches {
		matches[i] = vectorindex.Match{
			Metadata: vectorindex.Metadata{
				Context:  "ctx",
				Response: "resp",
			},
		}
	}

	prompt := userPrompt("alice", nil, matches)
	// Six examples at most, regardless of retrieval depth.
	assert.Equal(t, maxPromptExamples, strings.Count(prompt, "Their response:"))
}

func TestRetrievalContext_LastFourTurns(t *testing.T) {
	history := []Turn{
		{Sender: "a", Text: "one"},
		{Sender: "b", Text: "two"},
		{Sender: "a", Text: "three"},
		{Sender: "b", Text: "four"},
		{Sender: "a", Text: "five"},
	}

	got := retrievalContext(history)
	assert.Equal(t, "b: two\na: three\nb: four\na: five", got)
	assert.NotContains(t, got, "one")
}
