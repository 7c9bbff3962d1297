package simulation

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecheck-app/vibecheck/internal/embedding"
	"github.com/vibecheck-app/vibecheck/internal/llm"
	"github.com/vibecheck-app/vibecheck/internal/style"
	"github.com/vibecheck-app/vibecheck/internal/vectorindex"
	"github.com/vibecheck-app/vibecheck/internal/window"
)

type fakeCompleter struct {
	reply    string
	err      error
	requests []llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeCompleter) Model() string { return "fake" }

func newTestPersona(t *testing.T, index vectorindex.Index, embedder embedding.Backend, id string, texts []string) *Persona {
	t.Helper()
	setup := NewSetup(index, embedder, nil)
	persona, err := setup.SetupPersona(context.Background(), id, window.FromResponses(texts, id))
	require.NoError(t, err)
	return persona
}

func testRig(t *testing.T, completer llm.Completer, personaTexts map[string][]string) (*Responder, map[string]*Persona) {
	t.Helper()
	embedder := embedding.NewSynthetic(8, 1)
	index := vectorindex.NewMemoryIndex(embedder.Dimension())

	personas := make(map[string]*Persona)
	for id, texts := range personaTexts {
		personas[id] = newTestPersona(t, index, embedder, id, texts)
	}

	responder := NewResponder(index, embedder, completer, rand.New(rand.NewSource(5)), 0.9, 100)
	return responder, personas
}

func TestGenerateResponse_EmptyPersonaGreets(t *testing.T) {
	responder, personas := testRig(t, nil, map[string][]string{"empty": nil})

	text := responder.GenerateResponse(context.Background(), personas["empty"], []Turn{{Sender: "x", Text: "hi"}})
	assert.Equal(t, "Hey!", text)
}

func TestGenerateResponse_GreetingMatchesCapitalization(t *testing.T) {
	responder, _ := testRig(t, nil, nil)

	lower := &Persona{ID: "p", Style: style.Profile{Capitalization: style.Lowercase}}
	upper := &Persona{ID: "p", Style: style.Profile{Capitalization: style.SentenceCase}}

	assert.Equal(t, "hey", responder.GenerateResponse(context.Background(), lower, nil))
	assert.Equal(t, "Hey!", responder.GenerateResponse(context.Background(), upper, nil))
}

func TestGenerateResponse_NoCompleterUsesRetrievedResponse(t *testing.T) {
	texts := []string{"sounds good to me", "omw now", "lol no way", "see you there", "that's wild"}
	responder, personas := testRig(t, nil, map[string][]string{"alice": texts})

	history := []Turn{{Sender: "bob", Text: "you coming tonight?"}}
	text := responder.GenerateResponse(context.Background(), personas["alice"], history)

	// Fallback picks from alice's own indexed responses.
	assert.Contains(t, texts, text)
}

func TestGenerateResponse_CompleterOutputWins(t *testing.T) {
	completer := &fakeCompleter{reply: "yeah for sure!"}
	responder, personas := testRig(t, completer, map[string][]string{
		"alice": {"sounds good to me", "omw now"},
	})

	history := []Turn{{Sender: "bob", Text: "dinner later?"}}
	text := responder.GenerateResponse(context.Background(), personas["alice"], history)

	assert.Equal(t, "yeah for sure!", text)
	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	assert.Contains(t, req.UserPrompt, "CURRENT CONVERSATION:")
	assert.Contains(t, req.UserPrompt, "Them: dinner later?")
	assert.Contains(t, req.SystemPrompt, "texting style")
	assert.Equal(t, 0.9, req.Temperature)
	assert.Equal(t, 100, req.MaxTokens)
}

func TestGenerateResponse_CompleterFailureFallsBack(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	texts := []string{"sounds good to me", "omw now", "lol no way"}
	responder, personas := testRig(t, completer, map[string][]string{"alice": texts})

	history := []Turn{{Sender: "bob", Text: "you around?"}}
	text := responder.GenerateResponse(context.Background(), personas["alice"], history)

	assert.Contains(t, texts, text)
}

func TestGenerateResponse_PromptLabelsOwnTurnsYou(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	responder, personas := testRig(t, completer, map[string][]string{
		"alice": {"sounds good to me", "omw now"},
	})

	history := []Turn{
		{Sender: "bob", Text: "free tonight?"},
		{Sender: "alice", Text: "maybe, why"},
	}
	responder.GenerateResponse(context.Background(), personas["alice"], history)

	require.Len(t, completer.requests, 1)
	assert.Contains(t, completer.requests[0].UserPrompt, "Them: free tonight?")
	assert.Contains(t, completer.requests[0].UserPrompt, "You: maybe, why")
}

func TestSimulate_AlternatesAndCounts(t *testing.T) {
	responder, personas := testRig(t, nil, map[string][]string{
		"alice": {"sounds good to me", "omw now", "lol no way"},
		"bob":   {"bet", "down for it", "nah man"},
	})

	turns := responder.Simulate(context.Background(), personas["alice"], personas["bob"], "hey what's up?", 5)

	require.Len(t, turns, 11) // starter + 5 exchanges of 2
	assert.Equal(t, "alice", turns[0].Sender)
	assert.Equal(t, "hey what's up?", turns[0].Text)
	for i := 1; i < len(turns); i++ {
		assert.NotEqual(t, turns[i-1].Sender, turns[i].Sender, "turn %d", i)
	}
}

func TestSimulate_ZeroExchangesIsJustStarter(t *testing.T) {
	responder, personas := testRig(t, nil, map[string][]string{
		"alice": {"sounds good to me"},
		"bob":   {"bet"},
	})

	turns := responder.Simulate(context.Background(), personas["alice"], personas["bob"], "yo", 0)
	require.Len(t, turns, 1)
	assert.Equal(t, "yo", turns[0].Text)
}

func TestSimulate_AsymmetricHistories(t *testing.T) {
	long := make([]string, 40)
	for i := range long {
		long[i] = "another message about weekend plans and food"
	}
	responder, personas := testRig(t, nil, map[string][]string{
		"chatty": long,
		"terse":  {"k", "ok sure", "yeah", "nah", "maybe"},
	})

	turns := responder.Simulate(context.Background(), personas["chatty"], personas["terse"], "hey", 4)
	require.Len(t, turns, 9)
	for _, turn := range turns {
		assert.NotEmpty(t, turn.Text)
	}
}

func TestStarterMessage_TemplateMatchesStyle(t *testing.T) {
	responder, _ := testRig(t, nil, nil)

	lower := &Persona{ID: "p", Style: style.Profile{Capitalization: style.Lowercase}}
	upper := &Persona{ID: "p", Style: style.Profile{Capitalization: style.SentenceCase}}

	assert.Equal(t, "hey wanna talk about hiking?",
		responder.StarterMessage(context.Background(), lower, "hiking"))
	assert.Equal(t, "Hey! Want to discuss hiking?",
		responder.StarterMessage(context.Background(), upper, "hiking"))
}

func TestStarterMessage_UsesCompleter(t *testing.T) {
	completer := &fakeCompleter{reply: "yooo hiking this weekend??"}
	responder, _ := testRig(t, completer, nil)

	persona := &Persona{ID: "p", Style: style.Profile{Capitalization: style.Lowercase}}
	starter := responder.StarterMessage(context.Background(), persona, "hiking")

	assert.Equal(t, "yooo hiking this weekend??", starter)
	require.Len(t, completer.requests, 1)
	assert.Contains(t, completer.requests[0].UserPrompt, "hiking")
	assert.Equal(t, 50, completer.requests[0].MaxTokens)
}
