package simulation

import (
	"fmt"
	"strings"

	"github.com/vibecheck-app/vibecheck/internal/vectorindex"
)

// maxPromptExamples caps how many retrieved pairs are shown to the model,
// even when retrieval returns more.
const maxPromptExamples = 6

// recentTurnsForRetrieval is how many trailing turns form the retrieval
// query; older turns no longer predict the next response.
const recentTurnsForRetrieval = 4

func systemPrompt(p *Persona) string {
	var b strings.Builder
	b.WriteString("You are simulating how a specific person texts. You must respond EXACTLY as they would - matching their texting style perfectly.\n")
	fmt.Fprintf(&b, "Their style: avg message length %.1f chars, %s capitalization, %s punctuation",
		p.Style.AvgLength, p.Style.Capitalization, p.Style.PunctuationStyle)
	if p.Style.UsesEmojis {
		b.WriteString(", uses emojis")
	}
	if len(p.Style.CommonPhrases) > 0 {
		fmt.Fprintf(&b, ", common phrases: %s", strings.Join(p.Style.CommonPhrases, ", "))
	}
	b.WriteString(".\n")
	b.WriteString("IMPORTANT:\n")
	b.WriteString("- REALLY match THEIR SPECIFIC tone, energy, slang, AND PERSONALITY\n")
	b.WriteString("- Keep responses natural and conversational\n")
	b.WriteString("- Respond with ONLY the message text, nothing extra")
	return b.String()
}

func userPrompt(personaID string, history []Turn, examples []vectorindex.Match) string {
	var b strings.Builder

	b.WriteString("EXAMPLES OF HOW THIS PERSON RESPONDS:\n\n")
	for i, ex := range examples {
		if i >= maxPromptExamples {
			break
		}
		fmt.Fprintf(&b, "Context: %s\n", ex.Metadata.Context)
		fmt.Fprintf(&b, "Their response: %s\n\n", ex.Metadata.Response)
	}

	b.WriteString("\nCURRENT CONVERSATION:\n")
	for _, t := range history {
		label := "Them"
		if t.Sender == personaID {
			label = "You"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, t.Text)
	}

	b.WriteString("\nNow respond as this person would. Remember to match their style exactly.")
	return b.String()
}

// retrievalContext renders the trailing turns as the query text used for
// similarity search.
func retrievalContext(history []Turn) string {
	recent := history
	if len(recent) > recentTurnsForRetrieval {
		recent = recent[len(recent)-recentTurnsForRetrieval:]
	}
	lines := make([]string, len(recent))
	for i, t := range recent {
		lines[i] = t.Sender + ": " + t.Text
	}
	return strings.Join(lines, "\n")
}
