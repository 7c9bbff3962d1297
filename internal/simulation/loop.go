package simulation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vibecheck-app/vibecheck/internal/llm"
	"github.com/vibecheck-app/vibecheck/internal/style"
)

// Simulate runs a full conversation: the starter from persona a, then
// exchanges rounds of b responding followed by a responding. The result is
// always exactly 1+2*exchanges turns, strictly alternating senders.
func (r *Responder) Simulate(ctx context.Context, a, b *Persona, starter string, exchanges int) []Turn {
	conversation := []Turn{{Sender: a.ID, Text: starter}}

	for i := 0; i < exchanges; i++ {
		if err := ctx.Err(); err != nil {
			slog.Warn("simulation stopped early", "exchange", i, "error", err)
			break
		}

		responseB := r.GenerateResponse(ctx, b, conversation)
		conversation = append(conversation, Turn{Sender: b.ID, Text: responseB})

		responseA := r.GenerateResponse(ctx, a, conversation)
		conversation = append(conversation, Turn{Sender: a.ID, Text: responseA})
	}

	return conversation
}

// StarterMessage produces the opening turn for a topic conversation: an
// LLM-written opener in persona a's voice when generation is available,
// otherwise a template matched to a's capitalization habit.
func (r *Responder) StarterMessage(ctx context.Context, a *Persona, topic string) string {
	if r.completer != nil {
		prompt := fmt.Sprintf(`Generate a short opening text message about going out plans: %s

Style rules:

Make sure to EXACTLY use this person's texting style, including unique words and slang that they historically show in their text messages. Really capture their personality.

Respond with ONLY the message text.`, topic)

		text, err := r.completer.Complete(ctx, llm.Request{
			UserPrompt:  prompt,
			Temperature: r.temperature,
			MaxTokens:   50,
		})
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			slog.Warn("starter generation failed, using template", "persona_id", a.ID, "error", err)
		}
	}

	if a.Style.Capitalization == style.Lowercase {
		return fmt.Sprintf("hey wanna talk about %s?", topic)
	}
	return fmt.Sprintf("Hey! Want to discuss %s?", topic)
}
