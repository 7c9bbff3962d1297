// Package window turns a flat ordered message log into context/response
// pairs. A response on its own ("lol ok") carries almost no signal; paired
// with the turns around it, it shows how the sender reacts.
package window

import (
	"sort"
	"strings"
	"time"

	"github.com/vibecheck-app/vibecheck/internal/message"
)

// ConversationStart is the context sentinel for a response with no
// preceding messages.
const ConversationStart = "Them: [conversation start]"

// minResponseLen excludes one-character fragments from being response
// targets; they may still appear as context.
const minResponseLen = 2

// Mode selects how context is gathered around a response.
type Mode int

const (
	// Preceding includes up to Size messages strictly before the response.
	Preceding Mode = iota
	// Symmetric includes up to Size messages before and after the response.
	Symmetric
)

// Pair is one (context, response) training example. Derived, never
// persisted independently; regenerated whenever the source messages or
// window size change.
type Pair struct {
	Context   string    `json:"context"`
	Response  string    `json:"response"`
	SenderID  string    `json:"sender_id"`
	Timestamp time.Time `json:"timestamp"`
}

// BuildWindows derives context/response pairs from an ordered message log.
// Messages are grouped by conversation id so context never crosses thread
// boundaries. Pure: identical input always yields identical output.
func BuildWindows(msgs []message.Message, size int) []Pair {
	return buildWindows(msgs, size, Preceding)
}

// BuildSymmetricWindows is BuildWindows with context gathered on both sides
// of the response.
func BuildSymmetricWindows(msgs []message.Message, size int) []Pair {
	return buildWindows(msgs, size, Symmetric)
}

func buildWindows(msgs []message.Message, size int, mode Mode) []Pair {
	if size < 0 {
		size = 0
	}

	// Group by conversation, preserving input order within each thread.
	convOrder := make([]string, 0)
	threads := make(map[string][]message.Message)
	for _, m := range msgs {
		if _, ok := threads[m.ConversationID]; !ok {
			convOrder = append(convOrder, m.ConversationID)
		}
		threads[m.ConversationID] = append(threads[m.ConversationID], m)
	}

	var pairs []Pair
	for _, conv := range convOrder {
		thread := threads[conv]
		sort.SliceStable(thread, func(i, j int) bool {
			return thread[i].Timestamp.Before(thread[j].Timestamp)
		})

		for i, m := range thread {
			if len(m.Text) < minResponseLen {
				continue
			}

			start := i - size
			if start < 0 {
				start = 0
			}
			end := i
			if mode == Symmetric {
				end = i + size + 1
				if end > len(thread) {
					end = len(thread)
				}
			}

			var lines []string
			for j := start; j < end; j++ {
				if thread[j].Text == "" {
					continue
				}
				lines = append(lines, renderLine(thread[j]))
			}

			context := ConversationStart
			if len(lines) > 0 {
				context = strings.Join(lines, "\n")
			}

			pairs = append(pairs, Pair{
				Context:   context,
				Response:  m.Text,
				SenderID:  m.SenderID,
				Timestamp: m.Timestamp,
			})
		}
	}

	return pairs
}

func renderLine(m message.Message) string {
	label := "Them"
	if m.IsFromMe {
		label = "Me"
	}
	return label + ": " + m.Text
}

// FromResponses builds degenerate pairs from a bare list of texts, chaining
// each message as the context for the next. Used when a profile uploads raw
// texts without conversation metadata.
func FromResponses(texts []string, senderID string) []Pair {
	pairs := make([]Pair, 0, len(texts))
	for i, t := range texts {
		if len(t) < minResponseLen {
			continue
		}
		context := ConversationStart
		if i > 0 {
			context = "Them: " + texts[i-1]
		}
		pairs = append(pairs, Pair{
			Context:  context,
			Response: t,
			SenderID: senderID,
		})
	}
	return pairs
}
