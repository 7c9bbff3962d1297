package message

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Artifacts the macOS message store leaves in exported text. Messages that
// are nothing but artifacts carry no conversational signal and are dropped.
const objectReplacementChar = "￼"

var artifactPrefixes = []string{"&__kIM", "__kIM"}

// Clean strips attachment placeholders and collapses whitespace. Returns ""
// for messages that had no real text.
func Clean(text string) string {
	text = strings.ReplaceAll(text, objectReplacementChar, "")
	return strings.Join(strings.Fields(text), " ")
}

// IsArtifact reports whether a raw message text is a system artifact rather
// than something the sender typed.
func IsArtifact(text string) bool {
	for _, p := range artifactPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// ParseExport decodes an Export JSON document, drops empty and artifact-only
// messages, cleans the rest, and returns them ordered by timestamp.
func ParseExport(data []byte) ([]Message, error) {
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		// Accept a bare array of messages as well as the wrapped shape.
		var msgs []Message
		if arrErr := json.Unmarshal(data, &msgs); arrErr != nil {
			return nil, fmt.Errorf("parsing message export: %w", err)
		}
		export.Messages = msgs
	}

	return Filter(export.Messages, export.ConversationID), nil
}

// Filter drops unusable messages, cleans text, fills a default conversation
// id, and sorts by timestamp. The returned slice is freshly allocated.
func Filter(msgs []Message, defaultConversationID string) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if IsArtifact(m.Text) {
			continue
		}
		m.Text = Clean(m.Text)
		if m.Text == "" {
			continue
		}
		if m.ConversationID == "" {
			m.ConversationID = defaultConversationID
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// FromTexts wraps a plain list of response strings as Messages attributed to
// the given sender. Used when a profile uploads raw texts with no metadata.
func FromTexts(texts []string, senderID string) []Message {
	msgs := make([]Message, 0, len(texts))
	for i, t := range texts {
		if IsArtifact(t) {
			continue
		}
		t = Clean(t)
		if t == "" {
			continue
		}
		msgs = append(msgs, Message{
			ID:       fmt.Sprintf("%s-%d", senderID, i),
			Text:     t,
			SenderID: senderID,
			IsFromMe: true,
		})
	}
	return msgs
}
