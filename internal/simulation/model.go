// Package simulation runs retrieval-augmented conversations between two
// personas and scores the result. Each persona is an indexed message history
// plus a style profile; turns are generated by an LLM grounded on retrieved
// examples, with deterministic fallbacks when no LLM is configured.
package simulation

import (
	"time"

	"github.com/google/uuid"

	"github.com/vibecheck-app/vibecheck/internal/profiles"
	"github.com/vibecheck-app/vibecheck/internal/style"
)

// Turn is one message in a simulated conversation.
type Turn struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Insight is one scored facet of a conversation's compatibility report.
type Insight struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Score       int    `json:"score"`
	Description string `json:"description"`
	Details     string `json:"details"`
}

// ConversationMessage is a turn in the API shape, attributed by profile id.
type ConversationMessage struct {
	ID        string `json:"id"`
	SenderID  string `json:"sender_id"`
	Text      string `json:"text"`
	Timestamp int    `json:"timestamp"`
}

// Conversation is the full simulation result returned by the API and kept in
// the conversation store.
type Conversation struct {
	ID        string                   `json:"id"`
	ProfileA  profiles.Profile         `json:"profile_a"`
	ProfileB  profiles.Profile         `json:"profile_b"`
	Messages  []ConversationMessage    `json:"messages"`
	Insights  []Insight                `json:"insights"`
	Styles    map[string]style.Profile `json:"styles"`
	CreatedAt time.Time                `json:"created_at"`
}

// SimulateRequest asks for a conversation between two stored profiles.
type SimulateRequest struct {
	ProfileAID  uuid.UUID `json:"profile_a_id" validate:"required"`
	ProfileBID  uuid.UUID `json:"profile_b_id" validate:"required"`
	NumMessages int       `json:"num_messages" validate:"omitempty,min=2,max=100"`
	Starter     string    `json:"starter,omitempty" validate:"max=500"`
	Topic       string    `json:"topic,omitempty" validate:"max=200"`
}

// defaultNumMessages matches the default conversation length when the
// request leaves it unset.
const defaultNumMessages = 20
