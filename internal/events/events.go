package events

import "time"

// Stream name.
const StreamEvents = "VIBECHECK_EVENTS"

// Subject constants.
const (
	SubjectProfileCreated      = "vibecheck.events.profile.created"
	SubjectPersonaIndexed      = "vibecheck.events.persona.indexed"
	SubjectSimulationCompleted = "vibecheck.events.simulation.completed"
)

// ProfileCreated is published when a new profile is registered.
type ProfileCreated struct {
	ProfileID    string    `json:"profile_id"`
	Name         string    `json:"name"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// PersonaIndexed is published after a persona's history has been embedded
// and upserted into the vector index.
type PersonaIndexed struct {
	PersonaID   string    `json:"persona_id"`
	PairCount   int       `json:"pair_count"`
	Backend     string    `json:"backend"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// SimulationCompleted is published when a conversation simulation finishes.
type SimulationCompleted struct {
	ConversationID string    `json:"conversation_id"`
	ProfileAID     string    `json:"profile_a_id"`
	ProfileBID     string    `json:"profile_b_id"`
	MessageCount   int       `json:"message_count"`
	BaseScore      int       `json:"base_score"`
	CompletedAt    time.Time `json:"completed_at"`
}
