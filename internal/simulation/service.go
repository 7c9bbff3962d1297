package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vibecheck-app/vibecheck/internal/convstore"
	"github.com/vibecheck-app/vibecheck/internal/events"
	"github.com/vibecheck-app/vibecheck/internal/metrics"
	"github.com/vibecheck-app/vibecheck/internal/profiles"
	"github.com/vibecheck-app/vibecheck/internal/style"
	"github.com/vibecheck-app/vibecheck/internal/window"
)

// Service orchestrates a full simulation: load both profiles, index their
// personas, run the conversation loop, score it, and persist the result.
type Service struct {
	profiles  *profiles.Service
	setup     *Setup
	responder *Responder
	store     *convstore.Store
	publisher *events.Publisher
	validate  *validator.Validate
	rng       *rand.Rand
}

// NewService creates a simulation service. The rng drives insight jitter and
// may be seeded in tests.
func NewService(profileSvc *profiles.Service, setup *Setup, responder *Responder, store *convstore.Store, publisher *events.Publisher, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		profiles:  profileSvc,
		setup:     setup,
		responder: responder,
		store:     store,
		publisher: publisher,
		validate:  validator.New(),
		rng:       rng,
	}
}

// Run simulates a conversation between the two requested profiles.
func (s *Service) Run(ctx context.Context, req SimulateRequest) (*Conversation, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validating simulation request: %w", err)
	}
	numMessages := req.NumMessages
	if numMessages == 0 {
		numMessages = defaultNumMessages
	}

	profileA, err := s.profiles.Get(ctx, req.ProfileAID)
	if err != nil {
		return nil, fmt.Errorf("loading profile a: %w", err)
	}
	profileB, err := s.profiles.Get(ctx, req.ProfileBID)
	if err != nil {
		return nil, fmt.Errorf("loading profile b: %w", err)
	}

	personaA, err := s.setupFromProfile(ctx, profileA)
	if err != nil {
		return nil, err
	}
	personaB, err := s.setupFromProfile(ctx, profileB)
	if err != nil {
		return nil, err
	}

	starter := "hey what's up?"
	switch {
	case req.Starter != "":
		starter = req.Starter
	case req.Topic != "":
		starter = s.responder.StarterMessage(ctx, personaA, req.Topic)
	}

	exchanges := numMessages / 2
	turns := s.responder.Simulate(ctx, personaA, personaB, starter, exchanges)

	texts := make([]string, len(turns))
	for i, t := range turns {
		texts[i] = t.Text
	}
	insights := ScoreCompatibility(texts, s.rng)

	conversation := &Conversation{
		ID:       fmt.Sprintf("conv-%s-%s", profileA.ID, profileB.ID),
		ProfileA: *profileA,
		ProfileB: *profileB,
		Messages: toMessages(turns),
		Insights: insights,
		Styles: map[string]style.Profile{
			personaA.ID: personaA.Style,
			personaB.ID: personaB.Style,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Save(ctx, conversation.ID, conversation); err != nil {
		slog.Warn("failed to persist conversation", "conversation_id", conversation.ID, "error", err)
	}

	metrics.SimulationsTotal.Inc()
	if err := s.publisher.PublishSimulationCompleted(ctx, events.SimulationCompleted{
		ConversationID: conversation.ID,
		ProfileAID:     profileA.ID.String(),
		ProfileBID:     profileB.ID.String(),
		MessageCount:   len(turns),
		BaseScore:      insights[0].Score,
		CompletedAt:    conversation.CreatedAt,
	}); err != nil {
		slog.Warn("failed to publish simulation completed event", "error", err)
	}

	slog.Info("simulation completed",
		"conversation_id", conversation.ID,
		"messages", len(turns),
		"base_score", insights[0].Score,
	)
	return conversation, nil
}

// GetConversation fetches a previously simulated conversation.
func (s *Service) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var conversation Conversation
	if err := s.store.Load(ctx, id, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// setupFromProfile indexes a profile's stored history as a persona. Raw
// texts carry no thread metadata, so each message's predecessor serves as
// its context.
func (s *Service) setupFromProfile(ctx context.Context, p *profiles.Profile) (*Persona, error) {
	texts, err := s.profiles.Messages(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("loading messages for %s: %w", p.ID, err)
	}

	pairs := window.FromResponses(texts, p.ID.String())
	persona, err := s.setup.SetupPersona(ctx, p.ID.String(), pairs)
	if err != nil {
		return nil, fmt.Errorf("setting up persona %s: %w", p.ID, err)
	}
	return persona, nil
}

func toMessages(turns []Turn) []ConversationMessage {
	out := make([]ConversationMessage, len(turns))
	for i, t := range turns {
		out[i] = ConversationMessage{
			ID:        fmt.Sprintf("m%d", i+1),
			SenderID:  t.Sender,
			Text:      t.Text,
			Timestamp: i + 1,
		}
	}
	return out
}
