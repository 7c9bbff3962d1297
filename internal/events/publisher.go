package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
// A nil Publisher is safe to call; every method becomes a no-op, so callers
// do not have to guard for the no-NATS configuration.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishProfileCreated publishes a profile lifecycle event.
func (p *Publisher) PublishProfileCreated(ctx context.Context, event ProfileCreated) error {
	return p.publish(ctx, SubjectProfileCreated, event)
}

// PublishPersonaIndexed publishes a persona indexing event.
func (p *Publisher) PublishPersonaIndexed(ctx context.Context, event PersonaIndexed) error {
	return p.publish(ctx, SubjectPersonaIndexed, event)
}

// PublishSimulationCompleted publishes a simulation lifecycle event.
func (p *Publisher) PublishSimulationCompleted(ctx context.Context, event SimulationCompleted) error {
	return p.publish(ctx, SubjectSimulationCompleted, event)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	if p == nil || p.js == nil {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
