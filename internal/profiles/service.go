package profiles

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vibecheck-app/vibecheck/internal/events"
	"github.com/vibecheck-app/vibecheck/internal/message"
)

// palette holds the avatar colors cycled through when profiles are created.
var palette = []string{
	"#6C5CE7", "#00B894", "#E17055", "#0984E3",
	"#FDCB6E", "#E84393", "#00CEC9", "#A29BFE",
}

// Service handles profile business logic.
type Service struct {
	repo      Repository
	publisher *events.Publisher
	validate  *validator.Validate
	rng       *rand.Rand
}

// NewService creates a new profile service. The rng picks avatar colors and
// may be seeded in tests for deterministic output.
func NewService(repo Repository, publisher *events.Publisher, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
		rng:       rng,
	}
}

// Create registers a profile, optionally seeding its message history.
// Message texts are cleaned and artifact-filtered before storage.
func (s *Service) Create(ctx context.Context, req CreateProfileRequest) (*Profile, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validating profile: %w", err)
	}

	p := &Profile{
		ID:        uuid.New(),
		Name:      req.Name,
		Color:     palette[s.rng.Intn(len(palette))],
		Bio:       req.Bio,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	texts := cleanTexts(req.Messages)
	if len(texts) > 0 {
		if err := s.repo.ReplaceMessages(ctx, p.ID, texts); err != nil {
			return nil, err
		}
	}

	if err := s.publisher.PublishProfileCreated(ctx, events.ProfileCreated{
		ProfileID:    p.ID.String(),
		Name:         p.Name,
		MessageCount: len(texts),
		CreatedAt:    p.CreatedAt,
	}); err != nil {
		slog.Warn("failed to publish profile created event", "error", err)
	}

	slog.Info("profile created", "profile_id", p.ID, "name", p.Name, "messages", len(texts))
	return p, nil
}

// Get returns a profile by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all profiles in creation order.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.repo.List(ctx)
}

// UploadMessages replaces a profile's message history.
func (s *Service) UploadMessages(ctx context.Context, id uuid.UUID, req UploadMessagesRequest) (int, error) {
	if err := s.validate.Struct(req); err != nil {
		return 0, fmt.Errorf("validating messages: %w", err)
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return 0, err
	}

	texts := cleanTexts(req.Messages)
	if len(texts) == 0 {
		return 0, fmt.Errorf("no usable messages after filtering")
	}
	if err := s.repo.ReplaceMessages(ctx, id, texts); err != nil {
		return 0, err
	}

	slog.Info("profile messages replaced", "profile_id", id, "count", len(texts))
	return len(texts), nil
}

// Messages returns a profile's stored history.
func (s *Service) Messages(ctx context.Context, id uuid.UUID) ([]string, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetMessages(ctx, id)
}

// cleanTexts strips attachment placeholders and drops reaction artifacts
// and empty strings, preserving order.
func cleanTexts(raw []string) []string {
	var out []string
	for _, t := range raw {
		if message.IsArtifact(t) {
			continue
		}
		cleaned := message.Clean(t)
		if cleaned == "" {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}
