// Package convstore persists finished conversations in Redis so they can be
// fetched again after the simulate call returns. Entries expire; a
// conversation is a snapshot, not a system of record.
package convstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates an unknown or expired conversation id.
var ErrNotFound = errors.New("conversation not found")

// DefaultTTL keeps conversations around long enough for the UI to re-fetch
// and share them.
const DefaultTTL = 24 * time.Hour

// Store is a Redis-backed conversation store.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a conversation store. A ttl of 0 uses DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

func key(id string) string {
	return "conv:" + id
}

// Save stores a conversation under its id, refreshing the TTL on overwrite.
func (s *Store) Save(ctx context.Context, id string, conversation any) error {
	payload, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("marshaling conversation %s: %w", id, err)
	}
	if err := s.client.Set(ctx, key(id), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving conversation %s: %w", id, err)
	}
	return nil
}

// Load fetches a conversation into dest.
func (s *Store) Load(ctx context.Context, id string, dest any) error {
	payload, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading conversation %s: %w", id, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decoding conversation %s: %w", id, err)
	}
	return nil
}

// Delete removes a conversation. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("deleting conversation %s: %w", id, err)
	}
	return nil
}
