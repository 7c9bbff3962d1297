// Package vectorindex stores embedded context/response pairs per persona
// and serves cosine-similarity ranked retrieval over them.
package vectorindex

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrDimensionMismatch indicates an embedding whose length disagrees with
// the index. This is programmer error, not an operational condition.
var ErrDimensionMismatch = errors.New("vectorindex: embedding dimension mismatch")

// Metadata carried with every entry. PersonaID partitions the index.
type Metadata struct {
	PersonaID string    `json:"persona_id"`
	Context   string    `json:"context"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Match is one ranked retrieval result.
type Match struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// Filter is an equality predicate over metadata. The zero Filter matches
// everything.
type Filter struct {
	PersonaID string
}

func (f Filter) matches(md Metadata) bool {
	return f.PersonaID == "" || f.PersonaID == md.PersonaID
}

// Index is a nearest-neighbor store over embedded pairs. Entries are
// created at indexing time and never mutated; DeletePersona drops a whole
// partition for rebuild.
type Index interface {
	// Upsert inserts or replaces an entry; idempotent on the same id.
	Upsert(ctx context.Context, id string, embedding []float32, md Metadata) error
	// Query returns up to topK matches ranked by cosine similarity
	// descending, ties broken by insertion order. Fewer than topK matches
	// returns all of them, never an error.
	Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error)
	// Count returns the number of entries matching the filter.
	Count(ctx context.Context, filter Filter) (int, error)
	// DeletePersona removes every entry in a persona's partition.
	DeletePersona(ctx context.Context, personaID string) error
}

// normEpsilon guards the norm division; zero-magnitude vectors score 0
// against everything rather than producing NaN.
const normEpsilon = 1e-8

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// CosineSimilarity returns the cosine of the angle between a and b, with
// zero vectors scoring 0.
func CosineSimilarity(a, b []float32) float64 {
	return dot(a, b) / ((norm(a) + normEpsilon) * (norm(b) + normEpsilon))
}
