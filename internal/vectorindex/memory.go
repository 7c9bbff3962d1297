package vectorindex

import (
	"context"
	"sort"
	"sync"
)

// MemoryIndex is the in-process Index implementation: a linear scan with an
// optional normalized dense-matrix cache for unfiltered queries. Both paths
// produce identical rankings for the same data.
type MemoryIndex struct {
	mu      sync.RWMutex
	dim     int
	ids     []string // insertion order
	entries map[string]*entry

	// matrix cache, rebuilt lazily; rows are unit vectors aligned with ids.
	matrix [][]float32
}

type entry struct {
	embedding []float32
	md        Metadata
}

// NewMemoryIndex creates an empty in-memory index for vectors of the given
// dimension.
func NewMemoryIndex(dim int) *MemoryIndex {
	return &MemoryIndex{
		dim:     dim,
		entries: make(map[string]*entry),
	}
}

func (m *MemoryIndex) Upsert(_ context.Context, id string, embedding []float32, md Metadata) error {
	if len(embedding) != m.dim {
		return ErrDimensionMismatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	if e, ok := m.entries[id]; ok {
		e.embedding = vec
		e.md = md
	} else {
		m.entries[id] = &entry{embedding: vec, md: md}
		m.ids = append(m.ids, id)
	}

	m.matrix = nil // invalidate cache
	return nil
}

func (m *MemoryIndex) Query(_ context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if len(vector) != m.dim {
		return nil, ErrDimensionMismatch
	}
	if topK <= 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if filter == (Filter{}) {
		return m.queryMatrix(vector, topK), nil
	}
	return m.queryScan(vector, topK, filter), nil
}

// queryMatrix scores against the normalized matrix cache in one pass.
func (m *MemoryIndex) queryMatrix(vector []float32, topK int) []Match {
	if m.matrix == nil {
		m.buildMatrix()
	}

	qn := norm(vector) + normEpsilon
	matches := make([]Match, 0, len(m.ids))
	for i, id := range m.ids {
		score := dot(m.matrix[i], vector) / qn
		matches = append(matches, Match{ID: id, Score: score, Metadata: m.entries[id].md})
	}
	return rank(matches, topK)
}

// queryScan is the per-entry path used when a filter is present.
func (m *MemoryIndex) queryScan(vector []float32, topK int, filter Filter) []Match {
	matches := make([]Match, 0)
	for _, id := range m.ids {
		e := m.entries[id]
		if !filter.matches(e.md) {
			continue
		}
		matches = append(matches, Match{
			ID:       id,
			Score:    CosineSimilarity(vector, e.embedding),
			Metadata: e.md,
		})
	}
	return rank(matches, topK)
}

// rank sorts by score descending; the stable sort preserves insertion
// order among ties. Truncates to topK.
func rank(matches []Match, topK int) []Match {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

func (m *MemoryIndex) buildMatrix() {
	m.matrix = make([][]float32, len(m.ids))
	for i, id := range m.ids {
		src := m.entries[id].embedding
		n := float32(norm(src) + normEpsilon)
		row := make([]float32, len(src))
		for j, v := range src {
			row[j] = v / n
		}
		m.matrix[i] = row
	}
}

func (m *MemoryIndex) Count(_ context.Context, filter Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if filter == (Filter{}) {
		return len(m.ids), nil
	}
	n := 0
	for _, e := range m.entries {
		if filter.matches(e.md) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryIndex) DeletePersona(_ context.Context, personaID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.ids[:0]
	for _, id := range m.ids {
		if m.entries[id].md.PersonaID == personaID {
			delete(m.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	m.ids = kept
	m.matrix = nil
	return nil
}
