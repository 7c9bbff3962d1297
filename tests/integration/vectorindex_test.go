//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecheck-app/vibecheck/internal/vectorindex"
)

func unitVector(dim, hot int) []float32 {
	v := make([]float32, dim)
	v[hot] = 1
	return v
}

func TestPostgresIndex_UpsertAndQuery(t *testing.T) {
	env := SetupTestEnv(t)
	ctx := context.Background()

	persona := fmt.Sprintf("pgidx-%d", uniqueID())
	dim := 1536

	for i := 0; i < 5; i++ {
		err := env.Index.Upsert(ctx, fmt.Sprintf("%s_%d", persona, i), unitVector(dim, i), vectorindex.Metadata{
			PersonaID: persona,
			Context:   fmt.Sprintf("ctx-%d", i),
			Response:  fmt.Sprintf("resp-%d", i),
		})
		require.NoError(t, err)
	}

	count, err := env.Index.Count(ctx, vectorindex.Filter{PersonaID: persona})
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	matches, err := env.Index.Query(ctx, unitVector(dim, 2), 3, vectorindex.Filter{PersonaID: persona})
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, persona+"_2", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-4)
	assert.Equal(t, "resp-2", matches[0].Metadata.Response)
}

func TestPostgresIndex_UpsertIsIdempotent(t *testing.T) {
	env := SetupTestEnv(t)
	ctx := context.Background()

	persona := fmt.Sprintf("pgidx-%d", uniqueID())
	dim := 1536
	id := persona + "_0"

	require.NoError(t, env.Index.Upsert(ctx, id, unitVector(dim, 0), vectorindex.Metadata{
		PersonaID: persona, Response: "original",
	}))
	require.NoError(t, env.Index.Upsert(ctx, id, unitVector(dim, 1), vectorindex.Metadata{
		PersonaID: persona, Response: "updated",
	}))

	count, err := env.Index.Count(ctx, vectorindex.Filter{PersonaID: persona})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	matches, err := env.Index.Query(ctx, unitVector(dim, 1), 1, vectorindex.Filter{PersonaID: persona})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "updated", matches[0].Metadata.Response)
}

func TestPostgresIndex_DeletePersona(t *testing.T) {
	env := SetupTestEnv(t)
	ctx := context.Background()

	persona := fmt.Sprintf("pgidx-%d", uniqueID())
	dim := 1536

	for i := 0; i < 3; i++ {
		require.NoError(t, env.Index.Upsert(ctx, fmt.Sprintf("%s_%d", persona, i), unitVector(dim, i), vectorindex.Metadata{
			PersonaID: persona,
		}))
	}
	require.NoError(t, env.Index.DeletePersona(ctx, persona))

	count, err := env.Index.Count(ctx, vectorindex.Filter{PersonaID: persona})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostgresIndex_DimensionMismatch(t *testing.T) {
	env := SetupTestEnv(t)

	err := env.Index.Upsert(context.Background(), "bad", []float32{1, 2, 3}, vectorindex.Metadata{PersonaID: "p"})
	assert.ErrorIs(t, err, vectorindex.ErrDimensionMismatch)
}
