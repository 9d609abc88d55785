package hash

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, "hash-384", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestEmbed_DeterministicAndNormalised(t *testing.T) {
	svc := NewEmbeddingService(Config{Dimensions: 64})
	ctx := context.Background()

	a, err := svc.Embed(ctx, "The refund window is 30 days")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "The refund window is 30 days")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, math.Sqrt(cosine(a, a)), 1e-6)
}

func TestEmbed_LexicalSimilarity(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	ctx := context.Background()

	doc, _ := svc.Embed(ctx, "the refund window is 30 days")
	query, _ := svc.Embed(ctx, "what is the refund window?")
	other, _ := svc.Embed(ctx, "office parking is on level two of the garage")

	assert.Greater(t, cosine(doc, query), cosine(other, query))
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	svc := NewEmbeddingService(Config{Dimensions: 8})

	vec, err := svc.Embed(context.Background(), "  ?! ")

	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	ctx := context.Background()
	texts := []string{"alpha", "beta", "gamma"}

	batch, err := svc.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for i, text := range texts {
		single, err := svc.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}

func TestEmbed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEmbeddingService(Config{}).Embed(ctx, "x")

	assert.ErrorIs(t, err, domain.ErrEmbedding)
}
