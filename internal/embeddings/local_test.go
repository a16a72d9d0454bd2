package embeddings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcihq/rci/internal/embeddings"
	"github.com/rcihq/rci/internal/rcierr"
)

func Test_LocalEmbedder_Deterministic(t *testing.T) {
	e := embeddings.NewLocal(8)
	v1, err := e.Embed([]string{"hello"})
	require.NoError(t, err)
	v2, err := e.Embed([]string{"hello"})
	require.NoError(t, err)

	require.Len(t, v1, 1)
	require.Len(t, v2, 1)
	assert.Equal(t, v1[0], v2[0])
	assert.Len(t, v1[0], 8)
}

func Test_LocalEmbedder_PreservesOrderAndFiltersBlank(t *testing.T) {
	e := embeddings.NewLocal(4)
	vecs, err := e.Embed([]string{"a", "  ", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	va, _ := e.Embed([]string{"a"})
	assert.Equal(t, va[0], vecs[0])
}

func Test_LocalEmbedder_EmptyInput(t *testing.T) {
	e := embeddings.NewLocal(4)
	vecs, err := e.Embed(nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func Test_LocalEmbedder_AllBlankInput(t *testing.T) {
	e := embeddings.NewLocal(4)
	_, err := e.Embed([]string{"   ", "\t"})
	require.Error(t, err)
	code, ok := rcierr.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, rcierr.EmbeddingError, code)
}
