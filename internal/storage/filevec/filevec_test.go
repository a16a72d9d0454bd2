package filevec_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcihq/rci/internal/models"
	"github.com/rcihq/rci/internal/storage/filevec"
)

func doc(id, pkg, comp string, typ models.FacetType, embedding []float32) models.VectorDocument {
	return models.VectorDocument{
		ID:        id,
		Content:   id + "-content",
		Embedding: embedding,
		Metadata: models.DocMetadata{
			ComponentName: comp,
			PackageName:   pkg,
			Type:          typ,
			Tags:          []string{"ui"},
			Version:       "1.0.0",
		},
	}
}

func TestStore_InitializeCreatesBasePath(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")
	s := filevec.New(base)
	require.NoError(t, s.Initialize())

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalDocuments)
}

func TestStore_AddBatchSkipsDuplicateIDs(t *testing.T) {
	s := filevec.New(t.TempDir())
	require.NoError(t, s.Initialize())

	d1 := doc("a", "pkg", "Button", models.FacetDescription, []float32{1, 0, 0})
	require.NoError(t, s.AddBatch([]models.VectorDocument{d1}))
	require.NoError(t, s.AddBatch([]models.VectorDocument{d1}))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDocuments)
}

func TestStore_TopKOrdersByCosineAndThreshold(t *testing.T) {
	s := filevec.New(t.TempDir())
	require.NoError(t, s.Initialize())

	require.NoError(t, s.AddBatch([]models.VectorDocument{
		doc("a", "pkg", "Button", models.FacetDescription, []float32{1, 0, 0}),
		doc("b", "pkg", "Alert", models.FacetDescription, []float32{0, 1, 0}),
		doc("c", "pkg", "Card", models.FacetDescription, []float32{0.9, 0.1, 0}),
	}))

	hits, err := s.TopK([]float32{1, 0, 0}, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Document.ID)
	assert.Equal(t, "c", hits[1].Document.ID)
}

func TestStore_TopKFilteredByTags(t *testing.T) {
	s := filevec.New(t.TempDir())
	require.NoError(t, s.Initialize())

	a := doc("a", "pkg", "Button", models.FacetDescription, []float32{1, 0})
	a.Metadata.Tags = []string{"form", "action"}
	b := doc("b", "pkg", "Alert", models.FacetDescription, []float32{1, 0})
	b.Metadata.Tags = []string{"feedback"}
	require.NoError(t, s.AddBatch([]models.VectorDocument{a, b}))

	hits, err := s.TopKFiltered([]float32{1, 0}, models.Filters{Tags: []string{"action"}}, 5, 0.1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Document.ID)
}

func TestStore_DeleteAndClear(t *testing.T) {
	s := filevec.New(t.TempDir())
	require.NoError(t, s.Initialize())
	require.NoError(t, s.AddBatch([]models.VectorDocument{
		doc("a", "pkg", "Button", models.FacetDescription, []float32{1, 0}),
		doc("b", "pkg", "Alert", models.FacetDescription, []float32{0, 1}),
	}))

	require.NoError(t, s.Delete([]string{"a"}))
	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDocuments)

	require.NoError(t, s.Clear())
	stats, err = s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalDocuments)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	base := t.TempDir()
	s1 := filevec.New(base)
	require.NoError(t, s1.Initialize())
	require.NoError(t, s1.AddBatch([]models.VectorDocument{
		doc("a", "pkg", "Button", models.FacetDescription, []float32{1, 0}),
	}))

	s2 := filevec.New(base)
	require.NoError(t, s2.Initialize())
	stats, err := s2.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDocuments)
}

func TestStore_DimensionMismatchIsError(t *testing.T) {
	s := filevec.New(t.TempDir())
	require.NoError(t, s.Initialize())
	require.NoError(t, s.AddBatch([]models.VectorDocument{
		doc("a", "pkg", "Button", models.FacetDescription, []float32{1, 0, 0}),
	}))

	_, err := s.TopK([]float32{1, 0}, 5, 0)
	assert.Error(t, err)
}
