// Package storage defines the durable VectorStore contract (spec §4.3).
package storage

import (
	"math"

	"github.com/rcihq/rci/internal/models"
)

// VectorStore is the durable, append-dominant backing over documents,
// their embeddings, and aggregate metadata.
type VectorStore interface {
	// Initialize creates the backing if absent.
	Initialize() error

	// AddBatch appends docs whose id is not already present.
	AddBatch(docs []models.VectorDocument) error

	// TopK returns the documents whose embedding has cosine similarity
	// >= threshold against qv, sorted descending, first k.
	TopK(qv []float32, k int, threshold float32) ([]models.ScoredDocument, error)

	// TopKFiltered is TopK additionally constrained by filters.
	TopKFiltered(qv []float32, filters models.Filters, k int, threshold float32) ([]models.ScoredDocument, error)

	// Delete removes the documents with the given ids.
	Delete(ids []string) error

	// Clear replaces all tables with empty ones.
	Clear() error

	// Stats summarizes the current store contents.
	Stats() (models.Stats, error)
}

// Cosine computes dot(a,b) / (‖a‖·‖b‖); 0 if either norm is 0. Callers
// must ensure a and b have matching lengths.
func Cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}
