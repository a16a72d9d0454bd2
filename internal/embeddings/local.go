package embeddings

import (
	"crypto/sha1"
	"errors"
	"strings"

	"github.com/rcihq/rci/internal/rcierr"
)

// LocalEmbedder is a deterministic, hash-based embedder used in tests and
// offline development, where no embedding provider is reachable.
type LocalEmbedder struct {
	dim int
}

func NewLocal(dim int) *LocalEmbedder { return &LocalEmbedder{dim: dim} }

func (e *LocalEmbedder) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	filtered := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return nil, rcierr.New(rcierr.EmbeddingError, errors.New("empty input"))
	}

	vecs := make([][]float32, len(filtered))
	for i, t := range filtered {
		vecs[i] = hashToVector(t, e.dim)
	}
	return vecs, nil
}

func hashToVector(s string, dim int) []float32 {
	h := sha1.Sum([]byte(s))
	vec := make([]float32, dim)
	for i := 0; i < dim; i++ {
		b := h[i%len(h)]
		vec[i] = float32(int8(b)) / 127.0
	}
	return vec
}
