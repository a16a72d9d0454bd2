package embeddings

import "github.com/rcihq/rci/internal/constants"

// ModelDescriptor carries the dimension and token budget of an embedding
// model, used to pick the truncation budget before a call.
type ModelDescriptor struct {
	Dimension int
	MaxTokens int
}

var modelTable = map[string]ModelDescriptor{
	"text-embedding-3-small": {Dimension: 1536, MaxTokens: 8192},
	"text-embedding-3-large": {Dimension: 3072, MaxTokens: 8192},
	"text-embedding-ada-002": {Dimension: 1536, MaxTokens: 8192},
}

// DescribeModel returns the known descriptor for name, or the default
// {8192, 1536} descriptor for unrecognized models.
func DescribeModel(name string) ModelDescriptor {
	if d, ok := modelTable[name]; ok {
		return d
	}
	return ModelDescriptor{Dimension: constants.DefaultDimension, MaxTokens: constants.DefaultMaxTokens}
}
