// Package constants holds default values shared across the RCI modules.
package constants

const (
	// DefaultEmbedURL is used when configfx receives no embed URL override.
	DefaultEmbedURL = "http://localhost:8000/v1/embeddings"

	// DefaultModel is the embedding model assumed when none is configured.
	DefaultModel = "text-embedding-3-small"

	// DefaultDimension is the vector width assumed for an unknown model.
	DefaultDimension = 1536

	// DefaultMaxTokens is the token budget assumed for an unknown model.
	DefaultMaxTokens = 8192

	// DefaultBasePath is the VectorStore root when none is configured.
	DefaultBasePath = "./data/rag-index"

	// EmbedBatchSize is the maximum number of texts sent to the embedder per call.
	EmbedBatchSize = 100

	// EmbedRateLimitSleepMS is the pause between successive embedder batches.
	EmbedRateLimitSleepMS = 100

	// EmbedMaxRetries is the number of retry attempts for a failed embed call.
	EmbedMaxRetries = 3

	// EmbedRetryBaseDelayMS is the linear backoff unit: delay = base * attempt.
	EmbedRetryBaseDelayMS = 200

	// SyncBatchSize is the number of components processed per sync batch.
	SyncBatchSize = 10

	// CacheMaxSize is the default LRU capacity (both tiers).
	CacheMaxSize = 1000

	// CacheMaxAgeMS is the default cache entry TTL.
	CacheMaxAgeMS = 300_000

	// CacheSemanticThreshold is the default cosine-similarity bar for a
	// semantic cache hit.
	CacheSemanticThreshold = 0.92

	// DefaultTopK and DefaultThreshold are Search's defaults when unset.
	DefaultTopK        = 5
	DefaultThreshold   = 0.5
	MaxInternalTopKCap = 1000
)
