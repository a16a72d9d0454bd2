package embeddingsfx

import (
	"github.com/rcihq/rci/internal/config/configfx"
	"github.com/rcihq/rci/internal/embeddings"
	"go.uber.org/fx"
)

// Params represents dependencies for embeddings components.
type Params struct {
	fx.In

	Config *configfx.Config
}

// NewEmbedder creates the configured embedder. Provider "local" is meant
// for tests and offline development; anything else goes through the
// OpenAI-compatible HTTP client.
func NewEmbedder(params Params) embeddings.Embedder {
	cfg := params.Config.Embeddings
	if cfg.Provider == "local" {
		return embeddings.NewLocal(params.Config.Dimension)
	}
	return embeddings.NewAPI(cfg.BaseURL, cfg.APIKey, cfg.Model)
}

// Module provides embeddings components.
var Module = fx.Module("embeddings",
	fx.Provide(NewEmbedder),
)
