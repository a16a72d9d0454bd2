package rcifx

import (
	"github.com/rcihq/rci/internal/cache"
	"github.com/rcihq/rci/internal/config/configfx"
	"github.com/rcihq/rci/internal/embeddings"
	"github.com/rcihq/rci/internal/parser"
	"github.com/rcihq/rci/internal/rci"
	"github.com/rcihq/rci/internal/storage"
	"go.uber.org/fx"
)

// Params represents dependencies for the RCI service.
type Params struct {
	fx.In

	Parser   parser.Parser
	Embedder embeddings.Embedder
	Store    storage.VectorStore
	Cache    *cache.SmartCache
	Config   *configfx.Config
}

// NewService builds the RCIService from its already-wired collaborators.
func NewService(params Params) *rci.Service {
	return rci.New(params.Parser, params.Embedder, params.Store, params.Cache, params.Config)
}

// Module provides the RCI service.
var Module = fx.Module("rci",
	fx.Provide(NewService),
)
