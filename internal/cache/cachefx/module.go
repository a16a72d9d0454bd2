package cachefx

import (
	"github.com/rcihq/rci/internal/cache"
	"github.com/rcihq/rci/internal/config/configfx"
	"github.com/rcihq/rci/internal/constants"
	"go.uber.org/fx"
)

// Params represents dependencies for cache components.
type Params struct {
	fx.In

	Config *configfx.Config
}

// NewSmartCache builds the service's SmartCache from resolved config.
func NewSmartCache(params Params) *cache.SmartCache {
	return cache.New(params.Config.Cache, constants.CacheSemanticThreshold)
}

// Module provides cache components.
var Module = fx.Module("cache",
	fx.Provide(NewSmartCache),
)
