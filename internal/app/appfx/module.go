package appfx

import (
	"go.uber.org/fx"

	"github.com/rcihq/rci/cmd/cmdsfx"
	"github.com/rcihq/rci/internal/cache/cachefx"
	"github.com/rcihq/rci/internal/config/configfx"
	"github.com/rcihq/rci/internal/embeddings/embeddingsfx"
	"github.com/rcihq/rci/internal/httpapi/httpfx"
	"github.com/rcihq/rci/internal/mcp/mcpfx"
	"github.com/rcihq/rci/internal/parser/parserfx"
	"github.com/rcihq/rci/internal/rci/rcifx"
	"github.com/rcihq/rci/internal/storage/storagefx"
)

// Module combines all application modules.
var Module = fx.Options(
	configfx.Module,
	parserfx.Module,
	embeddingsfx.Module,
	storagefx.Module,
	cachefx.Module,
	rcifx.Module,
	httpfx.Module,
	mcpfx.Module,
	cmdsfx.Module,
)

// ConfigValues are the named CLI flag values threaded into configfx.Config.
type ConfigValues struct {
	EmbedURL        string
	EmbedProvider   string
	EmbedModel      string
	EmbedAPIKey     string
	VectorStoreType string
	VectorStorePath string
	Dimension       int
	CacheEnabled    bool
	CacheTTLSeconds int
	CacheMaxSize    int
	SourcePath      string
}

// NewAppWithConfig creates an Fx app supplied with the given configuration values.
func NewAppWithConfig(values ConfigValues) *fx.App {
	return fx.New(
		Module,
		fx.Supply(
			fx.Annotate(values.EmbedURL, fx.ResultTags(`name:"embedURL"`)),
			fx.Annotate(values.EmbedProvider, fx.ResultTags(`name:"embedProvider"`)),
			fx.Annotate(values.EmbedModel, fx.ResultTags(`name:"embedModel"`)),
			fx.Annotate(values.EmbedAPIKey, fx.ResultTags(`name:"embedAPIKey"`)),
			fx.Annotate(values.VectorStoreType, fx.ResultTags(`name:"vectorStoreType"`)),
			fx.Annotate(values.VectorStorePath, fx.ResultTags(`name:"vectorStorePath"`)),
			fx.Annotate(values.Dimension, fx.ResultTags(`name:"dimension"`)),
			fx.Annotate(values.CacheEnabled, fx.ResultTags(`name:"cacheEnabled"`)),
			fx.Annotate(values.CacheTTLSeconds, fx.ResultTags(`name:"cacheTTLSeconds"`)),
			fx.Annotate(values.CacheMaxSize, fx.ResultTags(`name:"cacheMaxSize"`)),
			fx.Annotate(values.SourcePath, fx.ResultTags(`name:"sourcePath"`)),
		),
	)
}

// NewApp creates an Fx app with default configuration.
func NewApp() *fx.App {
	return fx.New(Module)
}
