package configfx

import (
	"github.com/rcihq/rci/internal/constants"
	"github.com/rcihq/rci/internal/models"
	"go.uber.org/fx"
)

// Config wraps the RAG configuration document (spec §6.5) resolved from
// CLI flags / environment, with defaults applied.
type Config struct {
	models.RAGConfig
	SourcePath string // optional project path for pre-sync at startup
}

// Params represents the named values the CLI supplies to build a Config.
type Params struct {
	fx.In

	EmbedURL         string `name:"embedURL"         optional:"true"`
	EmbedProvider    string `name:"embedProvider"    optional:"true"`
	EmbedModel       string `name:"embedModel"       optional:"true"`
	EmbedAPIKey      string `name:"embedAPIKey"      optional:"true"`
	VectorStoreType  string `name:"vectorStoreType"  optional:"true"`
	VectorStorePath  string `name:"vectorStorePath"  optional:"true"`
	Dimension        int    `name:"dimension"        optional:"true"`
	CacheEnabled     bool   `name:"cacheEnabled"     optional:"true"`
	CacheTTLSeconds  int    `name:"cacheTTLSeconds"  optional:"true"`
	CacheMaxSize     int    `name:"cacheMaxSize"     optional:"true"`
	SourcePath       string `name:"sourcePath"       optional:"true"`
}

// NewConfig creates a Config, applying the spec's stated defaults for any
// zero-valued field.
func NewConfig(params Params) *Config {
	cfg := &Config{
		RAGConfig: models.RAGConfig{
			VectorStore: models.VectorStoreConfig{
				Type: params.VectorStoreType,
				Path: params.VectorStorePath,
			},
			Embeddings: models.EmbeddingsConfig{
				Provider: params.EmbedProvider,
				Model:    params.EmbedModel,
				APIKey:   params.EmbedAPIKey,
				BaseURL:  params.EmbedURL,
			},
			Dimension: params.Dimension,
			Cache: models.CacheConfig{
				Enabled:    params.CacheEnabled,
				TTLSeconds: params.CacheTTLSeconds,
				MaxSize:    params.CacheMaxSize,
			},
		},
		SourcePath: params.SourcePath,
	}

	if cfg.Embeddings.BaseURL == "" {
		cfg.Embeddings.BaseURL = constants.DefaultEmbedURL
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = constants.DefaultModel
	}
	if cfg.Embeddings.Provider == "" {
		cfg.Embeddings.Provider = "api"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "file"
	}
	if cfg.VectorStore.Path == "" {
		cfg.VectorStore.Path = constants.DefaultBasePath
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = constants.DefaultDimension
	}
	if cfg.Cache.MaxSize == 0 {
		cfg.Cache.MaxSize = constants.CacheMaxSize
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = constants.CacheMaxAgeMS / 1000
	}

	return cfg
}

// Module provides configuration for the application.
var Module = fx.Module("config",
	fx.Provide(NewConfig),
)
