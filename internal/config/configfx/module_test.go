package configfx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/rcihq/rci/internal/constants"
)

func TestConfigModule(t *testing.T) {
	var config *Config
	app := fx.New(
		Module,
		fx.Supply(
			fx.Annotate("http://localhost:8000/v1/embeddings", fx.ResultTags(`name:"embedURL"`)),
			fx.Annotate("openai", fx.ResultTags(`name:"embedProvider"`)),
			fx.Annotate("text-embedding-3-small", fx.ResultTags(`name:"embedModel"`)),
			fx.Annotate("", fx.ResultTags(`name:"embedAPIKey"`)),
			fx.Annotate("sqlite", fx.ResultTags(`name:"vectorStoreType"`)),
			fx.Annotate("/tmp/rci-index", fx.ResultTags(`name:"vectorStorePath"`)),
			fx.Annotate(1536, fx.ResultTags(`name:"dimension"`)),
			fx.Annotate(true, fx.ResultTags(`name:"cacheEnabled"`)),
			fx.Annotate(300, fx.ResultTags(`name:"cacheTTLSeconds"`)),
			fx.Annotate(1000, fx.ResultTags(`name:"cacheMaxSize"`)),
			fx.Annotate("", fx.ResultTags(`name:"sourcePath"`)),
		),
		fx.Populate(&config),
	)

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	defer func() {
		require.NoError(t, app.Stop(ctx))
	}()

	assert.NotNil(t, config)
	assert.Equal(t, "sqlite", config.VectorStore.Type)
	assert.Equal(t, "/tmp/rci-index", config.VectorStore.Path)
	assert.Equal(t, "text-embedding-3-small", config.Embeddings.Model)
	assert.Equal(t, 1536, config.Dimension)
	assert.True(t, config.Cache.Enabled)
}

func TestConfigDefaults(t *testing.T) {
	var config *Config
	app := fx.New(
		Module,
		fx.Supply(
			fx.Annotate("", fx.ResultTags(`name:"embedURL"`)),
			fx.Annotate("", fx.ResultTags(`name:"embedProvider"`)),
			fx.Annotate("", fx.ResultTags(`name:"embedModel"`)),
			fx.Annotate("", fx.ResultTags(`name:"embedAPIKey"`)),
			fx.Annotate("", fx.ResultTags(`name:"vectorStoreType"`)),
			fx.Annotate("", fx.ResultTags(`name:"vectorStorePath"`)),
			fx.Annotate(0, fx.ResultTags(`name:"dimension"`)),
			fx.Annotate(false, fx.ResultTags(`name:"cacheEnabled"`)),
			fx.Annotate(0, fx.ResultTags(`name:"cacheTTLSeconds"`)),
			fx.Annotate(0, fx.ResultTags(`name:"cacheMaxSize"`)),
			fx.Annotate("", fx.ResultTags(`name:"sourcePath"`)),
		),
		fx.Populate(&config),
	)

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	defer func() {
		require.NoError(t, app.Stop(ctx))
	}()

	assert.NotNil(t, config)
	assert.Equal(t, constants.DefaultEmbedURL, config.Embeddings.BaseURL)
	assert.Equal(t, constants.DefaultModel, config.Embeddings.Model)
	assert.Equal(t, "file", config.VectorStore.Type)
	assert.Equal(t, constants.DefaultBasePath, config.VectorStore.Path)
	assert.Equal(t, constants.DefaultDimension, config.Dimension)
}
