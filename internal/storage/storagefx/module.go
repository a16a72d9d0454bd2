package storagefx

import (
	"fmt"

	"github.com/rcihq/rci/internal/config/configfx"
	"github.com/rcihq/rci/internal/storage"
	"github.com/rcihq/rci/internal/storage/filevec"
	"github.com/rcihq/rci/internal/storage/sqlitevec"
	"go.uber.org/fx"
)

// Params represents dependencies for storage components.
type Params struct {
	fx.In

	Config *configfx.Config
}

// NewVectorStore creates the configured VectorStore and initializes it.
func NewVectorStore(params Params) (storage.VectorStore, error) {
	cfg := params.Config.VectorStore
	if cfg.Path == "" {
		return nil, fmt.Errorf("vector store path must be specified")
	}

	var store storage.VectorStore
	switch cfg.Type {
	case "sqlite":
		s, err := sqlitevec.New(cfg.Path, params.Config.Dimension)
		if err != nil {
			return nil, err
		}
		store = s
	case "file", "":
		store = filevec.New(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown vector store type %q", cfg.Type)
	}

	if err := store.Initialize(); err != nil {
		return nil, err
	}
	return store, nil
}

// Module provides storage components.
var Module = fx.Module("storage",
	fx.Provide(NewVectorStore),
)
