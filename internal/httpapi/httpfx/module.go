package httpfx

import (
	"log"

	"go.uber.org/fx"

	"github.com/rcihq/rci/internal/httpapi"
	"github.com/rcihq/rci/internal/rci"
)

// Params represents dependencies for the HTTP server.
type Params struct {
	fx.In

	Service *rci.Service
}

// NewServer builds the httpapi.Server from its already-wired collaborators.
func NewServer(params Params) *httpapi.Server {
	return httpapi.New(params.Service, log.Default())
}

// Module provides the HTTP API server.
var Module = fx.Module("httpapi",
	fx.Provide(NewServer),
)
