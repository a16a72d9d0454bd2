package mcpfx

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"

	appmcp "github.com/rcihq/rci/internal/mcp"
	"github.com/rcihq/rci/internal/rci"
)

// Params represents dependencies for the MCP server.
type Params struct {
	fx.In

	Service *rci.Service
}

// NewMCPServer creates a new MCP server instance exposing rci_search/rci_status.
func NewMCPServer(params Params) *server.MCPServer {
	return appmcp.New(params.Service).MCPServer()
}

// Module provides MCP server components.
var Module = fx.Module("mcp",
	fx.Provide(NewMCPServer),
)
