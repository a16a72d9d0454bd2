// Package mcp exposes RCIService's read-only operations as MCP tools.
// Sync is deliberately not exposed here: the MCP surface is a read-only
// companion to the HTTP API, not an alternate ingestion path.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rcihq/rci/internal/models"
	"github.com/rcihq/rci/internal/rci"
)

// Server wraps an MCP server exposing rci_search and rci_status.
type Server struct {
	service *rci.Service
	server  *server.MCPServer
}

// New returns an MCP server backed by service.
func New(service *rci.Service) *Server {
	srv := &Server{
		service: service,
		server: server.NewMCPServer(
			"rci/mcp",
			"0.1.0",
			server.WithToolCapabilities(true),
		),
	}
	srv.server.AddTool(newSearchTool(), srv.handleSearch)
	srv.server.AddTool(newStatusTool(), srv.handleStatus)
	return srv
}

// MCPServer returns the underlying mark3labs server for transport binding.
func (srv *Server) MCPServer() *server.MCPServer { return srv.server }

func newSearchTool() mcp.Tool {
	return mcp.NewTool(
		"rci_search",
		mcp.WithDescription("Semantic search over indexed component documentation"),
		mcp.WithString("query", mcp.Description("Natural language query"), mcp.Required()),
		mcp.WithNumber("top_k", mcp.Description("Max components to return"), mcp.DefaultNumber(5)),
		mcp.WithString("package_name", mcp.Description("Restrict results to this package")),
		mcp.WithString("component_name", mcp.Description("Restrict results to this component")),
	)
}

func newStatusTool() mcp.Tool {
	return mcp.NewTool(
		"rci_status",
		mcp.WithDescription("Report index availability, stats, and configuration"),
	)
}

// Handlers
func (srv *Server) handleSearch(
	ctx context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topK := req.GetInt("top_k", 5)
	filters := models.Filters{
		PackageName:   req.GetString("package_name", ""),
		ComponentName: req.GetString("component_name", ""),
	}

	resp, err := srv.service.Search(ctx, models.SearchRequest{
		Query:   query,
		TopK:    topK,
		Filters: filters,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructuredOnly(resp), nil
}

func (srv *Server) handleStatus(
	_ context.Context,
	_ mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultStructuredOnly(srv.service.Status()), nil
}
