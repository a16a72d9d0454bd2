package cmdsfx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"

	"github.com/rcihq/rci/internal/config/configfx"
	"github.com/rcihq/rci/internal/httpapi"
	"github.com/rcihq/rci/internal/models"
	"github.com/rcihq/rci/internal/rci"
)

// CommandRunner provides methods to run the RCI CLI's subcommands,
// all sharing the same wired RCIService.
type CommandRunner struct {
	config    *configfx.Config
	service   *rci.Service
	httpSrv   *httpapi.Server
	mcpServer *server.MCPServer
}

// Params represents dependencies for command runner.
type Params struct {
	fx.In

	Config    *configfx.Config
	Service   *rci.Service      `optional:"true"`
	HTTPSrv   *httpapi.Server   `optional:"true"`
	MCPServer *server.MCPServer `optional:"true"`
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(params Params) *CommandRunner {
	return &CommandRunner{
		config:    params.Config,
		service:   params.Service,
		httpSrv:   params.HTTPSrv,
		mcpServer: params.MCPServer,
	}
}

// RunSync executes the sync command.
func (r *CommandRunner) RunSync(ctx context.Context, sourcePath string, forceReindex bool, packages []string) error {
	if r.service == nil {
		return fmt.Errorf("rci service not available")
	}
	resp, err := r.service.Sync(ctx, models.SyncRequest{
		SourcePath: sourcePath, ForceReindex: forceReindex, Packages: packages,
	})
	if err != nil {
		return err
	}
	fmt.Printf("sync %s: processed=%d success=%d failed=%d duration=%dms\n",
		resp.Status, resp.ProcessedCount, resp.SuccessCount, resp.FailedCount, resp.DurationMS)
	for _, e := range resp.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	return nil
}

// RunSearch executes the search command.
func (r *CommandRunner) RunSearch(ctx context.Context, query string, topK int, threshold float64) error {
	if r.service == nil {
		return fmt.Errorf("rci service not available")
	}
	resp, err := r.service.Search(ctx, models.SearchRequest{
		Query: query, TopK: topK, Threshold: float32(threshold),
	})
	if err != nil {
		return err
	}
	for i, c := range resp.Components {
		score := float32(0)
		if i < len(resp.Scores) {
			score = resp.Scores[i]
		}
		fmt.Printf("[%.3f] %s/%s\n", score, c.PackageName, c.ComponentName)
		if c.Description != "" {
			fmt.Printf("  %s\n", c.Description)
		}
	}
	if len(resp.Components) == 0 {
		for _, s := range resp.Suggestions {
			fmt.Printf("suggestion: %s\n", s)
		}
	}
	return nil
}

// RunStatus executes the status command.
func (r *CommandRunner) RunStatus() error {
	if r.service == nil {
		return fmt.Errorf("rci service not available")
	}
	data, err := json.MarshalIndent(r.service.Status(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// RunClearCache executes the clear-cache command.
func (r *CommandRunner) RunClearCache() error {
	if r.service == nil {
		return fmt.Errorf("rci service not available")
	}
	r.service.ClearCache()
	fmt.Println("cache cleared")
	return nil
}

// RunServe starts the HTTP API server.
func (r *CommandRunner) RunServe(addr string) error {
	if r.httpSrv == nil {
		return fmt.Errorf("http server not available")
	}
	fmt.Printf("listening on %s\n", addr)
	return http.ListenAndServe(addr, r.httpSrv.Handler())
}

// RunMCPServer executes the MCP server.
func (r *CommandRunner) RunMCPServer(transport, address string) error {
	if r.mcpServer == nil {
		return fmt.Errorf("MCP server not available")
	}

	switch transport {
	case "stdio":
		return server.ServeStdio(r.mcpServer)
	case "http":
		addr := address
		if addr == "" {
			addr = ":8080"
		}
		httpSrv := server.NewStreamableHTTPServer(r.mcpServer)
		return httpSrv.Start(addr)
	case "sse":
		addr := address
		if addr == "" {
			addr = ":8080"
		}
		sseSrv := server.NewSSEServer(r.mcpServer,
			server.WithBaseURL(""),
			server.WithStaticBasePath("/mcp"),
		)
		return sseSrv.Start(addr)
	default:
		return fmt.Errorf(
			"unsupported transport: %s (supported: stdio, http, sse)",
			transport,
		)
	}
}

// Module provides command runner.
var Module = fx.Module("commands",
	fx.Provide(NewCommandRunner),
)
