package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/rcihq/rci/cmd/cmdsfx"
	"github.com/rcihq/rci/internal/app/appfx"
	"github.com/rcihq/rci/internal/constants"
	appmcp "github.com/rcihq/rci/internal/mcp"
)

func supplyConfig(v appfx.ConfigValues) fx.Option {
	return fx.Supply(
		fx.Annotate(v.EmbedURL, fx.ResultTags(`name:"embedURL"`)),
		fx.Annotate(v.EmbedProvider, fx.ResultTags(`name:"embedProvider"`)),
		fx.Annotate(v.EmbedModel, fx.ResultTags(`name:"embedModel"`)),
		fx.Annotate(v.EmbedAPIKey, fx.ResultTags(`name:"embedAPIKey"`)),
		fx.Annotate(v.VectorStoreType, fx.ResultTags(`name:"vectorStoreType"`)),
		fx.Annotate(v.VectorStorePath, fx.ResultTags(`name:"vectorStorePath"`)),
		fx.Annotate(v.Dimension, fx.ResultTags(`name:"dimension"`)),
		fx.Annotate(v.CacheEnabled, fx.ResultTags(`name:"cacheEnabled"`)),
		fx.Annotate(v.CacheTTLSeconds, fx.ResultTags(`name:"cacheTTLSeconds"`)),
		fx.Annotate(v.CacheMaxSize, fx.ResultTags(`name:"cacheMaxSize"`)),
		fx.Annotate(v.SourcePath, fx.ResultTags(`name:"sourcePath"`)),
	)
}

func main() {
	var (
		embedURL        string
		embedProvider   string
		embedModel      string
		embedAPIKey     string
		vectorStoreType string
		vectorStorePath string
		dimension       int
		cacheEnabled    bool
		cacheTTLSeconds int
		cacheMaxSize    int
	)

	rootCmd := &cobra.Command{Use: "rci"}
	rootCmd.PersistentFlags().StringVar(&embedURL, "embed-url", constants.DefaultEmbedURL, "Embedding API URL")
	rootCmd.PersistentFlags().StringVar(&embedProvider, "embed-provider", "api", "Embedding provider (api, local)")
	rootCmd.PersistentFlags().StringVar(&embedModel, "embed-model", constants.DefaultModel, "Embedding model")
	rootCmd.PersistentFlags().StringVar(&embedAPIKey, "embed-api-key", "", "Embedding API key")
	rootCmd.PersistentFlags().StringVar(&vectorStoreType, "store-type", "file", "Vector store backing (file, sqlite)")
	rootCmd.PersistentFlags().StringVar(&vectorStorePath, "store-path", constants.DefaultBasePath, "Vector store path")
	rootCmd.PersistentFlags().IntVar(&dimension, "dimension", constants.DefaultDimension, "Embedding dimension")
	rootCmd.PersistentFlags().BoolVar(&cacheEnabled, "cache", true, "Enable the smart cache")
	rootCmd.PersistentFlags().IntVar(&cacheTTLSeconds, "cache-ttl", constants.CacheMaxAgeMS/1000, "Cache entry TTL in seconds")
	rootCmd.PersistentFlags().IntVar(&cacheMaxSize, "cache-size", constants.CacheMaxSize, "Cache capacity")

	runApp := func(ctx context.Context, sourcePath string, invoke func(*cmdsfx.CommandRunner) error) error {
		values := appfx.ConfigValues{
			EmbedURL:        embedURL,
			EmbedProvider:   embedProvider,
			EmbedModel:      embedModel,
			EmbedAPIKey:     embedAPIKey,
			VectorStoreType: vectorStoreType,
			VectorStorePath: vectorStorePath,
			Dimension:       dimension,
			CacheEnabled:    cacheEnabled,
			CacheTTLSeconds: cacheTTLSeconds,
			CacheMaxSize:    cacheMaxSize,
			SourcePath:      sourcePath,
		}
		app := fx.New(
			appfx.Module,
			supplyConfig(values),
			fx.Invoke(invoke),
		)
		if err := app.Start(ctx); err != nil {
			return err
		}
		stopCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
		defer cancel()
		return app.Stop(stopCtx)
	}

	var force bool
	var packages []string
	syncCmd := &cobra.Command{
		Use:   "sync [source-path]",
		Short: "Index a component source tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), args[0], func(runner *cmdsfx.CommandRunner) error {
				return runner.RunSync(cmd.Context(), args[0], force, packages)
			})
		},
	}
	syncCmd.Flags().BoolVar(&force, "force", false, "Clear the store before syncing")
	syncCmd.Flags().StringSliceVar(&packages, "packages", nil, "Restrict sync to these package names")

	var topK int
	var threshold float64
	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Semantic search over indexed components",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runApp(cmd.Context(), "", func(runner *cmdsfx.CommandRunner) error {
				return runner.RunSearch(cmd.Context(), query, topK, threshold)
			})
		},
	}
	searchCmd.Flags().IntVar(&topK, "top-k", constants.DefaultTopK, "Max components to return")
	searchCmd.Flags().Float64Var(&threshold, "threshold", constants.DefaultThreshold, "Minimum similarity score")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report index availability, stats, and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), "", func(runner *cmdsfx.CommandRunner) error {
				return runner.RunStatus()
			})
		},
	}

	clearCacheCmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Clear the smart cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), "", func(runner *cmdsfx.CommandRunner) error {
				return runner.RunClearCache()
			})
		},
	}

	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server (/rag/search, /rag/sync, /rag/status)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), "", func(runner *cmdsfx.CommandRunner) error {
				return runner.RunServe(addr)
			})
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")

	var mcpTransport, mcpAddress string
	mcpCmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run the MCP server exposing rci_search and rci_status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), "", func(runner *cmdsfx.CommandRunner) error {
				return runner.RunMCPServer(mcpTransport, mcpAddress)
			})
		},
	}
	mcpCmd.Flags().StringVarP(&mcpTransport, "transport", "t", "stdio", "transport (stdio, http, sse)")
	mcpCmd.Flags().StringVarP(&mcpAddress, "address", "a", "", "server address (http/sse transports)")

	rootCmd.AddCommand(syncCmd, searchCmd, statusCmd, clearCacheCmd, serveCmd, mcpCmd, newMCPClientCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// newMCPClientCommand mirrors the teacher's mcp-client command tree, scoped
// down to the two tools this server exposes (rci_search, rci_status): it
// launches the rci executable found on PATH with serve-mcp over stdio and talks to it as an
// MCP client, rather than calling the service in-process.
func newMCPClientCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-client",
		Short: "MCP client commands",
		Long:  "Connect to and call tools on an rci serve-mcp server",
	}
	cmd.AddCommand(newMCPCallCommand(), newMCPListToolsCommand())
	return cmd
}

func newMCPCallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool_name> [args...]",
		Short: "Call a specific MCP tool",
		Long: `Call a specific MCP tool with arguments, given as key=value pairs.

Example:
  rci mcp-client call rci_search query="dialog" top_k=5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolName := args[0]
			toolArgs := make(map[string]any)
			for _, arg := range args[1:] {
				parts := strings.SplitN(arg, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("invalid argument format: %s (expected key=value)", arg)
				}
				key, value := parts[0], parts[1]
				switch {
				case isInt(value):
					n, _ := strconv.Atoi(value)
					toolArgs[key] = n
				case isBool(value):
					b, _ := strconv.ParseBool(value)
					toolArgs[key] = b
				default:
					toolArgs[key] = value
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			cli, err := appmcp.NewStdioClient(ctx)
			if err != nil {
				return fmt.Errorf("create MCP client failed: %w", err)
			}
			defer cli.Close() //nolint:errcheck

			result, err := cli.Call(ctx, toolName, toolArgs)
			if err != nil {
				return fmt.Errorf("call tool failed: %w", err)
			}
			output, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("format result failed: %w", err)
			}
			fmt.Println(string(output))
			return nil
		},
	}
}

func newMCPListToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-tools",
		Short: "List available MCP tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			cli, err := appmcp.NewStdioClient(ctx)
			if err != nil {
				return fmt.Errorf("create MCP client failed: %w", err)
			}
			defer cli.Close() //nolint:errcheck

			result, err := cli.ListTools(ctx)
			if err != nil {
				return fmt.Errorf("failed to list tools: %w", err)
			}
			if len(result.Tools) == 0 {
				fmt.Println("No tools available")
				return nil
			}
			fmt.Printf("Available MCP tools (%d):\n\n", len(result.Tools))
			for i, tool := range result.Tools {
				fmt.Printf("%d. %s\n", i+1, tool.Name)
				if tool.Description != "" {
					fmt.Printf("   Description: %s\n", tool.Description)
				}
			}
			return nil
		},
	}
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func isBool(s string) bool {
	_, err := strconv.ParseBool(s)
	return err == nil
}
