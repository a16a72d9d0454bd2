package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcihq/rci/internal/cache"
	"github.com/rcihq/rci/internal/config/configfx"
	"github.com/rcihq/rci/internal/embeddings"
	"github.com/rcihq/rci/internal/models"
	"github.com/rcihq/rci/internal/parser/docparser"
	"github.com/rcihq/rci/internal/rci"
	"github.com/rcihq/rci/internal/storage/filevec"
)

func newTestService(t *testing.T) *rci.Service {
	t.Helper()
	store := filevec.New(t.TempDir())
	require.NoError(t, store.Initialize())
	cfg := &configfx.Config{RAGConfig: models.RAGConfig{
		Dimension:  32,
		Embeddings: models.EmbeddingsConfig{Model: "local-test"},
		Cache:      models.CacheConfig{Enabled: true, MaxSize: 100, TTLSeconds: 300},
	}}
	c := cache.New(cfg.Cache, 0.92)
	return rci.New(docparser.New(), embeddings.NewLocal(cfg.Dimension), store, c, cfg)
}

func writeDoc(t *testing.T, root, pkgName string) {
	t.Helper()
	mustFile := func(p, content string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	mustFile(filepath.Join(root, "package.json"), `{"name":"`+pkgName+`","version":"1.0.0"}`)
	mustFile(filepath.Join(root, "components/button/index.en-US.md"), `---
title: Button

---

A clickable button used to trigger an action.
`)
	mustFile(filepath.Join(root, "components/button/demo/basic.tsx"), `import { Button } from '../index';
`)
	mustFile(filepath.Join(root, "components/button/index.ts"), `export { default } from './Button';
`)
}

func TestNew(t *testing.T) {
	srv := New(newTestService(t))
	assert.NotNil(t, srv.MCPServer())
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		toolFunc func() mcp.Tool
		toolName string
	}{
		{"rci_search", newSearchTool, "rci_search"},
		{"rci_status", newStatusTool, "rci_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := tt.toolFunc()
			assert.Equal(t, tt.toolName, tool.Name)
			assert.NotEmpty(t, tool.Description)
		})
	}
}

func TestSearchTool(t *testing.T) {
	tool := newSearchTool()
	assert.Equal(t, "rci_search", tool.Name)
	assert.Contains(t, tool.InputSchema.Properties, "query")
	queryProp := tool.InputSchema.Properties["query"].(map[string]interface{})
	assert.Equal(t, "string", queryProp["type"])
}

func TestHandleSearchError(t *testing.T) {
	ctx := context.Background()
	srv := New(newTestService(t))

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "rci_search",
			Arguments: map[string]any{},
		},
	}

	result, err := srv.handleSearch(ctx, req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.NotEmpty(t, result.Content)
}

func TestHandleSearch(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	root := t.TempDir()
	writeDoc(t, root, "pkg")
	_, err := service.Sync(ctx, models.SyncRequest{SourcePath: root})
	require.NoError(t, err)

	srv := New(service)
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "rci_search",
			Arguments: map[string]any{
				"query": "button",
			},
		},
	}

	result, err := srv.handleSearch(ctx, req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.NotNil(t, result.StructuredContent)
}

func TestHandleStatus(t *testing.T) {
	ctx := context.Background()
	srv := New(newTestService(t))

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "rci_status",
			Arguments: map[string]any{},
		},
	}

	result, err := srv.handleStatus(ctx, req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	status, ok := result.StructuredContent.(models.Status)
	require.True(t, ok)
	assert.True(t, status.Available)
}
