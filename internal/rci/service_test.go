package rci_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

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

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	mustMkdirAll(t, filepath.Dir(path))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeButton(t *testing.T, root, pkgName string) {
	mustWriteFile(t, filepath.Join(root, "package.json"),
		`{"name":"`+pkgName+`","version":"1.0.0"}`)
	mustWriteFile(t, filepath.Join(root, "components/button/index.en-US.md"), `---
title: Button

---

A clickable button used to trigger an action.

## API

| Property | Description | Type |
| --- | --- | --- |
| type | button style | string |
`)
	mustWriteFile(t, filepath.Join(root, "components/button/demo/basic.tsx"), `import { Button } from '../index';

export default () => <Button>Click me</Button>;
`)
	mustWriteFile(t, filepath.Join(root, "components/button/index.ts"), `export { default } from './Button';
`)
}

func newService(t *testing.T, cacheEnabled bool) (*rci.Service, *configfx.Config) {
	t.Helper()
	store := filevec.New(t.TempDir())
	require.NoError(t, store.Initialize())
	cfg := &configfx.Config{RAGConfig: models.RAGConfig{
		Dimension:   32,
		VectorStore: models.VectorStoreConfig{Type: "file"},
		Embeddings:  models.EmbeddingsConfig{Model: "local-test"},
		Cache:       models.CacheConfig{Enabled: cacheEnabled, MaxSize: 100, TTLSeconds: 300},
	}}
	c := cache.New(cfg.Cache, 0.92)
	svc := rci.New(docparser.New(), embeddings.NewLocal(cfg.Dimension), store, c, cfg)
	return svc, cfg
}

func TestService_EmptyTree(t *testing.T) {
	svc, _ := newService(t, true)
	root := t.TempDir()
	mustMkdirAll(t, filepath.Join(root, "components"))

	syncResp, err := svc.Sync(context.Background(), models.SyncRequest{SourcePath: root})
	require.NoError(t, err)
	assert.Equal(t, models.SyncSuccess, syncResp.Status)
	assert.Equal(t, 0, syncResp.ProcessedCount)
	assert.Equal(t, 0, syncResp.SuccessCount)
	assert.Equal(t, 0, syncResp.FailedCount)
	assert.Empty(t, syncResp.Errors)

	searchResp, err := svc.Search(context.Background(), models.SearchRequest{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, searchResp.Components)
	assert.Empty(t, searchResp.Scores)
	assert.Equal(t, float32(0), searchResp.Confidence)
	assert.Equal(t, []string{
		"Try using more general terms in your search",
		"Check if the component name is correct",
	}, searchResp.Suggestions)
}

func TestService_SyncThenSearchSingleComponent(t *testing.T) {
	svc, _ := newService(t, true)
	root := t.TempDir()
	writeButton(t, root, "@private/basic-components")

	syncResp, err := svc.Sync(context.Background(), models.SyncRequest{SourcePath: root})
	require.NoError(t, err)
	assert.Equal(t, 1, syncResp.ProcessedCount)
	assert.Equal(t, 1, syncResp.SuccessCount)

	searchResp, err := svc.Search(context.Background(), models.SearchRequest{
		Query: "button", TopK: 3, Threshold: 0.1,
	})
	require.NoError(t, err)
	require.Len(t, searchResp.Components, 1)
	assert.Equal(t, "Button", searchResp.Components[0].ComponentName)
	assert.Equal(t, "@private/basic-components", searchResp.Components[0].PackageName)
	assert.Subset(t, searchResp.Components[0].Tags, []string{"form", "action", "ui", "interactive", "react", "component"})
}

func TestService_FilterByPackageName(t *testing.T) {
	svc, _ := newService(t, false)

	rootA := t.TempDir()
	writeButton(t, rootA, "@private/basic-components")
	rootB := t.TempDir()
	writeButton(t, rootB, "@private/other-components")

	_, err := svc.Sync(context.Background(), models.SyncRequest{SourcePath: rootA})
	require.NoError(t, err)
	_, err = svc.Sync(context.Background(), models.SyncRequest{SourcePath: rootB})
	require.NoError(t, err)

	resp, err := svc.Search(context.Background(), models.SearchRequest{
		Query: "button", Threshold: 0.1,
		Filters: models.Filters{PackageName: "@private/basic-components"},
	})
	require.NoError(t, err)
	for _, c := range resp.Components {
		assert.Equal(t, "@private/basic-components", c.PackageName)
	}
}

func TestService_CacheHitReturnsSameResult(t *testing.T) {
	svc, _ := newService(t, true)
	root := t.TempDir()
	writeButton(t, root, "@private/basic-components")
	_, err := svc.Sync(context.Background(), models.SyncRequest{SourcePath: root})
	require.NoError(t, err)

	req := models.SearchRequest{Query: "button", Threshold: 0.1}
	first, err := svc.Search(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Components, second.Components)
	assert.Equal(t, first.Scores, second.Scores)
}

func TestService_ExactCacheHitOnNormalizedQuery(t *testing.T) {
	svc, _ := newService(t, true)
	root := t.TempDir()
	writeButton(t, root, "@private/basic-components")
	_, err := svc.Sync(context.Background(), models.SyncRequest{SourcePath: root})
	require.NoError(t, err)

	first, err := svc.Search(context.Background(), models.SearchRequest{Query: "button", Threshold: 0.1})
	require.NoError(t, err)

	second, err := svc.Search(context.Background(), models.SearchRequest{Query: "  BUTTON  ", Threshold: 0.1})
	require.NoError(t, err)
	assert.Equal(t, first.Components, second.Components)
}

func TestService_PartialSyncOnBrokenComponent(t *testing.T) {
	svc, _ := newService(t, false)
	root := t.TempDir()
	writeButton(t, root, "pkg")
	mustMkdirAll(t, filepath.Join(root, "components", "broken-thing"))

	resp, err := svc.Sync(context.Background(), models.SyncRequest{SourcePath: root})
	require.NoError(t, err)
	assert.Equal(t, models.SyncPartial, resp.Status)
	assert.Equal(t, 2, resp.ProcessedCount)
	assert.Equal(t, 1, resp.SuccessCount)
	assert.Equal(t, 1, resp.FailedCount)
	require.Len(t, resp.Errors, 1)
}

func TestService_StatusReflectsStore(t *testing.T) {
	svc, cfg := newService(t, true)
	root := t.TempDir()
	writeButton(t, root, "pkg")
	_, err := svc.Sync(context.Background(), models.SyncRequest{SourcePath: root})
	require.NoError(t, err)

	status := svc.Status()
	assert.True(t, status.Available)
	assert.Equal(t, 1, status.Stats.TotalComponents)
	assert.Equal(t, cfg.Embeddings.Model, status.Config.EmbeddingModel)
	assert.Equal(t, cfg.Dimension, status.Config.Dimension)
	assert.True(t, status.Config.CacheEnabled)
}

func TestService_ClearCache(t *testing.T) {
	svc, _ := newService(t, true)
	root := t.TempDir()
	writeButton(t, root, "pkg")
	_, err := svc.Sync(context.Background(), models.SyncRequest{SourcePath: root})
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), models.SearchRequest{Query: "button", Threshold: 0.1})
	require.NoError(t, err)

	svc.ClearCache()

	resp, err := svc.Search(context.Background(), models.SearchRequest{Query: "button", Threshold: 0.1})
	require.NoError(t, err)
	require.Len(t, resp.Components, 1)
}
