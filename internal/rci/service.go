// Package rci implements the orchestrator that wires Parser, Embedder,
// VectorStore, and SmartCache into Sync/Search/Status/ClearCache (spec §4.5).
package rci

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rcihq/rci/internal/cache"
	"github.com/rcihq/rci/internal/config/configfx"
	"github.com/rcihq/rci/internal/constants"
	"github.com/rcihq/rci/internal/embeddings"
	"github.com/rcihq/rci/internal/models"
	"github.com/rcihq/rci/internal/parser"
	"github.com/rcihq/rci/internal/rcierr"
	"github.com/rcihq/rci/internal/storage"
	"github.com/rcihq/rci/internal/util"
)

// Service is the single long-lived owner of a Parser, Embedder, VectorStore,
// and SmartCache, created once at process startup (spec §2 ownership
// summary) and shared by the HTTP, MCP, and CLI transports.
type Service struct {
	parser   parser.Parser
	embedder embeddings.Embedder
	store    storage.VectorStore
	cache    *cache.SmartCache
	cfg      *configfx.Config
}

// New builds a Service from its four collaborators.
func New(p parser.Parser, e embeddings.Embedder, store storage.VectorStore, c *cache.SmartCache, cfg *configfx.Config) *Service {
	return &Service{parser: p, embedder: e, store: store, cache: c, cfg: cfg}
}

// Sync walks req.SourcePath, embeds every component's facets, and writes
// them to the VectorStore in batches (spec §4.5.1).
func (s *Service) Sync(ctx context.Context, req models.SyncRequest) (models.SyncResponse, error) {
	start := time.Now()

	packageName, err := readPackageName(req.SourcePath)
	if err != nil {
		return models.SyncResponse{}, rcierr.New(rcierr.InitError, err)
	}

	parsed, err := s.parser.ParseAllComponents(req.SourcePath, packageName)
	if err != nil {
		return models.SyncResponse{}, rcierr.New(rcierr.ComponentParseError, err)
	}
	processedCount := len(parsed)

	if len(req.Packages) > 0 {
		parsed = filterByPackages(parsed, req.Packages)
	}

	if req.ForceReindex {
		if err := s.store.Clear(); err != nil {
			return models.SyncResponse{}, rcierr.New(rcierr.VectorStoreError, err)
		}
	}

	var errs []string
	successCount, failedCount, completed := 0, 0, 0
	cancelled := false

	for batchStart := 0; batchStart < len(parsed); batchStart += constants.SyncBatchSize {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Sprintf("cancelled after %d components", completed))
			cancelled = true
			break
		}

		end := batchStart + constants.SyncBatchSize
		if end > len(parsed) {
			end = len(parsed)
		}
		batch := parsed[batchStart:end]

		results := make([]componentResult, len(batch))
		var wg sync.WaitGroup
		for i, pc := range batch {
			wg.Add(1)
			go func(i int, pc models.ParsedComponent) {
				defer wg.Done()
				results[i] = s.processComponent(pc)
			}(i, pc)
		}
		wg.Wait()

		var batchVectors []models.VectorDocument
		for _, r := range results {
			completed++
			if r.ok {
				successCount++
				batchVectors = append(batchVectors, r.vectors...)
			} else {
				failedCount++
				errs = append(errs, r.errMsg)
			}
		}

		if len(batchVectors) > 0 {
			if err := s.store.AddBatch(batchVectors); err != nil {
				return models.SyncResponse{}, rcierr.New(rcierr.VectorStoreError, err)
			}
		}
	}

	if s.cache != nil {
		s.cache.Clear()
	}

	var status models.SyncStatus
	switch {
	case cancelled:
		status = models.SyncPartial
	case len(errs) == 0:
		status = models.SyncSuccess
	case successCount > 0:
		status = models.SyncPartial
	default:
		status = models.SyncFailed
	}

	return models.SyncResponse{
		Status:         status,
		ProcessedCount: processedCount,
		SuccessCount:   successCount,
		FailedCount:    failedCount,
		Errors:         errs,
		DurationMS:     time.Since(start).Milliseconds(),
	}, nil
}

type componentResult struct {
	ok      bool
	errMsg  string
	vectors []models.VectorDocument
}

func (s *Service) processComponent(pc models.ParsedComponent) componentResult {
	if pc.Status == models.ParseError {
		return componentResult{
			ok:     false,
			errMsg: fmt.Sprintf("%s/%s: %s", pc.Info.PackageName, pc.Info.ComponentName, pc.Error),
		}
	}
	vectors, err := s.createComponentVectors(pc.Info)
	if err != nil {
		return componentResult{
			ok:     false,
			errMsg: fmt.Sprintf("%s/%s: %v", pc.Info.PackageName, pc.Info.ComponentName, err),
		}
	}
	return componentResult{ok: true, vectors: vectors}
}

type facetText struct {
	text string
	typ  models.FacetType
}

// createComponentVectors implements spec §4.5.3: up to 1+1+min(3,|examples|)
// texts, embedded in a single batched call.
func (s *Service) createComponentVectors(doc models.ComponentDoc) ([]models.VectorDocument, error) {
	var facets []facetText
	if doc.Description != "" {
		facets = append(facets, facetText{doc.Description, models.FacetDescription})
	}
	if doc.API != "" && doc.API != "API documentation not available" {
		facets = append(facets, facetText{doc.API, models.FacetAPI})
	}
	exampleCount := 0
	for _, ex := range doc.Examples {
		if ex == "" {
			continue
		}
		if exampleCount >= 3 {
			break
		}
		facets = append(facets, facetText{ex, models.FacetExample})
		exampleCount++
	}
	if len(facets) == 0 {
		return nil, nil
	}

	texts := make([]string, len(facets))
	for i, f := range facets {
		texts[i] = f.text
	}
	vectors, err := s.embedder.Embed(texts)
	if err != nil {
		return nil, err
	}

	out := make([]models.VectorDocument, len(facets))
	for i, f := range facets {
		out[i] = models.VectorDocument{
			ID:        util.GenerateDocID(doc.ComponentName, string(f.typ), f.text),
			Content:   f.text,
			Embedding: vectors[i],
			Metadata: models.DocMetadata{
				ComponentName: doc.ComponentName,
				PackageName:   doc.PackageName,
				Type:          f.typ,
				Tags:          doc.Tags,
				Version:       doc.Version,
			},
		}
	}
	return out, nil
}

// Search implements spec §4.5.2.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) (models.SearchResponse, error) {
	start := time.Now()

	topK := req.TopK
	if topK <= 0 {
		topK = constants.DefaultTopK
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = constants.DefaultThreshold
	}

	if ctx.Err() != nil {
		return models.SearchResponse{}, rcierr.New(rcierr.Cancelled, ctx.Err())
	}

	qv, err := s.embedOne(req.Query)
	if err != nil {
		if _, ok := rcierr.CodeOf(err); ok {
			return models.SearchResponse{}, err
		}
		return models.SearchResponse{}, rcierr.New(rcierr.EmbeddingError, err)
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(req.Query, qv, req.Filters); ok {
			cached.DurationMS = time.Since(start).Milliseconds()
			return cached, nil
		}
	}

	if ctx.Err() != nil {
		return models.SearchResponse{}, rcierr.New(rcierr.Cancelled, ctx.Err())
	}

	internalK := topK * 20
	if internalK > constants.MaxInternalTopKCap {
		internalK = constants.MaxInternalTopKCap
	}
	if internalK < topK {
		internalK = topK
	}

	var hits []models.ScoredDocument
	if req.Filters.IsZero() {
		hits, err = s.store.TopK(qv, internalK, threshold)
	} else {
		hits, err = s.store.TopKFiltered(qv, req.Filters, internalK, threshold)
	}
	if err != nil {
		return models.SearchResponse{}, rcierr.New(rcierr.VectorStoreError, err)
	}

	groups := groupAndScore(hits, req.Query)
	sortGroups(groups)
	if len(groups) > topK {
		groups = groups[:topK]
	}

	resp := buildSearchResponse(groups)
	resp.DurationMS = time.Since(start).Milliseconds()

	if s.cache != nil {
		s.cache.Set(req.Query, resp, qv, req.Filters)
	}
	return resp, nil
}

func (s *Service) embedOne(text string) ([]float32, error) {
	vectors, err := s.embedder.Embed([]string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors for query")
	}
	return vectors[0], nil
}

type groupKey struct {
	packageName   string
	componentName string
}

type componentGroup struct {
	key    groupKey
	hits   []models.ScoredDocument
	scores []float64
	total  float64
}

// groupAndScore implements spec §4.5.2 step 4: group hits by component,
// weight each hit by facet type and query-substring match, clamp to 1.0.
func groupAndScore(hits []models.ScoredDocument, query string) []*componentGroup {
	lowerQuery := strings.ToLower(query)
	groups := make(map[groupKey]*componentGroup)
	var order []groupKey

	for _, h := range hits {
		key := groupKey{h.Document.Metadata.PackageName, h.Document.Metadata.ComponentName}
		g, ok := groups[key]
		if !ok {
			g = &componentGroup{key: key}
			groups[key] = g
			order = append(order, key)
		}

		score := float64(h.Score)
		switch h.Document.Metadata.Type {
		case models.FacetDescription:
			score *= 1.2
		case models.FacetAPI:
			score *= 1.0
		case models.FacetExample:
			score *= 0.8
		}
		if strings.Contains(strings.ToLower(h.Document.Content), lowerQuery) {
			score *= 1.3
		}
		if score > 1.0 {
			score = 1.0
		}

		g.hits = append(g.hits, h)
		g.scores = append(g.scores, score)
	}

	result := make([]*componentGroup, len(order))
	for i, key := range order {
		g := groups[key]
		g.total = maxOf(g.scores)*0.7 + meanOf(g.scores)*0.3
		result[i] = g
	}
	return result
}

func sortGroups(groups []*componentGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].total != groups[j].total {
			return groups[i].total > groups[j].total
		}
		if groups[i].key.packageName != groups[j].key.packageName {
			return groups[i].key.packageName < groups[j].key.packageName
		}
		return groups[i].key.componentName < groups[j].key.componentName
	})
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// buildSearchResponse reconstructs a minimal ComponentDoc per group (spec
// §4.5.2 step 6) and computes confidence/suggestions (steps 7-8).
func buildSearchResponse(groups []*componentGroup) models.SearchResponse {
	resp := models.SearchResponse{
		Components: make([]models.ComponentDoc, 0, len(groups)),
		Scores:     make([]float32, 0, len(groups)),
	}
	for _, g := range groups {
		resp.Components = append(resp.Components, buildComponentDoc(g))
		resp.Scores = append(resp.Scores, float32(g.total))
	}

	switch len(groups) {
	case 0:
		resp.Confidence = 0
		resp.Suggestions = []string{
			"Try using more general terms in your search",
			"Check if the component name is correct",
		}
	case 1:
		resp.Confidence = float32(groups[0].total)
		resp.Suggestions = []string{fmt.Sprintf("Found perfect match: %s", groups[0].key.componentName)}
	default:
		var sum, max float64
		for _, g := range groups {
			sum += g.total
			if g.total > max {
				max = g.total
			}
		}
		mean := sum / float64(len(groups))
		resp.Confidence = float32(mean*0.6 + max*0.4)
		resp.Suggestions = []string{
			fmt.Sprintf("Found %d relevant components", len(groups)),
			fmt.Sprintf("Top match: %s", groups[0].key.componentName),
		}
	}
	return resp
}

func buildComponentDoc(g *componentGroup) models.ComponentDoc {
	doc := models.ComponentDoc{
		PackageName:   g.key.packageName,
		ComponentName: g.key.componentName,
	}
	if len(g.hits) > 0 {
		doc.Tags = g.hits[0].Document.Metadata.Tags
		doc.Version = g.hits[0].Document.Metadata.Version
	}
	for _, h := range g.hits {
		if h.Document.Metadata.Type == models.FacetDescription {
			doc.Description = h.Document.Content
			break
		}
	}
	return doc
}

// Status implements spec §4.5.4.
func (s *Service) Status() models.Status {
	stats, err := s.store.Stats()
	return models.Status{
		Available: err == nil,
		Stats:     stats,
		Config: models.StatusConfig{
			VectorStore:    s.cfg.VectorStore.Type,
			EmbeddingModel: s.cfg.Embeddings.Model,
			Dimension:      s.cfg.Dimension,
			CacheEnabled:   s.cfg.Cache.Enabled,
		},
		CheckedAt: time.Now(),
	}
}

// ClearCache implements spec §4.5.4.
func (s *Service) ClearCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

func filterByPackages(parsed []models.ParsedComponent, packages []string) []models.ParsedComponent {
	allowed := make(map[string]bool, len(packages))
	for _, p := range packages {
		allowed[p] = true
	}
	var out []models.ParsedComponent
	for _, pc := range parsed {
		if allowed[pc.Info.PackageName] {
			out = append(out, pc)
		}
	}
	return out
}

// readPackageName resolves the opaque namespace tag passed to the parser
// from the source tree's package.json "name" field, falling back to
// "unknown" when absent — the parser's contract takes packageName as an
// input, it does not derive it itself.
func readPackageName(sourceRoot string) (string, error) {
	data, err := os.ReadFile(filepath.Join(sourceRoot, "package.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return "unknown", nil
		}
		return "", fmt.Errorf("read package.json: %w", err)
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", fmt.Errorf("parse package.json: %w", err)
	}
	if pkg.Name == "" {
		return "unknown", nil
	}
	return pkg.Name, nil
}
