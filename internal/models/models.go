// Package models defines the data shapes shared by the parser, embedder,
// vector store, cache, and service layers.
package models

import "time"

// FacetType identifies which part of a ComponentDoc a VectorDocument came from.
type FacetType string

const (
	FacetDescription FacetType = "description"
	FacetAPI         FacetType = "api"
	FacetExample     FacetType = "example"
	FacetUsage       FacetType = "usage"
)

// ComponentDoc is the canonical per-component record produced by the parser
// and reconstructed (in minimal form) from search hits.
type ComponentDoc struct {
	PackageName   string    `json:"packageName"`
	ComponentName string    `json:"componentName"`
	Description   string    `json:"description"`
	API           string    `json:"api"`
	Examples      []string  `json:"examples"`
	Tags          []string  `json:"tags"`
	Version       string    `json:"version"`
	Dependencies  []string  `json:"dependencies"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasContent reports whether the component carries enough text to embed.
func (c ComponentDoc) HasContent() bool {
	if c.Description != "" {
		return true
	}
	if c.API != "" && c.API != "API documentation not available" {
		return true
	}
	for _, ex := range c.Examples {
		if ex != "" {
			return true
		}
	}
	return false
}

// ParseStatus is the outcome of parsing a single component directory.
type ParseStatus string

const (
	ParseSuccess ParseStatus = "success"
	ParseError   ParseStatus = "error"
)

// ParsedComponent wraps a ComponentDoc with its parse outcome.
type ParsedComponent struct {
	Info     ComponentDoc
	FilePath string
	Status   ParseStatus
	Error    string
}

// DocMetadata is the metadata block carried by every VectorDocument.
type DocMetadata struct {
	ComponentName string    `json:"componentName"`
	PackageName   string    `json:"packageName"`
	Type          FacetType `json:"type"`
	Tags          []string  `json:"tags"`
	Version       string    `json:"version"`
}

// VectorDocument is the storage record persisted by the VectorStore.
type VectorDocument struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Embedding []float32   `json:"embedding"`
	Metadata  DocMetadata `json:"metadata"`
}

// Filters narrow a TopK query by metadata.
type Filters struct {
	PackageName   string   `json:"packageName,omitempty"`
	ComponentName string   `json:"componentName,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Version       string   `json:"version,omitempty"`
	Type          string   `json:"type,omitempty"`
}

// IsZero reports whether no filter field was set.
func (f Filters) IsZero() bool {
	return f.PackageName == "" && f.ComponentName == "" && len(f.Tags) == 0 &&
		f.Version == "" && f.Type == ""
}

// ScoredDocument pairs a stored document with its similarity against a query.
type ScoredDocument struct {
	Document VectorDocument
	Score    float32
}

// PackageStats is a package name -> document count entry within Stats.
type PackageStats map[string]int

// Stats describes the current shape of the vector store.
type Stats struct {
	TotalComponents int          `json:"totalComponents"`
	TotalDocuments  int          `json:"totalDocuments"`
	IndexSize       int64        `json:"indexSize"`
	LastUpdated     time.Time    `json:"lastUpdated"`
	PackageStats    PackageStats `json:"packageStats"`
}

// SyncRequest drives RCIService.Sync.
type SyncRequest struct {
	SourcePath   string   `json:"sourcePath"`
	Packages     []string `json:"packages,omitempty"`
	ForceReindex bool     `json:"forceReindex,omitempty"`
}

// SyncStatus is the terminal state of a Sync call.
type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncPartial SyncStatus = "partial"
	SyncFailed  SyncStatus = "failed"
)

// SyncResponse is the result of RCIService.Sync.
type SyncResponse struct {
	Status         SyncStatus `json:"status"`
	ProcessedCount int        `json:"processedCount"`
	SuccessCount   int        `json:"successCount"`
	FailedCount    int        `json:"failedCount"`
	Errors         []string   `json:"errors"`
	DurationMS     int64      `json:"duration"`
}

// SearchRequest drives RCIService.Search.
type SearchRequest struct {
	Query     string  `json:"query"`
	TopK      int     `json:"topK,omitempty"`
	Threshold float32 `json:"threshold,omitempty"`
	Filters   Filters `json:"filters,omitempty"`
}

// SearchResponse is the result of RCIService.Search.
type SearchResponse struct {
	Components  []ComponentDoc `json:"components"`
	Scores      []float32      `json:"scores"`
	Confidence  float32        `json:"confidence"`
	Suggestions []string       `json:"suggestions"`
	DurationMS  int64          `json:"duration"`
}

// CacheConfig configures the smart cache.
type CacheConfig struct {
	Enabled    bool `json:"enabled"`
	TTLSeconds int  `json:"ttlSeconds"`
	MaxSize    int  `json:"maxSize"`
}

// EmbeddingsConfig configures the remote embedding provider.
type EmbeddingsConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"apiKey"`
	BaseURL  string `json:"baseURL,omitempty"`
}

// VectorStoreConfig configures the backing store.
type VectorStoreConfig struct {
	Type string `json:"type"` // "file" or "sqlite"
	Path string `json:"path"`
}

// RAGConfig is the top-level configuration document (spec §6.5).
type RAGConfig struct {
	VectorStore VectorStoreConfig `json:"vectorStore"`
	Embeddings  EmbeddingsConfig  `json:"embeddings"`
	Dimension   int               `json:"dimension"`
	Cache       CacheConfig       `json:"cache"`
}

// StatusConfig is the config subset echoed by RCIService.Status.
type StatusConfig struct {
	VectorStore    string `json:"vectorStore"`
	EmbeddingModel string `json:"embeddingModel"`
	Dimension      int    `json:"dimension"`
	CacheEnabled   bool   `json:"cache"`
}

// Status is the result of RCIService.Status.
type Status struct {
	Available bool         `json:"available"`
	Stats     Stats        `json:"stats"`
	Config    StatusConfig `json:"config"`
	CheckedAt time.Time    `json:"checkedAt"`
}

// CacheEntry is one slot in the SmartCache.
type CacheEntry struct {
	Response     SearchResponse
	Embedding    []float32
	CreatedAt    time.Time
	LastAccessed time.Time
	HitCount     int
}

// CacheStats reports cumulative cache telemetry.
type CacheStats struct {
	Size            int       `json:"size"`
	Hits            int64     `json:"hits"`
	Misses          int64     `json:"misses"`
	HitRate         float64   `json:"hitRate"`
	AvgResponseTime float64   `json:"avgResponseTime"`
	OldestEntry     time.Time `json:"oldestEntry"`
	TotalQueries    int64     `json:"totalQueries"`
}
