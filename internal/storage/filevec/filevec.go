// Package filevec is the reference VectorStore backing: three JSON files
// under a base path (spec §4.3, §6.4), written via temp-file-then-rename
// for crash safety, guarded by a single writer/many-readers lock.
package filevec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rcihq/rci/internal/models"
	"github.com/rcihq/rci/internal/storage"
)

const schemaVersion = "1.0.0"

type vectorEntry struct {
	ID        string            `json:"id"`
	Embedding []float32         `json:"embedding"`
	Metadata  models.DocMetadata `json:"metadata"`
}

type metaFile struct {
	TotalDocuments int       `json:"totalDocuments"`
	IndexSize      int64     `json:"indexSize"`
	LastUpdated    time.Time `json:"lastUpdated"`
	Version        string    `json:"version"`
}

// Store is a JSON-file-backed VectorStore rooted at basePath.
type Store struct {
	basePath string

	mu        sync.RWMutex
	documents []models.VectorDocument
	index     []vectorEntry
	meta      metaFile
}

// New creates a Store rooted at basePath. Call Initialize before use.
func New(basePath string) *Store {
	return &Store{basePath: basePath}
}

func (s *Store) documentsPath() string { return filepath.Join(s.basePath, "documents.json") }
func (s *Store) vectorsPath() string   { return filepath.Join(s.basePath, "vectors.json") }
func (s *Store) metaPath() string      { return filepath.Join(s.basePath, "metadata.json") }

func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return fmt.Errorf("create base path %s: %w", s.basePath, err)
	}

	if err := loadJSONIfExists(s.documentsPath(), &s.documents); err != nil {
		return err
	}
	if err := loadJSONIfExists(s.vectorsPath(), &s.index); err != nil {
		return err
	}
	if len(s.index) == 0 {
		for _, d := range s.documents {
			s.index = append(s.index, vectorEntry{ID: d.ID, Embedding: d.Embedding, Metadata: d.Metadata})
		}
	}
	var meta metaFile
	ok, err := loadJSONFileIfExists(s.metaPath(), &meta)
	if err != nil {
		return err
	}
	if ok {
		s.meta = meta
	} else {
		s.meta = metaFile{TotalDocuments: 0, LastUpdated: time.Now(), Version: schemaVersion}
	}
	return s.persistLocked()
}

func loadJSONIfExists[T any](path string, out *[]T) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		*out = []T{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return json.Unmarshal(data, out)
}

func loadJSONFileIfExists(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// AddBatch implements storage.VectorStore.
func (s *Store) AddBatch(docs []models.VectorDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool, len(s.documents))
	for _, d := range s.documents {
		existing[d.ID] = true
	}

	for _, d := range docs {
		if existing[d.ID] {
			continue
		}
		existing[d.ID] = true
		s.documents = append(s.documents, d)
		s.index = append(s.index, vectorEntry{ID: d.ID, Embedding: d.Embedding, Metadata: d.Metadata})
	}

	s.meta.TotalDocuments = len(s.documents)
	s.meta.LastUpdated = time.Now()
	return s.persistLocked()
}

// TopK implements storage.VectorStore.
func (s *Store) TopK(qv []float32, k int, threshold float32) ([]models.ScoredDocument, error) {
	return s.TopKFiltered(qv, models.Filters{}, k, threshold)
}

// TopKFiltered implements storage.VectorStore.
func (s *Store) TopKFiltered(qv []float32, filters models.Filters, k int, threshold float32) ([]models.ScoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[string]models.VectorDocument, len(s.documents))
	for _, d := range s.documents {
		byID[d.ID] = d
	}

	var scored []models.ScoredDocument
	for _, e := range s.index {
		if len(e.Embedding) != len(qv) {
			return nil, fmt.Errorf("vector dimension mismatch: store=%d query=%d", len(e.Embedding), len(qv))
		}
		if !matchesFilters(e.Metadata, filters) {
			continue
		}
		score := storage.Cosine(e.Embedding, qv)
		if score < threshold {
			continue
		}
		doc, ok := byID[e.ID]
		if !ok {
			continue
		}
		scored = append(scored, models.ScoredDocument{Document: doc, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

func matchesFilters(md models.DocMetadata, f models.Filters) bool {
	if f.IsZero() {
		return true
	}
	if f.PackageName != "" && f.PackageName != md.PackageName {
		return false
	}
	if f.ComponentName != "" && f.ComponentName != md.ComponentName {
		return false
	}
	if f.Version != "" && f.Version != md.Version {
		return false
	}
	if f.Type != "" && f.Type != string(md.Type) {
		return false
	}
	if len(f.Tags) > 0 {
		found := false
		for _, want := range f.Tags {
			for _, have := range md.Tags {
				if want == have {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Delete implements storage.VectorStore.
func (s *Store) Delete(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}

	docs := s.documents[:0:0]
	for _, d := range s.documents {
		if !remove[d.ID] {
			docs = append(docs, d)
		}
	}
	idx := s.index[:0:0]
	for _, e := range s.index {
		if !remove[e.ID] {
			idx = append(idx, e)
		}
	}
	s.documents = docs
	s.index = idx
	s.meta.TotalDocuments = len(s.documents)
	s.meta.LastUpdated = time.Now()
	return s.persistLocked()
}

// Clear implements storage.VectorStore.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = nil
	s.index = nil
	s.meta = metaFile{TotalDocuments: 0, LastUpdated: time.Now(), Version: schemaVersion}
	return s.persistLocked()
}

// Stats implements storage.VectorStore.
func (s *Store) Stats() (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	components := make(map[string]bool)
	packages := make(models.PackageStats)
	for _, d := range s.documents {
		components[d.Metadata.PackageName+"/"+d.Metadata.ComponentName] = true
		packages[d.Metadata.PackageName]++
	}

	return models.Stats{
		TotalComponents: len(components),
		TotalDocuments:  len(s.documents),
		IndexSize:       s.meta.IndexSize,
		LastUpdated:     s.meta.LastUpdated,
		PackageStats:    packages,
	}, nil
}

// persistLocked writes documents.json, vectors.json, and metadata.json,
// each via write-to-temp-then-rename, so a crash mid-write leaves the
// prior file intact (spec §4.3 durability). Caller must hold s.mu.
func (s *Store) persistLocked() error {
	if err := writeJSONAtomic(s.documentsPath(), s.documents); err != nil {
		return err
	}
	if err := writeJSONAtomic(s.vectorsPath(), s.index); err != nil {
		return err
	}

	size, err := combinedSize(s.documentsPath(), s.vectorsPath())
	if err != nil {
		return err
	}
	s.meta.IndexSize = size
	if s.meta.Version == "" {
		s.meta.Version = schemaVersion
	}
	return writeJSONAtomic(s.metaPath(), s.meta)
}

func combinedSize(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp := path + ".tmp-" + strings.ReplaceAll(fmt.Sprintf("%d", time.Now().UnixNano()), "-", "")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}

var _ storage.VectorStore = (*Store)(nil)
