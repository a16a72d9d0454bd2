// Package sqlitevec is a supplemental VectorStore backing (spec's reference
// layout is JSON files; this is an alternate, selected via
// vectorStore.type=="sqlite") that keeps documents in a relational table
// and embeddings in a sqlite-vec vec0 virtual table for KNN search.
package sqlitevec

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rcihq/rci/internal/models"
	"github.com/rcihq/rci/internal/storage"
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// Store is a sqlite-vec backed VectorStore.
type Store struct {
	db        *sql.DB
	dimension int
}

// New opens (creating if absent) a sqlite database at path. dimension may
// be 0, in which case the vec0 table is created lazily on first AddBatch
// once the embedding width is known.
func New(path string, dimension int) (*Store, error) {
	sqlite_vec.Auto()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %s: %w", path, err)
	}
	return &Store{db: db, dimension: dimension}, nil
}

func (s *Store) Initialize() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		embedding TEXT NOT NULL,
		package_name TEXT NOT NULL,
		component_name TEXT NOT NULL,
		type TEXT NOT NULL,
		tags TEXT NOT NULL,
		version TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_package ON documents(package_name);
	CREATE INDEX IF NOT EXISTS idx_documents_component ON documents(component_name);
	CREATE TABLE IF NOT EXISTS rci_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if s.dimension > 0 {
		if err := s.createVecTable(s.dimension); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) createVecTable(dim int) error {
	if _, err := s.db.Exec(fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS vec_embeddings USING vec0(embedding float32[%d]);`, dim,
	)); err != nil {
		return fmt.Errorf("create vec table: %w", err)
	}
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS vec_map (
		rid INTEGER UNIQUE NOT NULL,
		id TEXT UNIQUE NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_vec_map_id ON vec_map(id);`); err != nil {
		return fmt.Errorf("create vec map: %w", err)
	}
	s.dimension = dim
	return nil
}

// AddBatch implements storage.VectorStore.
func (s *Store) AddBatch(docs []models.VectorDocument) error {
	if len(docs) == 0 {
		return nil
	}
	if s.dimension == 0 {
		if err := s.createVecTable(len(docs[0].Embedding)); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	existsStmt, err := tx.Prepare(`SELECT 1 FROM documents WHERE id = ?`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = existsStmt.Close() }()

	insertDocStmt, err := tx.Prepare(`INSERT INTO documents(
		id, content, embedding, package_name, component_name, type, tags, version
	) VALUES(?,?,?,?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = insertDocStmt.Close() }()

	insertVecStmt, err := tx.Prepare(`INSERT INTO vec_embeddings(embedding) VALUES(?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = insertVecStmt.Close() }()

	insertMapStmt, err := tx.Prepare(`INSERT INTO vec_map(rid, id) VALUES(?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = insertMapStmt.Close() }()

	for _, d := range docs {
		var dummy int
		if err := existsStmt.QueryRow(d.ID).Scan(&dummy); err == nil {
			continue // already present, skip
		} else if !errors.Is(err, sql.ErrNoRows) {
			_ = tx.Rollback()
			return err
		}

		tagsJSON, err := json.Marshal(d.Metadata.Tags)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		embeddingJSON, err := json.Marshal(d.Embedding)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := insertDocStmt.Exec(
			d.ID, d.Content, string(embeddingJSON), d.Metadata.PackageName, d.Metadata.ComponentName,
			string(d.Metadata.Type), string(tagsJSON), d.Metadata.Version,
		); err != nil {
			_ = tx.Rollback()
			return err
		}

		vec, err := sqlite_vec.SerializeFloat32(d.Embedding)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := insertVecStmt.Exec(vec); err != nil {
			_ = tx.Rollback()
			return err
		}
		var rid int64
		if err := tx.QueryRow(`SELECT last_insert_rowid()`).Scan(&rid); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := insertMapStmt.Exec(rid, d.ID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// TopK implements storage.VectorStore.
func (s *Store) TopK(qv []float32, k int, threshold float32) ([]models.ScoredDocument, error) {
	return s.TopKFiltered(qv, models.Filters{}, k, threshold)
}

// TopKFiltered implements storage.VectorStore. sqlite-vec's MATCH operator
// returns L2 distance, not cosine similarity; this backing over-fetches a
// wider KNN window and re-scores with cosine in Go so results stay
// comparable with filevec's contract.
func (s *Store) TopKFiltered(qv []float32, filters models.Filters, k int, threshold float32) ([]models.ScoredDocument, error) {
	v, err := sqlite_vec.SerializeFloat32(qv)
	if err != nil {
		return nil, err
	}

	window := k * 20
	if window < 200 {
		window = 200
	}

	rows, err := s.db.Query(`
		WITH knn AS (
			SELECT rowid FROM vec_embeddings WHERE embedding MATCH ? ORDER BY distance LIMIT ?
		)
		SELECT d.id, d.content, d.embedding, d.package_name, d.component_name, d.type, d.tags, d.version
		FROM knn k
		JOIN vec_map m ON m.rid = k.rowid
		JOIN documents d ON d.id = m.id
	`, v, window)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var candidates []models.VectorDocument
	for rows.Next() {
		var d models.VectorDocument
		var tagsJSON, embeddingJSON, typ string
		if err := rows.Scan(&d.ID, &d.Content, &embeddingJSON, &d.Metadata.PackageName, &d.Metadata.ComponentName,
			&typ, &tagsJSON, &d.Metadata.Version); err != nil {
			return nil, err
		}
		d.Metadata.Type = models.FacetType(typ)
		_ = json.Unmarshal([]byte(tagsJSON), &d.Metadata.Tags)
		if err := json.Unmarshal([]byte(embeddingJSON), &d.Embedding); err != nil {
			return nil, fmt.Errorf("decode stored embedding for %s: %w", d.ID, err)
		}
		if !matchesFilters(d.Metadata, filters) {
			continue
		}
		candidates = append(candidates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var scored []models.ScoredDocument
	for _, d := range candidates {
		if len(d.Embedding) != len(qv) {
			return nil, fmt.Errorf("vector dimension mismatch: store=%d query=%d", len(d.Embedding), len(qv))
		}
		score := storage.Cosine(d.Embedding, qv)
		if score < threshold {
			continue
		}
		scored = append(scored, models.ScoredDocument{Document: d, Score: score})
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
				}
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
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, id := range ids {
		var rid sql.NullInt64
		if err := tx.QueryRow(`SELECT rid FROM vec_map WHERE id = ?`, id).Scan(&rid); err != nil &&
			!errors.Is(err, sql.ErrNoRows) {
			_ = tx.Rollback()
			return err
		}
		if rid.Valid {
			if _, err := tx.Exec(`DELETE FROM vec_embeddings WHERE rowid = ?`, rid.Int64); err != nil {
				_ = tx.Rollback()
				return err
			}
			if _, err := tx.Exec(`DELETE FROM vec_map WHERE rid = ?`, rid.Int64); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		if _, err := tx.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Clear implements storage.VectorStore.
func (s *Store) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, stmt := range []string{
		`DELETE FROM documents`,
		`DELETE FROM vec_map`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	// vec0 virtual tables don't support bare DELETE without a rowid
	// predicate on every driver; dropping and recreating is simplest.
	if s.dimension > 0 {
		if _, err := tx.Exec(`DROP TABLE IF EXISTS vec_embeddings`); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.Exec(fmt.Sprintf(
			`CREATE VIRTUAL TABLE vec_embeddings USING vec0(embedding float32[%d]);`, s.dimension,
		)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Stats implements storage.VectorStore.
func (s *Store) Stats() (models.Stats, error) {
	rows, err := s.db.Query(`SELECT package_name, component_name FROM documents`)
	if err != nil {
		return models.Stats{}, err
	}
	defer func() { _ = rows.Close() }()

	components := make(map[string]bool)
	packages := make(models.PackageStats)
	var total int
	for rows.Next() {
		var pkg, comp string
		if err := rows.Scan(&pkg, &comp); err != nil {
			return models.Stats{}, err
		}
		total++
		components[pkg+"/"+comp] = true
		packages[pkg]++
	}
	if err := rows.Err(); err != nil {
		return models.Stats{}, err
	}

	return models.Stats{
		TotalComponents: len(components),
		TotalDocuments:  total,
		IndexSize:       0,
		LastUpdated:     time.Now(),
		PackageStats:    packages,
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
