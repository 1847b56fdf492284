package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"vuedoc/internal/extractor"
	"vuedoc/internal/graph"
)

// ErrNotFound is returned when a lookup matches no stored component.
var ErrNotFound = errors.New("not found")

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS components (
			filepath TEXT PRIMARY KEY,
			id TEXT,
			name TEXT,
			language TEXT,
			description TEXT,
			content_hash TEXT,
			setup INTEGER,
			entries JSON,
			messages JSON,
			dependencies JSON
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			from_path TEXT,
			to_path TEXT,
			kind TEXT,
			PRIMARY KEY (from_path, to_path, kind)
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT,
			started_at TIMESTAMP,
			finished_at TIMESTAMP,
			components INTEGER,
			errors INTEGER,
			warnings INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_components_id ON components(id);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_path);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

const upsertComponent = `
	INSERT INTO components (filepath, id, name, language, description, content_hash, setup, entries, messages, dependencies)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(filepath) DO UPDATE SET
		id=excluded.id,
		name=excluded.name,
		language=excluded.language,
		description=excluded.description,
		content_hash=excluded.content_hash,
		setup=excluded.setup,
		entries=excluded.entries,
		messages=excluded.messages,
		dependencies=excluded.dependencies
`

const selectComponent = `SELECT filepath, id, name, language, description, content_hash, setup, entries, messages, dependencies FROM components`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveComponent(ctx context.Context, db execer, doc *extractor.ComponentDoc) error {
	entries, err := json.Marshal(doc.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries of %s: %w", doc.Filepath, err)
	}
	messages, err := json.Marshal(doc.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages of %s: %w", doc.Filepath, err)
	}
	deps, err := json.Marshal(doc.Dependencies)
	if err != nil {
		return fmt.Errorf("failed to encode dependencies of %s: %w", doc.Filepath, err)
	}
	_, err = db.ExecContext(ctx, upsertComponent,
		doc.Filepath, doc.ID, doc.Name, doc.Language, doc.Description, doc.ContentHash, doc.Setup, entries, messages, deps)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComponent(row scanner) (*extractor.ComponentDoc, error) {
	var doc extractor.ComponentDoc
	var entries, messages, deps []byte
	if err := row.Scan(&doc.Filepath, &doc.ID, &doc.Name, &doc.Language, &doc.Description, &doc.ContentHash, &doc.Setup, &entries, &messages, &deps); err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		if err := json.Unmarshal(entries, &doc.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode entries of %s: %w", doc.Filepath, err)
		}
	}
	if len(messages) > 0 {
		_ = json.Unmarshal(messages, &doc.Messages)
	}
	if len(deps) > 0 {
		_ = json.Unmarshal(deps, &doc.Dependencies)
	}
	return &doc, nil
}

// --- ComponentStore Implementation ---

func (s *SQLiteStore) SaveComponent(ctx context.Context, doc *extractor.ComponentDoc) error {
	return saveComponent(ctx, s.db, doc)
}

// SaveGraph persists g as the complete snapshot: components and edges
// missing from g are removed.
func (s *SQLiteStore) SaveGraph(ctx context.Context, g *graph.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Drop components that left the snapshot
	rows, err := tx.QueryContext(ctx, "SELECT filepath FROM components")
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return err
		}
		if _, ok := g.Nodes[path]; !ok {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, path := range stale {
		if _, err := tx.ExecContext(ctx, "DELETE FROM components WHERE filepath = ?", path); err != nil {
			return err
		}
	}

	// 2. Save Nodes
	for _, path := range g.Paths() {
		if err := saveComponent(ctx, tx, g.Nodes[path].Doc); err != nil {
			return err
		}
	}

	// 3. Replace Edges
	if _, err := tx.ExecContext(ctx, "DELETE FROM edges"); err != nil {
		return err
	}
	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (from_path, to_path, kind) VALUES (?, ?, ?)
		ON CONFLICT(from_path, to_path, kind) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for _, edge := range g.Edges {
		if _, err := edgeStmt.ExecContext(ctx, edge.From, edge.To, string(edge.Kind)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	g := graph.NewGraph()

	// 1. Load Nodes
	rows, err := s.db.QueryContext(ctx, selectComponent)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		doc, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		g.AddDoc(doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 2. Load Edges
	edgeRows, err := s.db.QueryContext(ctx, "SELECT from_path, to_path, kind FROM edges ORDER BY from_path, to_path")
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var edge graph.Edge
		var kind string
		if err := edgeRows.Scan(&edge.From, &edge.To, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edge.Kind = graph.RelationKind(kind)
		g.Edges = append(g.Edges, edge)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	g.RebuildIndices()
	return g, nil
}

func (s *SQLiteStore) GetComponent(ctx context.Context, id string) (*extractor.ComponentDoc, error) {
	doc, err := scanComponent(s.db.QueryRowContext(ctx, selectComponent+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("component %s: %w", id, ErrNotFound)
	}
	return doc, err
}

func (s *SQLiteStore) FindByFile(ctx context.Context, filepath string) (*extractor.ComponentDoc, error) {
	doc, err := scanComponent(s.db.QueryRowContext(ctx, selectComponent+" WHERE filepath = ?", filepath))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s: %w", filepath, ErrNotFound)
	}
	return doc, err
}

// --- RunStore Implementation ---

func (s *SQLiteStore) StartRun(ctx context.Context, kind string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, kind, started_at) VALUES (?, ?, ?)",
		run.ID, run.Kind, run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, run *Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, components = ?, errors = ?, warnings = ? WHERE id = ?",
		run.FinishedAt, run.Components, run.Errors, run.Warnings, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

// LastRun returns the most recently finished run.
func (s *SQLiteStore) LastRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, started_at, finished_at, components, errors, warnings
		FROM runs WHERE finished_at IS NOT NULL
		ORDER BY finished_at DESC LIMIT 1`)
	var run Run
	err := row.Scan(&run.ID, &run.Kind, &run.StartedAt, &run.FinishedAt, &run.Components, &run.Errors, &run.Warnings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("last run: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

var _ Store = (*SQLiteStore)(nil)
