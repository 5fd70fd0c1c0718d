package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a pure-Go SQLite database. Elements and
// relationships live in two tables; relationships cascade with their endpoints.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database file at dbPath. The special
// path ":memory:" yields a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create parent directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", dbPath)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	// One connection: an in-memory database is per connection, and writes
	// are serialized by SQLite anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: connect: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS elements (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	derived BOOLEAN NOT NULL DEFAULT 0,
	x REAL NOT NULL DEFAULT 0,
	y REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS relationships (
	id TEXT PRIMARY KEY,
	source_id TEXT NOT NULL REFERENCES elements(id) ON DELETE CASCADE,
	target_id TEXT NOT NULL REFERENCES elements(id) ON DELETE CASCADE,
	type TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id);
CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id);
`

// InitSchema creates the tables if they do not exist.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("sqlite: init schema: %w", err)
	}
	return nil
}

// CreateElement inserts an element row.
func (s *SQLiteStore) CreateElement(ctx context.Context, spec ElementSpec) (string, error) {
	if err := validateSpec(spec); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO elements (id, type, name, derived, x, y) VALUES (?, ?, ?, ?, ?, ?)",
		id, string(spec.Type), spec.Name, spec.Derived, spec.Position.X, spec.Position.Y,
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: insert element: %w", err)
	}
	return id, nil
}

// CreateRelationship inserts a relationship row. Both endpoints must exist.
func (s *SQLiteStore) CreateRelationship(ctx context.Context, fromID, toID string, relType ontology.RelationshipType) (string, error) {
	for _, endpoint := range []string{fromID, toID} {
		ok, err := s.exists(ctx, "elements", endpoint)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", notFound("element", endpoint)
		}
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO relationships (id, source_id, target_id, type) VALUES (?, ?, ?, ?)",
		id, fromID, toID, string(relType),
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: insert relationship: %w", err)
	}
	return id, nil
}

// RetypeRelationship updates a relationship's type.
func (s *SQLiteStore) RetypeRelationship(ctx context.Context, id string, relType ontology.RelationshipType) error {
	res, err := s.db.ExecContext(ctx, "UPDATE relationships SET type = ? WHERE id = ?", string(relType), id)
	if err != nil {
		return fmt.Errorf("sqlite: retype relationship: %w", err)
	}
	return affectedOrNotFound(res, "relationship", id)
}

// DeleteRelationship removes a relationship row.
func (s *SQLiteStore) DeleteRelationship(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM relationships WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: delete relationship: %w", err)
	}
	return affectedOrNotFound(res, "relationship", id)
}

// DeleteElement removes an element; its relationships go with it.
func (s *SQLiteStore) DeleteElement(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM relationships WHERE source_id = ? OR target_id = ?", id, id,
	); err != nil {
		return fmt.Errorf("sqlite: delete attached relationships: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM elements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: delete element: %w", err)
	}
	if err := affectedOrNotFound(res, "element", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// GetElement returns the element with the given id, or nil if not found.
func (s *SQLiteStore) GetElement(ctx context.Context, id string) (*Element, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, type, name, derived, x, y FROM elements WHERE id = ?", id)
	e, err := scanElement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get element: %w", err)
	}
	return e, nil
}

// GetRelationship returns the relationship with the given id, or nil if not found.
func (s *SQLiteStore) GetRelationship(ctx context.Context, id string) (*Relationship, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, source_id, target_id, type FROM relationships WHERE id = ?", id)
	r, err := scanRelationship(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get relationship: %w", err)
	}
	return r, nil
}

// ListElements returns all elements in insertion order.
func (s *SQLiteStore) ListElements(ctx context.Context) ([]Element, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, name, derived, x, y FROM elements ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("sqlite: list elements: %w", err)
	}
	defer rows.Close()

	var out []Element
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan element: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// ListRelationships returns all relationships in insertion order.
func (s *SQLiteStore) ListRelationships(ctx context.Context) ([]Relationship, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, source_id, target_id, type FROM relationships ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("sqlite: list relationships: %w", err)
	}
	defer rows.Close()

	var out []Relationship
	for rows.Next() {
		r, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan relationship: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Stats returns element and relationship counts.
func (s *SQLiteStore) Stats(ctx context.Context) (*GraphStats, error) {
	var st GraphStats
	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT count(*) FROM elements),
			(SELECT count(*) FROM elements WHERE derived),
			(SELECT count(*) FROM relationships)`,
	).Scan(&st.ElementCount, &st.DerivedCount, &st.RelationshipCount)
	if err != nil {
		return nil, fmt.Errorf("sqlite: stats: %w", err)
	}
	return &st, nil
}

// ---------- Internal helpers ----------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanElement(r rowScanner) (*Element, error) {
	var e Element
	var typ string
	if err := r.Scan(&e.ID, &typ, &e.Name, &e.Derived, &e.Position.X, &e.Position.Y); err != nil {
		return nil, err
	}
	e.Type = ontology.ElementType(typ)
	return &e, nil
}

func scanRelationship(r rowScanner) (*Relationship, error) {
	var rel Relationship
	var typ string
	if err := r.Scan(&rel.ID, &rel.SourceID, &rel.TargetID, &typ); err != nil {
		return nil, err
	}
	rel.Type = ontology.RelationshipType(typ)
	return &rel, nil
}

func (s *SQLiteStore) exists(ctx context.Context, table, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM "+table+" WHERE id = ?", id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: lookup %s: %w", table, err)
	}
	return n > 0, nil
}

func affectedOrNotFound(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}
