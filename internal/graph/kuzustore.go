//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/google/uuid"
	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection

	mu      sync.Mutex
	lastSeq int64
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Element(
		id STRING,
		type STRING,
		name STRING,
		derived BOOLEAN,
		x DOUBLE,
		y DOUBLE,
		seq INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS RELATES(
		FROM Element TO Element,
		id STRING,
		type STRING,
		seq INT64
	)`,
}

// InitSchema creates the node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// CreateElement inserts an Element node.
func (s *KuzuStore) CreateElement(_ context.Context, spec ElementSpec) (string, error) {
	if err := validateSpec(spec); err != nil {
		return "", err
	}
	id := uuid.NewString()
	err := s.exec(
		"CREATE (e:Element {id: $id, type: $type, name: $name, derived: $derived, x: $x, y: $y, seq: $seq})",
		map[string]any{
			"id":      id,
			"type":    string(spec.Type),
			"name":    spec.Name,
			"derived": spec.Derived,
			"x":       spec.Position.X,
			"y":       spec.Position.Y,
			"seq":     s.nextSeq(),
		},
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreateRelationship inserts a RELATES edge between two existing elements.
func (s *KuzuStore) CreateRelationship(ctx context.Context, fromID, toID string, relType ontology.RelationshipType) (string, error) {
	for _, endpoint := range []string{fromID, toID} {
		e, err := s.GetElement(ctx, endpoint)
		if err != nil {
			return "", err
		}
		if e == nil {
			return "", notFound("element", endpoint)
		}
	}
	id := uuid.NewString()
	err := s.exec(
		`MATCH (a:Element {id: $src}), (b:Element {id: $dst})
		 CREATE (a)-[:RELATES {id: $id, type: $type, seq: $seq}]->(b)`,
		map[string]any{
			"src":  fromID,
			"dst":  toID,
			"id":   id,
			"type": string(relType),
			"seq":  s.nextSeq(),
		},
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RetypeRelationship updates the type property of a RELATES edge.
func (s *KuzuStore) RetypeRelationship(ctx context.Context, id string, relType ontology.RelationshipType) error {
	if err := s.requireRelationship(ctx, id); err != nil {
		return err
	}
	return s.exec(
		"MATCH ()-[r:RELATES]->() WHERE r.id = $id SET r.type = $type",
		map[string]any{"id": id, "type": string(relType)},
	)
}

// DeleteRelationship removes a RELATES edge.
func (s *KuzuStore) DeleteRelationship(ctx context.Context, id string) error {
	if err := s.requireRelationship(ctx, id); err != nil {
		return err
	}
	return s.exec(
		"MATCH ()-[r:RELATES]->() WHERE r.id = $id DELETE r",
		map[string]any{"id": id},
	)
}

// DeleteElement detaches and removes an Element node.
func (s *KuzuStore) DeleteElement(ctx context.Context, id string) error {
	e, err := s.GetElement(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return notFound("element", id)
	}
	return s.exec(
		"MATCH (e:Element {id: $id}) DETACH DELETE e",
		map[string]any{"id": id},
	)
}

func (s *KuzuStore) requireRelationship(ctx context.Context, id string) error {
	r, err := s.GetRelationship(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return notFound("relationship", id)
	}
	return nil
}

// ---------- Read operations ----------

// elementColumns is the RETURN clause shared by element reads.
const elementColumns = "e.id, e.type, e.name, e.derived, e.x, e.y"

// relationshipColumns is the RETURN clause shared by relationship reads.
const relationshipColumns = "r.id, a.id, b.id, r.type"

// GetElement retrieves a single Element node by id, or returns nil if not found.
func (s *KuzuStore) GetElement(_ context.Context, id string) (*Element, error) {
	rows, err := s.query(
		"MATCH (e:Element {id: $id}) RETURN "+elementColumns,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToElement(rows[0]), nil
}

// GetRelationship retrieves a single RELATES edge by id, or nil if not found.
func (s *KuzuStore) GetRelationship(_ context.Context, id string) (*Relationship, error) {
	rows, err := s.query(
		"MATCH (a:Element)-[r:RELATES]->(b:Element) WHERE r.id = $id RETURN "+relationshipColumns,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToRelationship(rows[0]), nil
}

// ListElements returns all elements in creation order.
func (s *KuzuStore) ListElements(_ context.Context) ([]Element, error) {
	rows, err := s.query("MATCH (e:Element) RETURN "+elementColumns+" ORDER BY e.seq", nil)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToElement(r))
	}
	return out, nil
}

// ListRelationships returns all relationships in creation order.
func (s *KuzuStore) ListRelationships(_ context.Context) ([]Relationship, error) {
	rows, err := s.query(
		"MATCH (a:Element)-[r:RELATES]->(b:Element) RETURN "+relationshipColumns+" ORDER BY r.seq",
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]Relationship, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToRelationship(r))
	}
	return out, nil
}

// ---------- Stats ----------

// Stats returns element and relationship counts.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	elements, err := s.count("MATCH (e:Element) RETURN count(e)")
	if err != nil {
		return nil, err
	}
	derived, err := s.count("MATCH (e:Element) WHERE e.derived = true RETURN count(e)")
	if err != nil {
		return nil, err
	}
	rels, err := s.count("MATCH ()-[r:RELATES]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		ElementCount:      elements,
		DerivedCount:      derived,
		RelationshipCount: rels,
	}, nil
}

// ---------- Internal helpers ----------

// nextSeq returns a strictly increasing ordering key for new nodes and edges.
func (s *KuzuStore) nextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := time.Now().UnixNano()
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	s.lastSeq = seq
	return seq
}

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToElement converts a 6-column result row into an Element.
// Column order: id, type, name, derived, x, y.
func rowToElement(r []any) *Element {
	return &Element{
		ID:       toString(r[0]),
		Type:     ontology.ElementType(toString(r[1])),
		Name:     toString(r[2]),
		Derived:  toBool(r[3]),
		Position: Point{X: toFloat64(r[4]), Y: toFloat64(r[5])},
	}
}

// rowToRelationship converts a 4-column result row into a Relationship.
// Column order: id, source id, target id, type.
func rowToRelationship(r []any) *Relationship {
	return &Relationship{
		ID:       toString(r[0]),
		SourceID: toString(r[1]),
		TargetID: toString(r[2]),
		Type:     ontology.RelationshipType(toString(r[3])),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
