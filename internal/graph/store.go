package graph

import (
	"context"
	"io"

	"github.com/dusk-indust/archconnect/internal/ontology"
)

// Store is the model repository: the persisted element/relationship graph.
// Implementations: KuzuStore (cgo graph DB), SQLiteStore (pure Go), MemStore
// (in-memory, tests and demos). Stores do not check ontology legality; callers
// only ask for legal relationships.
type Store interface {
	io.Closer

	// Schema setup — called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations. Create* return the id of the new node or edge.
	CreateElement(ctx context.Context, spec ElementSpec) (string, error)
	CreateRelationship(ctx context.Context, fromID, toID string, relType ontology.RelationshipType) (string, error)
	RetypeRelationship(ctx context.Context, id string, relType ontology.RelationshipType) error
	DeleteRelationship(ctx context.Context, id string) error
	// DeleteElement also removes every relationship attached to the element.
	DeleteElement(ctx context.Context, id string) error

	// Read operations. Get* return nil (not an error) when the id is unknown.
	GetElement(ctx context.Context, id string) (*Element, error)
	GetRelationship(ctx context.Context, id string) (*Relationship, error)
	ListElements(ctx context.Context) ([]Element, error)
	ListRelationships(ctx context.Context) ([]Relationship, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// TypeResolver answers element-type lookups from a Store.
type TypeResolver struct {
	store Store
}

// NewTypeResolver wraps s.
func NewTypeResolver(s Store) *TypeResolver {
	return &TypeResolver{store: s}
}

// ElementType returns the type of element id, or false when the element is
// unknown or the lookup fails.
func (r *TypeResolver) ElementType(ctx context.Context, id string) (ontology.ElementType, bool) {
	e, err := r.store.GetElement(ctx, id)
	if err != nil || e == nil {
		return "", false
	}
	return e.Type, true
}
