package session

import (
	"context"

	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/ontology"
)

// Repository is the model repository the session mutates. Every call is
// treated as synchronous and atomic on its own; a non-nil error means the
// request was rejected and nothing was created.
type Repository interface {
	CreateElement(ctx context.Context, spec graph.ElementSpec) (string, error)
	CreateRelationship(ctx context.Context, fromID, toID string, relType ontology.RelationshipType) (string, error)
}

// Retyper is implemented by repositories that can change a relationship's
// type in place. ChangeType delegates to it when present.
type Retyper interface {
	RetypeRelationship(ctx context.Context, id string, relType ontology.RelationshipType) error
}

// Remover is implemented by repositories that can delete elements and
// relationships. SwitchPath requires it.
type Remover interface {
	DeleteRelationship(ctx context.Context, id string) error
	DeleteElement(ctx context.Context, id string) error
}

// TypeResolver maps an element id to its type. ok is false when the element
// is unknown.
type TypeResolver interface {
	ElementType(ctx context.Context, id string) (ontology.ElementType, bool)
}

var (
	_ Repository   = graph.Store(nil)
	_ Retyper      = graph.Store(nil)
	_ Remover      = graph.Store(nil)
	_ TypeResolver = (*graph.TypeResolver)(nil)
)
