package graph

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/archconnect/internal/ontology"
)

var (
	// ErrNotFound is returned when a write refers to an unknown element or relationship.
	ErrNotFound = errors.New("not found")

	// ErrInvalidElement is returned for an ElementSpec without a type.
	ErrInvalidElement = errors.New("invalid element")
)

// --- Models ---

// Point is a diagram position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ElementSpec describes an element to create.
type ElementSpec struct {
	Type     ontology.ElementType `json:"type"`
	Name     string               `json:"name"`
	Derived  bool                 `json:"derived"`
	Position Point                `json:"position"`
}

// Element is a node of the architecture model.
type Element struct {
	ID       string               `json:"id"`
	Type     ontology.ElementType `json:"type"`
	Name     string               `json:"name"`
	Derived  bool                 `json:"derived"`
	Position Point                `json:"position"`
}

// Relationship is a typed, directed edge between two elements.
type Relationship struct {
	ID       string                    `json:"id"`
	SourceID string                    `json:"sourceId"`
	TargetID string                    `json:"targetId"`
	Type     ontology.RelationshipType `json:"type"`
}

// GraphStats summarizes a model graph.
type GraphStats struct {
	ElementCount      int `json:"elementCount"`
	DerivedCount      int `json:"derivedCount"`
	RelationshipCount int `json:"relationshipCount"`
}

func validateSpec(spec ElementSpec) error {
	if spec.Type == "" {
		return fmt.Errorf("%w: element type is required", ErrInvalidElement)
	}
	return nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
