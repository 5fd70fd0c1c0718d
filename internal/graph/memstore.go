package graph

import (
	"context"
	"slices"
	"sync"

	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/google/uuid"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
// Listing preserves insertion order.
type MemStore struct {
	mu            sync.RWMutex
	elements      map[string]Element
	relationships map[string]Relationship
	elementOrder  []string
	relOrder      []string
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		elements:      make(map[string]Element),
		relationships: make(map[string]Relationship),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// CreateElement stores a new element under a fresh uuid.
func (m *MemStore) CreateElement(_ context.Context, spec ElementSpec) (string, error) {
	if err := validateSpec(spec); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.elements[id] = Element{
		ID:       id,
		Type:     spec.Type,
		Name:     spec.Name,
		Derived:  spec.Derived,
		Position: spec.Position,
	}
	m.elementOrder = append(m.elementOrder, id)
	return id, nil
}

// CreateRelationship stores a new edge. Both endpoints must exist.
func (m *MemStore) CreateRelationship(_ context.Context, fromID, toID string, relType ontology.RelationshipType) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.elements[fromID]; !ok {
		return "", notFound("element", fromID)
	}
	if _, ok := m.elements[toID]; !ok {
		return "", notFound("element", toID)
	}
	id := uuid.NewString()
	m.relationships[id] = Relationship{ID: id, SourceID: fromID, TargetID: toID, Type: relType}
	m.relOrder = append(m.relOrder, id)
	return id, nil
}

// RetypeRelationship changes the type of an existing edge.
func (m *MemStore) RetypeRelationship(_ context.Context, id string, relType ontology.RelationshipType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.relationships[id]
	if !ok {
		return notFound("relationship", id)
	}
	r.Type = relType
	m.relationships[id] = r
	return nil
}

// DeleteRelationship removes an edge.
func (m *MemStore) DeleteRelationship(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.relationships[id]; !ok {
		return notFound("relationship", id)
	}
	m.deleteRelationshipLocked(id)
	return nil
}

// DeleteElement removes an element and every edge touching it.
func (m *MemStore) DeleteElement(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.elements[id]; !ok {
		return notFound("element", id)
	}
	for _, rid := range slices.Clone(m.relOrder) {
		r := m.relationships[rid]
		if r.SourceID == id || r.TargetID == id {
			m.deleteRelationshipLocked(rid)
		}
	}
	delete(m.elements, id)
	m.elementOrder = slices.DeleteFunc(m.elementOrder, func(x string) bool { return x == id })
	return nil
}

func (m *MemStore) deleteRelationshipLocked(id string) {
	delete(m.relationships, id)
	m.relOrder = slices.DeleteFunc(m.relOrder, func(x string) bool { return x == id })
}

// GetElement returns the element with the given id, or nil if not found.
func (m *MemStore) GetElement(_ context.Context, id string) (*Element, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.elements[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// GetRelationship returns the relationship with the given id, or nil if not found.
func (m *MemStore) GetRelationship(_ context.Context, id string) (*Relationship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.relationships[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// ListElements returns all elements in insertion order.
func (m *MemStore) ListElements(_ context.Context) ([]Element, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Element, 0, len(m.elementOrder))
	for _, id := range m.elementOrder {
		out = append(out, m.elements[id])
	}
	return out, nil
}

// ListRelationships returns all relationships in insertion order.
func (m *MemStore) ListRelationships(_ context.Context) ([]Relationship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Relationship, 0, len(m.relOrder))
	for _, id := range m.relOrder {
		out = append(out, m.relationships[id])
	}
	return out, nil
}

// Stats returns element and relationship counts.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	derived := 0
	for _, e := range m.elements {
		if e.Derived {
			derived++
		}
	}
	return &GraphStats{
		ElementCount:      len(m.elements),
		DerivedCount:      derived,
		RelationshipCount: len(m.relationships),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
