// Package ontology holds the closed type system of the architecture model:
// element types, relationship types with their endpoint constraints, named
// viewpoints, and the canonical preference tables used to rank connection
// options. An Ontology is immutable once built and safe for concurrent use.
package ontology

import (
	"fmt"
	"sort"
)

// Ontology is the read-only lookup table of element and relationship types.
type Ontology struct {
	elements      []ElementDef
	relationships []RelationshipDef
	viewpoints    map[string]Viewpoint

	elementIndex map[ElementType]int
	relIndex     map[RelationshipType]int
}

// New validates the definitions and builds an Ontology. Declaration order is
// preserved and drives tie-breaking everywhere results are ranked.
func New(elements []ElementDef, relationships []RelationshipDef, viewpoints []Viewpoint) (*Ontology, error) {
	o := &Ontology{
		elements:      append([]ElementDef(nil), elements...),
		relationships: make([]RelationshipDef, 0, len(relationships)),
		viewpoints:    make(map[string]Viewpoint, len(viewpoints)),
		elementIndex:  make(map[ElementType]int, len(elements)),
		relIndex:      make(map[RelationshipType]int, len(relationships)),
	}

	for i, e := range o.elements {
		if e.Type == "" {
			return nil, fmt.Errorf("%w: element #%d has no type", ErrInvalidCatalog, i)
		}
		if !e.Layer.IsValid() {
			return nil, fmt.Errorf("%w: element %s has unknown layer %q", ErrInvalidCatalog, e.Type, e.Layer)
		}
		if _, dup := o.elementIndex[e.Type]; dup {
			return nil, fmt.Errorf("%w: duplicate element type %s", ErrInvalidCatalog, e.Type)
		}
		o.elementIndex[e.Type] = i
	}

	for i, r := range relationships {
		if r.Type == "" {
			return nil, fmt.Errorf("%w: relationship #%d has no type", ErrInvalidCatalog, i)
		}
		if _, dup := o.relIndex[r.Type]; dup {
			return nil, fmt.Errorf("%w: duplicate relationship type %s", ErrInvalidCatalog, r.Type)
		}
		if !r.Layer.IsValid() {
			return nil, fmt.Errorf("%w: relationship %s has unknown layer %q", ErrInvalidCatalog, r.Type, r.Layer)
		}
		if len(r.AllowedEndpointPairs) == 0 && (len(r.FromTypes) == 0 || len(r.ToTypes) == 0) {
			return nil, fmt.Errorf("%w: relationship %s declares no endpoints", ErrInvalidCatalog, r.Type)
		}
		for _, t := range r.endpointTypes() {
			if _, ok := o.elementIndex[t]; !ok {
				return nil, fmt.Errorf("%w: relationship %s references %w %s", ErrInvalidCatalog, r.Type, ErrUnknownElementType, t)
			}
		}
		o.relIndex[r.Type] = len(o.relationships)
		o.relationships = append(o.relationships, r)
	}

	for _, v := range viewpoints {
		if v.Name == "" {
			return nil, fmt.Errorf("%w: viewpoint without a name", ErrInvalidCatalog)
		}
		for _, t := range v.Relationships {
			if _, ok := o.relIndex[t]; !ok {
				return nil, fmt.Errorf("%w: viewpoint %s references %w %s", ErrInvalidCatalog, v.Name, ErrUnknownRelationshipType, t)
			}
		}
		o.viewpoints[v.Name] = v
	}

	return o, nil
}

// ElementTypes returns every declared element definition in declaration order.
func (o *Ontology) ElementTypes() []ElementDef {
	out := make([]ElementDef, len(o.elements))
	copy(out, o.elements)
	return out
}

// Relationships returns every relationship definition in declaration order.
// The returned slice is shared and must not be modified.
func (o *Ontology) Relationships() []RelationshipDef {
	return o.relationships
}

// HasElementType reports whether t is declared.
func (o *Ontology) HasElementType(t ElementType) bool {
	_, ok := o.elementIndex[t]
	return ok
}

// Element returns the definition for t.
func (o *Ontology) Element(t ElementType) (ElementDef, bool) {
	i, ok := o.elementIndex[t]
	if !ok {
		return ElementDef{}, false
	}
	return o.elements[i], true
}

// LayerOf returns the layer of element type t, or "" when t is undeclared.
func (o *Ontology) LayerOf(t ElementType) Layer {
	e, _ := o.Element(t)
	return e.Layer
}

// Relationship returns the definition for t.
func (o *Ontology) Relationship(t RelationshipType) (RelationshipDef, bool) {
	i, ok := o.relIndex[t]
	if !ok {
		return RelationshipDef{}, false
	}
	return o.relationships[i], true
}

// Allows reports whether relationship type rel may connect from to to.
// Undeclared relationship types allow nothing.
func (o *Ontology) Allows(rel RelationshipType, from, to ElementType) bool {
	d, ok := o.Relationship(rel)
	return ok && d.Allows(from, to)
}

// Viewpoint returns the named viewpoint.
func (o *Ontology) Viewpoint(name string) (Viewpoint, error) {
	v, ok := o.viewpoints[name]
	if !ok {
		return Viewpoint{}, fmt.Errorf("%w: %q", ErrUnknownViewpoint, name)
	}
	return v, nil
}

// Viewpoints returns all viewpoints sorted by name.
func (o *Ontology) Viewpoints() []Viewpoint {
	out := make([]Viewpoint, 0, len(o.viewpoints))
	for _, v := range o.viewpoints {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ViewpointFilter returns the relationship filter for the named viewpoint.
// An empty name yields a nil filter, which allows every relationship type.
func (o *Ontology) ViewpointFilter(name string) (*Filter, error) {
	if name == "" {
		return nil, nil
	}
	v, err := o.Viewpoint(name)
	if err != nil {
		return nil, err
	}
	return NewFilter(v.Relationships...), nil
}

// Filter restricts which relationship types may be offered. A nil *Filter
// allows everything.
type Filter struct {
	allowed map[RelationshipType]struct{}
}

// NewFilter returns a filter allowing exactly the given relationship types.
func NewFilter(types ...RelationshipType) *Filter {
	f := &Filter{allowed: make(map[RelationshipType]struct{}, len(types))}
	for _, t := range types {
		f.allowed[t] = struct{}{}
	}
	return f
}

// Allows reports whether t passes the filter.
func (f *Filter) Allows(t RelationshipType) bool {
	if f == nil {
		return true
	}
	_, ok := f.allowed[t]
	return ok
}
