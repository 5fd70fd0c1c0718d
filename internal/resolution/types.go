package resolution

import "github.com/dusk-indust/archconnect/internal/ontology"

// --- Enums ---

// Recommendation is the engine's verdict on what a connect gesture should do.
type Recommendation string

const (
	RecommendAutoCreate   Recommendation = "auto-create"
	RecommendChooseDirect Recommendation = "choose-direct"
	RecommendChooseAny    Recommendation = "choose-any"
	RecommendNoPath       Recommendation = "no-path"
)

// ChoiceKind tells which branch an AutoCreateChoice carries.
type ChoiceKind string

const (
	ChoiceDirect   ChoiceKind = "direct"
	ChoiceIndirect ChoiceKind = "indirect"
)

// MaxIndirectPaths caps the ranked indirect path list.
const MaxIndirectPaths = 8

// --- Models ---

// Endpoint identifies an element and its type.
type Endpoint struct {
	ID   string               `json:"id"`
	Type ontology.ElementType `json:"type"`
}

// DirectRelationship is one legal single-hop relationship between two types.
type DirectRelationship struct {
	Type           ontology.RelationshipType `json:"type"`
	FromType       ontology.ElementType      `json:"fromType"`
	ToType         ontology.ElementType      `json:"toType"`
	Label          string                    `json:"label"`
	CanonicalScore int                       `json:"canonicalScore"`
}

// IndirectHop is one edge of an IndirectPath.
type IndirectHop struct {
	RelationshipType        ontology.RelationshipType `json:"relationshipType"`
	FromType                ontology.ElementType      `json:"fromType"`
	ToType                  ontology.ElementType      `json:"toType"`
	IntermediateElementType ontology.ElementType      `json:"intermediateElementType,omitempty"`
}

// IndirectPath is a source → intermediate → target route. The fixed-size hop
// array keeps every path at depth 2.
type IndirectPath struct {
	Hops              [2]IndirectHop         `json:"hops"`
	Label             string                 `json:"label"`
	IntermediateTypes []ontology.ElementType `json:"intermediateTypes"`
	Depth             int                    `json:"depth"`
	CanonicalScore    int                    `json:"canonicalScore"`
}

// AutoCreateChoice is the single option an auto-create verdict commits to.
// Exactly one of Direct and Indirect is set, matching Kind.
type AutoCreateChoice struct {
	Kind     ChoiceKind          `json:"kind"`
	Direct   *DirectRelationship `json:"direct,omitempty"`
	Indirect *IndirectPath       `json:"indirect,omitempty"`
}

// ConnectionResolution is the verdict for one (source, target) pair. It is
// recomputed on demand and never persisted. Candidate slices may be shared
// between verdicts of the same batch and must be treated as read-only.
type ConnectionResolution struct {
	SourceID            string               `json:"sourceId"`
	TargetID            string               `json:"targetId"`
	SourceType          ontology.ElementType `json:"sourceType"`
	TargetType          ontology.ElementType `json:"targetType"`
	DirectRelationships []DirectRelationship `json:"directRelationships"`
	IndirectPaths       []IndirectPath       `json:"indirectPaths"`
	Recommendation      Recommendation       `json:"recommendation"`
	AutoCreateChoice    *AutoCreateChoice    `json:"autoCreateChoice,omitempty"`
	HasAnyPath          bool                 `json:"hasAnyPath"`
	NoPathSuggestion    string               `json:"noPathSuggestion,omitempty"`
}
