package ontology

// --- Enums ---

// ElementType is a node tag from the closed architecture ontology.
type ElementType string

// RelationshipType is an edge tag from the closed architecture ontology.
type RelationshipType string

// Layer groups element and relationship types by architecture concern.
type Layer string

const (
	LayerStrategy       Layer = "Strategy"
	LayerBusiness       Layer = "Business"
	LayerApplication    Layer = "Application"
	LayerTechnology     Layer = "Technology"
	LayerGovernance     Layer = "Governance"
	LayerImplementation Layer = "Implementation"
)

// KnownLayers lists every layer a catalog may reference.
var KnownLayers = []Layer{
	LayerStrategy,
	LayerBusiness,
	LayerApplication,
	LayerTechnology,
	LayerGovernance,
	LayerImplementation,
}

// IsValid reports whether l is one of KnownLayers.
func (l Layer) IsValid() bool {
	for _, k := range KnownLayers {
		if l == k {
			return true
		}
	}
	return false
}

// --- Models ---

// ElementDef declares an element type and the layer it lives in.
type ElementDef struct {
	Type  ElementType `yaml:"type" json:"type"`
	Layer Layer       `yaml:"layer" json:"layer"`
	Label string      `yaml:"label,omitempty" json:"label,omitempty"`
}

// EndpointPair is one explicitly allowed (source, target) combination.
type EndpointPair struct {
	From ElementType `yaml:"from" json:"from"`
	To   ElementType `yaml:"to" json:"to"`
}

// RelationshipDef declares a relationship type and its endpoint constraint.
// When AllowedEndpointPairs is non-empty it replaces the FromTypes × ToTypes
// cross product entirely.
type RelationshipDef struct {
	Type                 RelationshipType `yaml:"type" json:"type"`
	Label                string           `yaml:"label,omitempty" json:"label,omitempty"`
	Layer                Layer            `yaml:"layer" json:"layer"`
	FromTypes            []ElementType    `yaml:"fromTypes,omitempty" json:"fromTypes,omitempty"`
	ToTypes              []ElementType    `yaml:"toTypes,omitempty" json:"toTypes,omitempty"`
	AllowedEndpointPairs []EndpointPair   `yaml:"allowedEndpointPairs,omitempty" json:"allowedEndpointPairs,omitempty"`
}

// Allows is the endpoint predicate: it reports whether the relationship type
// may connect an element of type from to an element of type to.
func (d RelationshipDef) Allows(from, to ElementType) bool {
	if len(d.AllowedEndpointPairs) > 0 {
		for _, p := range d.AllowedEndpointPairs {
			if p.From == from && p.To == to {
				return true
			}
		}
		return false
	}
	return containsType(d.FromTypes, from) && containsType(d.ToTypes, to)
}

// DisplayLabel returns Label, falling back to the type tag.
func (d RelationshipDef) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return string(d.Type)
}

// endpointTypes returns every element type named by the endpoint constraint.
func (d RelationshipDef) endpointTypes() []ElementType {
	out := make([]ElementType, 0, len(d.FromTypes)+len(d.ToTypes)+2*len(d.AllowedEndpointPairs))
	out = append(out, d.FromTypes...)
	out = append(out, d.ToTypes...)
	for _, p := range d.AllowedEndpointPairs {
		out = append(out, p.From, p.To)
	}
	return out
}

// Viewpoint is a named subset of relationship types a diagram may use.
type Viewpoint struct {
	Name          string             `yaml:"name" json:"name"`
	Description   string             `yaml:"description,omitempty" json:"description,omitempty"`
	Relationships []RelationshipType `yaml:"relationships" json:"relationships"`
}

func containsType(types []ElementType, t ElementType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
