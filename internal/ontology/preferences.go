package ontology

import "fmt"

// DirectPattern scores one idiomatic single-hop relationship.
type DirectPattern struct {
	From         ElementType      `yaml:"from" json:"from"`
	To           ElementType      `yaml:"to" json:"to"`
	Relationship RelationshipType `yaml:"relationship" json:"relationship"`
	Score        int              `yaml:"score" json:"score"`
}

// BridgePattern scores one idiomatic source → intermediate → target bridge.
type BridgePattern struct {
	From  ElementType `yaml:"from" json:"from"`
	Via   ElementType `yaml:"via" json:"via"`
	To    ElementType `yaml:"to" json:"to"`
	Score int         `yaml:"score" json:"score"`
}

type directKey struct {
	from, to ElementType
	rel      RelationshipType
}

type bridgeKey struct {
	from, via, to ElementType
}

// Preferences holds the canonical direct and bridge tables. Missing entries
// score 0. Like Ontology it is immutable after construction.
type Preferences struct {
	direct map[directKey]int
	bridge map[bridgeKey]int
}

// NewPreferences builds the tables and checks them against o: every pattern
// must name declared types, and a direct pattern must be legal under the
// endpoint predicate. A nil o skips validation.
func NewPreferences(o *Ontology, direct []DirectPattern, bridges []BridgePattern) (*Preferences, error) {
	p := &Preferences{
		direct: make(map[directKey]int, len(direct)),
		bridge: make(map[bridgeKey]int, len(bridges)),
	}
	for _, d := range direct {
		if o != nil && !o.Allows(d.Relationship, d.From, d.To) {
			return nil, fmt.Errorf("%w: direct pattern %s -[%s]-> %s is not legal", ErrInvalidCatalog, d.From, d.Relationship, d.To)
		}
		p.direct[directKey{d.From, d.To, d.Relationship}] = d.Score
	}
	for _, b := range bridges {
		if o != nil {
			for _, t := range []ElementType{b.From, b.Via, b.To} {
				if !o.HasElementType(t) {
					return nil, fmt.Errorf("%w: bridge pattern references %w %s", ErrInvalidCatalog, ErrUnknownElementType, t)
				}
			}
		}
		p.bridge[bridgeKey{b.From, b.Via, b.To}] = b.Score
	}
	return p, nil
}

// DirectScore returns the canonical score of from -[rel]-> to.
func (p *Preferences) DirectScore(from, to ElementType, rel RelationshipType) int {
	if p == nil {
		return 0
	}
	return p.direct[directKey{from, to, rel}]
}

// BridgeScore returns the canonical score of bridging from → via → to.
func (p *Preferences) BridgeScore(from, via, to ElementType) int {
	if p == nil {
		return 0
	}
	return p.bridge[bridgeKey{from, via, to}]
}
