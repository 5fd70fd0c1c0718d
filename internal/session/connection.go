package session

import (
	"slices"

	"github.com/dusk-indust/archconnect/internal/ontology"
)

// CreatedConnection records a committed connection. For a derived connection
// the primary edge is the first hop.
type CreatedConnection struct {
	PrimaryEdgeID          string                      `json:"primaryEdgeId"`
	PrimaryType            ontology.RelationshipType   `json:"primaryType"`
	SourceID               string                      `json:"sourceId"`
	TargetID               string                      `json:"targetId"`
	IsDerived              bool                        `json:"isDerived"`
	IntermediateElementIDs []string                    `json:"intermediateElementIds,omitempty"`
	IntermediateTypes      []ontology.ElementType      `json:"intermediateTypes,omitempty"`
	HopEdgeIDs             []string                    `json:"hopEdgeIds,omitempty"`
	HopTypes               []ontology.RelationshipType `json:"hopTypes,omitempty"`
	Collapsed              bool                        `json:"collapsed"`
}

// EdgeIDs returns every relationship id the connection owns.
func (c CreatedConnection) EdgeIDs() []string {
	if c.IsDerived {
		return slices.Clone(c.HopEdgeIDs)
	}
	return []string{c.PrimaryEdgeID}
}

func (c CreatedConnection) owns(edgeID string) bool {
	return c.PrimaryEdgeID == edgeID || slices.Contains(c.HopEdgeIDs, edgeID)
}

func (c CreatedConnection) clone() CreatedConnection {
	c.IntermediateElementIDs = slices.Clone(c.IntermediateElementIDs)
	c.IntermediateTypes = slices.Clone(c.IntermediateTypes)
	c.HopEdgeIDs = slices.Clone(c.HopEdgeIDs)
	c.HopTypes = slices.Clone(c.HopTypes)
	return c
}

// registry holds created connections keyed by primary edge id, in creation order.
type registry struct {
	byPrimary map[string]*CreatedConnection
	order     []string
}

func newRegistry() *registry {
	return &registry{byPrimary: make(map[string]*CreatedConnection)}
}

func (r *registry) add(c CreatedConnection) {
	if _, ok := r.byPrimary[c.PrimaryEdgeID]; !ok {
		r.order = append(r.order, c.PrimaryEdgeID)
	}
	r.byPrimary[c.PrimaryEdgeID] = &c
}

// find returns the connection owning edgeID as primary or hop edge.
func (r *registry) find(edgeID string) (*CreatedConnection, bool) {
	if c, ok := r.byPrimary[edgeID]; ok {
		return c, true
	}
	for _, id := range r.order {
		if c := r.byPrimary[id]; c.owns(edgeID) {
			return c, true
		}
	}
	return nil, false
}

func (r *registry) remove(primaryEdgeID string) bool {
	if _, ok := r.byPrimary[primaryEdgeID]; !ok {
		return false
	}
	delete(r.byPrimary, primaryEdgeID)
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == primaryEdgeID })
	return true
}

func (r *registry) list() []CreatedConnection {
	out := make([]CreatedConnection, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byPrimary[id].clone())
	}
	return out
}
