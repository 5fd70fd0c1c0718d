package export

import (
	"context"
	"fmt"
	"slices"

	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/session"
)

// RecoverConnections rebuilds the derived connections of a stored graph so
// that a process without the session that created them can still draw them
// collapsed. A derived connection is a chain from a plain element through
// derived elements, each with exactly one incoming and one outgoing edge, to
// another plain element. Direct edges are not reported.
func RecoverConnections(ctx context.Context, store graph.Store) ([]session.CreatedConnection, error) {
	elements, err := store.ListElements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	rels, err := store.ListRelationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}

	derived := make(map[string]graph.Element)
	for _, e := range elements {
		if e.Derived {
			derived[e.ID] = e
		}
	}
	in := make(map[string]int)
	out := make(map[string][]graph.Relationship)
	for _, r := range rels {
		in[r.TargetID]++
		out[r.SourceID] = append(out[r.SourceID], r)
	}

	var conns []session.CreatedConnection
	for _, r := range rels {
		if _, ok := derived[r.SourceID]; ok {
			continue
		}
		if _, ok := derived[r.TargetID]; !ok {
			continue
		}
		c := session.CreatedConnection{
			PrimaryEdgeID: r.ID,
			PrimaryType:   r.Type,
			SourceID:      r.SourceID,
			IsDerived:     true,
			Collapsed:     true,
		}
		hop := r
		for {
			c.HopEdgeIDs = append(c.HopEdgeIDs, hop.ID)
			c.HopTypes = append(c.HopTypes, hop.Type)
			e, ok := derived[hop.TargetID]
			if !ok {
				c.TargetID = hop.TargetID
				break
			}
			if in[e.ID] != 1 || len(out[e.ID]) != 1 || slices.Contains(c.IntermediateElementIDs, e.ID) {
				c.TargetID = ""
				break
			}
			c.IntermediateElementIDs = append(c.IntermediateElementIDs, e.ID)
			c.IntermediateTypes = append(c.IntermediateTypes, e.Type)
			hop = out[e.ID][0]
		}
		if c.TargetID != "" {
			conns = append(conns, c)
		}
	}
	return conns, nil
}
