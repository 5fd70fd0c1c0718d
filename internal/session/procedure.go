package session

import (
	"context"
	"fmt"

	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/dusk-indust/archconnect/internal/resolution"
)

// createDirectLocked creates one relationship and registers it.
func (s *Session) createDirectLocked(ctx context.Context, sourceID, targetID string, d resolution.DirectRelationship) (CreatedConnection, error) {
	id, err := s.repo.CreateRelationship(ctx, sourceID, targetID, d.Type)
	if err != nil {
		return CreatedConnection{}, s.failure("create-relationship", err,
			fmt.Sprintf("create %s relationship", d.Type), "source", sourceID, "target", targetID)
	}
	conn := CreatedConnection{
		PrimaryEdgeID: id,
		PrimaryType:   d.Type,
		SourceID:      sourceID,
		TargetID:      targetID,
	}
	s.conns.add(conn)
	s.metrics.observeCreated(resolution.ChoiceDirect)
	s.log.V(1).Info("connection created", "edge", id, "type", string(d.Type))
	return conn.clone(), nil
}

// runIndirectLocked is the Indirect Path Procedure. It creates a derived
// element for every intermediate type (reusing reuse[i] when non-empty), then
// one relationship per hop along source, intermediates, target. The first
// failure aborts the procedure; elements created before it are kept.
func (s *Session) runIndirectLocked(
	ctx context.Context,
	sourceID, targetID string,
	path resolution.IndirectPath,
	anchor graph.Point,
	reuse []string,
) (CreatedConnection, error) {
	intermediates := make([]string, len(path.IntermediateTypes))
	for i, typ := range path.IntermediateTypes {
		if i < len(reuse) && reuse[i] != "" {
			intermediates[i] = reuse[i]
			continue
		}
		id, err := s.repo.CreateElement(ctx, graph.ElementSpec{
			Type:     typ,
			Name:     fmt.Sprintf("%s (auto)", typ),
			Derived:  true,
			Position: graph.Point{X: anchor.X + float64(i)*IntermediateSpacing, Y: anchor.Y},
		})
		if err != nil {
			return CreatedConnection{}, s.failure("create-element", err,
				fmt.Sprintf("create intermediate %s", typ), "source", sourceID, "target", targetID)
		}
		intermediates[i] = id
	}

	chain := make([]string, 0, len(intermediates)+2)
	chain = append(chain, sourceID)
	chain = append(chain, intermediates...)
	chain = append(chain, targetID)

	hopIDs := make([]string, 0, len(path.Hops))
	hopTypes := make([]ontology.RelationshipType, 0, len(path.Hops))
	for i, hop := range path.Hops {
		id, err := s.repo.CreateRelationship(ctx, chain[i], chain[i+1], hop.RelationshipType)
		if err != nil {
			return CreatedConnection{}, s.failure("create-relationship", err,
				fmt.Sprintf("create hop %d %s relationship", i+1, hop.RelationshipType), "from", chain[i], "to", chain[i+1])
		}
		hopIDs = append(hopIDs, id)
		hopTypes = append(hopTypes, hop.RelationshipType)
	}

	conn := CreatedConnection{
		PrimaryEdgeID:          hopIDs[0],
		PrimaryType:            hopTypes[0],
		SourceID:               sourceID,
		TargetID:               targetID,
		IsDerived:              true,
		IntermediateElementIDs: intermediates,
		IntermediateTypes:      append([]ontology.ElementType(nil), path.IntermediateTypes...),
		HopEdgeIDs:             hopIDs,
		HopTypes:               hopTypes,
		Collapsed:              true,
	}
	s.conns.add(conn)
	s.metrics.observeCreated(resolution.ChoiceIndirect)
	s.log.V(1).Info("derived connection created", "edge", conn.PrimaryEdgeID, "via", path.Label)
	return conn.clone(), nil
}

// failure logs a rejected repository operation and returns it wrapped.
func (s *Session) failure(op string, err error, msg string, kv ...any) error {
	s.metrics.observeFailure(op)
	s.log.Error(err, msg+" failed", kv...)
	return fmt.Errorf("%s: %w", msg, err)
}
