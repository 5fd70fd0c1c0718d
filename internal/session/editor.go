package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/dusk-indust/archconnect/internal/resolution"
)

// Editor is an open connection editor. Its options are re-derived from the
// current ontology and filter when it opens, not copied from the original
// choice.
type Editor struct {
	Connection CreatedConnection
	Anchor     graph.Point
	SourceType ontology.ElementType
	TargetType ontology.ElementType
	Direct     []resolution.DirectRelationship
	Indirect   []resolution.IndirectPath
}

// Editor returns the open connection editor.
func (s *Session) Editor() (Editor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return Editor{}, false
	}
	return s.editorSnapshotLocked(), true
}

// OpenEditor reopens the registered connection owning edgeID. ok is false when
// the edge is not registered or an endpoint type cannot be resolved.
func (s *Session) OpenEditor(ctx context.Context, edgeID string, anchor graph.Point) (Editor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conns.find(edgeID)
	if !ok {
		s.log.V(1).Info("no registered connection for edge", "edge", edgeID)
		return Editor{}, false
	}
	srcType, ok := s.types.ElementType(ctx, c.SourceID)
	if !ok {
		s.log.V(1).Info("ignoring editor for unresolved source", "source", c.SourceID)
		return Editor{}, false
	}
	tgtType, ok := s.types.ElementType(ctx, c.TargetID)
	if !ok {
		s.log.V(1).Info("ignoring editor for unresolved target", "target", c.TargetID)
		return Editor{}, false
	}

	res := s.engine.ResolveConnection(c.SourceID, c.TargetID, srcType, tgtType, s.filter)
	s.closeOverlayLocked()
	s.editor = &Editor{
		Connection: c.clone(),
		Anchor:     anchor,
		SourceType: srcType,
		TargetType: tgtType,
		Direct:     res.DirectRelationships,
		Indirect:   res.IndirectPaths,
	}
	s.overlay = OverlayEditor
	return s.editorSnapshotLocked(), true
}

// CloseEditor closes the editor. It reports whether one was open.
func (s *Session) CloseEditor() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return false
	}
	s.closeOverlayLocked()
	return true
}

// ChangeType changes the edited direct connection's relationship type. The
// new type must be one of the editor's valid direct types. When the
// repository implements Retyper the edge is retyped first; a failure leaves
// the record unchanged.
func (s *Session) ChangeType(ctx context.Context, newType ontology.RelationshipType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor == nil {
		return ErrNoActiveEditor
	}
	c, ok := s.conns.find(s.editor.Connection.PrimaryEdgeID)
	if !ok {
		return ErrNoActiveEditor
	}
	if c.IsDerived {
		return fmt.Errorf("change type of %s: %w", c.PrimaryEdgeID, ErrDerived)
	}
	if !slices.ContainsFunc(s.editor.Direct, func(d resolution.DirectRelationship) bool { return d.Type == newType }) {
		return fmt.Errorf("relationship type %s: %w", newType, ErrIllegalChoice)
	}
	if newType == c.PrimaryType {
		return nil
	}
	if r, ok := s.repo.(Retyper); ok {
		if err := r.RetypeRelationship(ctx, c.PrimaryEdgeID, newType); err != nil {
			return s.failure("retype-relationship", err,
				fmt.Sprintf("retype %s to %s", c.PrimaryEdgeID, newType))
		}
	}
	c.PrimaryType = newType
	s.editor.Connection = c.clone()
	return nil
}

// ToggleIntermediates flips the edited derived connection between collapsed
// and expanded and returns the new collapsed flag. The graph is not touched.
func (s *Session) ToggleIntermediates() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor == nil {
		return false, ErrNoActiveEditor
	}
	c, ok := s.conns.find(s.editor.Connection.PrimaryEdgeID)
	if !ok {
		return false, ErrNoActiveEditor
	}
	if !c.IsDerived {
		return false, fmt.Errorf("toggle intermediates of %s: %w", c.PrimaryEdgeID, ErrNotDerived)
	}
	c.Collapsed = !c.Collapsed
	s.editor.Connection = c.clone()
	return c.Collapsed, nil
}

// SwitchPath replaces the edited connection with the editor's index-th
// indirect path. The old edges are deleted, old intermediates whose type the
// new path needs are reused in order, the rest are deleted, and the Indirect
// Path Procedure creates what is missing. Requires a Remover repository. A
// failure aborts at that step without restoring what was already removed.
// Once anything is removed the old connection leaves the registry and the
// editor closes, whether or not the switch completes.
func (s *Session) SwitchPath(ctx context.Context, index int) (CreatedConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor == nil {
		return CreatedConnection{}, ErrNoActiveEditor
	}
	rm, ok := s.repo.(Remover)
	if !ok {
		return CreatedConnection{}, fmt.Errorf("switch path: %w", ErrUnsupported)
	}
	if index < 0 || index >= len(s.editor.Indirect) {
		return CreatedConnection{}, fmt.Errorf("indirect path %d: %w", index, ErrIllegalChoice)
	}
	c, ok := s.conns.find(s.editor.Connection.PrimaryEdgeID)
	if !ok {
		return CreatedConnection{}, ErrNoActiveEditor
	}
	old := c.clone()
	path := s.editor.Indirect[index]
	anchor := s.editor.Anchor

	removed := false
	abort := func(err error) (CreatedConnection, error) {
		if removed {
			s.conns.remove(old.PrimaryEdgeID)
			s.closeOverlayLocked()
		}
		return CreatedConnection{}, err
	}

	for _, id := range old.EdgeIDs() {
		if err := rm.DeleteRelationship(ctx, id); err != nil {
			return abort(s.failure("delete-relationship", err, fmt.Sprintf("delete edge %s", id)))
		}
		removed = true
	}

	reuse, unused := planReuse(old, path.IntermediateTypes)
	for _, id := range unused {
		if err := rm.DeleteElement(ctx, id); err != nil {
			return abort(s.failure("delete-element", err, fmt.Sprintf("delete intermediate %s", id)))
		}
	}

	// The old record no longer describes the graph.
	s.conns.remove(old.PrimaryEdgeID)
	conn, err := s.runIndirectLocked(ctx, old.SourceID, old.TargetID, path, anchor, reuse)
	if err != nil {
		s.closeOverlayLocked()
		return CreatedConnection{}, err
	}
	if old.IsDerived && !old.Collapsed {
		conn.Collapsed = false
		if stored, ok := s.conns.find(conn.PrimaryEdgeID); ok {
			stored.Collapsed = false
		}
	}
	s.editor.Connection = conn.clone()
	return conn, nil
}

// planReuse matches old intermediates to the needed types in order. reuse[i]
// is the old element serving needed[i], or "" when one must be created.
func planReuse(old CreatedConnection, needed []ontology.ElementType) (reuse, unused []string) {
	taken := make([]bool, len(old.IntermediateElementIDs))
	reuse = make([]string, len(needed))
	for i, typ := range needed {
		for j, id := range old.IntermediateElementIDs {
			if !taken[j] && j < len(old.IntermediateTypes) && old.IntermediateTypes[j] == typ {
				taken[j] = true
				reuse[i] = id
				break
			}
		}
	}
	for j, id := range old.IntermediateElementIDs {
		if !taken[j] {
			unused = append(unused, id)
		}
	}
	return reuse, unused
}

func (s *Session) editorSnapshotLocked() Editor {
	e := *s.editor
	e.Connection = e.Connection.clone()
	return e
}
