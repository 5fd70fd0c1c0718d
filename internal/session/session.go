// Package session tracks one interactive connect gesture: it batch-resolves a
// source against its candidate targets, maps hovers to feedback, turns a drop
// into repository mutations or a chooser, and manages committed connections
// through the connection editor.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/dusk-indust/archconnect/internal/resolution"
	"github.com/go-logr/logr"
)

// State is the gesture state.
type State string

const (
	StateIdle     State = "idle"
	StateDragging State = "dragging"
	StateHovering State = "hoveringTarget"
)

// Overlay is the open chooser or editor. At most one is open.
type Overlay string

const (
	OverlayNone    Overlay = ""
	OverlayPalette Overlay = "palette"
	OverlayEditor  Overlay = "editor"
)

// DismissReason says why an overlay was closed.
type DismissReason string

const (
	DismissExplicit     DismissReason = "explicit"
	DismissOutsideClick DismissReason = "outside-click"
	DismissEscape       DismissReason = "escape"
)

// OutcomeKind is what a drop or palette selection did.
type OutcomeKind string

const (
	OutcomeCreated       OutcomeKind = "created"
	OutcomeChooserOpened OutcomeKind = "chooser-opened"
	OutcomeNoPath        OutcomeKind = "no-path"
	OutcomeIgnored       OutcomeKind = "ignored"
)

// Outcome reports the result of a drop.
type Outcome struct {
	Kind       OutcomeKind
	Connection *CreatedConnection
	Palette    *Palette
	// Message is the advisory text for OutcomeNoPath.
	Message string
}

// Palette is an open chooser for an ambiguous drop.
type Palette struct {
	SourceID       string
	TargetID       string
	Anchor         graph.Point
	Recommendation resolution.Recommendation
	Direct         []resolution.DirectRelationship
	Indirect       []resolution.IndirectPath
}

// IntermediateSpacing is the horizontal distance between auto-created
// intermediate elements placed from a drop anchor.
const IntermediateSpacing = 160.0

// Session is a single-user connect-gesture state machine. It owns its
// connection registry; the engine and repository are injected.
type Session struct {
	engine *resolution.Engine
	repo   Repository
	types  TypeResolver
	filter *ontology.Filter

	log     logr.Logger
	metrics *Metrics

	mu      sync.Mutex
	state   State
	source  resolution.Endpoint
	cache   map[string]resolution.ConnectionResolution
	hover   string
	board   *resolution.FeedbackBoard
	overlay Overlay
	palette *Palette
	editor  *Editor
	conns   *registry
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for informational notices and repository failures.
func WithLogger(l logr.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithMetrics records session activity on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithFilter restricts resolution to the relationship types f allows.
func WithFilter(f *ontology.Filter) Option {
	return func(s *Session) { s.filter = f }
}

// New creates an idle session.
func New(engine *resolution.Engine, repo Repository, types TypeResolver, opts ...Option) *Session {
	s := &Session{
		engine: engine,
		repo:   repo,
		types:  types,
		log:    logr.Discard(),
		state:  StateIdle,
		board:  resolution.NewFeedbackBoard(),
		conns:  newRegistry(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the current gesture state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Overlay returns the open overlay, if any.
func (s *Session) Overlay() Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}

// Palette returns the open chooser.
func (s *Session) Palette() (Palette, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.palette == nil {
		return Palette{}, false
	}
	return *s.palette, true
}

// Feedback returns the feedback currently shown on targetID.
func (s *Session) Feedback(targetID string) (resolution.Feedback, bool) {
	return s.board.Active(targetID)
}

// ---------- Gesture ----------

// Start begins a gesture from sourceID, replacing any gesture in progress, and
// resolves the source against every target in one batch. Targets whose type
// cannot be resolved are skipped. An unresolvable source leaves the session
// idle without error. The only error is ctx's.
func (s *Session) Start(ctx context.Context, sourceID string, targetIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetGestureLocked()
	s.closeOverlayLocked()

	srcType, ok := s.types.ElementType(ctx, sourceID)
	if !ok {
		s.log.V(1).Info("ignoring gesture from unresolved source", "source", sourceID)
		return nil
	}
	source := resolution.Endpoint{ID: sourceID, Type: srcType}

	targets := make([]resolution.Endpoint, 0, len(targetIDs))
	for _, id := range targetIDs {
		typ, ok := s.types.ElementType(ctx, id)
		if !ok {
			s.log.V(1).Info("skipping unresolved target", "target", id)
			continue
		}
		targets = append(targets, resolution.Endpoint{ID: id, Type: typ})
	}

	began := time.Now()
	cache, err := s.engine.ResolveConnectionsForSource(ctx, source, targets, s.filter)
	if err != nil {
		return err
	}
	s.metrics.observeBatch(time.Since(began))

	s.source = source
	s.cache = cache
	s.state = StateDragging
	return nil
}

// Hover shows feedback for targetID and makes it the active hover target. It
// never creates anything. ok is false outside a gesture or when the target's
// type cannot be resolved.
func (s *Session) Hover(ctx context.Context, targetID string) (resolution.Feedback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle || targetID == s.source.ID {
		return resolution.Feedback{}, false
	}
	res, ok := s.resolveLocked(ctx, targetID)
	if !ok {
		return resolution.Feedback{}, false
	}
	if s.hover != "" && s.hover != targetID {
		s.board.Clear(s.hover)
	}
	fb := resolution.GetConnectionFeedback(res)
	s.board.Show(fb)
	s.hover = targetID
	s.state = StateHovering
	return fb, true
}

// Leave clears the feedback on targetID. Leaving a target without feedback is
// a no-op.
func (s *Session) Leave(targetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.Clear(targetID)
	if s.hover == targetID {
		s.hover = ""
		if s.state == StateHovering {
			s.state = StateDragging
		}
	}
}

// Drop ends the gesture on targetID and acts on the verdict: it creates the
// auto-create choice, opens a chooser, or reports the no-path advisory. A
// repository failure is logged and returned; nothing further is attempted.
// Dropping on the source ends the gesture without creating anything.
func (s *Session) Drop(ctx context.Context, targetID string, anchor graph.Point) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return Outcome{Kind: OutcomeIgnored}, nil
	}
	if targetID == s.source.ID {
		s.resetGestureLocked()
		return Outcome{Kind: OutcomeIgnored}, nil
	}
	res, ok := s.resolveLocked(ctx, targetID)
	s.resetGestureLocked()
	if !ok {
		return Outcome{Kind: OutcomeIgnored}, nil
	}
	s.metrics.observeResolution(res.Recommendation)

	switch res.Recommendation {
	case resolution.RecommendAutoCreate:
		var conn CreatedConnection
		var err error
		switch res.AutoCreateChoice.Kind {
		case resolution.ChoiceDirect:
			conn, err = s.createDirectLocked(ctx, res.SourceID, res.TargetID, *res.AutoCreateChoice.Direct)
		case resolution.ChoiceIndirect:
			conn, err = s.runIndirectLocked(ctx, res.SourceID, res.TargetID, *res.AutoCreateChoice.Indirect, anchor, nil)
		default:
			return Outcome{}, fmt.Errorf("unknown auto-create choice %q", res.AutoCreateChoice.Kind)
		}
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeCreated, Connection: &conn}, nil

	case resolution.RecommendChooseDirect, resolution.RecommendChooseAny:
		s.closeOverlayLocked()
		s.palette = &Palette{
			SourceID:       res.SourceID,
			TargetID:       res.TargetID,
			Anchor:         anchor,
			Recommendation: res.Recommendation,
			Direct:         res.DirectRelationships,
			Indirect:       res.IndirectPaths,
		}
		s.overlay = OverlayPalette
		p := *s.palette
		return Outcome{Kind: OutcomeChooserOpened, Palette: &p}, nil

	default:
		s.log.Info(res.NoPathSuggestion, "source", res.SourceID, "target", res.TargetID)
		return Outcome{Kind: OutcomeNoPath, Message: res.NoPathSuggestion}, nil
	}
}

// Cancel abandons the gesture in progress without mutating anything. It
// reports whether a gesture was active.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.state != StateIdle
	s.resetGestureLocked()
	return active
}

// ---------- Chooser ----------

// SelectDirect creates the index-th direct option of the open chooser and
// closes it.
func (s *Session) SelectDirect(ctx context.Context, index int) (CreatedConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.palette == nil {
		return CreatedConnection{}, ErrNoActivePalette
	}
	p := s.palette
	if index < 0 || index >= len(p.Direct) {
		return CreatedConnection{}, fmt.Errorf("direct option %d: %w", index, ErrIllegalChoice)
	}
	s.closeOverlayLocked()
	return s.createDirectLocked(ctx, p.SourceID, p.TargetID, p.Direct[index])
}

// SelectIndirect runs the Indirect Path Procedure for the index-th path of the
// open chooser and closes it.
func (s *Session) SelectIndirect(ctx context.Context, index int) (CreatedConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.palette == nil {
		return CreatedConnection{}, ErrNoActivePalette
	}
	p := s.palette
	if index < 0 || index >= len(p.Indirect) {
		return CreatedConnection{}, fmt.Errorf("indirect path %d: %w", index, ErrIllegalChoice)
	}
	s.closeOverlayLocked()
	return s.runIndirectLocked(ctx, p.SourceID, p.TargetID, p.Indirect[index], p.Anchor, nil)
}

// Dismiss closes the open chooser or editor. It reports whether one was open.
func (s *Session) Dismiss(reason DismissReason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay == OverlayNone {
		return false
	}
	s.log.V(1).Info("overlay dismissed", "overlay", string(s.overlay), "reason", string(reason))
	s.closeOverlayLocked()
	return true
}

// ---------- Registry ----------

// Connections returns every registered connection in creation order.
func (s *Session) Connections() []CreatedConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns.list()
}

// Connection returns the connection owning edgeID as its primary or hop edge.
func (s *Session) Connection(edgeID string) (CreatedConnection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conns.find(edgeID)
	if !ok {
		return CreatedConnection{}, false
	}
	return c.clone(), true
}

// Forget drops the connection owning edgeID from the registry, closing its
// editor if open. The graph is not touched.
func (s *Session) Forget(edgeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conns.find(edgeID)
	if !ok {
		return false
	}
	if s.editor != nil && s.editor.Connection.PrimaryEdgeID == c.PrimaryEdgeID {
		s.closeOverlayLocked()
	}
	return s.conns.remove(c.PrimaryEdgeID)
}

// ---------- Internal helpers ----------

// resolveLocked returns the cached verdict for targetID or computes a fresh one.
func (s *Session) resolveLocked(ctx context.Context, targetID string) (resolution.ConnectionResolution, bool) {
	if res, ok := s.cache[targetID]; ok {
		return res, true
	}
	typ, ok := s.types.ElementType(ctx, targetID)
	if !ok {
		s.log.V(1).Info("ignoring unresolved target", "target", targetID)
		return resolution.ConnectionResolution{}, false
	}
	res := s.engine.ResolveConnection(s.source.ID, targetID, s.source.Type, typ, s.filter)
	s.cache[targetID] = res
	return res, true
}

func (s *Session) resetGestureLocked() {
	s.state = StateIdle
	s.source = resolution.Endpoint{}
	s.cache = nil
	s.hover = ""
	s.board.ClearAll()
}

func (s *Session) closeOverlayLocked() {
	s.overlay = OverlayNone
	s.palette = nil
	s.editor = nil
}
