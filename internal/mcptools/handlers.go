package mcptools

import (
	"context"
	"fmt"
	"sync"

	"github.com/dusk-indust/archconnect/internal/export"
	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/dusk-indust/archconnect/internal/resolution"
	"github.com/dusk-indust/archconnect/internal/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ConnectService holds the engine, model store and connect session used by
// MCP tool handlers.
type ConnectService struct {
	engine    *resolution.Engine
	store     graph.Store
	viewpoint string

	// mu serializes connect_elements: a session tracks one gesture at a time.
	mu      sync.Mutex
	session *session.Session
}

// NewConnectService creates a ConnectService. viewpoint names the default
// viewpoint filter ("" for none); opts configure the connect session.
func NewConnectService(engine *resolution.Engine, store graph.Store, viewpoint string, opts ...session.Option) (*ConnectService, error) {
	filter, err := engine.Ontology().ViewpointFilter(viewpoint)
	if err != nil {
		return nil, err
	}
	opts = append([]session.Option{session.WithFilter(filter)}, opts...)
	return &ConnectService{
		engine:    engine,
		store:     store,
		viewpoint: viewpoint,
		session:   session.New(engine, store, graph.NewTypeResolver(store), opts...),
	}, nil
}

// Session returns the service's connect session.
func (s *ConnectService) Session() *session.Session {
	return s.session
}

// ListElementTypes returns the ontology's element types, relationship types
// and viewpoints.
func (s *ConnectService) ListElementTypes(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListElementTypesInput,
) (*mcp.CallToolResult, ListElementTypesOutput, error) {
	ont := s.engine.Ontology()
	out := ListElementTypesOutput{
		ElementTypes:      []ElementTypeInfo{},
		RelationshipTypes: []string{},
		Viewpoints:        []ViewpointInfo{},
	}
	if input.Layer != "" && !ontology.Layer(input.Layer).IsValid() {
		return nil, ListElementTypesOutput{}, fmt.Errorf("unknown layer %q", input.Layer)
	}
	for _, e := range ont.ElementTypes() {
		if input.Layer != "" && string(e.Layer) != input.Layer {
			continue
		}
		out.ElementTypes = append(out.ElementTypes, ElementTypeInfo{
			Type:  string(e.Type),
			Layer: string(e.Layer),
			Label: e.Label,
		})
	}
	for _, r := range ont.Relationships() {
		out.RelationshipTypes = append(out.RelationshipTypes, string(r.Type))
	}
	for _, vp := range ont.Viewpoints() {
		info := ViewpointInfo{Name: vp.Name, Description: vp.Description, Relationships: []string{}}
		for _, r := range vp.Relationships {
			info.Relationships = append(info.Relationships, string(r))
		}
		out.Viewpoints = append(out.Viewpoints, info)
	}
	return nil, out, nil
}

// ResolveConnection computes the verdict for a pair of element types.
func (s *ConnectService) ResolveConnection(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ResolveConnectionInput,
) (*mcp.CallToolResult, ResolveConnectionOutput, error) {
	ont := s.engine.Ontology()
	src, err := ont.ParseElementType(input.SourceType)
	if err != nil {
		return nil, ResolveConnectionOutput{}, fmt.Errorf("sourceType: %w", err)
	}
	tgt, err := ont.ParseElementType(input.TargetType)
	if err != nil {
		return nil, ResolveConnectionOutput{}, fmt.Errorf("targetType: %w", err)
	}
	filter, err := s.filter(input.Viewpoint)
	if err != nil {
		return nil, ResolveConnectionOutput{}, err
	}

	res := s.engine.ResolveConnection(input.SourceID, input.TargetID, src, tgt, filter)
	return nil, ResolveConnectionOutput{
		Resolution: res,
		Feedback:   resolution.GetConnectionFeedback(res),
	}, nil
}

// ResolveForSource batch-resolves a model element against candidate targets.
// Targets missing from the model are reported as skipped.
func (s *ConnectService) ResolveForSource(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveForSourceInput,
) (*mcp.CallToolResult, ResolveForSourceOutput, error) {
	if input.SourceID == "" {
		return nil, ResolveForSourceOutput{}, fmt.Errorf("sourceId is required")
	}
	filter, err := s.filter(input.Viewpoint)
	if err != nil {
		return nil, ResolveForSourceOutput{}, err
	}
	src, err := s.store.GetElement(ctx, input.SourceID)
	if err != nil {
		return nil, ResolveForSourceOutput{}, fmt.Errorf("get source: %w", err)
	}
	if src == nil {
		return nil, ResolveForSourceOutput{}, fmt.Errorf("source element %q not found", input.SourceID)
	}

	var out ResolveForSourceOutput
	var targets []resolution.Endpoint
	if len(input.TargetIDs) == 0 {
		elems, err := s.store.ListElements(ctx)
		if err != nil {
			return nil, ResolveForSourceOutput{}, fmt.Errorf("list elements: %w", err)
		}
		for _, e := range elems {
			targets = append(targets, resolution.Endpoint{ID: e.ID, Type: e.Type})
		}
	} else {
		for _, id := range input.TargetIDs {
			e, err := s.store.GetElement(ctx, id)
			if err != nil {
				return nil, ResolveForSourceOutput{}, fmt.Errorf("get target: %w", err)
			}
			if e == nil {
				out.Skipped = append(out.Skipped, id)
				continue
			}
			targets = append(targets, resolution.Endpoint{ID: e.ID, Type: e.Type})
		}
	}

	verdicts, err := s.engine.ResolveConnectionsForSource(ctx,
		resolution.Endpoint{ID: src.ID, Type: src.Type}, targets, filter)
	if err != nil {
		return nil, ResolveForSourceOutput{}, err
	}
	out.Resolutions = make([]resolution.ConnectionResolution, 0, len(verdicts))
	for _, t := range targets {
		if v, ok := verdicts[t.ID]; ok {
			out.Resolutions = append(out.Resolutions, v)
		}
	}
	return nil, out, nil
}

// CreateElement adds an element to the model.
func (s *ConnectService) CreateElement(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateElementInput,
) (*mcp.CallToolResult, CreateElementOutput, error) {
	typ, err := s.engine.Ontology().ParseElementType(input.Type)
	if err != nil {
		return nil, CreateElementOutput{}, fmt.Errorf("type: %w", err)
	}
	name := input.Name
	if name == "" {
		name = string(typ)
	}
	spec := graph.ElementSpec{Type: typ, Name: name, Position: graph.Point{X: input.X, Y: input.Y}}
	id, err := s.store.CreateElement(ctx, spec)
	if err != nil {
		return nil, CreateElementOutput{}, fmt.Errorf("create element: %w", err)
	}
	return nil, CreateElementOutput{Element: graph.Element{
		ID:       id,
		Type:     spec.Type,
		Name:     spec.Name,
		Position: spec.Position,
	}}, nil
}

// ConnectElements runs one connect gesture from source to target. An
// ambiguous drop returns the chooser options unless the input picks one.
func (s *ConnectService) ConnectElements(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConnectElementsInput,
) (*mcp.CallToolResult, ConnectElementsOutput, error) {
	if input.SourceID == "" || input.TargetID == "" {
		return nil, ConnectElementsOutput{}, fmt.Errorf("sourceId and targetId are required")
	}
	if input.SourceID == input.TargetID {
		return nil, ConnectElementsOutput{}, fmt.Errorf("sourceId and targetId must differ")
	}
	if input.DirectIndex != nil && input.IndirectIndex != nil {
		return nil, ConnectElementsOutput{}, fmt.Errorf("directIndex and indirectIndex are mutually exclusive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.Start(ctx, input.SourceID, []string{input.TargetID}); err != nil {
		return nil, ConnectElementsOutput{}, err
	}
	outcome, err := s.session.Drop(ctx, input.TargetID, graph.Point{X: input.X, Y: input.Y})
	if err != nil {
		return nil, ConnectElementsOutput{}, err
	}

	out := ConnectElementsOutput{
		Outcome:    string(outcome.Kind),
		Connection: outcome.Connection,
		Message:    outcome.Message,
	}
	if outcome.Kind != session.OutcomeChooserOpened {
		return nil, out, nil
	}

	var conn session.CreatedConnection
	switch {
	case input.DirectIndex != nil:
		conn, err = s.session.SelectDirect(ctx, *input.DirectIndex)
	case input.IndirectIndex != nil:
		conn, err = s.session.SelectIndirect(ctx, *input.IndirectIndex)
	default:
		out.Direct = outcome.Palette.Direct
		out.Indirect = outcome.Palette.Indirect
		s.session.Dismiss(session.DismissExplicit)
		return nil, out, nil
	}
	if err != nil {
		s.session.Dismiss(session.DismissExplicit)
		return nil, ConnectElementsOutput{}, err
	}
	out.Outcome = string(session.OutcomeCreated)
	out.Connection = &conn
	return nil, out, nil
}

// ExportModel returns the model graph and the connections created through
// this service.
func (s *ConnectService) ExportModel(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ExportModelInput,
) (*mcp.CallToolResult, ExportModelOutput, error) {
	model, err := export.ExportModel(ctx, s.store, s.session.Connections())
	if err != nil {
		return nil, ExportModelOutput{}, err
	}
	return nil, ExportModelOutput{Model: model}, nil
}

// filter returns the viewpoint filter for name, or the service default.
func (s *ConnectService) filter(name string) (*ontology.Filter, error) {
	if name == "" {
		name = s.viewpoint
	}
	return s.engine.Ontology().ViewpointFilter(name)
}
