package mcptools

import (
	"context"
	"testing"

	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/dusk-indust/archconnect/internal/resolution"
	"github.com/dusk-indust/archconnect/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestService creates a ConnectService over the default catalog and an
// empty MemStore.
func newTestService(t *testing.T, viewpoint string) (*ConnectService, *graph.MemStore) {
	t.Helper()
	b, err := ontology.Default()
	require.NoError(t, err)
	store := graph.NewMemStore()
	require.NoError(t, store.InitSchema(context.Background()))
	svc, err := NewConnectService(resolution.NewEngineFromBundle(b), store, viewpoint)
	require.NoError(t, err)
	return svc, store
}

// seed creates one element per type and returns their ids by type.
func seed(t *testing.T, svc *ConnectService, types ...string) map[string]string {
	t.Helper()
	ids := make(map[string]string, len(types))
	for _, typ := range types {
		_, out, err := svc.CreateElement(context.Background(), nil, CreateElementInput{Type: typ})
		require.NoError(t, err)
		ids[typ] = out.Element.ID
	}
	return ids
}

func intPtr(n int) *int { return &n }

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNewConnectService_UnknownViewpoint(t *testing.T) {
	b, err := ontology.Default()
	require.NoError(t, err)
	_, err = NewConnectService(resolution.NewEngineFromBundle(b), graph.NewMemStore(), "nope")
	assert.ErrorIs(t, err, ontology.ErrUnknownViewpoint)
}

func TestListElementTypes(t *testing.T) {
	svc, _ := newTestService(t, "")
	ctx := context.Background()

	_, out, err := svc.ListElementTypes(ctx, nil, ListElementTypesInput{})
	require.NoError(t, err)
	assert.Len(t, out.ElementTypes, 18)
	assert.Contains(t, out.RelationshipTypes, "DEPLOYED_ON")
	assert.Len(t, out.Viewpoints, 4)

	_, out, err = svc.ListElementTypes(ctx, nil, ListElementTypesInput{Layer: "Technology"})
	require.NoError(t, err)
	var types []string
	for _, e := range out.ElementTypes {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{"Technology", "Node", "TechnologyService"}, types)

	_, _, err = svc.ListElementTypes(ctx, nil, ListElementTypesInput{Layer: "Physical"})
	assert.ErrorContains(t, err, `unknown layer "Physical"`)
}

func TestResolveConnection(t *testing.T) {
	svc, _ := newTestService(t, "")
	ctx := context.Background()

	_, out, err := svc.ResolveConnection(ctx, nil, ResolveConnectionInput{
		SourceType: "capability",
		TargetType: "Technology",
		SourceID:   "c1",
		TargetID:   "t1",
	})
	require.NoError(t, err)
	res := out.Resolution
	assert.Equal(t, resolution.RecommendAutoCreate, res.Recommendation)
	require.NotNil(t, res.AutoCreateChoice)
	assert.Equal(t, resolution.ChoiceIndirect, res.AutoCreateChoice.Kind)
	assert.Equal(t, []ontology.ElementType{"Application"}, res.AutoCreateChoice.Indirect.IntermediateTypes)
	assert.Equal(t, resolution.FeedbackIndirectValid, out.Feedback.Category)
	assert.Equal(t, "t1", out.Feedback.TargetID)
}

func TestResolveConnection_Errors(t *testing.T) {
	svc, _ := newTestService(t, "")
	ctx := context.Background()

	_, _, err := svc.ResolveConnection(ctx, nil, ResolveConnectionInput{SourceType: "Capabilty", TargetType: "Node"})
	require.ErrorIs(t, err, ontology.ErrUnknownElementType)
	assert.ErrorContains(t, err, "Capability")

	_, _, err = svc.ResolveConnection(ctx, nil, ResolveConnectionInput{SourceType: "Capability", TargetType: "Node", Viewpoint: "nope"})
	assert.ErrorIs(t, err, ontology.ErrUnknownViewpoint)
}

func TestResolveConnection_Viewpoint(t *testing.T) {
	svc, _ := newTestService(t, "capability-map")
	ctx := context.Background()

	_, out, err := svc.ResolveConnection(ctx, nil, ResolveConnectionInput{SourceType: "Capability", TargetType: "Technology"})
	require.NoError(t, err)
	assert.Equal(t, resolution.RecommendNoPath, out.Resolution.Recommendation, "the default viewpoint hides the bridge")
	assert.Contains(t, out.Resolution.NoPathSuggestion, "viewpoint")

	_, out, err = svc.ResolveConnection(ctx, nil, ResolveConnectionInput{SourceType: "Capability", TargetType: "Technology", Viewpoint: "technology-usage"})
	require.NoError(t, err)
	assert.Equal(t, resolution.RecommendAutoCreate, out.Resolution.Recommendation)
}

func TestResolveForSource(t *testing.T) {
	svc, _ := newTestService(t, "")
	ctx := context.Background()
	ids := seed(t, svc, "Capability", "BusinessProcess", "Technology")

	_, out, err := svc.ResolveForSource(ctx, nil, ResolveForSourceInput{SourceID: ids["Capability"]})
	require.NoError(t, err)
	require.Len(t, out.Resolutions, 2, "every element except the source")
	assert.Equal(t, ids["BusinessProcess"], out.Resolutions[0].TargetID)
	assert.Equal(t, ids["Technology"], out.Resolutions[1].TargetID)

	_, out, err = svc.ResolveForSource(ctx, nil, ResolveForSourceInput{
		SourceID:  ids["Capability"],
		TargetIDs: []string{ids["Technology"], "ghost"},
	})
	require.NoError(t, err)
	require.Len(t, out.Resolutions, 1)
	assert.Equal(t, []string{"ghost"}, out.Skipped)

	_, _, err = svc.ResolveForSource(ctx, nil, ResolveForSourceInput{SourceID: "ghost"})
	assert.ErrorContains(t, err, "not found")
	_, _, err = svc.ResolveForSource(ctx, nil, ResolveForSourceInput{})
	assert.ErrorContains(t, err, "sourceId is required")
}

func TestCreateElement(t *testing.T) {
	svc, store := newTestService(t, "")
	ctx := context.Background()

	_, out, err := svc.CreateElement(ctx, nil, CreateElementInput{Type: "node", Name: "db-01", X: 3, Y: 4})
	require.NoError(t, err)
	assert.Equal(t, ontology.ElementType("Node"), out.Element.Type)

	got, err := store.GetElement(ctx, out.Element.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "db-01", got.Name)
	assert.Equal(t, graph.Point{X: 3, Y: 4}, got.Position)

	_, _, err = svc.CreateElement(ctx, nil, CreateElementInput{Type: "Server"})
	assert.ErrorIs(t, err, ontology.ErrUnknownElementType)
}

func TestConnectElements_AutoCreate(t *testing.T) {
	svc, store := newTestService(t, "")
	ctx := context.Background()
	ids := seed(t, svc, "Capability", "Technology")

	_, out, err := svc.ConnectElements(ctx, nil, ConnectElementsInput{
		SourceID: ids["Capability"],
		TargetID: ids["Technology"],
	})
	require.NoError(t, err)
	assert.Equal(t, string(session.OutcomeCreated), out.Outcome)
	require.NotNil(t, out.Connection)
	assert.True(t, out.Connection.IsDerived)

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, graph.GraphStats{ElementCount: 3, DerivedCount: 1, RelationshipCount: 2}, *st)
	assert.Len(t, svc.Session().Connections(), 1)
}

func TestConnectElements_Chooser(t *testing.T) {
	svc, store := newTestService(t, "")
	ctx := context.Background()
	_, a1, err := svc.CreateElement(ctx, nil, CreateElementInput{Type: "Application", Name: "billing"})
	require.NoError(t, err)
	_, a2, err := svc.CreateElement(ctx, nil, CreateElementInput{Type: "Application", Name: "ledger"})
	require.NoError(t, err)
	in := ConnectElementsInput{SourceID: a1.Element.ID, TargetID: a2.Element.ID}

	_, out, err := svc.ConnectElements(ctx, nil, in)
	require.NoError(t, err)
	assert.Equal(t, string(session.OutcomeChooserOpened), out.Outcome)
	require.Len(t, out.Direct, 2)
	assert.Equal(t, ontology.RelationshipType("FLOWS_TO"), out.Direct[0].Type)
	assert.Equal(t, session.OverlayNone, svc.Session().Overlay(), "the chooser is dismissed between calls")

	in.DirectIndex = intPtr(1)
	_, out, err = svc.ConnectElements(ctx, nil, in)
	require.NoError(t, err)
	assert.Equal(t, string(session.OutcomeCreated), out.Outcome)
	assert.Equal(t, ontology.RelationshipType("COMPOSED_OF"), out.Connection.PrimaryType)

	rels, err := store.ListRelationships(ctx)
	require.NoError(t, err)
	assert.Len(t, rels, 1)

	in.DirectIndex = intPtr(7)
	_, _, err = svc.ConnectElements(ctx, nil, in)
	assert.ErrorIs(t, err, session.ErrIllegalChoice)

	in.IndirectIndex = intPtr(0)
	_, _, err = svc.ConnectElements(ctx, nil, in)
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestConnectElements_SameElement(t *testing.T) {
	svc, store := newTestService(t, "")
	ctx := context.Background()
	ids := seed(t, svc, "Application")

	_, _, err := svc.ConnectElements(ctx, nil, ConnectElementsInput{
		SourceID: ids["Application"],
		TargetID: ids["Application"],
	})
	assert.ErrorContains(t, err, "must differ")
	assert.Equal(t, session.StateIdle, svc.Session().State())

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.RelationshipCount)
}

func TestConnectElements_NoPath(t *testing.T) {
	svc, store := newTestService(t, "")
	ctx := context.Background()
	ids := seed(t, svc, "Technology", "Capability")

	_, out, err := svc.ConnectElements(ctx, nil, ConnectElementsInput{
		SourceID: ids["Technology"],
		TargetID: ids["Capability"],
	})
	require.NoError(t, err)
	assert.Equal(t, string(session.OutcomeNoPath), out.Outcome)
	assert.NotEmpty(t, out.Message)

	rels, err := store.ListRelationships(ctx)
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestExportModel(t *testing.T) {
	svc, _ := newTestService(t, "")
	ctx := context.Background()
	ids := seed(t, svc, "Capability", "BusinessProcess")
	_, _, err := svc.ConnectElements(ctx, nil, ConnectElementsInput{SourceID: ids["Capability"], TargetID: ids["BusinessProcess"]})
	require.NoError(t, err)

	_, out, err := svc.ExportModel(ctx, nil, ExportModelInput{})
	require.NoError(t, err)
	require.NotNil(t, out.Model)
	assert.Len(t, out.Model.Elements, 2)
	require.Len(t, out.Model.Connections, 1)
	assert.Equal(t, ontology.RelationshipType("REALIZED_BY"), out.Model.Connections[0].PrimaryType)
}
