package session

import (
	"context"
	"errors"
	"testing"

	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dropDirect connects source to target with a direct auto-create or the first
// chooser option.
func dropDirect(t *testing.T, f *fixture, source, target string) CreatedConnection {
	t.Helper()
	ctx := context.Background()
	f.start(t, source)
	out, err := f.s.Drop(ctx, f.ids[target], graph.Point{})
	require.NoError(t, err)
	switch out.Kind {
	case OutcomeCreated:
		return *out.Connection
	case OutcomeChooserOpened:
		c, err := f.s.SelectDirect(ctx, 0)
		require.NoError(t, err)
		return c
	default:
		t.Fatalf("unexpected outcome %s", out.Kind)
		return CreatedConnection{}
	}
}

func TestChangeType_DirectConnection(t *testing.T) {
	f := newFixture(t, false, scenarioElements)
	ctx := context.Background()
	c := dropDirect(t, f, "a1", "a2")
	require.Equal(t, ontology.RelationshipType("FLOWS_TO"), c.PrimaryType)

	ed, ok := f.s.OpenEditor(ctx, c.PrimaryEdgeID, graph.Point{X: 5})
	require.True(t, ok)
	assert.Equal(t, OverlayEditor, f.s.Overlay())
	assert.Len(t, ed.Direct, 2)

	require.NoError(t, f.s.ChangeType(ctx, "COMPOSED_OF"))

	got, ok := f.s.Connection(c.PrimaryEdgeID)
	require.True(t, ok)
	assert.Equal(t, ontology.RelationshipType("COMPOSED_OF"), got.PrimaryType)
	assert.False(t, got.IsDerived)
	assert.Empty(t, got.IntermediateElementIDs)

	rel, err := f.repo.GetRelationship(ctx, c.PrimaryEdgeID)
	require.NoError(t, err)
	assert.Equal(t, ontology.RelationshipType("COMPOSED_OF"), rel.Type, "the edge is retyped in the repository")

	ed, _ = f.s.Editor()
	assert.Equal(t, ontology.RelationshipType("COMPOSED_OF"), ed.Connection.PrimaryType)
}

func TestChangeType_Rejections(t *testing.T) {
	f := newFixture(t, false, scenarioElements)
	ctx := context.Background()

	assert.ErrorIs(t, f.s.ChangeType(ctx, "FLOWS_TO"), ErrNoActiveEditor)

	c := dropDirect(t, f, "a1", "a2")
	_, ok := f.s.OpenEditor(ctx, c.PrimaryEdgeID, graph.Point{})
	require.True(t, ok)
	assert.ErrorIs(t, f.s.ChangeType(ctx, "DEPLOYED_ON"), ErrIllegalChoice)

	f.start(t, "c1")
	out, err := f.s.Drop(ctx, f.ids["t1"], graph.Point{})
	require.NoError(t, err)
	_, ok = f.s.OpenEditor(ctx, out.Connection.PrimaryEdgeID, graph.Point{})
	require.True(t, ok)
	assert.ErrorIs(t, f.s.ChangeType(ctx, "SUPPORTED_BY"), ErrDerived)
}

func TestChangeType_RetypeFailureKeepsRecord(t *testing.T) {
	f := newFixture(t, false, scenarioElements)
	ctx := context.Background()
	c := dropDirect(t, f, "a1", "a2")
	_, ok := f.s.OpenEditor(ctx, c.PrimaryEdgeID, graph.Point{})
	require.True(t, ok)

	boom := errors.New("locked")
	f.repo.failRetype = boom
	require.ErrorIs(t, f.s.ChangeType(ctx, "COMPOSED_OF"), boom)

	got, _ := f.s.Connection(c.PrimaryEdgeID)
	assert.Equal(t, ontology.RelationshipType("FLOWS_TO"), got.PrimaryType)
	assert.True(t, f.logs.contains("locked"))
}

func TestChangeType_WithoutRetyperUpdatesRecordOnly(t *testing.T) {
	store := graph.NewMemStore()
	ctx := context.Background()
	a1, err := store.CreateElement(ctx, graph.ElementSpec{Type: "Application"})
	require.NoError(t, err)
	a2, err := store.CreateElement(ctx, graph.ElementSpec{Type: "Application"})
	require.NoError(t, err)

	s := New(newEngine(t, false), plainRepo{store: store}, graph.NewTypeResolver(store))
	require.NoError(t, s.Start(ctx, a1, []string{a2}))
	_, err = s.Drop(ctx, a2, graph.Point{})
	require.NoError(t, err)
	c, err := s.SelectDirect(ctx, 0)
	require.NoError(t, err)

	_, ok := s.OpenEditor(ctx, c.PrimaryEdgeID, graph.Point{})
	require.True(t, ok)
	require.NoError(t, s.ChangeType(ctx, "COMPOSED_OF"))

	got, _ := s.Connection(c.PrimaryEdgeID)
	assert.Equal(t, ontology.RelationshipType("COMPOSED_OF"), got.PrimaryType)
	rel, err := store.GetRelationship(ctx, c.PrimaryEdgeID)
	require.NoError(t, err)
	assert.Equal(t, ontology.RelationshipType("FLOWS_TO"), rel.Type)

	_, err = s.SwitchPath(ctx, 0)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestOpenEditor_Unknown(t *testing.T) {
	f := newFixture(t, false, scenarioElements)
	_, ok := f.s.OpenEditor(context.Background(), "ghost", graph.Point{})
	assert.False(t, ok)
	assert.Equal(t, OverlayNone, f.s.Overlay())
}

func TestOpenEditor_ReplacesPalette(t *testing.T) {
	f := newFixture(t, false, scenarioElements)
	ctx := context.Background()
	c := dropDirect(t, f, "c1", "p1")

	f.start(t, "a1")
	out, err := f.s.Drop(ctx, f.ids["a2"], graph.Point{})
	require.NoError(t, err)
	require.Equal(t, OutcomeChooserOpened, out.Kind)

	_, ok := f.s.OpenEditor(ctx, c.PrimaryEdgeID, graph.Point{})
	require.True(t, ok)
	assert.Equal(t, OverlayEditor, f.s.Overlay())
	_, ok = f.s.Palette()
	assert.False(t, ok, "at most one overlay is open")

	assert.True(t, f.s.CloseEditor())
	assert.False(t, f.s.CloseEditor())
}

func TestToggleIntermediates(t *testing.T) {
	f := newFixture(t, false, scenarioElements)
	ctx := context.Background()

	_, err := f.s.ToggleIntermediates()
	assert.ErrorIs(t, err, ErrNoActiveEditor)

	f.start(t, "c1")
	out, err := f.s.Drop(ctx, f.ids["t1"], graph.Point{})
	require.NoError(t, err)
	before := f.stats(t)

	_, ok := f.s.OpenEditor(ctx, out.Connection.HopEdgeIDs[1], graph.Point{})
	require.True(t, ok)
	collapsed, err := f.s.ToggleIntermediates()
	require.NoError(t, err)
	assert.False(t, collapsed)
	collapsed, err = f.s.ToggleIntermediates()
	require.NoError(t, err)
	assert.True(t, collapsed)
	assert.Equal(t, before, f.stats(t), "toggling never touches the graph")

	direct := dropDirect(t, f, "c1", "p1")
	_, ok = f.s.OpenEditor(ctx, direct.PrimaryEdgeID, graph.Point{})
	require.True(t, ok)
	_, err = f.s.ToggleIntermediates()
	assert.ErrorIs(t, err, ErrNotDerived)
}

func TestSwitchPath_ReusesMatchingIntermediate(t *testing.T) {
	f := newFixture(t, true, scenarioElements)
	ctx := context.Background()
	f.start(t, "c1")
	_, err := f.s.Drop(ctx, f.ids["t1"], graph.Point{})
	require.NoError(t, err)
	old, err := f.s.SelectIndirect(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []ontology.RelationshipType{"SUPPORTED_BY", "DEPLOYED_ON"}, old.HopTypes)

	ed, ok := f.s.OpenEditor(ctx, old.PrimaryEdgeID, graph.Point{})
	require.True(t, ok)
	require.Len(t, ed.Indirect, 3)
	require.Equal(t, ontology.RelationshipType("USES"), ed.Indirect[1].Hops[0].RelationshipType)

	c, err := f.s.SwitchPath(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, old.IntermediateElementIDs, c.IntermediateElementIDs, "same-type intermediate is reused")
	assert.Equal(t, []ontology.RelationshipType{"USES", "DEPLOYED_ON"}, c.HopTypes)

	for _, id := range old.HopEdgeIDs {
		rel, err := f.repo.GetRelationship(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, rel, "old hop %s is removed", id)
	}
	assert.Equal(t, graph.GraphStats{ElementCount: 6, DerivedCount: 1, RelationshipCount: 2}, f.stats(t))

	_, ok = f.s.Connection(old.PrimaryEdgeID)
	assert.False(t, ok)
	require.Len(t, f.s.Connections(), 1)
	ed, _ = f.s.Editor()
	assert.Equal(t, c.PrimaryEdgeID, ed.Connection.PrimaryEdgeID)
}

func TestSwitchPath_ReplacesUnusedIntermediate(t *testing.T) {
	f := newFixture(t, true, scenarioElements)
	ctx := context.Background()
	f.start(t, "c1")
	_, err := f.s.Drop(ctx, f.ids["t1"], graph.Point{})
	require.NoError(t, err)
	old, err := f.s.SelectIndirect(ctx, 0)
	require.NoError(t, err)

	_, ok := f.s.OpenEditor(ctx, old.PrimaryEdgeID, graph.Point{X: 50, Y: 60})
	require.True(t, ok)
	_, err = f.s.ToggleIntermediates()
	require.NoError(t, err)

	c, err := f.s.SwitchPath(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []ontology.ElementType{"Service"}, c.IntermediateTypes)
	assert.False(t, c.Collapsed, "expansion state carries over")

	gone, err := f.repo.GetElement(ctx, old.IntermediateElementIDs[0])
	require.NoError(t, err)
	assert.Nil(t, gone, "unused Application intermediate is deleted")

	mid, err := f.repo.GetElement(ctx, c.IntermediateElementIDs[0])
	require.NoError(t, err)
	require.NotNil(t, mid)
	assert.Equal(t, "Service (auto)", mid.Name)
	assert.Equal(t, graph.Point{X: 50, Y: 60}, mid.Position)
}

func TestSwitchPath_ConvertsDirectConnection(t *testing.T) {
	f := newFixture(t, true, map[string]ontology.ElementType{"c1": "Capability", "s1": "Service"})
	ctx := context.Background()
	c := dropDirect(t, f, "c1", "s1")
	require.False(t, c.IsDerived)

	ed, ok := f.s.OpenEditor(ctx, c.PrimaryEdgeID, graph.Point{})
	require.True(t, ok)
	require.Len(t, ed.Indirect, 2)

	_, err := f.s.SwitchPath(ctx, 99)
	assert.ErrorIs(t, err, ErrIllegalChoice)

	conv, err := f.s.SwitchPath(ctx, 0)
	require.NoError(t, err)
	assert.True(t, conv.IsDerived)
	assert.True(t, conv.Collapsed)
	assert.Equal(t, []ontology.RelationshipType{"SUPPORTED_BY", "CALLS"}, conv.HopTypes)

	rel, err := f.repo.GetRelationship(ctx, c.PrimaryEdgeID)
	require.NoError(t, err)
	assert.Nil(t, rel, "the direct edge is removed")
	assert.Equal(t, graph.GraphStats{ElementCount: 3, DerivedCount: 1, RelationshipCount: 2}, f.stats(t))
}

// openDerived connects c1 to t1 through an Application intermediate and opens
// the editor on it.
func openDerived(t *testing.T, f *fixture) CreatedConnection {
	t.Helper()
	ctx := context.Background()
	f.start(t, "c1")
	_, err := f.s.Drop(ctx, f.ids["t1"], graph.Point{})
	require.NoError(t, err)
	old, err := f.s.SelectIndirect(ctx, 0)
	require.NoError(t, err)
	_, ok := f.s.OpenEditor(ctx, old.PrimaryEdgeID, graph.Point{})
	require.True(t, ok)
	return old
}

func TestSwitchPath_DeleteElementFails(t *testing.T) {
	f := newFixture(t, true, scenarioElements)
	ctx := context.Background()
	old := openDerived(t, f)
	locked := errors.New("locked")
	f.repo.failDeleteElement = locked

	_, err := f.s.SwitchPath(ctx, 2)
	require.ErrorIs(t, err, locked)

	for _, id := range old.HopEdgeIDs {
		_, ok := f.s.Connection(id)
		assert.False(t, ok, "hop %s no longer resolves to a connection", id)
		rel, err := f.repo.GetRelationship(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, rel)
	}
	assert.Empty(t, f.s.Connections())
	assert.Equal(t, OverlayNone, f.s.Overlay())
	_, ok := f.s.Editor()
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.failures.WithLabelValues("delete-element")))
	assert.True(t, f.logs.contains("delete intermediate"))
}

func TestSwitchPath_DeleteRelationshipFails(t *testing.T) {
	ctx := context.Background()

	t.Run("after the first edge", func(t *testing.T) {
		f := newFixture(t, true, scenarioElements)
		old := openDerived(t, f)
		f.repo.failDeleteRelation = errors.New("locked")
		f.repo.delOK = 1

		_, err := f.s.SwitchPath(ctx, 2)
		require.Error(t, err)

		_, ok := f.s.Connection(old.HopEdgeIDs[1])
		assert.False(t, ok)
		assert.Equal(t, OverlayNone, f.s.Overlay())
		assert.Equal(t, 1.0, testutil.ToFloat64(f.m.failures.WithLabelValues("delete-relationship")))
	})

	t.Run("before anything is removed", func(t *testing.T) {
		f := newFixture(t, true, scenarioElements)
		old := openDerived(t, f)
		f.repo.failDeleteRelation = errors.New("locked")

		_, err := f.s.SwitchPath(ctx, 2)
		require.Error(t, err)

		c, ok := f.s.Connection(old.PrimaryEdgeID)
		require.True(t, ok, "the graph is untouched so the record stays")
		assert.Equal(t, old.HopEdgeIDs, c.HopEdgeIDs)
		assert.Equal(t, OverlayEditor, f.s.Overlay())
	})
}

func TestPlanReuse(t *testing.T) {
	old := CreatedConnection{
		IntermediateElementIDs: []string{"e1", "e2"},
		IntermediateTypes:      []ontology.ElementType{"Application", "Node"},
	}
	reuse, unused := planReuse(old, []ontology.ElementType{"Node", "Service"})
	assert.Equal(t, []string{"e2", ""}, reuse)
	assert.Equal(t, []string{"e1"}, unused)

	reuse, unused = planReuse(CreatedConnection{}, []ontology.ElementType{"Application"})
	assert.Equal(t, []string{""}, reuse)
	assert.Empty(t, unused)
}
