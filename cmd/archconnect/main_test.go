package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dusk-indust/archconnect/internal/export"
	"github.com/dusk-indust/archconnect/internal/resolution"
	"github.com/dusk-indust/archconnect/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI against dir and returns what it printed.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--project-root", dir}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archconnect.yml"), []byte(content), 0o644))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestTypes(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "Capability")
	assert.Contains(t, out, "DEPLOYED_ON")
	assert.Contains(t, out, "capability-map")

	out, err = execute(t, dir, "types", "--layer", "Technology")
	require.NoError(t, err)
	assert.Contains(t, out, "TechnologyService")
	assert.NotContains(t, out, "Capability")
	assert.NotContains(t, out, "Relationship types")

	_, err = execute(t, dir, "types", "--layer", "Physical")
	assert.ErrorContains(t, err, `unknown layer "Physical"`)
}

func TestResolve_Text(t *testing.T) {
	out, err := execute(t, t.TempDir(), "resolve", "Application", "Application")
	require.NoError(t, err)
	assert.Contains(t, out, "Application -> Application: choose-direct")
	assert.Contains(t, out, "[0] FLOWS_TO")
	assert.Contains(t, out, "[1] COMPOSED_OF")
}

func TestResolve_JSON(t *testing.T) {
	out, err := execute(t, t.TempDir(), "resolve", "capability", "Technology", "--json")
	require.NoError(t, err)

	var got export.ResolutionExport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, resolution.RecommendAutoCreate, got.Resolution.Recommendation)
	require.NotNil(t, got.Resolution.AutoCreateChoice)
	assert.Equal(t, resolution.ChoiceIndirect, got.Resolution.AutoCreateChoice.Kind)
	assert.Equal(t, resolution.FeedbackIndirectValid, got.Feedback.Category)
}

func TestResolve_UnknownType(t *testing.T) {
	_, err := execute(t, t.TempDir(), "resolve", "Capabilty", "Node")
	assert.ErrorContains(t, err, "did you mean Capability?")
}

func TestResolve_ConfiguredViewpoint(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "viewpoint: capability-map\n")

	out, err := execute(t, dir, "resolve", "Capability", "Technology")
	require.NoError(t, err)
	assert.Contains(t, out, "no-path")
	assert.Contains(t, out, "Switch viewpoints")

	out, err = execute(t, dir, "resolve", "Capability", "Technology", "--viewpoint", "technology-usage")
	require.NoError(t, err)
	assert.Contains(t, out, "auto-create")
}

func TestLoadApp_UnknownViewpoint(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "viewpoint: nope\n")

	_, err := execute(t, dir, "types")
	assert.ErrorContains(t, err, "unknown viewpoint")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	existing := `{"mcpServers": {"other": {"type": "stdio", "command": "other"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mcp.json"), []byte(existing), 0o644))

	out, err := execute(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "created ./archconnect.yml")
	assert.Contains(t, out, "updated .mcp.json")

	data, err := os.ReadFile(filepath.Join(dir, "archconnect.yml"))
	require.NoError(t, err)
	assert.Equal(t, "store: sqlite\n", string(data))

	var cfg mcpConfig
	data, err = os.ReadFile(filepath.Join(dir, ".mcp.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Contains(t, cfg.MCPServers, "other")
	assert.Contains(t, cfg.MCPServers, "archconnect")

	out, err = execute(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped ./archconnect.yml")
	assert.Contains(t, out, "skipped .mcp.json archconnect entry")

	_, err = execute(t, dir, "init", "--force", "--store", "postgres")
	assert.ErrorContains(t, err, `unknown store "postgres"`)
}

func TestConnect_SQLiteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "store: sqlite\n")

	out, err := execute(t, dir, "connect", "Capability", "Technology", "--json")
	require.NoError(t, err)

	var conn session.CreatedConnection
	require.NoError(t, json.Unmarshal([]byte(out), &conn))
	assert.True(t, conn.IsDerived)
	assert.Len(t, conn.HopEdgeIDs, 2)

	out, err = execute(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Store:      sqlite at ")
	assert.Contains(t, out, "3 (1 derived)")

	out, err = execute(t, dir, "export")
	require.NoError(t, err)
	var model export.ModelExport
	require.NoError(t, json.Unmarshal([]byte(out), &model))
	assert.Len(t, model.Elements, 3)
	assert.Len(t, model.Relationships, 2)
	require.Len(t, model.Connections, 1, "a later process still sees the derived connection")
	assert.Equal(t, conn.HopEdgeIDs, model.Connections[0].HopEdgeIDs)
	assert.Equal(t, conn.IntermediateElementIDs, model.Connections[0].IntermediateElementIDs)
	assert.True(t, model.Connections[0].Collapsed)

	out, err = execute(t, dir, "diagram")
	require.NoError(t, err)
	assert.Contains(t, out, "graph LR\n")
	assert.Contains(t, out, "-.->|via Application|")
	assert.NotContains(t, out, "-->|SUPPORTED_BY|")

	out, err = execute(t, dir, "diagram", "--expand")
	require.NoError(t, err)
	assert.Contains(t, out, "-->|SUPPORTED_BY|")
	assert.Contains(t, out, "-->|DEPLOYED_ON|")
	assert.NotContains(t, out, "-.->")

	// Existing elements are addressed by id.
	out, err = execute(t, dir, "connect", conn.SourceID, "BusinessProcess")
	require.NoError(t, err)
	assert.Contains(t, out, "-[REALIZED_BY]->")
}

func TestConnect_Chooser(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "connect", "Application", "Application")
	require.NoError(t, err)
	assert.Contains(t, out, "--direct 0    FLOWS_TO")
	assert.Contains(t, out, "--direct 1    COMPOSED_OF")

	out, err = execute(t, dir, "connect", "Application", "Application", "--direct", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "-[COMPOSED_OF]->")

	_, err = execute(t, dir, "connect", "Application", "Application", "--direct", "5")
	assert.ErrorIs(t, err, session.ErrIllegalChoice)

	_, err = execute(t, dir, "connect", "Application", "Application", "--direct", "0", "--indirect", "0")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestConnect_NoPath(t *testing.T) {
	out, err := execute(t, t.TempDir(), "connect", "Technology", "Capability")
	require.NoError(t, err)
	assert.Contains(t, out, "Technology")
	assert.NotContains(t, out, "created")
}
