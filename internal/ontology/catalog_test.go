package ontology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const miniCatalog = `
schemaVersion: 1.0.0
name: mini
elementTypes:
  - {type: Capability, layer: Strategy}
  - {type: Application, layer: Application}
relationshipTypes:
  - type: SUPPORTED_BY
    label: supported by
    layer: Application
    fromTypes: [Capability]
    toTypes: [Application]
viewpoints:
  - name: apps
    relationships: [SUPPORTED_BY]
preferences:
  direct:
    - {from: Capability, to: Application, relationship: SUPPORTED_BY, score: 95}
`

func TestParse_MiniCatalog(t *testing.T) {
	b, err := Parse([]byte(miniCatalog))
	require.NoError(t, err)

	assert.Equal(t, "mini", b.Name)
	assert.Equal(t, "1.0.0", b.SchemaVersion.String())
	assert.True(t, b.Ontology.Allows("SUPPORTED_BY", "Capability", "Application"))
	assert.Equal(t, 95, b.Preferences.DirectScore("Capability", "Application", "SUPPORTED_BY"))

	v, err := b.Ontology.Viewpoint("apps")
	require.NoError(t, err)
	assert.Equal(t, []RelationshipType{"SUPPORTED_BY"}, v.Relationships)
}

func TestParse_SchemaVersionGate(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"missing", ""},
		{"not semver", "banana"},
		{"next major", "2.0.0"},
		{"pre-1.0", "0.9.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Catalog{SchemaVersion: tt.version, ElementTypes: elements()}
			_, err := c.Build()
			assert.ErrorIs(t, err, ErrUnsupportedSchema)
		})
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("elementTypes: [unclosed"))
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte(miniCatalog), 0o644))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mini", b.Name)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)

	again, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Same(t, b, again, "default bundle is parsed once")

	o := b.Ontology
	assert.True(t, o.Allows("REALIZED_BY", "Capability", "BusinessProcess"))
	assert.True(t, o.Allows("SUPPORTED_BY", "Capability", "Application"))
	assert.True(t, o.Allows("DEPLOYED_ON", "Application", "Technology"))
	assert.False(t, o.Allows("SUPPORTED_BY", "Capability", "Technology"))

	p := b.Preferences
	total := p.BridgeScore("Capability", "Application", "Technology") +
		p.DirectScore("Capability", "Application", "SUPPORTED_BY") +
		p.DirectScore("Application", "Technology", "DEPLOYED_ON")
	assert.Equal(t, 165, total)

	assert.NotEmpty(t, o.Viewpoints())
}
