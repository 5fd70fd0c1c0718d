package ontology

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SupportedSchemaRange is the semver constraint a catalog's schemaVersion must satisfy.
const SupportedSchemaRange = ">= 1.0.0, < 2.0.0"

// defaultCatalog is the built-in enterprise architecture catalog.
//
//go:embed default_catalog.yml
var defaultCatalog []byte

// Catalog is the on-disk YAML form of an ontology plus its preference tables.
type Catalog struct {
	SchemaVersion     string            `yaml:"schemaVersion"`
	Name              string            `yaml:"name,omitempty"`
	ElementTypes      []ElementDef      `yaml:"elementTypes"`
	RelationshipTypes []RelationshipDef `yaml:"relationshipTypes"`
	Viewpoints        []Viewpoint       `yaml:"viewpoints,omitempty"`
	Preferences       struct {
		Direct  []DirectPattern `yaml:"direct,omitempty"`
		Bridges []BridgePattern `yaml:"bridges,omitempty"`
	} `yaml:"preferences"`
}

// Bundle is a loaded catalog: the ontology and the preference tables built
// against it.
type Bundle struct {
	Name          string
	SchemaVersion *semver.Version
	Ontology      *Ontology
	Preferences   *Preferences
}

// Parse decodes a YAML catalog, checks its schema version and builds the bundle.
func Parse(data []byte) (*Bundle, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return c.Build()
}

// Load reads and parses the catalog at path.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return b, nil
}

// Build validates c and constructs the bundle.
func (c Catalog) Build() (*Bundle, error) {
	v, err := checkSchemaVersion(c.SchemaVersion)
	if err != nil {
		return nil, err
	}
	o, err := New(c.ElementTypes, c.RelationshipTypes, c.Viewpoints)
	if err != nil {
		return nil, err
	}
	p, err := NewPreferences(o, c.Preferences.Direct, c.Preferences.Bridges)
	if err != nil {
		return nil, err
	}
	return &Bundle{Name: c.Name, SchemaVersion: v, Ontology: o, Preferences: p}, nil
}

func checkSchemaVersion(raw string) (*semver.Version, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: schemaVersion is required", ErrUnsupportedSchema)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedSchema, raw, err)
	}
	c, err := semver.NewConstraint(SupportedSchemaRange)
	if err != nil {
		return nil, err
	}
	if !c.Check(v) {
		return nil, fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedSchema, v, SupportedSchemaRange)
	}
	return v, nil
}

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
	defaultErr    error
)

// Default returns the embedded catalog. The bundle is parsed once and shared;
// it is read-only.
func Default() (*Bundle, error) {
	defaultOnce.Do(func() {
		defaultBundle, defaultErr = Parse(defaultCatalog)
	})
	return defaultBundle, defaultErr
}

// LoadOrDefault loads the catalog at path, or the embedded one when path is empty.
func LoadOrDefault(path string) (*Bundle, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}
