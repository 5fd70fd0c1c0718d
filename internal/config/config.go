package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store backends accepted in archconnect.yml.
const (
	StoreMemory = "memory"
	StoreKuzu   = "kuzu"
	StoreSQLite = "sqlite"
)

// DefaultBatchConcurrency bounds batch resolution when the config leaves it unset.
const DefaultBatchConcurrency = 4

// ProjectConfig holds project-level settings loaded from archconnect.yml.
type ProjectConfig struct {
	Catalog          string `yaml:"catalog,omitempty"`
	Viewpoint        string `yaml:"viewpoint,omitempty"`
	Store            string `yaml:"store,omitempty"`
	StorePath        string `yaml:"storePath,omitempty"`
	BatchConcurrency int    `yaml:"batchConcurrency,omitempty"`
	Verbose          bool   `yaml:"verbose,omitempty"`
	MCPAddr          string `yaml:"mcpAddr,omitempty"`
}

// Load attempts to read archconnect.yml or archconnect.yaml from the given
// directory. Returns a defaulted config (not an error) if no config file
// exists. Relative catalog and store paths are resolved against dir.
func Load(dir string) (*ProjectConfig, error) {
	cfg := &ProjectConfig{}
	for _, name := range []string{"archconnect.yml", "archconnect.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}
	cfg.applyDefaults(dir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ProjectConfig) applyDefaults(dir string) {
	if c.Store == "" {
		c.Store = StoreMemory
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = DefaultBatchConcurrency
	}
	if c.StorePath == "" {
		switch c.Store {
		case StoreKuzu:
			c.StorePath = filepath.Join(".archconnect", "kuzu")
		case StoreSQLite:
			c.StorePath = filepath.Join(".archconnect", "model.db")
		}
	}
	if c.StorePath != "" && !filepath.IsAbs(c.StorePath) {
		c.StorePath = filepath.Join(dir, c.StorePath)
	}
	if c.Catalog != "" && !filepath.IsAbs(c.Catalog) {
		c.Catalog = filepath.Join(dir, c.Catalog)
	}
}

// Validate reports settings that cannot be honored.
func (c *ProjectConfig) Validate() error {
	switch c.Store {
	case StoreMemory, StoreKuzu, StoreSQLite:
		return nil
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, StoreMemory, StoreKuzu, StoreSQLite)
	}
}
