package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dusk-indust/archconnect/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// archconnectMCPEntry is the MCP server configuration for the archconnect binary.
var archconnectMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "archconnect",
  "args": ["serve-mcp"]
}`)

func newInitCmd(flags *rootFlags) *cobra.Command {
	var (
		force bool
		store string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write archconnect.yml and register the MCP server in .mcp.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), flags.ProjectRoot, store, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files and entries")
	cmd.Flags().StringVar(&store, "store", config.StoreSQLite, "model store backend (memory, kuzu, sqlite)")
	return cmd
}

// runInit writes a starter archconnect.yml and merges the MCP configuration
// into the target project directory.
func runInit(w io.Writer, projectRoot, store string, force bool) error {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	cfg := config.ProjectConfig{Store: store}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// --- Write archconnect.yml ---

	cfgPath := filepath.Join(abs, "archconnect.yml")
	if _, err := os.Stat(cfgPath); err == nil && !force {
		fmt.Fprintf(w, "  skipped %s (exists, use --force to overwrite)\n", dotRelative(abs, cfgPath))
	} else {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		if err := os.WriteFile(cfgPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfgPath, err)
		}
		fmt.Fprintf(w, "  created %s\n", dotRelative(abs, cfgPath))
	}

	// --- Create/merge .mcp.json ---

	if err := mergeMCPConfig(w, filepath.Join(abs, ".mcp.json"), force); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nSetup complete. Run 'archconnect serve-mcp' to expose the connection tools.")
	return nil
}

// mergeMCPConfig creates or merges the archconnect entry into .mcp.json.
func mergeMCPConfig(w io.Writer, mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["archconnect"]; exists && !force {
		fmt.Fprintf(w, "  skipped .mcp.json archconnect entry (exists, use --force to overwrite)\n")
		return nil
	}

	cfg.MCPServers["archconnect"] = archconnectMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(w, "  %s .mcp.json with archconnect MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to the project root, prefixed
// with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
