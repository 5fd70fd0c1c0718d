package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dusk-indust/archconnect/internal/export"
	"github.com/dusk-indust/archconnect/internal/resolution"
	"github.com/spf13/cobra"
)

func newResolveCmd(flags *rootFlags) *cobra.Command {
	var (
		viewpoint string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <source-type> <target-type>",
		Short: "Show every way to connect two element types",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			ont := a.bundle.Ontology
			src, err := ont.ParseElementType(args[0])
			if err != nil {
				return fmt.Errorf("source: %w", err)
			}
			tgt, err := ont.ParseElementType(args[1])
			if err != nil {
				return fmt.Errorf("target: %w", err)
			}
			vp := a.viewpoint(viewpoint)
			filter, err := ont.ViewpointFilter(vp)
			if err != nil {
				return err
			}

			res := a.engine.ResolveConnection("", "", src, tgt, filter)
			if asJSON {
				out, err := json.MarshalIndent(export.ExportResolution(res, vp), "", "  ")
				if err != nil {
					return fmt.Errorf("marshal JSON: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(append(out, '\n'))
				return err
			}
			printResolution(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&viewpoint, "viewpoint", "", "restrict to the relationship types of this viewpoint")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the verdict as JSON")
	return cmd
}

func printResolution(w io.Writer, res resolution.ConnectionResolution) {
	fmt.Fprintf(w, "%s -> %s: %s\n", res.SourceType, res.TargetType, res.Recommendation)

	if len(res.DirectRelationships) > 0 {
		fmt.Fprintln(w, "\nDirect:")
		for i, d := range res.DirectRelationships {
			fmt.Fprintf(w, "  [%d] %-14s %-16s score %d\n", i, d.Type, d.Label, d.CanonicalScore)
		}
	}
	if len(res.IndirectPaths) > 0 {
		fmt.Fprintln(w, "\nIndirect:")
		for i, p := range res.IndirectPaths {
			fmt.Fprintf(w, "  [%d] %s  score %d\n", i, p.Label, p.CanonicalScore)
		}
	}

	if c := res.AutoCreateChoice; c != nil {
		switch c.Kind {
		case resolution.ChoiceDirect:
			fmt.Fprintf(w, "\nA connect gesture creates %s directly.\n", c.Direct.Type)
		case resolution.ChoiceIndirect:
			fmt.Fprintf(w, "\nA connect gesture creates %s.\n", c.Indirect.Label)
		}
	}
	if res.NoPathSuggestion != "" {
		fmt.Fprintf(w, "\n%s\n", res.NoPathSuggestion)
	}
}
