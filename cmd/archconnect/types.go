package main

import (
	"fmt"

	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/spf13/cobra"
)

func newTypesCmd(flags *rootFlags) *cobra.Command {
	var layer string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List element types, relationship types and viewpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			if layer != "" && !ontology.Layer(layer).IsValid() {
				return fmt.Errorf("unknown layer %q", layer)
			}
			return printTypes(cmd, a.bundle.Ontology, ontology.Layer(layer))
		},
	}
	cmd.Flags().StringVar(&layer, "layer", "", "only list element types of this layer")
	return cmd
}

func printTypes(cmd *cobra.Command, ont *ontology.Ontology, layer ontology.Layer) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Element types:")
	for _, e := range ont.ElementTypes() {
		if layer != "" && e.Layer != layer {
			continue
		}
		fmt.Fprintf(out, "  %-22s %s\n", e.Type, e.Layer)
	}
	if layer != "" {
		return nil
	}

	fmt.Fprintln(out, "\nRelationship types:")
	for _, r := range ont.Relationships() {
		fmt.Fprintf(out, "  %-22s %s\n", r.Type, r.DisplayLabel())
	}

	fmt.Fprintln(out, "\nViewpoints:")
	for _, v := range ont.Viewpoints() {
		fmt.Fprintf(out, "  %-22s %s\n", v.Name, v.Description)
	}
	return nil
}
