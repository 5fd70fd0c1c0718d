package main

import (
	"fmt"

	"github.com/dusk-indust/archconnect/internal/export"
	"github.com/dusk-indust/archconnect/internal/session"
	"github.com/spf13/cobra"
)

func newDiagramCmd(flags *rootFlags) *cobra.Command {
	var expand bool

	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Print the stored model as a Mermaid diagram",
		Long: "diagram prints the stored model as a Mermaid flowchart. Derived connections " +
			"are drawn as one dashed arrow unless --expand shows their intermediates.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			var conns []session.CreatedConnection
			if !expand {
				conns, err = export.RecoverConnections(cmd.Context(), store)
				if err != nil {
					return err
				}
			}
			mermaid, err := export.GenerateMermaid(cmd.Context(), store, a.bundle.Ontology, conns)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), mermaid)
			return err
		},
	}
	cmd.Flags().BoolVar(&expand, "expand", false, "draw the intermediates and hop edges of derived connections")
	return cmd
}
