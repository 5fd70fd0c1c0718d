package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the project configuration and model counts",
		Args:  cobra.NoArgs,
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

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			catalog := a.cfg.Catalog
			if catalog == "" {
				catalog = "(built-in)"
			}
			viewpoint := a.cfg.Viewpoint
			if viewpoint == "" {
				viewpoint = "(none)"
			}
			fmt.Fprintf(out, "Catalog:    %s (%s %s)\n", catalog, a.bundle.Name, a.bundle.SchemaVersion)
			fmt.Fprintf(out, "Viewpoint:  %s\n", viewpoint)
			if a.cfg.StorePath != "" {
				fmt.Fprintf(out, "Store:      %s at %s\n", a.cfg.Store, a.cfg.StorePath)
			} else {
				fmt.Fprintf(out, "Store:      %s\n", a.cfg.Store)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %-14s %d (%d derived)\n", "Elements", stats.ElementCount, stats.DerivedCount)
			fmt.Fprintf(out, "  %-14s %d\n", "Relationships", stats.RelationshipCount)
			return nil
		},
	}
}
