package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	ProjectRoot string
	Verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "archconnect",
		Short:         "Resolve and create connections between architecture model elements",
		Long:          "archconnect answers how two enterprise-architecture elements can be connected: directly, through a derived intermediate element, or not at all.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.ProjectRoot, "project-root", ".", "directory holding archconnect.yml")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(
		newTypesCmd(flags),
		newResolveCmd(flags),
		newConnectCmd(flags),
		newDiagramCmd(flags),
		newExportCmd(flags),
		newStatusCmd(flags),
		newInitCmd(flags),
		newServeMCPCmd(flags),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
