package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/session"
	"github.com/spf13/cobra"
)

type connectFlags struct {
	Viewpoint string
	Direct    int
	Indirect  int
	X, Y      float64
	JSON      bool
}

func newConnectCmd(flags *rootFlags) *cobra.Command {
	cf := &connectFlags{}

	cmd := &cobra.Command{
		Use:   "connect <source> <target>",
		Short: "Run a connect gesture between two elements of the configured store",
		Long: "connect runs one connect gesture from source to target. Each argument is an " +
			"element id in the configured store or an element type, in which case a new " +
			"element of that type is created first. Ambiguous connections list their " +
			"options unless --direct or --indirect picks one.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("direct") && cmd.Flags().Changed("indirect") {
				return fmt.Errorf("--direct and --indirect are mutually exclusive")
			}
			return runConnect(cmd, flags, cf, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&cf.Viewpoint, "viewpoint", "", "restrict to the relationship types of this viewpoint")
	cmd.Flags().IntVar(&cf.Direct, "direct", -1, "pick this direct option of an ambiguous connection")
	cmd.Flags().IntVar(&cf.Indirect, "indirect", -1, "pick this indirect path of an ambiguous connection")
	cmd.Flags().Float64Var(&cf.X, "x", 0, "anchor x position for derived intermediates")
	cmd.Flags().Float64Var(&cf.Y, "y", 0, "anchor y position for derived intermediates")
	cmd.Flags().BoolVar(&cf.JSON, "json", false, "print the created connection as JSON")
	return cmd
}

func runConnect(cmd *cobra.Command, flags *rootFlags, cf *connectFlags, source, target string) error {
	a, err := loadApp(flags)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	filter, err := a.bundle.Ontology.ViewpointFilter(a.viewpoint(cf.Viewpoint))
	if err != nil {
		return err
	}

	srcID, err := a.ensureElement(ctx, store, source)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	tgtID, err := a.ensureElement(ctx, store, target)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	sess := session.New(a.engine, store, graph.NewTypeResolver(store),
		session.WithLogger(a.log), session.WithFilter(filter))
	if err := sess.Start(ctx, srcID, []string{tgtID}); err != nil {
		return err
	}
	outcome, err := sess.Drop(ctx, tgtID, graph.Point{X: cf.X, Y: cf.Y})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch outcome.Kind {
	case session.OutcomeCreated:
		return printConnection(out, *outcome.Connection, cf.JSON)
	case session.OutcomeNoPath:
		fmt.Fprintln(out, outcome.Message)
		return nil
	case session.OutcomeIgnored:
		return fmt.Errorf("gesture ignored: source and target must be distinct elements")
	}

	var conn session.CreatedConnection
	switch {
	case cf.Direct >= 0:
		conn, err = sess.SelectDirect(ctx, cf.Direct)
	case cf.Indirect >= 0:
		conn, err = sess.SelectIndirect(ctx, cf.Indirect)
	default:
		sess.Dismiss(session.DismissExplicit)
		fmt.Fprintln(out, "Several connections are possible; pick one with --direct or --indirect.")
		printPalette(out, *outcome.Palette)
		return nil
	}
	if err != nil {
		sess.Dismiss(session.DismissExplicit)
		return err
	}
	return printConnection(out, conn, cf.JSON)
}

// ensureElement returns ref when it names an element in store, otherwise
// creates an element of type ref.
func (a *app) ensureElement(ctx context.Context, store graph.Store, ref string) (string, error) {
	e, err := store.GetElement(ctx, ref)
	if err != nil {
		return "", err
	}
	if e != nil {
		return e.ID, nil
	}
	typ, err := a.bundle.Ontology.ParseElementType(ref)
	if err != nil {
		return "", err
	}
	return store.CreateElement(ctx, graph.ElementSpec{Type: typ, Name: string(typ)})
}

func printPalette(w io.Writer, p session.Palette) {
	for i, d := range p.Direct {
		fmt.Fprintf(w, "  --direct %d    %s (%s)\n", i, d.Type, d.Label)
	}
	for i, ip := range p.Indirect {
		fmt.Fprintf(w, "  --indirect %d  %s\n", i, ip.Label)
	}
}

func printConnection(w io.Writer, c session.CreatedConnection, asJSON bool) error {
	if asJSON {
		out, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = w.Write(append(out, '\n'))
		return err
	}
	if !c.IsDerived {
		fmt.Fprintf(w, "created %s %s -[%s]-> %s\n", c.PrimaryEdgeID, c.SourceID, c.PrimaryType, c.TargetID)
		return nil
	}
	fmt.Fprintf(w, "created derived connection %s -> %s via %v\n", c.SourceID, c.TargetID, c.IntermediateTypes)
	for i, id := range c.HopEdgeIDs {
		fmt.Fprintf(w, "  hop %d: %s %s\n", i+1, id, c.HopTypes[i])
	}
	return nil
}
