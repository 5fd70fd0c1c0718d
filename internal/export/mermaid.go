package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/dusk-indust/archconnect/internal/session"
)

// GenerateMermaid produces a Mermaid graph LR diagram from a graph store.
// Elements are grouped by layer; relationships become labeled arrows. A
// collapsed derived connection is drawn as one dotted arrow from source to
// target and its intermediates are hidden.
func GenerateMermaid(ctx context.Context, store graph.Store, ont *ontology.Ontology, conns []session.CreatedConnection) (string, error) {
	elements, err := store.ListElements(ctx)
	if err != nil {
		return "", fmt.Errorf("list elements: %w", err)
	}
	rels, err := store.ListRelationships(ctx)
	if err != nil {
		return "", fmt.Errorf("list relationships: %w", err)
	}

	hiddenElems := make(map[string]bool)
	hiddenEdges := make(map[string]bool)
	var collapsed []session.CreatedConnection
	for _, c := range conns {
		if !c.IsDerived || !c.Collapsed {
			continue
		}
		collapsed = append(collapsed, c)
		for _, id := range c.IntermediateElementIDs {
			hiddenElems[id] = true
		}
		for _, id := range c.HopEdgeIDs {
			hiddenEdges[id] = true
		}
	}

	// Build element → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	getID := func(id string) string {
		if n, ok := nodeIDs[id]; ok {
			return n
		}
		n := fmt.Sprintf("N%d", len(nodeIDs))
		nodeIDs[id] = n
		return n
	}

	byLayer := make(map[ontology.Layer][]graph.Element)
	for _, e := range elements {
		if hiddenElems[e.ID] {
			continue
		}
		layer := ont.LayerOf(e.Type)
		byLayer[layer] = append(byLayer[layer], e)
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	layers := append([]ontology.Layer(nil), ontology.KnownLayers...)
	layers = append(layers, "")
	for _, layer := range layers {
		members := byLayer[layer]
		if len(members) == 0 {
			continue
		}
		name := string(layer)
		if name == "" {
			name = "Other"
		}
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%s\"]\n", name, name))
		for _, e := range members {
			shape := "[\"%s\"]"
			if e.Derived {
				shape = "([\"%s\"])"
			}
			sb.WriteString(fmt.Sprintf("    %s"+shape+"\n", getID(e.ID), nodeLabel(e)))
		}
		sb.WriteString("  end\n")
	}

	for _, r := range rels {
		if hiddenEdges[r.ID] {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s -->|%s| %s\n", getID(r.SourceID), r.Type, getID(r.TargetID)))
	}
	for _, c := range collapsed {
		via := make([]string, len(c.IntermediateTypes))
		for i, t := range c.IntermediateTypes {
			via[i] = string(t)
		}
		sb.WriteString(fmt.Sprintf("  %s -.->|via %s| %s\n", getID(c.SourceID), strings.Join(via, ", "), getID(c.TargetID)))
	}

	return sb.String(), nil
}

// nodeLabel returns "name<br/>type", or just the type for unnamed elements.
func nodeLabel(e graph.Element) string {
	name := strings.ReplaceAll(e.Name, `"`, "'")
	if name == "" || name == string(e.Type) {
		return string(e.Type)
	}
	return fmt.Sprintf("%s<br/>%s", name, e.Type)
}
