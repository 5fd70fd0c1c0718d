package export

import (
	"context"
	"fmt"
	"time"

	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/resolution"
	"github.com/dusk-indust/archconnect/internal/session"
)

// ModelExport is the top-level JSON export of a model graph.
type ModelExport struct {
	ExportedAt    string                      `json:"exportedAt"`
	Stats         graph.GraphStats            `json:"stats"`
	Elements      []graph.Element             `json:"elements"`
	Relationships []graph.Relationship        `json:"relationships"`
	Connections   []session.CreatedConnection `json:"connections,omitempty"`
}

// ResolutionExport wraps one verdict with the viewpoint it was computed under.
type ResolutionExport struct {
	ExportedAt string                          `json:"exportedAt"`
	Viewpoint  string                          `json:"viewpoint,omitempty"`
	Resolution resolution.ConnectionResolution `json:"resolution"`
	Feedback   resolution.Feedback             `json:"feedback"`
}

// ExportModel builds a ModelExport from a store and the connections a session
// registered.
func ExportModel(ctx context.Context, store graph.Store, conns []session.CreatedConnection) (*ModelExport, error) {
	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	elements, err := store.ListElements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	rels, err := store.ListRelationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}

	export := &ModelExport{
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		Stats:         *stats,
		Elements:      elements,
		Relationships: rels,
		Connections:   conns,
	}
	if export.Elements == nil {
		export.Elements = []graph.Element{}
	}
	if export.Relationships == nil {
		export.Relationships = []graph.Relationship{}
	}
	return export, nil
}

// ExportResolution wraps a verdict and its hover feedback for output.
func ExportResolution(res resolution.ConnectionResolution, viewpoint string) *ResolutionExport {
	return &ResolutionExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Viewpoint:  viewpoint,
		Resolution: res,
		Feedback:   resolution.GetConnectionFeedback(res),
	}
}
