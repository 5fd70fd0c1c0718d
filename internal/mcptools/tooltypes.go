package mcptools

import (
	"github.com/dusk-indust/archconnect/internal/export"
	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/resolution"
	"github.com/dusk-indust/archconnect/internal/session"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// ListElementTypesInput is the input for the list_element_types MCP tool.
type ListElementTypesInput struct {
	Layer string `json:"layer,omitempty" jsonschema:"only list element types of this layer (Strategy, Business, Application, Technology, Governance, Implementation)"`
}

// ElementTypeInfo describes one element type.
type ElementTypeInfo struct {
	Type  string `json:"type"`
	Layer string `json:"layer"`
	Label string `json:"label,omitempty"`
}

// ViewpointInfo describes one viewpoint.
type ViewpointInfo struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Relationships []string `json:"relationships"`
}

// ListElementTypesOutput is the result of the list_element_types MCP tool.
type ListElementTypesOutput struct {
	ElementTypes      []ElementTypeInfo `json:"elementTypes"`
	RelationshipTypes []string          `json:"relationshipTypes"`
	Viewpoints        []ViewpointInfo   `json:"viewpoints"`
}

// ResolveConnectionInput is the input for the resolve_connection MCP tool.
type ResolveConnectionInput struct {
	SourceType string `json:"sourceType" jsonschema:"element type of the source, e.g. Capability"`
	TargetType string `json:"targetType" jsonschema:"element type of the target, e.g. Technology"`
	SourceID   string `json:"sourceId,omitempty" jsonschema:"optional source element id echoed in the verdict"`
	TargetID   string `json:"targetId,omitempty" jsonschema:"optional target element id echoed in the verdict"`
	Viewpoint  string `json:"viewpoint,omitempty" jsonschema:"restrict to the relationship types of this viewpoint (default: server viewpoint)"`
}

// ResolveConnectionOutput is the result of the resolve_connection MCP tool.
type ResolveConnectionOutput struct {
	Resolution resolution.ConnectionResolution `json:"resolution"`
	Feedback   resolution.Feedback             `json:"feedback"`
}

// ResolveForSourceInput is the input for the resolve_for_source MCP tool.
type ResolveForSourceInput struct {
	SourceID  string   `json:"sourceId" jsonschema:"id of the source element in the model"`
	TargetIDs []string `json:"targetIds,omitempty" jsonschema:"candidate target element ids (default: every other element in the model)"`
	Viewpoint string   `json:"viewpoint,omitempty" jsonschema:"restrict to the relationship types of this viewpoint (default: server viewpoint)"`
}

// ResolveForSourceOutput is the result of the resolve_for_source MCP tool.
type ResolveForSourceOutput struct {
	Resolutions []resolution.ConnectionResolution `json:"resolutions"`
	Skipped     []string                          `json:"skipped,omitempty"`
}

// CreateElementInput is the input for the create_element MCP tool.
type CreateElementInput struct {
	Type string  `json:"type" jsonschema:"element type, e.g. Application"`
	Name string  `json:"name,omitempty" jsonschema:"display name (default: the type)"`
	X    float64 `json:"x,omitempty" jsonschema:"diagram x position"`
	Y    float64 `json:"y,omitempty" jsonschema:"diagram y position"`
}

// CreateElementOutput is the result of the create_element MCP tool.
type CreateElementOutput struct {
	Element graph.Element `json:"element"`
}

// ConnectElementsInput is the input for the connect_elements MCP tool.
type ConnectElementsInput struct {
	SourceID      string  `json:"sourceId" jsonschema:"id of the source element"`
	TargetID      string  `json:"targetId" jsonschema:"id of the target element"`
	DirectIndex   *int    `json:"directIndex,omitempty" jsonschema:"when the connection is ambiguous, pick this direct option (0-based)"`
	IndirectIndex *int    `json:"indirectIndex,omitempty" jsonschema:"when the connection is ambiguous, pick this indirect path (0-based)"`
	X             float64 `json:"x,omitempty" jsonschema:"anchor x position for auto-created intermediates"`
	Y             float64 `json:"y,omitempty" jsonschema:"anchor y position for auto-created intermediates"`
}

// ConnectElementsOutput is the result of the connect_elements MCP tool.
type ConnectElementsOutput struct {
	// Outcome is one of created, chooser-opened, no-path, ignored.
	Outcome    string                          `json:"outcome"`
	Connection *session.CreatedConnection      `json:"connection,omitempty"`
	Direct     []resolution.DirectRelationship `json:"direct,omitempty"`
	Indirect   []resolution.IndirectPath       `json:"indirect,omitempty"`
	Message    string                          `json:"message,omitempty"`
}

// ExportModelInput is the input for the export_model MCP tool.
type ExportModelInput struct{}

// ExportModelOutput is the result of the export_model MCP tool.
type ExportModelOutput struct {
	Model *export.ModelExport `json:"model"`
}
