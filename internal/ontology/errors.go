package ontology

import "errors"

var (
	// ErrUnknownElementType is returned when a tag is not declared in the ontology.
	ErrUnknownElementType = errors.New("unknown element type")

	// ErrUnknownRelationshipType is returned when a tag is not declared in the ontology.
	ErrUnknownRelationshipType = errors.New("unknown relationship type")

	// ErrUnknownViewpoint is returned by Viewpoint for an undeclared name.
	ErrUnknownViewpoint = errors.New("unknown viewpoint")

	// ErrInvalidCatalog wraps every structural problem found while building an ontology.
	ErrInvalidCatalog = errors.New("invalid ontology catalog")

	// ErrUnsupportedSchema is returned when a catalog's schemaVersion is outside SupportedSchemaRange.
	ErrUnsupportedSchema = errors.New("unsupported catalog schema version")
)
