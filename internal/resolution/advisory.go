package resolution

import (
	"fmt"

	"github.com/dusk-indust/archconnect/internal/ontology"
)

// noPathSuggestion explains a no-path verdict. The text is advisory only and
// always non-empty.
func (e *Engine) noPathSuggestion(sourceType, targetType ontology.ElementType, filter *ontology.Filter) string {
	if filter != nil {
		hidden := len(e.directRelationships(sourceType, targetType, nil)) + len(e.indirectPaths(sourceType, targetType, nil))
		if hidden > 0 {
			return fmt.Sprintf(
				"%s and %s can be connected, but none of the %d options is allowed in the current viewpoint. Switch viewpoints to see them.",
				sourceType, targetType, hidden)
		}
	}

	srcLayer, tgtLayer := e.ont.LayerOf(sourceType), e.ont.LayerOf(targetType)
	switch {
	case srcLayer != "" && srcLayer == tgtLayer:
		return fmt.Sprintf(
			"No relationship type connects %s to %s. Add an intermediate element or use a free-form connector.",
			sourceType, targetType)
	case isBusinessTechnology(srcLayer, tgtLayer):
		return fmt.Sprintf(
			"%s (%s) and %s (%s) do not connect directly. Add an Application-layer element between them, such as an application that is deployed on the technology and supports the business element.",
			sourceType, srcLayer, targetType, tgtLayer)
	case srcLayer == ontology.LayerGovernance:
		return fmt.Sprintf(
			"%s is a governance element: it constrains rather than connects. Relate it to the elements it governs instead of %s.",
			sourceType, targetType)
	default:
		return fmt.Sprintf(
			"No relationship path leads from %s to %s. Consider an intermediate element or a free-form connector.",
			sourceType, targetType)
	}
}

func isBusinessTechnology(a, b ontology.Layer) bool {
	return (a == ontology.LayerBusiness && b == ontology.LayerTechnology) ||
		(a == ontology.LayerTechnology && b == ontology.LayerBusiness)
}
