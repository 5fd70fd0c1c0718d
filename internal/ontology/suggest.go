package ontology

import (
	"fmt"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// maxSuggestionDistance bounds how far a typo may be from a declared tag
// before no suggestion is offered.
const maxSuggestionDistance = 3

// ParseElementType maps user input to a declared element type. Matching is
// exact first, then case-insensitive. Unknown names produce an error wrapping
// ErrUnknownElementType with the closest declared tag, if any.
func (o *Ontology) ParseElementType(name string) (ElementType, error) {
	candidates := make([]string, len(o.elements))
	for i, e := range o.elements {
		candidates[i] = string(e.Type)
	}
	match, err := parseTag(name, candidates)
	if err != nil {
		return "", fmt.Errorf("%w %s", ErrUnknownElementType, err.Error())
	}
	return ElementType(match), nil
}

// ParseRelationshipType maps user input to a declared relationship type.
func (o *Ontology) ParseRelationshipType(name string) (RelationshipType, error) {
	candidates := make([]string, len(o.relationships))
	for i, r := range o.relationships {
		candidates[i] = string(r.Type)
	}
	match, err := parseTag(name, candidates)
	if err != nil {
		return "", fmt.Errorf("%w %s", ErrUnknownRelationshipType, err.Error())
	}
	return RelationshipType(match), nil
}

// SuggestElementType returns the declared element type closest to name.
func (o *Ontology) SuggestElementType(name string) (ElementType, bool) {
	candidates := make([]string, len(o.elements))
	for i, e := range o.elements {
		candidates[i] = string(e.Type)
	}
	s, ok := closest(name, candidates)
	return ElementType(s), ok
}

func parseTag(name string, candidates []string) (string, error) {
	for _, c := range candidates {
		if c == name {
			return c, nil
		}
	}
	for _, c := range candidates {
		if strings.EqualFold(c, name) {
			return c, nil
		}
	}
	if s, ok := closest(name, candidates); ok {
		return "", fmt.Errorf("%q (did you mean %s?)", name, s)
	}
	return "", fmt.Errorf("%q", name)
}

// closest returns the candidate with the smallest case-insensitive edit
// distance to name, ties going to the earlier candidate.
func closest(name string, candidates []string) (string, bool) {
	needle := []rune(strings.ToLower(name))
	best, bestDist := "", maxSuggestionDistance+1
	for _, c := range candidates {
		d := levenshtein.DistanceForStrings(needle, []rune(strings.ToLower(c)), levenshtein.DefaultOptions)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}
