// Package resolution answers "how can these two elements be connected?".
// Given two element types it enumerates every legal direct relationship and
// every two-hop bridge through an intermediate type, ranks them with the
// canonical preference tables, and folds the result into a single verdict.
//
// The Engine reads only the immutable ontology and preference tables it was
// built with, so all of its methods are safe for concurrent use.
package resolution

import (
	"context"
	"fmt"
	"sort"

	"github.com/dusk-indust/archconnect/internal/ontology"
	"golang.org/x/sync/errgroup"
)

// defaultBatchConcurrency bounds the fan-out of ResolveConnectionsForSource.
const defaultBatchConcurrency = 4

// Engine computes connection verdicts over a fixed ontology.
type Engine struct {
	ont         *ontology.Ontology
	prefs       *ontology.Preferences
	concurrency int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithBatchConcurrency sets how many target types are resolved in parallel by
// ResolveConnectionsForSource. Values below 1 are ignored.
func WithBatchConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n >= 1 {
			e.concurrency = n
		}
	}
}

// NewEngine returns an Engine over ont. prefs may be nil, in which case every
// canonical score is 0.
func NewEngine(ont *ontology.Ontology, prefs *ontology.Preferences, opts ...EngineOption) *Engine {
	e := &Engine{ont: ont, prefs: prefs, concurrency: defaultBatchConcurrency}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngineFromBundle is a convenience for NewEngine(b.Ontology, b.Preferences).
func NewEngineFromBundle(b *ontology.Bundle, opts ...EngineOption) *Engine {
	return NewEngine(b.Ontology, b.Preferences, opts...)
}

// Ontology returns the ontology the engine was built with.
func (e *Engine) Ontology() *ontology.Ontology {
	return e.ont
}

// FindDirectRelationships returns every relationship type whose endpoint
// predicate admits sourceType → targetType, highest canonical score first.
// Ties keep ontology declaration order.
func (e *Engine) FindDirectRelationships(sourceType, targetType ontology.ElementType) []DirectRelationship {
	return e.directRelationships(sourceType, targetType, nil)
}

// FindIndirectPaths returns the best two-hop routes sourceType → I → targetType,
// highest canonical score first, at most MaxIndirectPaths of them.
func (e *Engine) FindIndirectPaths(sourceType, targetType ontology.ElementType) []IndirectPath {
	return e.indirectPaths(sourceType, targetType, nil)
}

func (e *Engine) directRelationships(sourceType, targetType ontology.ElementType, filter *ontology.Filter) []DirectRelationship {
	out := make([]DirectRelationship, 0)
	for _, def := range e.ont.Relationships() {
		if !filter.Allows(def.Type) || !def.Allows(sourceType, targetType) {
			continue
		}
		out = append(out, DirectRelationship{
			Type:           def.Type,
			FromType:       sourceType,
			ToType:         targetType,
			Label:          def.DisplayLabel(),
			CanonicalScore: e.prefs.DirectScore(sourceType, targetType, def.Type),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CanonicalScore > out[j].CanonicalScore
	})
	return out
}

// pathKey identifies an indirect path for de-duplication.
type pathKey struct {
	via        ontology.ElementType
	hop1, hop2 ontology.RelationshipType
}

// indirectPaths enumerates bridges through every declared element type other
// than the two endpoint types. The filter is applied per hop before the
// MaxIndirectPaths cap so a viewpoint never loses paths to hidden ones.
func (e *Engine) indirectPaths(sourceType, targetType ontology.ElementType, filter *ontology.Filter) []IndirectPath {
	rels := e.ont.Relationships()
	seen := make(map[pathKey]bool)
	out := make([]IndirectPath, 0)

	for _, el := range e.ont.ElementTypes() {
		via := el.Type
		if via == sourceType || via == targetType {
			continue
		}
		for _, first := range rels {
			if !filter.Allows(first.Type) || !first.Allows(sourceType, via) {
				continue
			}
			for _, second := range rels {
				if !filter.Allows(second.Type) || !second.Allows(via, targetType) {
					continue
				}
				key := pathKey{via: via, hop1: first.Type, hop2: second.Type}
				if seen[key] {
					continue
				}
				seen[key] = true

				score := e.prefs.BridgeScore(sourceType, via, targetType) +
					e.prefs.DirectScore(sourceType, via, first.Type) +
					e.prefs.DirectScore(via, targetType, second.Type)

				out = append(out, IndirectPath{
					Hops: [2]IndirectHop{
						{RelationshipType: first.Type, FromType: sourceType, ToType: via, IntermediateElementType: via},
						{RelationshipType: second.Type, FromType: via, ToType: targetType, IntermediateElementType: via},
					},
					Label:             fmt.Sprintf("%s → %s → %s", first.DisplayLabel(), via, second.DisplayLabel()),
					IntermediateTypes: []ontology.ElementType{via},
					Depth:             2,
					CanonicalScore:    score,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CanonicalScore > out[j].CanonicalScore
	})
	if len(out) > MaxIndirectPaths {
		out = out[:MaxIndirectPaths]
	}
	return out
}

// ResolveConnection computes the verdict for one source/target pair. A nil
// filter allows every relationship type; otherwise direct candidates must be
// allowed and indirect paths must have every hop allowed.
func (e *Engine) ResolveConnection(sourceID, targetID string, sourceType, targetType ontology.ElementType, filter *ontology.Filter) ConnectionResolution {
	direct := e.directRelationships(sourceType, targetType, filter)
	indirect := e.indirectPaths(sourceType, targetType, filter)
	return e.verdict(sourceID, targetID, sourceType, targetType, direct, indirect, filter)
}

func (e *Engine) verdict(
	sourceID, targetID string,
	sourceType, targetType ontology.ElementType,
	direct []DirectRelationship,
	indirect []IndirectPath,
	filter *ontology.Filter,
) ConnectionResolution {
	res := ConnectionResolution{
		SourceID:            sourceID,
		TargetID:            targetID,
		SourceType:          sourceType,
		TargetType:          targetType,
		DirectRelationships: direct,
		IndirectPaths:       indirect,
		HasAnyPath:          len(direct) > 0 || len(indirect) > 0,
	}
	res.Recommendation, res.AutoCreateChoice = decide(direct, indirect)
	if res.Recommendation == RecommendNoPath {
		res.NoPathSuggestion = e.noPathSuggestion(sourceType, targetType, filter)
	}
	return res
}

// decide applies the decision table in order. Direct options always beat
// indirect ones when exactly one direct option exists.
func decide(direct []DirectRelationship, indirect []IndirectPath) (Recommendation, *AutoCreateChoice) {
	nd, ni := len(direct), len(indirect)
	switch {
	case nd == 1 && ni == 0:
		return RecommendAutoCreate, directChoice(direct[0])
	case nd > 1:
		return RecommendChooseDirect, nil
	case nd == 0 && ni == 1:
		return RecommendAutoCreate, indirectChoice(indirect[0])
	case nd == 0 && ni > 1:
		return RecommendChooseAny, nil
	case nd == 1 && ni > 0:
		return RecommendAutoCreate, directChoice(direct[0])
	case nd == 0 && ni == 0:
		return RecommendNoPath, nil
	default:
		return RecommendChooseAny, nil
	}
}

func directChoice(d DirectRelationship) *AutoCreateChoice {
	return &AutoCreateChoice{Kind: ChoiceDirect, Direct: &d}
}

func indirectChoice(p IndirectPath) *AutoCreateChoice {
	return &AutoCreateChoice{Kind: ChoiceIndirect, Indirect: &p}
}

// candidates is the type-level part of a verdict, shared by every target of
// the same type within one batch.
type candidates struct {
	direct   []DirectRelationship
	indirect []IndirectPath
}

// ResolveConnectionsForSource resolves source against every target except
// itself and returns the verdicts keyed by target id. Candidate lists are
// computed once per distinct target type, with up to the configured number of
// types in flight at a time. The only error is ctx's.
func (e *Engine) ResolveConnectionsForSource(
	ctx context.Context,
	source Endpoint,
	targets []Endpoint,
	filter *ontology.Filter,
) (map[string]ConnectionResolution, error) {
	var types []ontology.ElementType
	index := make(map[ontology.ElementType]int)
	for _, t := range targets {
		if t.ID == source.ID {
			continue
		}
		if _, ok := index[t.Type]; !ok {
			index[t.Type] = len(types)
			types = append(types, t.Type)
		}
	}

	computed := make([]candidates, len(types))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, tt := range types {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			computed[i] = candidates{
				direct:   e.directRelationships(source.Type, tt, filter),
				indirect: e.indirectPaths(source.Type, tt, filter),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve connections for %s: %w", source.ID, err)
	}

	out := make(map[string]ConnectionResolution, len(targets))
	for _, t := range targets {
		if t.ID == source.ID {
			continue
		}
		c := computed[index[t.Type]]
		out[t.ID] = e.verdict(source.ID, t.ID, source.Type, t.Type, c.direct, c.indirect, filter)
	}
	return out, nil
}
