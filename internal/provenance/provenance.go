// Package provenance implements the bidirectional span-projection index
// (spec.md §4.H): every generated↔template relationship the compiler
// produces (overlay synthesis, runtime-expression evaluation, an emitted
// DOM-node binding) is recorded as a directed Edge, and any later query
// (hover, definition, diagnostic translation) projects a span on one side
// through the best-ranked edge onto the other.
package provenance

import (
	"math"
	"sort"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// EdgeKind discriminates the six provenance relationships spec.md §3
// "Provenance edges" names. The `from` side is always the generated side
// (an overlay program or a runtime expression/node); `to` is always the
// template side.
type EdgeKind string

const (
	EdgeOverlayMember EdgeKind = "overlayMember"
	EdgeOverlayExpr   EdgeKind = "overlayExpr"
	EdgeRuntimeMember EdgeKind = "runtimeMember"
	EdgeRuntimeExpr   EdgeKind = "runtimeExpr"
	EdgeRuntimeNode   EdgeKind = "runtimeNode"
	EdgeCustom        EdgeKind = "custom"
)

// kindRank is the projection ranking's first tiebreak, lower wins
// (spec.md §4.H.2).
var kindRank = map[EdgeKind]int{
	EdgeOverlayMember: 0,
	EdgeOverlayExpr:   1,
	EdgeRuntimeMember: 2,
	EdgeRuntimeExpr:   3,
	EdgeRuntimeNode:   4,
	EdgeCustom:        5,
}

func isMemberKind(k EdgeKind) bool { return k == EdgeOverlayMember || k == EdgeRuntimeMember }

// Endpoint is one side of an Edge.
type Endpoint struct {
	URI  ids.DocumentURI
	Span span.Span
}

// Edge is a single directed provenance relationship. Tag carries the
// dotted member path for the two member kinds, empty otherwise.
type Edge struct {
	Kind EdgeKind
	From Endpoint
	To   Endpoint
	Tag  string
}

// Side selects which of an Edge's two endpoints a query span is matched
// against: "from" for the generated side, "to" for the template side.
type Side string

const (
	SideFrom Side = "from"
	SideTo   Side = "to"
)

func (e Edge) endpoint(side Side) Endpoint {
	if side == SideFrom {
		return e.From
	}
	return e.To
}

func (e Edge) opposite(side Side) Endpoint {
	if side == SideFrom {
		return e.To
	}
	return e.From
}

type overlayCacheEntry struct {
	Source string
	Edges  []Edge
}

// Index is the provenance store: parallel by-from/by-to maps plus a
// per-template overlay cache (spec.md §4.H "Storage").
type Index struct {
	edgesByFrom  map[ids.DocumentURI][]Edge
	edgesByTo    map[ids.DocumentURI][]Edge
	overlayCache map[ids.TemplateID]overlayCacheEntry
}

// NewIndex returns an empty provenance index.
func NewIndex() *Index {
	return &Index{
		edgesByFrom:  map[ids.DocumentURI][]Edge{},
		edgesByTo:    map[ids.DocumentURI][]Edge{},
		overlayCache: map[ids.TemplateID]overlayCacheEntry{},
	}
}

// Add indexes e under both its endpoints' URIs.
func (idx *Index) Add(e Edge) {
	idx.edgesByFrom[e.From.URI] = append(idx.edgesByFrom[e.From.URI], e)
	idx.edgesByTo[e.To.URI] = append(idx.edgesByTo[e.To.URI], e)
}

// CacheOverlay remembers the synthesized overlay source and the edges it
// produced for tpl, so repeated type-check requests against the same
// template don't re-synthesize.
func (idx *Index) CacheOverlay(tpl ids.TemplateID, source string, edges []Edge) {
	idx.overlayCache[tpl] = overlayCacheEntry{Source: source, Edges: edges}
}

// CachedOverlay returns the previously cached overlay source/edges for tpl.
func (idx *Index) CachedOverlay(tpl ids.TemplateID) (string, []Edge, bool) {
	e, ok := idx.overlayCache[tpl]
	return e.Source, e.Edges, ok
}

// Result is what Project returns: the projected span on the opposite
// side of the winning edge, plus (spec.md §4.H.2's exact-full-expression
// case) the deepest member path among all overlapping candidates, which
// may belong to an edge other than the winner.
type Result struct {
	Span             span.Span
	Edge             Edge
	DeepestMemberTag string
}

// Project finds the best-ranked edge whose `side` endpoint (in uri)
// overlaps q, and projects the q∩source intersection onto the opposite
// side. fullExpression signals that q was authored as a request against
// the whole expression (not a sub-range within it) — per spec.md §4.H.2
// this prefers the shallowest (widest) member edge for the returned span
// while still surfacing the deepest member path alongside.
func (idx *Index) Project(uri ids.DocumentURI, q span.Span, side Side, fullExpression bool) (Result, bool) {
	table := idx.edgesByTo
	if side == SideFrom {
		table = idx.edgesByFrom
	}
	var candidates []Edge
	for _, e := range table[uri] {
		if e.endpoint(side).Span.Overlaps(q) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return Result{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return rankLess(candidates[i], candidates[j], q, side, fullExpression)
	})
	best := candidates[0]

	deepest := ""
	for _, c := range candidates {
		if memberDepth(c.Tag) > memberDepth(deepest) {
			deepest = c.Tag
		}
	}

	return Result{Span: projectSpan(best, q, side), Edge: best, DeepestMemberTag: deepest}, true
}

func overlapLen(e Edge, q span.Span, side Side) int {
	isect, ok := e.endpoint(side).Span.Intersect(q)
	if !ok {
		return 0
	}
	return isect.Len()
}

func memberDepth(tag string) int {
	if tag == "" {
		return 0
	}
	return strings.Count(tag, ".") + 1
}

// rankLess orders a before b per spec.md §4.H.2's four-step ranking:
// kind priority, overlap length, specificity, member-path depth.
func rankLess(a, b Edge, q span.Span, side Side, fullExpression bool) bool {
	ra, rb := kindRank[a.Kind], kindRank[b.Kind]
	if ra != rb {
		return ra < rb
	}

	oa, ob := overlapLen(a, q, side), overlapLen(b, q, side)
	if oa != ob {
		return oa > ob
	}

	if isMemberKind(a.Kind) {
		if la, lb := a.From.Span.Len(), b.From.Span.Len(); la != lb {
			return la < lb
		}
		if la, lb := a.To.Span.Len(), b.To.Span.Len(); la != lb {
			return la < lb
		}
	} else {
		if la, lb := a.opposite(side).Span.Len(), b.opposite(side).Span.Len(); la != lb {
			return la < lb
		}
	}

	da, db := memberDepth(a.Tag), memberDepth(b.Tag)
	if da != db {
		if fullExpression {
			return da < db
		}
		return da > db
	}
	return false
}

// projectSpan maps q's intersection with e's `side` endpoint onto e's
// opposite endpoint, per spec.md §4.H.2's three projection rules.
func projectSpan(e Edge, q span.Span, side Side) span.Span {
	from := e.endpoint(side)
	to := e.opposite(side)

	isect, ok := from.Span.Intersect(q)
	if !ok {
		return to.Span
	}

	switch e.Kind {
	case EdgeRuntimeNode:
		return to.Span
	case EdgeOverlayMember, EdgeRuntimeMember:
		start := clamp(to.Span.Start+(isect.Start-from.Span.Start), to.Span.Start, to.Span.End)
		end := clamp(to.Span.Start+(isect.End-from.Span.Start), to.Span.Start, to.Span.End)
		if end < start {
			end = start
		}
		return span.Span{File: to.Span.File, Start: start, End: end}
	default:
		fromLen := from.Span.Len()
		if fromLen == 0 {
			return to.Span
		}
		offsetRatio := float64(isect.Start-from.Span.Start) / float64(fromLen)
		sliceRatio := float64(isect.Len()) / float64(fromLen)
		start := to.Span.Start + int(math.Round(offsetRatio*float64(to.Span.Len())))
		end := start + int(math.Round(sliceRatio*float64(to.Span.Len())))
		start = clamp(start, to.Span.Start, to.Span.End)
		end = clamp(end, to.Span.Start, to.Span.End)
		if end < start {
			end = start
		}
		return span.Span{File: to.Span.File, Start: start, End: end}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
