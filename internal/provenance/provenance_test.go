package provenance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

const (
	overlayURI  ids.DocumentURI = "file:///overlay.ts"
	templateURI ids.DocumentURI = "file:///app.html"
)

func sp(uri ids.DocumentURI, start, end int) span.Span {
	file := ids.SourceFileID(0)
	if uri == overlayURI {
		file = 1
	}
	return span.Span{File: file, Start: start, End: end}
}

func TestProjectRuntimeNodeIsVerbatim(t *testing.T) {
	idx := NewIndex()
	idx.Add(Edge{
		Kind: EdgeRuntimeNode,
		From: Endpoint{URI: overlayURI, Span: sp(overlayURI, 10, 40)},
		To:   Endpoint{URI: templateURI, Span: sp(templateURI, 100, 130)},
	})

	result, ok := idx.Project(overlayURI, sp(overlayURI, 15, 20), SideFrom, false)
	require.True(t, ok)
	assert.Equal(t, sp(templateURI, 100, 130), result.Span)
}

func TestProjectMemberEdgeTranslatesClamped(t *testing.T) {
	idx := NewIndex()
	idx.Add(Edge{
		Kind: EdgeOverlayMember,
		From: Endpoint{URI: overlayURI, Span: sp(overlayURI, 10, 30)},
		To:   Endpoint{URI: templateURI, Span: sp(templateURI, 100, 120)},
		Tag:  "user.name",
	})

	result, ok := idx.Project(overlayURI, sp(overlayURI, 15, 18), SideFrom, false)
	require.True(t, ok)
	assert.Equal(t, 105, result.Span.Start)
	assert.Equal(t, 108, result.Span.End)

	// A query spilling past the edge's own from-span still clamps into
	// the target span rather than projecting outside it.
	result2, ok := idx.Project(overlayURI, sp(overlayURI, 25, 35), SideFrom, false)
	require.True(t, ok)
	assert.LessOrEqual(t, result2.Span.End, 120)
}

func TestProjectProportionalScalesByOverlapRatio(t *testing.T) {
	idx := NewIndex()
	idx.Add(Edge{
		Kind: EdgeOverlayExpr,
		From: Endpoint{URI: overlayURI, Span: sp(overlayURI, 0, 100)},
		To:   Endpoint{URI: templateURI, Span: sp(templateURI, 200, 250)},
	})

	// Half the overlay span -> half the template span.
	result, ok := idx.Project(overlayURI, sp(overlayURI, 0, 50), SideFrom, false)
	require.True(t, ok)
	assert.Equal(t, 200, result.Span.Start)
	assert.Equal(t, 225, result.Span.End)
}

func TestProjectRoundTripWithinOnePosition(t *testing.T) {
	idx := NewIndex()
	from := sp(overlayURI, 10, 37)
	to := sp(templateURI, 500, 519)
	idx.Add(Edge{Kind: EdgeOverlayExpr, From: Endpoint{URI: overlayURI, Span: from}, To: Endpoint{URI: templateURI, Span: to}})

	forward, ok := idx.Project(overlayURI, from, SideFrom, true)
	require.True(t, ok)

	back, ok := idx.Project(templateURI, forward.Span, SideTo, true)
	require.True(t, ok)

	assert.InDelta(t, from.Start, back.Span.Start, 1)
	assert.InDelta(t, from.End, back.Span.End, 1)
}

func TestProjectPrefersHigherRankedKind(t *testing.T) {
	idx := NewIndex()
	q := sp(overlayURI, 10, 15)
	idx.Add(Edge{Kind: EdgeRuntimeNode, From: Endpoint{URI: overlayURI, Span: sp(overlayURI, 10, 20)}, To: Endpoint{URI: templateURI, Span: sp(templateURI, 900, 910)}})
	idx.Add(Edge{Kind: EdgeOverlayMember, From: Endpoint{URI: overlayURI, Span: sp(overlayURI, 10, 20)}, To: Endpoint{URI: templateURI, Span: sp(templateURI, 100, 110)}, Tag: "foo"})

	result, ok := idx.Project(overlayURI, q, SideFrom, false)
	require.True(t, ok)
	assert.Equal(t, EdgeOverlayMember, result.Edge.Kind)
}

func TestProjectExactFullExpressionPrefersShallowerMemberButReportsDeepest(t *testing.T) {
	idx := NewIndex()
	full := sp(overlayURI, 10, 30)
	shallow := Edge{Kind: EdgeOverlayMember, From: Endpoint{URI: overlayURI, Span: full}, To: Endpoint{URI: templateURI, Span: sp(templateURI, 100, 110)}, Tag: "user"}
	deep := Edge{Kind: EdgeOverlayMember, From: Endpoint{URI: overlayURI, Span: full}, To: Endpoint{URI: templateURI, Span: sp(templateURI, 100, 110)}, Tag: "user.name"}
	idx.Add(shallow)
	idx.Add(deep)

	fullExprResult, ok := idx.Project(overlayURI, full, SideFrom, true)
	require.True(t, ok)
	assert.Equal(t, "user", fullExprResult.Edge.Tag)
	assert.Equal(t, "user.name", fullExprResult.DeepestMemberTag)

	partialResult, ok := idx.Project(overlayURI, full, SideFrom, false)
	require.True(t, ok)
	assert.Equal(t, "user.name", partialResult.Edge.Tag)
}
