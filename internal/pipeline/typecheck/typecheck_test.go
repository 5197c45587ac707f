package typecheck

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/link"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/lower"
	"github.com/aurelia-tools/aurelia-ls/internal/provenance"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/testsupport"
)

func testCatalog() *semantics.ResourceCatalog {
	catalog := semantics.NewResourceCatalog()
	for _, c := range semantics.Builtin().Resources.Controllers {
		catalog.Put(c)
	}
	return catalog
}

func lowerSource(t *testing.T, source string) *ir.IrModule {
	t.Helper()
	catalog := testCatalog()
	syntax := semantics.BuiltinTemplateSyntax()
	mod, err := lower.Lower(1, source, hostiface.NewDefaultMarkupParser(), hostiface.NewDefaultExpressionParser(), catalog, syntax)
	require.NoError(t, err)
	mat := &semantics.MaterializedSemantics{Base: semantics.Builtin()}
	link.Link(mod, mat, catalog, syntax)
	return mod
}

func fakeVmReflection() testsupport.FakeVmReflection {
	return testsupport.NewFakeVmReflection("App")
}

func TestSynthesizeOverlayOneStatementPerExpression(t *testing.T) {
	mod := lowerSource(t, `<div>${user.name}</div><div if.bind="shown">x</div>`)
	tpl := &mod.Templates[0]

	b := &overlayBuilder{mod: mod, tpl: tpl, vm: fakeVmReflection(), file: overlayFileID(tpl.ID), overlayURI: "overlay://t0", templateURI: "file:///app.html"}
	b.build()
	source := b.sb.String()

	assert.Contains(t, source, "declare const __au: App;")
	assert.True(t, strings.Count(source, ";") >= 2)
	require.NotEmpty(t, b.edges)
}

func TestSynthesizeOverlayBooleanCoercionWrapsIfExpression(t *testing.T) {
	mod := lowerSource(t, `<div if.bind="shown">x</div>`)
	tpl := &mod.Templates[0]

	b := &overlayBuilder{mod: mod, tpl: tpl, vm: fakeVmReflection(), file: overlayFileID(tpl.ID), overlayURI: "overlay://t0", templateURI: "file:///app.html"}
	b.build()

	assert.Contains(t, b.sb.String(), "!!(shown)")
}

func TestSynthesizeOverlayEdgeSpansRoundTrip(t *testing.T) {
	mod := lowerSource(t, `<div>${user.name}</div>`)
	tpl := &mod.Templates[0]
	templateURI := ids.DocumentURI("file:///app.html")

	b := &overlayBuilder{mod: mod, tpl: tpl, vm: fakeVmReflection(), file: overlayFileID(tpl.ID), overlayURI: overlayDocumentURI(templateURI, tpl.ID), templateURI: templateURI}
	b.build()

	idx := provenance.NewIndex()
	for _, e := range b.edges {
		idx.Add(e)
	}

	var exprEdge provenance.Edge
	found := false
	for _, e := range b.edges {
		if e.Kind == provenance.EdgeOverlayExpr {
			exprEdge = e
			found = true
		}
	}
	require.True(t, found)

	result, ok := idx.Project(b.overlayURI, exprEdge.From.Span, provenance.SideFrom, true)
	require.True(t, ok)
	assert.Equal(t, exprEdge.To.Span, result.Span)
}

func TestSynthesizeOverlayMemberEdgesCoverDottedPrefixes(t *testing.T) {
	mod := lowerSource(t, `<div>${user.name.first}</div>`)
	tpl := &mod.Templates[0]

	b := &overlayBuilder{mod: mod, tpl: tpl, vm: fakeVmReflection(), file: overlayFileID(tpl.ID), overlayURI: "overlay://t0", templateURI: "file:///app.html"}
	b.build()

	tags := map[string]bool{}
	for _, e := range b.edges {
		if e.Kind == provenance.EdgeOverlayMember {
			tags[e.Tag] = true
		}
	}
	assert.True(t, tags["user"])
	assert.True(t, tags["user.name"])
	assert.True(t, tags["user.name.first"])
}

func TestCheckTemplateTranslatesDiagnosticBackToTemplateSpan(t *testing.T) {
	mod := lowerSource(t, `<div>${user.name}</div>`)
	tpl := &mod.Templates[0]
	idx := provenance.NewIndex()

	// First pass: synthesize to learn the real overlay offsets the fake
	// checker should complain about.
	probe := &overlayBuilder{mod: mod, tpl: tpl, vm: fakeVmReflection(), file: overlayFileID(tpl.ID), overlayURI: overlayDocumentURI("file:///app.html", tpl.ID), templateURI: "file:///app.html"}
	probe.build()
	var exprEdge provenance.Edge
	for _, e := range probe.edges {
		if e.Kind == provenance.EdgeOverlayExpr {
			exprEdge = e
		}
	}
	require.NotZero(t, exprEdge.Kind)

	checker := &testsupport.RecordingChecker{Diags: []hostiface.TypeDiagnostic{
		{OverlayStart: exprEdge.From.Span.Start, OverlayEnd: exprEdge.From.Span.End, Severity: "error", Message: "no member 'name'", Code: "TS2339"},
	}}

	diags, err := CheckTemplate(context.Background(), mod, tpl, checker, fakeVmReflection(), idx, "file:///app.html")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, exprEdge.To.Span, diags[0].Span)
	assert.Equal(t, "TS2339", diags[0].Code)
	assert.Contains(t, checker.Source, "declare const __au: App;")
}

func TestCheckTemplateCachesOverlay(t *testing.T) {
	mod := lowerSource(t, `<div>${x}</div>`)
	tpl := &mod.Templates[0]
	idx := provenance.NewIndex()
	checker := &testsupport.RecordingChecker{}

	_, err := CheckTemplate(context.Background(), mod, tpl, checker, fakeVmReflection(), idx, "file:///app.html")
	require.NoError(t, err)

	source, edges, ok := idx.CachedOverlay(tpl.ID)
	require.True(t, ok)
	assert.NotEmpty(t, source)
	assert.NotEmpty(t, edges)
}

func TestSplitMemberChainBareIdentifierHasNoSegments(t *testing.T) {
	assert.Nil(t, splitMemberChain("shown"))
}

func TestSplitMemberChainStopsAtCall(t *testing.T) {
	segs := splitMemberChain("user.load()")
	require.Len(t, segs, 2)
	assert.Equal(t, "user", segs[0].Tag)
	assert.Equal(t, "user.load", segs[1].Tag)
}
