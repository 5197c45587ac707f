package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/bind"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/link"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/lower"
	"github.com/aurelia-tools/aurelia-ls/internal/provenance"
	"github.com/aurelia-tools/aurelia-ls/internal/refindex"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

const engineTestURI ids.DocumentURI = "file:///app.html"
const viewModelURI ids.DocumentURI = "file:///my-widget.ts"

type mapFileLocator map[ids.SourceFileID]ids.DocumentURI

func (m mapFileLocator) URIForFile(file ids.SourceFileID) (ids.DocumentURI, bool) {
	uri, ok := m[file]
	return uri, ok
}

func buildEngine(t *testing.T, source string, extra ...semantics.ResourceDef) (*ir.IrModule, *Engine) {
	t.Helper()
	catalog := semantics.NewResourceCatalog()
	for _, c := range semantics.Builtin().Resources.Controllers {
		catalog.Put(c)
	}
	for _, r := range extra {
		catalog.Put(r)
	}
	syntax := semantics.BuiltinTemplateSyntax()
	mod, err := lower.Lower(1, source, hostiface.NewDefaultMarkupParser(), hostiface.NewDefaultExpressionParser(), catalog, syntax)
	require.NoError(t, err)
	mat := &semantics.MaterializedSemantics{Base: semantics.Builtin()}
	link.Link(mod, mat, catalog, syntax)
	sm := bind.Bind(mod, catalog)
	idx := refindex.FromModule(mod, sm, engineTestURI)

	e := &Engine{
		Catalog:    catalog,
		RefIndex:   idx,
		Provenance: provenance.NewIndex(),
		Files:      mapFileLocator{2: viewModelURI},
		Syntax:     syntax,
		DOM:        semantics.Builtin().DOM,
	}
	return mod, e
}

func widgetDef() semantics.ResourceDef {
	return semantics.ResourceDef{
		Kind: semantics.KindCustomElement,
		Name: semantics.NewSourced("my-widget", semantics.OriginSource, nil),
		File: 2,
		NameLoc: &semantics.SourceLocation{
			File: 2, Span: span.Span{File: 2, Start: 10, End: 19},
		},
		Bindables: []semantics.BindableDef{
			{PropertyName: "title", AttributeName: "title", Mode: semantics.NewSourced(semantics.BindableModeToView, semantics.OriginSource, nil)},
		},
	}
}

func TestHoverResolvesTagNameToElementSignature(t *testing.T) {
	_, e := buildEngine(t, `<my-widget></my-widget>`, widgetDef())
	hover, ok := e.Hover(engineTestURI, 1)
	require.True(t, ok)
	assert.Equal(t, "custom-element:my-widget", hover.Key)
	assert.Contains(t, hover.Signature, "my-widget")
}

func TestHoverUnknownWhenNothingCoversOffset(t *testing.T) {
	_, e := buildEngine(t, `<div>hi</div>`)
	_, ok := e.Hover(engineTestURI, 2)
	assert.False(t, ok)
}

func TestHoverProjectsThroughProvenanceEdge(t *testing.T) {
	// A bare <div> carries no refindex sites of its own, so FileForURI
	// needs at least one recorded site elsewhere in the document to
	// learn this URI's SourceFileID; my-widget's tag-name site supplies
	// it while the query offset itself falls on the plain text node,
	// which the direct SiteAt lookup never covers.
	_, e := buildEngine(t, `<my-widget></my-widget>text`, widgetDef())
	textOffset := len(`<my-widget></my-widget>`) + 1
	e.Provenance.Add(provenance.Edge{
		Kind: provenance.EdgeOverlayMember,
		From: provenance.Endpoint{URI: "file:///overlay", Span: span.Span{File: 1, Start: 0, End: 5}},
		To:   provenance.Endpoint{URI: engineTestURI, Span: span.Span{File: 1, Start: textOffset - 1, End: textOffset + 3}},
		Tag:  "user.name",
	})
	hover, ok := e.Hover(engineTestURI, textOffset)
	require.True(t, ok)
	assert.Contains(t, hover.Signature, "user.name")
}

func TestDefinitionResolvesElementToDeclaringFile(t *testing.T) {
	_, e := buildEngine(t, `<my-widget></my-widget>`, widgetDef())
	def, ok := e.Definition(engineTestURI, 1)
	require.True(t, ok)
	assert.Equal(t, viewModelURI, def.URI)
	assert.Equal(t, 10, def.Span.Start)
}

func TestDefinitionResolvesBindableToOwningElementFile(t *testing.T) {
	_, e := buildEngine(t, `<my-widget title.bind="t"></my-widget>`, widgetDef())
	offset := len(`<my-widget `)
	def, ok := e.Definition(engineTestURI, offset)
	require.True(t, ok)
	assert.Equal(t, viewModelURI, def.URI)
}

func TestReferencesIncludesDeclarationSite(t *testing.T) {
	_, e := buildEngine(t, `<my-widget></my-widget><my-widget></my-widget>`, widgetDef())
	sites, ok := e.References(engineTestURI, 1)
	require.True(t, ok)

	var sawDecl, sawUse int
	for _, s := range sites {
		if s.URI == viewModelURI {
			sawDecl++
		} else {
			sawUse++
		}
	}
	assert.Equal(t, 1, sawDecl)
	assert.Equal(t, 4, sawUse) // two open tags + two close tags
}

func TestRenamePreservesKebabCasingOnAttributeSites(t *testing.T) {
	_, e := buildEngine(t, `<my-widget title.bind="t"></my-widget>`, widgetDef())
	offset := len(`<my-widget `)
	result, ok := e.Rename(engineTestURI, offset, "subTitle")
	require.True(t, ok)
	assert.Equal(t, "title", result.Placeholder)

	var sawKebab bool
	for _, edit := range result.Edits {
		if edit.Span.ReferenceKind == refindex.KindAttributeName {
			assert.Equal(t, "sub-title", edit.NewText)
			sawKebab = true
		}
	}
	assert.True(t, sawKebab)
}

func TestCompletionsTagNameListsCustomAndNativeElements(t *testing.T) {
	_, e := buildEngine(t, `<div></div>`, widgetDef())
	items := e.Completions(CompletionContext{Kind: PositionTagName})
	var sawWidget, sawNative bool
	for _, it := range items {
		if it.Label == "my-widget" {
			sawWidget = true
		}
		if it.Kind == "native-element" {
			sawNative = true
		}
	}
	assert.True(t, sawWidget)
	assert.True(t, sawNative)
}

func TestCompletionsAttributeNameScopesBindablesToElement(t *testing.T) {
	_, e := buildEngine(t, `<div></div>`, widgetDef())
	items := e.Completions(CompletionContext{Kind: PositionAttributeName, Element: "my-widget"})
	var found bool
	for _, it := range items {
		if it.Label == "title" && it.Kind == "attribute" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompletionsCommandListsRegisteredCommands(t *testing.T) {
	_, e := buildEngine(t, `<div></div>`)
	items := e.Completions(CompletionContext{Kind: PositionCommand})
	var found bool
	for _, it := range items {
		if it.Label == "bind" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompletionsConverterListsValueConverters(t *testing.T) {
	converter := semantics.ResourceDef{Kind: semantics.KindValueConverter, Name: semantics.NewSourced("upper", semantics.OriginSource, nil)}
	_, e := buildEngine(t, `<div></div>`, converter)
	items := e.Completions(CompletionContext{Kind: PositionConverter})
	require.Len(t, items, 1)
	assert.Equal(t, "upper", items[0].Label)
}

func TestSemanticTokensAreOrderedNonOverlappingNonZero(t *testing.T) {
	mod, e := buildEngine(t, `<my-widget title.bind="t">${t}</my-widget>`, widgetDef())
	tokens := SemanticTokens(mod, e.Catalog, e.Syntax)
	require.NotEmpty(t, tokens)
	for i, tok := range tokens {
		assert.True(t, tok.Span.Valid(), "token %d has non-positive length", i)
		if i > 0 {
			assert.True(t, tokens[i-1].Span.End <= tok.Span.Start, "token %d overlaps token %d", i-1, i)
		}
	}
}

func TestSemanticTokensUserConverterHasNoDefaultLibraryModifier(t *testing.T) {
	converter := semantics.ResourceDef{Kind: semantics.KindValueConverter, Name: semantics.NewSourced("upper", semantics.OriginSource, nil)}
	mod, e := buildEngine(t, `<div>${name | upper}</div>`, converter)
	tokens := SemanticTokens(mod, e.Catalog, e.Syntax)
	var sawConverter bool
	for _, tok := range tokens {
		if tok.Kind == TokenConverter {
			sawConverter = true
			assert.Empty(t, tok.Modifiers) // user-authored converter, not a built-in
		}
	}
	assert.True(t, sawConverter)
}
