package bind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/link"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/lower"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

func testCatalog() *semantics.ResourceCatalog {
	catalog := semantics.NewResourceCatalog()
	for _, c := range semantics.Builtin().Resources.Controllers {
		catalog.Put(c)
	}
	return catalog
}

func bindSource(t *testing.T, source string) (*ir.IrModule, *ir.ScopeModule) {
	t.Helper()
	catalog := testCatalog()
	syntax := semantics.BuiltinTemplateSyntax()
	mod, err := lower.Lower(1, source, hostiface.NewDefaultMarkupParser(), hostiface.NewDefaultExpressionParser(), catalog, syntax)
	require.NoError(t, err)
	mat := &semantics.MaterializedSemantics{Base: semantics.Builtin()}
	link.Link(mod, mat, catalog, syntax)
	return mod, Bind(mod, catalog)
}

func findNestedTemplate(mod *ir.IrModule, controller string) *ir.TemplateIR {
	for i := range mod.Templates {
		tpl := &mod.Templates[i]
		if tpl.Origin != nil && tpl.Origin.ControllerName == controller {
			return tpl
		}
	}
	return nil
}

func TestBindRootTemplateHasRootFrame(t *testing.T) {
	_, sm := bindSource(t, `<div>hi</div>`)
	root, ok := sm.Template(0)
	require.True(t, ok)
	assert.Equal(t, ir.FrameRoot, root.Frame.Kind)
	assert.Equal(t, ids.NoTemplate, root.ParentTemplate)
}

func TestBindIfDoesNotOpenOverlay(t *testing.T) {
	mod, sm := bindSource(t, `<div if.bind="shown">hi</div>`)
	nested := findNestedTemplate(mod, "if")
	require.NotNil(t, nested)
	st, ok := sm.Template(nested.ID)
	require.True(t, ok)
	assert.Equal(t, ir.FrameRoot, st.Frame.Kind)
	assert.Empty(t, st.Frame.Symbols)
}

func TestBindRepeatOpensOverlayWithIteratorLocalAndContextuals(t *testing.T) {
	mod, sm := bindSource(t, `<div repeat.for="item of items">${item}</div>`)
	nested := findNestedTemplate(mod, "repeat")
	require.NotNil(t, nested)
	st, ok := sm.Template(nested.ID)
	require.True(t, ok)
	assert.Equal(t, ir.FrameOverlay, st.Frame.Kind)

	names := map[string]ir.SymbolKind{}
	for _, s := range st.Frame.Symbols {
		names[s.Name] = s.Kind
	}
	assert.Equal(t, ir.SymbolIteratorLocal, names["item"])
	for _, contextual := range []string{"$index", "$first", "$last", "$even", "$odd", "$length", "$middle"} {
		assert.Equal(t, ir.SymbolContextual, names[contextual], contextual)
	}
}

func TestBindRepeatDestructuresArrayPattern(t *testing.T) {
	mod, sm := bindSource(t, `<div repeat.for="[k, v] of entries">${k}</div>`)
	nested := findNestedTemplate(mod, "repeat")
	require.NotNil(t, nested)
	st, _ := sm.Template(nested.ID)
	names := map[string]bool{}
	for _, s := range st.Frame.Symbols {
		if s.Kind == ir.SymbolIteratorLocal {
			names[s.Name] = true
		}
	}
	assert.True(t, names["k"])
	assert.True(t, names["v"])
}

func TestBindWithSetsOverlayBase(t *testing.T) {
	mod, sm := bindSource(t, `<div with.bind="address">${street}</div>`)
	nested := findNestedTemplate(mod, "with")
	require.NotNil(t, nested)
	st, _ := sm.Template(nested.ID)
	assert.Equal(t, ir.FrameOverlay, st.Frame.Kind)
	require.NotNil(t, st.Frame.OverlayBase)
}

func TestBindLetContributesToEnclosingFrame(t *testing.T) {
	_, sm := bindSource(t, `<template><let full-name.bind="first + last"></let><div>${fullName}</div></template>`)
	root, ok := sm.Template(0)
	require.True(t, ok)
	found := false
	for _, s := range root.Frame.Symbols {
		if s.Kind == ir.SymbolLet && s.Name == "fullName" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBindPromiseBranchRegistersAlias(t *testing.T) {
	mod, sm := bindSource(t, `<template><div promise.bind="load()"><div then.from-view="data">${data}</div></div></template>`)
	thenTpl := findNestedTemplate(mod, "then")
	require.NotNil(t, thenTpl)
	st, _ := sm.Template(thenTpl.ID)
	assert.Equal(t, ir.FrameOverlay, st.Frame.Kind)
	found := false
	for _, s := range st.Frame.Symbols {
		if s.Kind == ir.SymbolAlias && s.Name == "data" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBindEveryExpressionHasAFrameMapping(t *testing.T) {
	mod, sm := bindSource(t, `<template><div repeat.for="item of items">${item.name}</div></template>`)
	for i := range mod.Templates {
		tpl := &mod.Templates[i]
		st, ok := sm.Template(tpl.ID)
		require.True(t, ok)
		for ri := range tpl.Rows {
			for _, instr := range tpl.Rows[ri].Instructions {
				assertExprsMapped(t, instr, st.ExprFrame)
			}
		}
	}
}

func assertExprsMapped(t *testing.T, instr ir.Instruction, exprFrame map[ids.ExprID]ids.FrameID) {
	t.Helper()
	check := func(src ir.BindingSource) {
		switch src.Kind {
		case ir.BindingSourceExpr:
			if src.Expr != nil {
				_, ok := exprFrame[src.Expr.ID]
				assert.True(t, ok, "expr %q has no frame mapping", src.Expr.Text)
			}
		case ir.BindingSourceInterp:
			if src.Interp != nil {
				for _, e := range src.Interp.Exprs {
					_, ok := exprFrame[e.ID]
					assert.True(t, ok, "expr %q has no frame mapping", e.Text)
				}
			}
		}
	}
	check(instr.From)
	for _, p := range instr.ElementProps {
		assertExprsMapped(t, p, exprFrame)
	}
	for _, p := range instr.AttrProps {
		assertExprsMapped(t, p, exprFrame)
	}
	for _, p := range instr.ControllerProps {
		assertExprsMapped(t, p, exprFrame)
	}
}
