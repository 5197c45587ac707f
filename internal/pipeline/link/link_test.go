package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/lower"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

func testCatalog(extra ...semantics.ResourceDef) *semantics.ResourceCatalog {
	catalog := semantics.NewResourceCatalog()
	base := semantics.Builtin()
	for _, c := range base.Resources.Controllers {
		catalog.Put(c)
	}
	for _, d := range extra {
		catalog.Put(d)
	}
	return catalog
}

func linkSource(t *testing.T, source string, extra ...semantics.ResourceDef) *ir.IrModule {
	t.Helper()
	catalog := testCatalog(extra...)
	syntax := semantics.BuiltinTemplateSyntax()
	mod, err := lower.Lower(1, source, hostiface.NewDefaultMarkupParser(), hostiface.NewDefaultExpressionParser(), catalog, syntax)
	require.NoError(t, err)
	mat := &semantics.MaterializedSemantics{Base: semantics.Builtin()}
	return Link(mod, mat, catalog, syntax)
}

func firstRowInstr(mod *ir.IrModule) ir.Instruction {
	return mod.RootTemplate().Rows[0].Instructions[0]
}

func TestLinkNormalizesClassToClassName(t *testing.T) {
	mod := linkSource(t, `<div class.bind="c"></div>`)
	instr := firstRowInstr(mod)
	assert.Equal(t, "className", instr.To)
}

func TestLinkDefaultBindResolvesToToView(t *testing.T) {
	mod := linkSource(t, `<div title.bind="t"></div>`)
	instr := firstRowInstr(mod)
	assert.Equal(t, ir.ModeToView, instr.Mode)
}

func TestLinkInputValueDefaultsToTwoWay(t *testing.T) {
	mod := linkSource(t, `<input value.bind="name">`)
	instr := firstRowInstr(mod)
	assert.Equal(t, "value", instr.To)
	assert.Equal(t, ir.ModeTwoWay, instr.Mode)
}

func TestLinkCheckboxCheckedIsConditionallyTwoWay(t *testing.T) {
	mod := linkSource(t, `<input type="checkbox" checked.bind="done">`)
	root := mod.RootTemplate()
	row := root.Rows[0]
	var checked *ir.Instruction
	for i := range row.Instructions {
		if row.Instructions[i].Kind == ir.InstrPropertyBinding {
			checked = &row.Instructions[i]
		}
	}
	require.NotNil(t, checked)
	assert.Equal(t, ir.ModeTwoWay, checked.Mode)
}

func TestLinkRadioWithoutTypeIsNotTwoWay(t *testing.T) {
	mod := linkSource(t, `<input checked.bind="done">`)
	instr := firstRowInstr(mod)
	assert.Equal(t, ir.ModeToView, instr.Mode)
}

func TestLinkUnknownCommandDiagnostic(t *testing.T) {
	mod := linkSource(t, `<div value.nope="x"></div>`)
	found := false
	for _, d := range mod.Diagnostics {
		if d.Code == "aurelia/unknown-command" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLinkUnknownElementDiagnostic(t *testing.T) {
	mod := linkSource(t, `<my-unknown-widget></my-unknown-widget>`)
	found := false
	for _, d := range mod.Diagnostics {
		if d.Code == "aurelia/unknown-element" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLinkKnownCustomElementIsNotFlagged(t *testing.T) {
	widget := semantics.ResourceDef{
		Kind: semantics.KindCustomElement,
		Name: semantics.NewSourced("my-widget", semantics.OriginSource, nil),
		Bindables: []semantics.BindableDef{
			{PropertyName: "title", AttributeName: "title", Mode: semantics.NewSourced(semantics.BindableModeToView, semantics.OriginSource, nil)},
		},
	}
	mod := linkSource(t, `<my-widget title.bind="t"></my-widget>`, widget)
	for _, d := range mod.Diagnostics {
		assert.NotEqual(t, "aurelia/unknown-element", d.Code)
	}
	instr := firstRowInstr(mod)
	require.Len(t, instr.ElementProps, 1)
	assert.Equal(t, "title", instr.ElementProps[0].To)
	assert.Equal(t, ir.BindingMode(semantics.BindableModeToView), instr.ElementProps[0].Mode)
}

func TestLinkUnknownBindableDiagnostic(t *testing.T) {
	widget := semantics.ResourceDef{
		Kind: semantics.KindCustomElement,
		Name: semantics.NewSourced("my-widget", semantics.OriginSource, nil),
		Bindables: []semantics.BindableDef{
			{PropertyName: "title", AttributeName: "title"},
		},
	}
	mod := linkSource(t, `<my-widget nope.bind="t"></my-widget>`, widget)
	found := false
	for _, d := range mod.Diagnostics {
		if d.Code == "aurelia/unknown-bindable" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLinkPreservedPrefixAttributeIsNotCamelCased(t *testing.T) {
	mod := linkSource(t, `<div data-foo-bar.bind="x"></div>`)
	instr := firstRowInstr(mod)
	assert.Equal(t, "data-foo-bar", instr.To)
}

func TestLinkUnknownConverterDiagnostic(t *testing.T) {
	mod := linkSource(t, `<div value.bind="name | noSuchConverter"></div>`)
	found := false
	for _, d := range mod.Diagnostics {
		if d.Code == "aurelia/unknown-converter" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLinkUnknownEventDiagnostic(t *testing.T) {
	mod := linkSource(t, `<div made-up-event.trigger="go()"></div>`)
	found := false
	for _, d := range mod.Diagnostics {
		if d.Code == "aurelia/unknown-event" {
			found = true
		}
	}
	assert.True(t, found)
}
