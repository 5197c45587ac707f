package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
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

func lowerSource(t *testing.T, source string, extra ...semantics.ResourceDef) *ir.IrModule {
	t.Helper()
	mod, err := Lower(1, source, hostiface.NewDefaultMarkupParser(), hostiface.NewDefaultExpressionParser(), testCatalog(extra...), semantics.BuiltinTemplateSyntax())
	require.NoError(t, err)
	return mod
}

func TestLowerStaticAndBoundAttributes(t *testing.T) {
	mod := lowerSource(t, `<div class="card" value.bind="name"></div>`)
	root := mod.RootTemplate()
	require.Len(t, root.Root.Children, 1)
	div := root.Root.Children[0]
	require.Len(t, root.Rows, 1)
	row := root.Rows[0]
	require.Equal(t, div.ID, row.Target)
	require.Len(t, row.Instructions, 2)
	assert.Equal(t, ir.InstrSetAttribute, row.Instructions[0].Kind)
	assert.Equal(t, "class", row.Instructions[0].To)
	assert.Equal(t, ir.InstrPropertyBinding, row.Instructions[1].Kind)
	assert.Equal(t, "value", row.Instructions[1].To)
	assert.Equal(t, ir.ModeDefault, row.Instructions[1].Mode)
}

func TestLowerTextInterpolation(t *testing.T) {
	mod := lowerSource(t, `<p>Hello ${name}!</p>`)
	root := mod.RootTemplate()
	p := root.Root.Children[0]
	require.Len(t, p.Children, 1)
	text := p.Children[0]
	require.NotNil(t, text.TextSource)
	assert.Equal(t, ir.BindingSourceInterp, text.TextSource.Kind)
	assert.Equal(t, []string{"Hello ", "!"}, text.TextSource.Interp.Parts)

	var row *ir.InstructionRow
	for i := range root.Rows {
		if root.Rows[i].Target == text.ID {
			row = &root.Rows[i]
		}
	}
	require.NotNil(t, row)
	require.Len(t, row.Instructions, 1)
	assert.Equal(t, ir.InstrTextBinding, row.Instructions[0].Kind)
}

func TestLowerIfControllerWrapsNestedTemplate(t *testing.T) {
	mod := lowerSource(t, `<div if.bind="show">hi</div>`)
	root := mod.RootTemplate()
	require.Len(t, root.Root.Children, 1)
	marker := root.Root.Children[0]
	assert.Equal(t, ir.NodeComment, marker.Kind)
	assert.Equal(t, "au-controller:if", marker.Text)

	require.Len(t, root.Rows, 1)
	instr := root.Rows[0].Instructions[0]
	assert.Equal(t, ir.InstrHydrateController, instr.Kind)
	assert.Equal(t, "if", instr.Res)
	require.NotNil(t, instr.Def)
	nestedIdx := instr.Def.NestedTemplateIdx
	require.Greater(t, len(mod.Templates), nestedIdx)

	nested := mod.Templates[nestedIdx]
	require.NotNil(t, nested.Origin)
	assert.Equal(t, "if", nested.Origin.ControllerName)
	assert.Equal(t, "div", nested.Root.Tag)
}

func TestLowerRepeatBuildsIterator(t *testing.T) {
	mod := lowerSource(t, `<li repeat.for="item of items">x</li>`)
	root := mod.RootTemplate()
	instr := root.Rows[0].Instructions[0]
	require.NotNil(t, instr.Iterator)
	assert.Equal(t, ir.PatternIdentifier, instr.Iterator.Declaration.Kind)
	assert.Equal(t, "item", instr.Iterator.Declaration.Name)
}

func TestLowerCustomElementHydration(t *testing.T) {
	widget := semantics.ResourceDef{
		Kind: semantics.KindCustomElement,
		Name: semantics.NewSourced("my-widget", semantics.OriginSource, nil),
	}
	mod := lowerSource(t, `<my-widget title.bind="t"></my-widget>`, widget)
	root := mod.RootTemplate()
	row := root.Rows[0]
	require.Len(t, row.Instructions, 1)
	instr := row.Instructions[0]
	assert.Equal(t, ir.InstrHydrateElement, instr.Kind)
	assert.Equal(t, "my-widget", instr.Res)
	require.Len(t, instr.ElementProps, 1)
	assert.Equal(t, "title", instr.ElementProps[0].To)
}

func TestLowerBadExpressionIsRecoverable(t *testing.T) {
	mod := lowerSource(t, `<div value.bind="foo("></div>`)
	require.NotEmpty(t, mod.Diagnostics)
	assert.Equal(t, "aurelia/expr-parse-error", mod.Diagnostics[0].Code)
	assert.True(t, mod.Diagnostics[0].Recovery)
}

func TestLowerElseWithoutIfDiagnostic(t *testing.T) {
	mod := lowerSource(t, `<div else>nope</div>`)
	found := false
	for _, d := range mod.Diagnostics {
		if d.Code == "aurelia/else-without-if" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLowerElseFollowingIfIsClean(t *testing.T) {
	mod := lowerSource(t, `<div if.bind="a">yes</div><div else>no</div>`)
	for _, d := range mod.Diagnostics {
		assert.NotEqual(t, "aurelia/else-without-if", d.Code)
	}
}
