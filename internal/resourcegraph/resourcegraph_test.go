package resourcegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-tools/aurelia-ls/internal/discovery"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

func testMaterialized(t *testing.T) *semantics.MaterializedSemantics {
	t.Helper()
	base := semantics.Builtin()
	return &semantics.MaterializedSemantics{Base: base, Resources: base.Resources}
}

func TestMaterializeSeesRootAndLocalButNotGrandparent(t *testing.T) {
	owner := ids.DocumentURI("file:///src/app.html")
	templateName := "inline-widget"

	imports := []discovery.ImportDirective{
		{
			OwnerScope:   ids.LocalScopeID(owner),
			ResourceKind: semantics.KindCustomElement,
			ResourceName: "foo-bar",
		},
		{
			OwnerScope:   ids.LocalTemplateScopeID(owner, templateName),
			ResourceKind: semantics.KindCustomElement,
			ResourceName: "nested-only",
		},
	}

	g := Build(1, testMaterialized(t), imports,
		[]ids.DocumentURI{owner},
		map[ids.DocumentURI][]string{owner: {templateName}},
	)

	localTemplateScope := ids.LocalTemplateScopeID(owner, templateName)
	view := Materialize(g, localTemplateScope)

	_, hasNested := view.Get(semantics.KindCustomElement, "nested-only")
	assert.True(t, hasNested, "the local-template's own overlay must be visible")

	_, hasOwnerLocal := view.Get(semantics.KindCustomElement, "foo-bar")
	assert.False(t, hasOwnerLocal, "materialize must not walk through the owner's intermediate local scope")

	_, hasIf := view.Get(semantics.KindTemplateController, "if")
	assert.True(t, hasIf, "root's built-in resources are always visible")
}

func TestMaterializeRootScope(t *testing.T) {
	g := Build(1, testMaterialized(t), nil, nil, nil)
	view := Materialize(g, g.Root)
	_, ok := view.Get(semantics.KindTemplateController, "repeat")
	assert.True(t, ok)
}

func TestAncestorsDoesNotSkipLevels(t *testing.T) {
	owner := ids.DocumentURI("file:///src/app.html")
	name := "inline-widget"
	g := Build(1, testMaterialized(t), nil,
		[]ids.DocumentURI{owner},
		map[ids.DocumentURI][]string{owner: {name}},
	)
	localTemplateScope := ids.LocalTemplateScopeID(owner, name)
	ancestors := g.Ancestors(localTemplateScope)
	require.Len(t, ancestors, 2)
	assert.Equal(t, ids.LocalScopeID(owner), ancestors[0])
	assert.Equal(t, ids.RootScopeID, ancestors[1])
}

func TestScopeIDsSorted(t *testing.T) {
	owner := ids.DocumentURI("file:///b.html")
	g := Build(1, testMaterialized(t), nil, []ids.DocumentURI{owner}, nil)
	scopeIDs := g.ScopeIDs()
	for i := 1; i < len(scopeIDs); i++ {
		assert.True(t, scopeIDs[i-1] < scopeIDs[i])
	}
}
