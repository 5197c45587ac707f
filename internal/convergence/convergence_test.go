package convergence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-tools/aurelia-ls/internal/discovery"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

func sourcedName(v string) semantics.Sourced[string] {
	return semantics.NewSourced(v, semantics.OriginSource, nil)
}

func TestAssembleFoldsByPrecedence(t *testing.T) {
	higher := discovery.Candidate{
		Recognizer: "decorator",
		Rank:       discovery.RankDecorator,
		Def: semantics.ResourceDef{
			Kind:      semantics.KindCustomElement,
			Name:      sourcedName("my-widget"),
			ClassName: sourcedName("MyWidget"),
			Bindables: []semantics.BindableDef{
				{PropertyName: "value", AttributeName: "value", Mode: semantics.NewSourced(semantics.BindableModeToView, semantics.OriginSource, nil)},
			},
		},
	}
	lower := discovery.Candidate{
		Recognizer: "convention",
		Rank:       discovery.RankConvention,
		Def: semantics.ResourceDef{
			Kind: semantics.KindCustomElement,
			Name: sourcedName("my-widget"),
			Bindables: []semantics.BindableDef{
				{PropertyName: "value", AttributeName: "value", Mode: semantics.NewSourced(semantics.BindableModeTwoWay, semantics.OriginSource, nil)},
				{PropertyName: "extra", AttributeName: "extra", Mode: semantics.NewSourced(semantics.BindableModeToView, semantics.OriginSource, nil)},
			},
		},
	}

	base := semantics.Builtin()
	result := Assemble(base, discovery.Result{Candidates: []discovery.Candidate{lower, higher}})

	def, ok := result.Catalog.Lookup(semantics.KindCustomElement, "my-widget")
	require.True(t, ok)
	assert.Equal(t, "MyWidget", def.ClassName.Value)

	var valueBindable semantics.BindableDef
	var found bool
	for _, b := range def.Bindables {
		if b.PropertyName == "value" {
			valueBindable = b
			found = true
		}
	}
	require.True(t, found)
	assert.Equal(t, semantics.BindableModeToView, valueBindable.Mode.Value, "the higher-precedence decorator candidate's mode must win")

	require.Len(t, def.Bindables, 2, "the lower-precedence candidate's extra bindable is still merged in")

	var modeRecord *DefinitionConvergenceRecord
	for i := range result.Records {
		if result.Records[i].Field == "mode" {
			modeRecord = &result.Records[i]
		}
	}
	require.NotNil(t, modeRecord, "a mode disagreement must be recorded")
	assert.Equal(t, "info", modeRecord.Severity)
}

func TestAssembleCarriesBuiltinsForward(t *testing.T) {
	base := semantics.Builtin()
	result := Assemble(base, discovery.Result{})

	_, ok := result.Catalog.Lookup(semantics.KindTemplateController, "if")
	assert.True(t, ok, "built-in template controllers must survive an empty discovery pass")
}

func TestAssembleCarriesGapsIntoCatalog(t *testing.T) {
	base := semantics.Builtin()
	gap := semantics.Gap{
		What:     "ambiguous owner",
		Why:      semantics.GapConservative,
		Resource: &semantics.GapResource{Kind: semantics.KindCustomElement, Name: "my-widget"},
	}
	result := Assemble(base, discovery.Result{Gaps: []semantics.Gap{gap}})

	gaps := result.Catalog.Gaps("custom-element:my-widget")
	require.Len(t, gaps, 1)
	assert.Equal(t, semantics.ConfidenceConservative, result.Catalog.ResourceConfidence("custom-element:my-widget"))
}

func TestFieldSeverityIsDeterministic(t *testing.T) {
	assert.Equal(t, "error", fieldSeverity("name"))
	assert.Equal(t, "warning", fieldSeverity("bindableAttribute"))
	assert.Equal(t, "info", fieldSeverity("mode"))
	assert.Equal(t, "info", fieldSeverity("primary"))
	assert.Equal(t, "warning", fieldSeverity("containerless"))
}
