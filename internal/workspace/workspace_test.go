package workspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-tools/aurelia-ls/internal/discovery"
	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/query"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

const testWidgetURI ids.DocumentURI = "file:///app.html"

type fakeWidgetRecognizer struct{}

func (fakeWidgetRecognizer) Name() string { return "fake-widget" }
func (fakeWidgetRecognizer) Recognize(ctx context.Context, project discovery.Project) ([]discovery.Candidate, []semantics.Gap) {
	def := semantics.ResourceDef{
		Kind: semantics.KindCustomElement,
		Name: semantics.NewSourced("my-widget", semantics.OriginSource, nil),
		Bindables: []semantics.BindableDef{
			{PropertyName: "title", AttributeName: "title", Mode: semantics.NewSourced(semantics.BindableModeToView, semantics.OriginSource, nil)},
		},
	}
	return []discovery.Candidate{{Def: def, Recognizer: "fake-widget", Rank: discovery.RankConvention}}, nil
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(Host{
		Markup:      hostiface.NewDefaultMarkupParser(),
		Expr:        hostiface.NewDefaultExpressionParser(),
		Recognizers: []discovery.Recognizer{fakeWidgetRecognizer{}},
	})
	_, err := e.RebuildResourceGraph(context.Background(), discovery.Project{Root: "/proj"}, nil, nil)
	require.NoError(t, err)
	return e
}

func TestOpenDocThenHoverResolvesCustomElement(t *testing.T) {
	e := newTestEngine(t)
	e.OpenDoc(testWidgetURI, `<my-widget></my-widget>`, 1)

	env := e.Hover(context.Background(), testWidgetURI, 1)
	// No hostiface.TypeChecker is wired in this test's Host, so typecheck
	// is always skipped here — that alone is enough to degrade the
	// envelope even though hover itself resolved cleanly.
	require.Equal(t, StatusDegraded, env.Status)
	hover, ok := env.Result.(query.HoverResult)
	require.True(t, ok)
	assert.Contains(t, hover.Signature, "my-widget")
}

func TestUpdateDocInvalidatesCompiledArtifacts(t *testing.T) {
	e := newTestEngine(t)
	e.OpenDoc(testWidgetURI, `<div>one</div>`, 1)
	env1 := e.Check(context.Background(), testWidgetURI)
	require.NotEqual(t, StatusError, env1.Status)

	e.UpdateDoc(testWidgetURI, `<my-widget></my-widget>`, 2)
	e.mu.Lock()
	_, hadCompiled := e.compiled[testWidgetURI]
	e.mu.Unlock()
	assert.False(t, hadCompiled, "UpdateDoc must evict the stale compiled artifact")

	env2 := e.Hover(context.Background(), testWidgetURI, 1)
	hover, ok := env2.Result.(query.HoverResult)
	require.True(t, ok)
	assert.Contains(t, hover.Signature, "my-widget")
}

func TestUpdateDocIgnoresStaleVersion(t *testing.T) {
	e := newTestEngine(t)
	e.OpenDoc(testWidgetURI, `<my-widget></my-widget>`, 5)
	e.UpdateDoc(testWidgetURI, `<div></div>`, 3) // stale, v <= current

	e.mu.Lock()
	text := e.docs[testWidgetURI].text
	e.mu.Unlock()
	assert.Equal(t, `<my-widget></my-widget>`, text)
}

func TestCloseDocEvictsState(t *testing.T) {
	e := newTestEngine(t)
	e.OpenDoc(testWidgetURI, `<my-widget></my-widget>`, 1)
	e.Check(context.Background(), testWidgetURI)
	e.CloseDoc(testWidgetURI)

	env := e.Hover(context.Background(), testWidgetURI, 1)
	assert.Equal(t, StatusError, env.Status)
}

func TestRepeatedQueryServesFromCacheOnSecondCall(t *testing.T) {
	e := newTestEngine(t)
	e.OpenDoc(testWidgetURI, `<my-widget></my-widget>`, 1)

	first := e.Check(context.Background(), testWidgetURI)
	assert.False(t, first.Meta.Cache.Hit)

	second := e.Check(context.Background(), testWidgetURI)
	assert.True(t, second.Meta.Cache.Hit)
}

func TestResourceGraphRebuildInvalidatesStaleCompile(t *testing.T) {
	e := newTestEngine(t)
	e.OpenDoc(testWidgetURI, `<my-widget></my-widget>`, 1)
	e.Check(context.Background(), testWidgetURI)

	_, err := e.RebuildResourceGraph(context.Background(), discovery.Project{Root: "/proj"}, nil, nil)
	require.NoError(t, err)

	env := e.Check(context.Background(), testWidgetURI)
	assert.False(t, env.Meta.Cache.Hit, "a resource-graph version bump must force recompile even with identical text")
}

func TestEmptyTemplateProducesNoDiagnostics(t *testing.T) {
	e := newTestEngine(t)
	e.OpenDoc(testWidgetURI, ``, 1)
	env := e.Check(context.Background(), testWidgetURI)
	result, ok := env.Result.(CheckResult)
	require.True(t, ok)
	assert.Empty(t, result.Diagnostics)
}

func TestUnknownCommandProducesDiagnostic(t *testing.T) {
	e := newTestEngine(t)
	e.OpenDoc(testWidgetURI, `<div foo.unknowncommand="bar"></div>`, 1)
	env := e.Check(context.Background(), testWidgetURI)
	result, ok := env.Result.(CheckResult)
	require.True(t, ok)
	var found bool
	for _, d := range result.Diagnostics {
		if contains(d, "unknown-command") {
			found = true
		}
	}
	assert.True(t, found)
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (func() bool {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	})()
}

func TestReplayDetectsNoDivergenceOnDeterministicCommands(t *testing.T) {
	e := newTestEngine(t)
	e.OpenDoc(testWidgetURI, `<my-widget></my-widget>`, 1)

	scenario := &Scenario{}
	ctx := context.Background()
	scenario.Record(ctx, "hover", func(ctx context.Context) Envelope {
		return e.Hover(ctx, testWidgetURI, 1)
	})
	scenario.Record(ctx, "check", func(ctx context.Context) Envelope {
		return e.Check(ctx, testWidgetURI)
	})

	divergences := scenario.Replay(ctx)
	assert.Empty(t, divergences)
}

type conflictingWidgetRecognizer struct{}

func (conflictingWidgetRecognizer) Name() string { return "conflicting-widget" }
func (conflictingWidgetRecognizer) Recognize(ctx context.Context, project discovery.Project) ([]discovery.Candidate, []semantics.Gap) {
	def := semantics.ResourceDef{
		Kind: semantics.KindCustomElement,
		Name: semantics.NewSourced("my-widget", semantics.OriginSource, nil),
		Bindables: []semantics.BindableDef{
			{PropertyName: "title", AttributeName: "title", Mode: semantics.NewSourced(semantics.BindableModeTwoWay, semantics.OriginSource, nil)},
		},
	}
	return []discovery.Candidate{{Def: def, Recognizer: "conflicting-widget", Rank: discovery.RankConfig}}, nil
}

func TestRebuildResourceGraphSurfacesConvergenceConflictInCheck(t *testing.T) {
	e := NewEngine(Host{
		Markup: hostiface.NewDefaultMarkupParser(),
		Expr:   hostiface.NewDefaultExpressionParser(),
		Recognizers: []discovery.Recognizer{
			fakeWidgetRecognizer{},
			conflictingWidgetRecognizer{},
		},
	})
	_, err := e.RebuildResourceGraph(context.Background(), discovery.Project{Root: "/proj"}, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, e.graphDiagnostics, "two candidates disagreeing on bindable mode must produce a convergence record")

	e.OpenDoc(testWidgetURI, `<div></div>`, 1)
	env := e.Check(context.Background(), testWidgetURI)
	result, ok := env.Result.(CheckResult)
	require.True(t, ok)

	var found bool
	for _, d := range result.Diagnostics {
		if contains(d, "definition-convergence") {
			found = true
		}
	}
	assert.True(t, found, "Check must surface the project-wide convergence diagnostic")
}

func TestCompletionsCommandListsCustomElement(t *testing.T) {
	e := newTestEngine(t)
	e.OpenDoc(testWidgetURI, `<div></div>`, 1)
	env := e.Completions(context.Background(), testWidgetURI, query.CompletionContext{Kind: query.PositionTagName})
	items, ok := env.Result.([]query.CompletionItem)
	require.True(t, ok)
	var found bool
	for _, it := range items {
		if it.Label == "my-widget" {
			found = true
		}
	}
	assert.True(t, found)
}
