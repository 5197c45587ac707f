package discovery

import (
	"context"
	"regexp"

	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// PluginManifest is one entry of the static plugin-activation table
// (spec.md §4.D.5, SPEC_FULL.md §3 "Plugin-activation manifest table").
type PluginManifest struct {
	Package    string
	ExportName string
	Resources  []semantics.ResourceDef // resources this plugin contributes at the root scope when activated
}

// knownPlugins is the embedded registry matched against
// `.register(XConfiguration)` calls. A small representative slice of the
// real framework's ecosystem; grounded on teacher internal/plugin's
// manifest-table lookup pattern.
var knownPlugins = []PluginManifest{
	{
		Package:    "@aurelia/router",
		ExportName: "RouterConfiguration",
		Resources: []semantics.ResourceDef{
			builtinControllerLike(semantics.KindCustomElement, "au-viewport", "@aurelia/router"),
			builtinControllerLike(semantics.KindCustomAttribute, "load", "@aurelia/router"),
			builtinControllerLike(semantics.KindCustomAttribute, "href", "@aurelia/router"),
		},
	},
	{
		Package:    "@aurelia/validation-html",
		ExportName: "ValidationHtmlConfiguration",
		Resources: []semantics.ResourceDef{
			builtinControllerLike(semantics.KindCustomAttribute, "validate", "@aurelia/validation-html"),
			builtinControllerLike(semantics.KindCustomElement, "validation-container", "@aurelia/validation-html"),
			builtinControllerLike(semantics.KindCustomElement, "validation-errors", "@aurelia/validation-html"),
		},
	},
	{
		Package:    "@aurelia/dialog",
		ExportName: "DialogConfiguration",
		Resources: []semantics.ResourceDef{
			builtinControllerLike(semantics.KindCustomAttribute, "dialog-host", "@aurelia/dialog"),
		},
	},
	{
		Package:    "@aurelia/i18n",
		ExportName: "I18nConfiguration",
		Resources: []semantics.ResourceDef{
			builtinControllerLike(semantics.KindValueConverter, "t", "@aurelia/i18n"),
			builtinControllerLike(semantics.KindBindingBehavior, "dt", "@aurelia/i18n"),
		},
	},
}

func builtinControllerLike(kind semantics.ResourceKind, name, pkg string) semantics.ResourceDef {
	return semantics.ResourceDef{
		Kind:    kind,
		Name:    semantics.NewSourced(name, semantics.OriginSource, nil),
		Package: pkg,
	}
}

type pluginActivationRecognizer struct{}

func NewPluginActivationRecognizer() Recognizer { return pluginActivationRecognizer{} }

func (pluginActivationRecognizer) Name() string { return "plugin-activation" }

var reRegisterCall = regexp.MustCompile(`\.register\(\s*(\w+)\s*\)`)

func (pluginActivationRecognizer) Recognize(_ context.Context, project Project) ([]Candidate, []semantics.Gap) {
	var cands []Candidate
	var gaps []semantics.Gap

	activated := map[string]bool{}
	for _, f := range project.Files {
		if f.IsTemplate {
			continue
		}
		for _, m := range reRegisterCall.FindAllStringSubmatch(f.Text, -1) {
			activated[m[1]] = true
		}
	}

	for _, plugin := range knownPlugins {
		if !activated[plugin.ExportName] {
			continue
		}
		for _, def := range plugin.Resources {
			def.Name.Origin = semantics.OriginSource
			cands = append(cands, Candidate{Def: def, Recognizer: "plugin-activation", Rank: RankPluginActivation})
		}
	}

	// Registered exports that don't match any known manifest surface as
	// a partial-eval gap rather than being silently ignored, so a
	// project using an unrecognized plugin still gets a signal.
	for exportName := range activated {
		known := false
		for _, p := range knownPlugins {
			if p.ExportName == exportName {
				known = true
				break
			}
		}
		if !known {
			loc := span.Span{}
			gaps = append(gaps, semantics.Gap{
				What:       "registered export " + exportName + " does not match any known plugin manifest",
				Why:        semantics.GapPartialEval,
				Where:      &loc,
				Suggestion: "if this is an Aurelia plugin, file an issue to add it to the manifest table",
			})
		}
	}

	return cands, gaps
}
