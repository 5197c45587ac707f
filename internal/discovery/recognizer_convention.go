package discovery

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// conventionRecognizer matches a class named `FooCustomElement` in file
// `foo.ts` with sibling `foo.html`, registering custom element `foo`
// bound to the sibling template (spec.md §4.D.3).
type conventionRecognizer struct{}

func NewConventionRecognizer() Recognizer { return conventionRecognizer{} }

func (conventionRecognizer) Name() string { return "convention" }

var reConventionClass = regexp.MustCompile(`(?m)^\s*export\s+(?:default\s+)?class\s+(\w+)(CustomElement|CustomAttribute)\b`)

func (conventionRecognizer) Recognize(_ context.Context, project Project) ([]Candidate, []semantics.Gap) {
	var cands []Candidate
	var gaps []semantics.Gap

	for _, f := range project.Files {
		if f.IsTemplate {
			continue
		}
		base := strings.TrimSuffix(path.Base(f.Path), path.Ext(f.Path))
		for _, m := range reConventionClass.FindAllStringSubmatchIndex(f.Text, -1) {
			stem, suffix := f.Text[m[2]:m[3]], f.Text[m[4]:m[5]]
			kind := semantics.KindCustomElement
			if suffix == "CustomAttribute" {
				kind = semantics.KindCustomAttribute
			}
			class := stem + suffix
			name := semantics.KebabCase(stem)
			loc := span.Span{File: f.ID, Start: m[2], End: m[5]}
			def := baseResourceDef(kind, name, false, class, f, loc)
			def.Name.Origin = semantics.OriginSource

			siblingPath := secureRelative(project.Root, path.Join(path.Dir(f.Path), base+".html"))
			if sibling, ok := project.FileByPath(siblingPath); ok {
				def.Template = semantics.NewSourced(sibling.Text, semantics.OriginSource, &semantics.SourceLocation{File: sibling.ID})
				def.TemplateFile = sibling.ID
			} else {
				gapLoc := loc
				gaps = append(gaps, semantics.Gap{
					What:       "no sibling template found for convention-named class",
					Why:        semantics.GapPartialEval,
					Where:      &gapLoc,
					Suggestion: "add " + base + ".html next to " + f.Path,
					Resource:   &semantics.GapResource{Kind: kind, Name: name},
				})
			}
			cands = append(cands, Candidate{Def: def, Recognizer: "convention", Rank: RankConvention})
		}
	}
	return cands, gaps
}
