package discovery

import (
	"context"
	"regexp"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// decoratorRecognizer matches a class adorned with the framework's
// component/attribute/controller decorator: `@customElement(...)`,
// `@customAttribute(...)`, `@templateController(...)`, plus `@bindable`
// member decorators and a `static aliases = [...]` class field (spec.md
// §4.D.1).
type decoratorRecognizer struct{}

func NewDecoratorRecognizer() Recognizer { return decoratorRecognizer{} }

func (decoratorRecognizer) Name() string { return "decorator" }

var (
	reClassDecl = regexp.MustCompile(`(?m)^\s*export\s+class\s+(\w+)`)
	reCEDecorator = regexp.MustCompile(`@customElement\(\s*(\{[^}]*\}|['"][\w-]+['"])\s*\)\s*\n\s*export\s+class\s+(\w+)`)
	reCADecorator = regexp.MustCompile(`@customAttribute\(\s*(\{[^}]*\}|['"][\w-]+['"])\s*\)\s*\n\s*export\s+class\s+(\w+)`)
	reTCDecorator = regexp.MustCompile(`@templateController\(\s*['"]([\w-]+)['"]\s*\)\s*\n\s*export\s+class\s+(\w+)`)
	reBindableMember = regexp.MustCompile(`@bindable(?:\(\s*(\{[^}]*\})\s*\))?\s*\n?\s*(\w+)(?:\s*[:=])?`)
	reAliasStatic = regexp.MustCompile(`static\s+aliases\s*=\s*\[([^\]]*)\]`)
	reStringLit   = regexp.MustCompile(`['"]([^'"]*)['"]`)
)

func (decoratorRecognizer) Recognize(_ context.Context, project Project) ([]Candidate, []semantics.Gap) {
	var cands []Candidate
	var gaps []semantics.Gap

	for _, f := range project.Files {
		if f.IsTemplate {
			continue
		}
		for _, m := range reCEDecorator.FindAllStringSubmatchIndex(f.Text, -1) {
			spec, class := f.Text[m[2]:m[3]], f.Text[m[4]:m[5]]
			def, gap := buildDecoratorDef(semantics.KindCustomElement, f, spec, class, m)
			cands = append(cands, Candidate{Def: def, Recognizer: "decorator", Rank: RankDecorator})
			if gap != nil {
				gaps = append(gaps, *gap)
			}
		}
		for _, m := range reCADecorator.FindAllStringSubmatchIndex(f.Text, -1) {
			spec, class := f.Text[m[2]:m[3]], f.Text[m[4]:m[5]]
			def, gap := buildDecoratorDef(semantics.KindCustomAttribute, f, spec, class, m)
			cands = append(cands, Candidate{Def: def, Recognizer: "decorator", Rank: RankDecorator})
			if gap != nil {
				gaps = append(gaps, *gap)
			}
		}
		for _, m := range reTCDecorator.FindAllStringSubmatchIndex(f.Text, -1) {
			name, class := f.Text[m[2]:m[3]], f.Text[m[4]:m[5]]
			def := baseResourceDef(semantics.KindTemplateController, name, true, class, f, span.Span{File: f.ID, Start: m[2], End: m[3]})
			def.Controller = &semantics.ControllerFacts{Scope: semantics.ScopeOverlay, Pattern: semantics.PatternValueOverlay}
			def.Bindables = extractBindables(f, classBodyAfter(f.Text, m[1]))
			cands = append(cands, Candidate{Def: def, Recognizer: "decorator", Rank: RankDecorator})
		}
	}
	return cands, gaps
}

// buildDecoratorDef parses a `@customElement(spec)` / `@customAttribute(spec)`
// argument, which may be a bare string literal (shorthand for {name: spec})
// or a `{...}` object literal. Only the object's `name` and
// `containerless` fields are read; its other fields are ignored. Aliases
// come from a `static aliases` class field and bindables from `@bindable`
// members of the class.
func buildDecoratorDef(kind semantics.ResourceKind, f SourceFile, specText, class string, m []int) (semantics.ResourceDef, *semantics.Gap) {
	loc := span.Span{File: f.ID, Start: m[2], End: m[3]}
	specText = strings.TrimSpace(specText)

	var name string
	var explicit bool
	if strings.HasPrefix(specText, "'") || strings.HasPrefix(specText, "\"") {
		if sm := reStringLit.FindStringSubmatch(specText); sm != nil {
			name = sm[1]
			explicit = true
		}
	} else {
		if nm := regexp.MustCompile(`name\s*:\s*['"]([\w-]+)['"]`).FindStringSubmatch(specText); nm != nil {
			name = nm[1]
			explicit = true
		}
	}

	if name == "" {
		gap := &semantics.Gap{
			What:       "decorator spec's name could not be statically determined",
			Why:        semantics.GapPartialEval,
			Where:      &loc,
			Suggestion: "author the resource name as a string literal",
			Resource:   &semantics.GapResource{Kind: kind, Name: class},
		}
		name = semantics.NormalizeResourceName(class, false)
		def := baseResourceDef(kind, name, false, class, f, loc)
		return def, gap
	}

	def := baseResourceDef(kind, name, explicit, class, f, loc)
	def.Bindables = extractBindables(f, classBodyAfter(f.Text, m[1]))

	if am := reAliasStatic.FindString(classBodyAfter(f.Text, m[1])); am != "" {
		for _, sm := range reStringLit.FindAllStringSubmatch(am, -1) {
			def.Aliases = append(def.Aliases, semantics.NewSourced(sm[1], semantics.OriginSource, &semantics.SourceLocation{File: f.ID}))
		}
	}

	if containsField(specText, "containerless") {
		def.Containerless = semantics.NewSourced(true, semantics.OriginSource, &semantics.SourceLocation{File: f.ID, Span: loc})
	}

	return def, nil
}

func baseResourceDef(kind semantics.ResourceKind, name string, explicit bool, class string, f SourceFile, loc span.Span) semantics.ResourceDef {
	normalized := semantics.NormalizeResourceName(name, explicit)
	srcLoc := &semantics.SourceLocation{File: f.ID, Span: loc}
	return semantics.ResourceDef{
		Kind:      kind,
		Name:      semantics.NewSourced(normalized, semantics.OriginSource, srcLoc),
		ClassName: semantics.NewSourced(class, semantics.OriginSource, srcLoc),
		File:      f.ID,
		NameLoc:   srcLoc,
	}
}

// classBodyAfter returns a bounded slice of source following a class
// declaration, used as a cheap proxy for "the class body" without a real
// brace-matching parser: enough context to find @bindable members and a
// `static aliases` field declared early in the class.
func classBodyAfter(text string, from int) string {
	const window = 4000
	end := from + window
	if end > len(text) {
		end = len(text)
	}
	return text[from:end]
}

func extractBindables(f SourceFile, body string) []semantics.BindableDef {
	var out []semantics.BindableDef
	for _, m := range reBindableMember.FindAllStringSubmatch(body, -1) {
		prop := m[2]
		if prop == "" {
			continue
		}
		mode := semantics.BindableModeDefault
		if m[1] != "" {
			if mm := regexp.MustCompile(`mode\s*:\s*['"]?(\w+)['"]?`).FindStringSubmatch(m[1]); mm != nil {
				mode = semantics.BindableMode(mm[1])
			}
		}
		out = append(out, semantics.BindableDef{
			PropertyName:  prop,
			AttributeName: semantics.KebabCase(prop),
			Mode:          semantics.NewSourced(mode, semantics.OriginSource, &semantics.SourceLocation{File: f.ID}),
		})
	}
	return out
}

func containsField(specText, field string) bool {
	return regexp.MustCompile(field + `\s*:\s*true`).MatchString(specText)
}
