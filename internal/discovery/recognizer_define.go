package discovery

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// defineRecognizer matches `<Kind>.define(spec, ClassRef)` calls, where
// spec is a string, object, or array, and ClassRef must resolve to a
// class value or an imported symbol (spec.md §4.D.2).
type defineRecognizer struct{}

func NewDefineRecognizer() Recognizer { return defineRecognizer{} }

func (defineRecognizer) Name() string { return "define" }

var reDefineCall = regexp.MustCompile(`(CustomElement|CustomAttribute)\.define\(\s*`)

func (defineRecognizer) Recognize(_ context.Context, project Project) ([]Candidate, []semantics.Gap) {
	var cands []Candidate
	var gaps []semantics.Gap

	for _, f := range project.Files {
		if f.IsTemplate {
			continue
		}
		for _, loc := range reDefineCall.FindAllStringSubmatchIndex(f.Text, -1) {
			kindWord := f.Text[loc[2]:loc[3]]
			kind := semantics.KindCustomElement
			if kindWord == "CustomAttribute" {
				kind = semantics.KindCustomAttribute
			}
			argsStart := loc[1]
			args, end, ok := splitTopLevelArgs(f.Text, argsStart)
			callSpan := span.Span{File: f.ID, Start: loc[0], End: end}
			if !ok || len(args) < 2 {
				gaps = append(gaps, semantics.Gap{
					What:       "could not parse .define() call arguments",
					Why:        semantics.GapPartialEval,
					Where:      &callSpan,
					Suggestion: "ensure .define(spec, ClassRef) has exactly two arguments",
				})
				continue
			}
			specArg := strings.TrimSpace(args[0])
			classArg := strings.TrimSpace(args[1])

			def, gap := parseDefineSpec(kind, f, specArg, callSpan)
			if !isClassRef(classArg) {
				g := semantics.Gap{
					What:       "ClassRef argument is not a statically resolvable class value",
					Why:        semantics.GapPartialEval,
					Where:      &callSpan,
					Suggestion: "pass a class declaration or a statically imported class symbol",
					Resource:   &semantics.GapResource{Kind: kind, Name: def.Name.Value},
				}
				gaps = append(gaps, g)
			} else {
				def.ClassName = semantics.NewSourced(classArg, semantics.OriginSource, &semantics.SourceLocation{File: f.ID, Span: callSpan})
			}
			if gap != nil {
				gaps = append(gaps, *gap)
				continue
			}
			cands = append(cands, Candidate{Def: def, Recognizer: "define", Rank: RankDefine})
		}
	}
	return cands, gaps
}

// isClassRef approximates "resolves to a class value or an imported
// symbol": a bare identifier, optionally followed by nothing else.
func isClassRef(s string) bool {
	return regexp.MustCompile(`^[A-Za-z_$][\w$]*$`).MatchString(s)
}

func parseDefineSpec(kind semantics.ResourceKind, f SourceFile, specArg string, callSpan span.Span) (semantics.ResourceDef, *semantics.Gap) {
	loc := &semantics.SourceLocation{File: f.ID, Span: callSpan}

	// Plain-string spec means { name: spec }.
	if m := reStringLit.FindStringSubmatch(specArg); m != nil && (strings.HasPrefix(specArg, "'") || strings.HasPrefix(specArg, "\"")) {
		name := m[1]
		if isInvalidResourceName(name) {
			return invalidNameDef(kind, f, callSpan), &semantics.Gap{
				What: "decorator/define spec has an invalid resource name", Why: semantics.GapConservative,
				Where: &callSpan, Suggestion: "use a non-empty, non-numeric name",
			}
		}
		return baseResourceDef(kind, name, true, "", f, callSpan), nil
	}

	if !strings.HasPrefix(specArg, "{") {
		// Array spec or other dynamic shape: not evaluated statically.
		return invalidNameDef(kind, f, callSpan), &semantics.Gap{
			What: "define() spec is not a string or object literal", Why: semantics.GapPartialEval,
			Where: &callSpan, Suggestion: "use a string or object literal spec for static discovery",
		}
	}

	name := ""
	explicit := false
	if nm := regexp.MustCompile(`name\s*:\s*['"]([^'"]*)['"]`).FindStringSubmatch(specArg); nm != nil {
		name = nm[1]
		explicit = true
	} else if nm := regexp.MustCompile(`name\s*:\s*(\d+)`).FindStringSubmatch(specArg); nm != nil {
		return invalidNameDef(kind, f, callSpan), &semantics.Gap{
			What: "define() spec name is numeric, not a valid resource name", Why: semantics.GapConservative,
			Where: &callSpan, Suggestion: "name must be a string",
			Resource: &semantics.GapResource{Kind: kind, Name: nm[1]},
		}
	}
	if name == "" {
		return invalidNameDef(kind, f, callSpan), &semantics.Gap{
			What: "define() spec has no statically determinable name", Why: semantics.GapPartialEval,
			Where: &callSpan, Suggestion: "add an explicit name field",
		}
	}
	if isInvalidResourceName(name) {
		return invalidNameDef(kind, f, callSpan), &semantics.Gap{
			What: "define() spec name is empty", Why: semantics.GapConservative, Where: &callSpan,
		}
	}

	def := baseResourceDef(kind, name, explicit, "", f, callSpan)

	if am := regexp.MustCompile(`aliases\s*:\s*\[([^\]]*)\]`).FindStringSubmatch(specArg); am != nil {
		for _, sm := range reStringLit.FindAllStringSubmatch(am[1], -1) {
			def.Aliases = append(def.Aliases, semantics.NewSourced(sm[1], semantics.OriginSource, loc))
		}
	}
	if bm := regexp.MustCompile(`bindables\s*:\s*(\[[^\]]*\]|\{[^}]*\})`).FindStringSubmatch(specArg); bm != nil {
		def.Bindables = parseDefineBindables(bm[1], loc)
	}
	if containsField(specArg, "containerless") {
		def.Containerless = semantics.NewSourced(true, semantics.OriginSource, loc)
	}
	if containsField(specArg, "isTemplateController") {
		def.IsTemplateController = true
	}
	if containsField(specArg, "noMultiBindings") {
		def.NoMultiBindings = true
	}
	if tm := regexp.MustCompile(`template\s*:\s*['"\x60]([^'"\x60]*)['"\x60]`).FindStringSubmatch(specArg); tm != nil {
		def.Template = semantics.NewSourced(tm[1], semantics.OriginSource, loc)
	}
	if dp := regexp.MustCompile(`defaultProperty\s*:\s*['"](\w+)['"]`).FindStringSubmatch(specArg); dp != nil {
		def.DefaultProperty = dp[1]
	}
	return def, nil
}

// parseDefineBindables handles both array-of-string-or-object and
// object-keyed-by-property forms (spec.md §4.D.2).
func parseDefineBindables(raw string, loc *semantics.SourceLocation) []semantics.BindableDef {
	raw = strings.TrimSpace(raw)
	var out []semantics.BindableDef
	if strings.HasPrefix(raw, "[") {
		inner := strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
		for _, item := range splitTopLevelCommaList(inner) {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if m := reStringLit.FindStringSubmatch(item); m != nil && (strings.HasPrefix(item, "'") || strings.HasPrefix(item, "\"")) {
				out = append(out, semantics.BindableDef{PropertyName: m[1], AttributeName: semantics.KebabCase(m[1]),
					Mode: semantics.NewSourced(semantics.BindableModeDefault, semantics.OriginSource, loc)})
				continue
			}
			if nm := regexp.MustCompile(`name\s*:\s*['"](\w+)['"]`).FindStringSubmatch(item); nm != nil {
				mode := semantics.BindableModeDefault
				if mm := regexp.MustCompile(`mode\s*:\s*['"]?(\w+)['"]?`).FindStringSubmatch(item); mm != nil {
					mode = semantics.BindableMode(mm[1])
				}
				out = append(out, semantics.BindableDef{PropertyName: nm[1], AttributeName: semantics.KebabCase(nm[1]),
					Mode: semantics.NewSourced(mode, semantics.OriginSource, loc)})
			}
		}
		return out
	}
	if strings.HasPrefix(raw, "{") {
		inner := strings.TrimSuffix(strings.TrimPrefix(raw, "{"), "}")
		for _, entry := range splitTopLevelCommaList(inner) {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			parts := strings.SplitN(entry, ":", 2)
			prop := strings.TrimSpace(parts[0])
			mode := semantics.BindableModeDefault
			if len(parts) > 1 {
				if mm := regexp.MustCompile(`mode\s*:\s*['"]?(\w+)['"]?`).FindStringSubmatch(parts[1]); mm != nil {
					mode = semantics.BindableMode(mm[1])
				}
			}
			out = append(out, semantics.BindableDef{PropertyName: prop, AttributeName: semantics.KebabCase(prop),
				Mode: semantics.NewSourced(mode, semantics.OriginSource, loc)})
		}
	}
	return out
}

func isInvalidResourceName(name string) bool {
	if name == "" {
		return true
	}
	if _, err := strconv.Atoi(name); err == nil {
		return true
	}
	return false
}

func invalidNameDef(kind semantics.ResourceKind, f SourceFile, loc span.Span) semantics.ResourceDef {
	return semantics.ResourceDef{
		Kind: kind,
		Name: semantics.NewSourced("", semantics.OriginSource, &semantics.SourceLocation{File: f.ID, Span: loc}),
		File: f.ID,
	}
}

// splitTopLevelArgs splits a parenthesized, possibly-nested argument list
// starting at start (the index right after the opening '(') into
// its top-level comma-separated arguments, respecting nested
// (),{},[] and quotes. Returns the end index (one past the closing ')').
func splitTopLevelArgs(text string, start int) ([]string, int, bool) {
	depth := 1
	i := start
	var quote byte
	argStart := start
	var args []string
	for i < len(text) {
		c := text[i]
		if quote != 0 {
			if c == '\\' {
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
			if depth == 0 {
				args = append(args, text[argStart:i])
				return args, i + 1, true
			}
		case ',':
			if depth == 1 {
				args = append(args, text[argStart:i])
				argStart = i + 1
			}
		}
		i++
	}
	return nil, i, false
}

func splitTopLevelCommaList(s string) []string {
	args, _, ok := splitTopLevelArgs(s+")", 0)
	if !ok {
		return strings.Split(s, ",")
	}
	return args
}
