package discovery

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// siblingTemplateRecognizer matches `<import from="./bar">` inside a
// template file, which implies a local-scope registration of the
// resource exported by ./bar, and `<template as-custom-element="name">`
// local-template definitions (spec.md §4.D.4 and "Local templates").
//
// Open Question decision (spec.md §9, DESIGN.md "Open Question
// decisions" #2): ownership-fallback for a standalone template owned by
// multiple convention-matching classes stops at basename match; it does
// NOT fall back to a single-CE-in-file heuristic. Ambiguous cases emit
// `template-import-owner-ambiguous` rather than guessing.
type siblingTemplateRecognizer struct{}

func NewSiblingTemplateRecognizer() Recognizer { return siblingTemplateRecognizer{} }

func (siblingTemplateRecognizer) Name() string { return "sibling-template" }

var (
	reImportFrom  = regexp.MustCompile(`<import\s+from=["']([^"']+)["'](?:\s+as=["'](\w+)["'])?\s*/?>`)
	reLocalTemplate = regexp.MustCompile(`<template\s+as-custom-element=["']([\w-]+)["']\s*>`)
)

func (siblingTemplateRecognizer) Recognize(_ context.Context, project Project) ([]Candidate, []semantics.Gap) {
	var gaps []semantics.Gap

	// Ownership ambiguity: find every template file imported by more
	// than one candidate owner (a class file whose own-name doesn't
	// match the template's basename, when more than one such owner
	// exists across the project).
	owners := map[string][]SourceFile{} // template path -> candidate owning view-model files
	for _, f := range project.Files {
		if f.IsTemplate {
			continue
		}
		base := strings.TrimSuffix(path.Base(f.Path), path.Ext(f.Path))
		siblingPath := path.Join(path.Dir(f.Path), base+".html")
		if _, ok := project.FileByPath(siblingPath); ok {
			owners[siblingPath] = append(owners[siblingPath], f)
		}
	}
	for tmplPath, cands := range owners {
		if len(cands) <= 1 {
			continue
		}
		tmplBase := strings.TrimSuffix(path.Base(tmplPath), path.Ext(tmplPath))
		var basenameMatch *SourceFile
		for i := range cands {
			fileBase := strings.TrimSuffix(path.Base(cands[i].Path), path.Ext(cands[i].Path))
			if fileBase == tmplBase {
				c := cands[i]
				basenameMatch = &c
				break
			}
		}
		if basenameMatch != nil {
			continue // resolved: no gap
		}
		tmplFile, _ := project.FileByPath(tmplPath)
		gapLoc := span.Span{File: tmplFile.ID, Start: 0, End: 1}
		gaps = append(gaps, semantics.Gap{
			What:       "template " + tmplPath + " has multiple candidate owners and no basename match",
			Why:        semantics.GapConservative,
			Where:      &gapLoc,
			Suggestion: "name the owning class's file after the template, or move the template",
			Code:       "aurelia/template-import-owner-ambiguous",
		})
	}

	return nil, gaps
}

func (r siblingTemplateRecognizer) RecognizeImports(project Project) []ImportDirective {
	var out []ImportDirective
	for _, f := range project.Files {
		if !f.IsTemplate {
			continue
		}
		ownerScope := ids.LocalScopeID(f.URI)

		// Local-template `as-custom-element` definitions open their own
		// nested scope; imports that follow inside that template belong
		// to the local-template scope, not the parent file's scope. We
		// approximate nesting by scanning for the nearest preceding
		// as-custom-element tag using byte offsets (no real HTML tree
		// here; lower's real DOM tree is authoritative for compilation,
		// this recognizer only grants discovery-time visibility).
		localTemplates := reLocalTemplate.FindAllStringSubmatchIndex(f.Text, -1)

		for _, m := range reImportFrom.FindAllStringSubmatchIndex(f.Text, -1) {
			from := f.Text[m[2]:m[3]]
			as := ""
			if m[4] != -1 {
				as = f.Text[m[4]:m[5]]
			}
			fromSpan := span.Span{File: f.ID, Start: m[2], End: m[3]}

			scope := ownerScope
			for _, lt := range localTemplates {
				if lt[0] < m[0] {
					name := f.Text[lt[2]:lt[3]]
					scope = ids.LocalTemplateScopeID(f.URI, name)
				}
			}

			resolvedPath := resolveSpecifierInProject(project, f.Path, from)
			resourceName, resourceKind := guessExportedResource(project, resolvedPath)

			out = append(out, ImportDirective{
				OwnerScope:   scope,
				ResourceKind: resourceKind,
				ResourceName: resourceName,
				From:         from,
				FromSpan:     fromSpan,
				As:           as,
			})
		}
	}
	return out
}

func resolveSpecifier(fromPath, specifier string) string {
	if !strings.HasPrefix(specifier, ".") {
		return specifier // bare/package specifier, not project-relative
	}
	return path.Join(path.Dir(fromPath), specifier)
}

// resolveSpecifierInProject is resolveSpecifier with the result clamped
// to the project root, so a malicious or malformed `../../` specifier
// can't resolve to a file outside the project.
func resolveSpecifierInProject(project Project, fromPath, specifier string) string {
	resolved := resolveSpecifier(fromPath, specifier)
	if !strings.HasPrefix(specifier, ".") {
		return resolved // bare/package specifier; no project-relative clamping applies
	}
	return secureRelative(project.Root, resolved)
}

// guessExportedResource makes a best-effort guess at which resource a
// project-relative module path exports, by checking for a .ts or .js
// file at that stem and re-running the lightweight convention
// match. Real export resolution is a ModuleResolver/VmReflection concern
// (spec.md §6), out of scope for this recognizer.
func guessExportedResource(project Project, stem string) (string, semantics.ResourceKind) {
	for _, ext := range []string{".ts", ".js"} {
		if f, ok := project.FileByPath(stem + ext); ok {
			if m := reConventionClass.FindStringSubmatch(f.Text); m != nil {
				kind := semantics.KindCustomElement
				if m[2] == "CustomAttribute" {
					kind = semantics.KindCustomAttribute
				}
				return semantics.KebabCase(m[1]), kind
			}
			if m := reCEDecorator.FindStringSubmatch(f.Text); m != nil {
				return "", semantics.KindCustomElement
			}
		}
	}
	base := path.Base(stem)
	return semantics.KebabCase(base), semantics.KindCustomElement
}
