package query

import (
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/refindex"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

// References resolves offset to an entity and returns every reference
// site the referential index has for it, including the declaration site
// — synthesized from the ResourceDef's own NameLoc when the index itself
// has no entry for it (the usual case: the declaration lives in the
// view-model source this pipeline never parses, spec.md §4.I).
func (e *Engine) References(uri ids.DocumentURI, offset int) ([]refindex.TextReferenceSite, bool) {
	site, ok := e.RefIndex.SiteAt(uri, offset)
	if !ok {
		return nil, false
	}
	sites := e.RefIndex.Sites(site.ResourceKey)
	if isLocalKey(site.ResourceKey) {
		return sites, true
	}
	if decl, ok := e.declarationSite(site.ResourceKey); ok {
		sites = prependUnlessPresent(decl, sites)
	}
	return sites, true
}

func (e *Engine) declarationSite(key string) (refindex.TextReferenceSite, bool) {
	def, ok := e.Catalog.LookupKey(ownerKey(key))
	if !ok || def.NameLoc == nil || e.Files == nil {
		return refindex.TextReferenceSite{}, false
	}
	uri, ok := e.Files.URIForFile(def.NameLoc.File)
	if !ok {
		return refindex.TextReferenceSite{}, false
	}
	return refindex.TextReferenceSite{
		Domain:        refindex.DomainViewModel,
		ReferenceKind: refindex.KindClassName,
		File:          def.NameLoc.File,
		URI:           uri,
		Span:          def.NameLoc.Span,
		NameForm:      def.Name.Value,
		ResourceKey:   ownerKey(key),
	}, true
}

func prependUnlessPresent(decl refindex.TextReferenceSite, sites []refindex.TextReferenceSite) []refindex.TextReferenceSite {
	for _, s := range sites {
		if s.URI == decl.URI && s.Span == decl.Span {
			return sites
		}
	}
	return append([]refindex.TextReferenceSite{decl}, sites...)
}

// RenameEdit is one text replacement a rename produces.
type RenameEdit struct {
	URI      ids.DocumentURI
	Span     refindex.TextReferenceSite // carries the Span + original NameForm
	NewText  string
}

// RenameResult is the rename response: the placeholder text a client
// pre-fills its input with, plus every edit to apply.
type RenameResult struct {
	Placeholder string
	Edits       []RenameEdit
}

// Rename resolves offset to an entity and produces edits for every
// reference site (declaration included), each span-exact and
// casing-preserving: an authored attribute-name site, or any other site
// whose text contains a hyphen, gets KebabCase(newName); every other site
// gets newName verbatim (spec.md §4.J — newName is expected in its
// camelCase canonical form, the form ResourceDef.Name/BindableDef.PropertyName
// already use). On an attribute-name site only the part before any
// `.command` suffix is replaced. The placeholder is the resource's name,
// or the property name when the site names a bindable.
func (e *Engine) Rename(uri ids.DocumentURI, offset int, newName string) (RenameResult, bool) {
	site, ok := e.RefIndex.SiteAt(uri, offset)
	if !ok {
		return RenameResult{}, false
	}
	placeholder := site.NameForm
	if !isLocalKey(site.ResourceKey) {
		if def, ok := e.Catalog.LookupKey(ownerKey(site.ResourceKey)); ok {
			placeholder = def.Name.Value
			if idx := strings.Index(site.ResourceKey, ":bindable:"); idx >= 0 {
				placeholder = site.ResourceKey[idx+len(":bindable:"):]
			}
		}
	}

	sites, _ := e.References(uri, offset)
	edits := make([]RenameEdit, 0, len(sites))
	for _, s := range sites {
		text := newName
		if s.ReferenceKind == refindex.KindAttributeName {
			if dot := strings.IndexByte(s.NameForm, '.'); dot >= 0 {
				s.Span.End = s.Span.Start + dot
			}
			text = semantics.KebabCase(newName)
		} else if strings.Contains(s.NameForm, "-") {
			text = semantics.KebabCase(newName)
		}
		edits = append(edits, RenameEdit{URI: s.URI, Span: s, NewText: text})
	}
	return RenameResult{Placeholder: placeholder, Edits: edits}, true
}
