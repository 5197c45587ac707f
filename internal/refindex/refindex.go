// Package refindex implements the referential index (spec.md §4.I): a
// reverse map from a resource key to every text-reference site that
// names it, populated by FromModule as a post-pass over the lowered and
// linked IR. Grounded on
// internal/diag's own staged-accumulator shape (collect as you go, sort
// once on read), generalized from diagnostics to reference sites.
package refindex

import (
	"sort"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// Domain partitions the reference-site namespace so two sites in
// different domains are permitted to overlap the same span (spec.md
// §4.I's no-overlap invariant is scoped "within the same domain").
type Domain string

const (
	DomainTemplate  Domain = "template"
	DomainViewModel Domain = "viewModel"
)

// ReferenceKind is the closed taxonomy spec.md §3 "Referential index
// sites" names. No other value may appear in a TextReferenceSite.
type ReferenceKind string

const (
	KindTagName              ReferenceKind = "tag-name"
	KindCloseTagName         ReferenceKind = "close-tag-name"
	KindAttributeName        ReferenceKind = "attribute-name"
	KindAsElementValue       ReferenceKind = "as-element-value"
	KindExpressionIdentifier ReferenceKind = "expression-identifier"
	KindExpressionPipe       ReferenceKind = "expression-pipe"
	KindExpressionBehavior   ReferenceKind = "expression-behavior"
	KindLocalTemplateAttr    ReferenceKind = "local-template-attr"
	KindImportElementFrom    ReferenceKind = "import-element-from"
	KindDecoratorNameProp    ReferenceKind = "decorator-name-property"
	KindDecoratorStringArg   ReferenceKind = "decorator-string-arg"
	KindStaticAuName         ReferenceKind = "static-au-name"
	KindDefineName           ReferenceKind = "define-name"
	KindImportPath           ReferenceKind = "import-path"
	KindDependenciesClass    ReferenceKind = "dependencies-class"
	KindDependenciesString   ReferenceKind = "dependencies-string"
	KindClassName            ReferenceKind = "class-name"
	KindPropertyAccess       ReferenceKind = "property-access"
	KindBindableConfigKey    ReferenceKind = "bindable-config-key"
	KindBindableCallback     ReferenceKind = "bindable-callback"
)

// TextReferenceSite is one authored occurrence of a resource name.
type TextReferenceSite struct {
	Domain       Domain
	ReferenceKind ReferenceKind
	File         ids.SourceFileID
	URI          ids.DocumentURI
	Span         span.Span
	NameForm     string // the authored text at this site, case preserved
	ResourceKey  string // catalog key this site resolves to: "<kind>:<name>" or a BindableKey
}

// Index is the reverse resourceKey -> sites map. Add is append-only;
// AllSites's sort order is computed on read, never maintained
// incrementally, so repeated Add calls never pay a resort.
type Index struct {
	byKey map[string][]TextReferenceSite
	all   []TextReferenceSite
}

// NewIndex returns an empty referential index.
func NewIndex() *Index {
	return &Index{byKey: map[string][]TextReferenceSite{}}
}

// Add records a reference site under its ResourceKey.
func (idx *Index) Add(site TextReferenceSite) {
	idx.byKey[site.ResourceKey] = append(idx.byKey[site.ResourceKey], site)
	idx.all = append(idx.all, site)
}

// Sites returns every recorded site for resourceKey, in the same
// (uri, span.start) order AllSites uses.
func (idx *Index) Sites(resourceKey string) []TextReferenceSite {
	sites := append([]TextReferenceSite(nil), idx.byKey[resourceKey]...)
	sortSites(sites)
	return sites
}

// AllSites returns every recorded site sorted by (uri, span.start),
// satisfying spec.md §4.I's ordering invariant and §8 invariant 6.
func (idx *Index) AllSites() []TextReferenceSite {
	sites := append([]TextReferenceSite(nil), idx.all...)
	sortSites(sites)
	return sites
}

func sortSites(sites []TextReferenceSite) {
	sort.SliceStable(sites, func(i, j int) bool {
		if sites[i].URI != sites[j].URI {
			return sites[i].URI < sites[j].URI
		}
		return sites[i].Span.Start < sites[j].Span.Start
	})
}

// FileForURI returns the SourceFileID any recorded site for uri carries
// — every site for one URI shares the same File, so the first match
// answers the query. Used to stamp a bare (uri, offset) query with the
// file id provenance.Index's span-based matching requires.
func (idx *Index) FileForURI(uri ids.DocumentURI) (ids.SourceFileID, bool) {
	for _, s := range idx.all {
		if s.URI == uri {
			return s.File, true
		}
	}
	return 0, false
}

// SiteAt returns the site in uri whose span contains offset, preferring
// the narrowest covering span when more than one site overlaps (the
// query layer's "cursor-at-offset" lookup, spec.md §4.J).
func (idx *Index) SiteAt(uri ids.DocumentURI, offset int) (TextReferenceSite, bool) {
	var best TextReferenceSite
	found := false
	for _, s := range idx.all {
		if s.URI != uri || offset < s.Span.Start || offset >= s.Span.End {
			continue
		}
		if !found || s.Span.Len() < best.Span.Len() {
			best, found = s, true
		}
	}
	return best, found
}

// RemoveURI evicts every site whose URI equals uri — spec.md §3
// "Ownership": "document removal evicts every edge touching that URI".
func (idx *Index) RemoveURI(uri ids.DocumentURI) {
	filterURI := func(sites []TextReferenceSite) []TextReferenceSite {
		out := sites[:0]
		for _, s := range sites {
			if s.URI != uri {
				out = append(out, s)
			}
		}
		return out
	}
	idx.all = filterURI(append([]TextReferenceSite(nil), idx.all...))
	for key, sites := range idx.byKey {
		filtered := filterURI(append([]TextReferenceSite(nil), sites...))
		if len(filtered) == 0 {
			delete(idx.byKey, key)
			continue
		}
		idx.byKey[key] = filtered
	}
}

// NoOverlaps reports whether any two sites sharing the same domain and
// URI have overlapping spans (spec.md §4.I, §8 invariant 6). Intended
// for tests; production code should never produce an overlap.
func NoOverlaps(sites []TextReferenceSite) bool {
	byDomainURI := map[Domain]map[ids.DocumentURI][]span.Span{}
	for _, s := range sites {
		if byDomainURI[s.Domain] == nil {
			byDomainURI[s.Domain] = map[ids.DocumentURI][]span.Span{}
		}
		byDomainURI[s.Domain][s.URI] = append(byDomainURI[s.Domain][s.URI], s.Span)
	}
	for _, byURI := range byDomainURI {
		for _, spans := range byURI {
			sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
			for i := 1; i < len(spans); i++ {
				if spans[i].Start < spans[i-1].End {
					return false
				}
			}
		}
	}
	return true
}
