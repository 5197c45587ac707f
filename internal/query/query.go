// Package query implements the read-only query layer (spec.md §4.J):
// hover, definition, references, rename, completions, and semantic
// tokens, all as pure functions over the latest compiled artifacts for a
// document's version. Grounded on the offset-keyed lookup idea in pack
// file 4a436c95 (cuelang.org/go/internal/lsp/definitions' ForOffset),
// simplified considerably since this project already has two dedicated
// indexes — internal/refindex for text-reference sites and
// internal/provenance for span projection — doing the heavy lifting that
// file builds its own scope graph for.
package query

import (
	"fmt"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/provenance"
	"github.com/aurelia-tools/aurelia-ls/internal/refindex"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// FileLocator maps a source file id to the document URI it was last
// known under, for query operations (Definition, References) that need
// to point at a declaration possibly living in a different file than the
// one queried. The workspace engine is the production implementation;
// tests supply a map-backed stub.
type FileLocator interface {
	URIForFile(file ids.SourceFileID) (ids.DocumentURI, bool)
}

// Engine answers queries against one compiled snapshot: a referential
// index, a provenance index, and the resource catalog it was built
// against. Holds no mutable state of its own — the workspace engine owns
// the snapshot lifecycle (spec.md §4.K) and constructs a fresh Engine per
// query, or reuses one until the next recompile.
type Engine struct {
	Catalog    *semantics.ResourceCatalog
	RefIndex   *refindex.Index
	Provenance *provenance.Index
	Files      FileLocator
	Syntax     *semantics.TemplateSyntaxRegistry
	DOM        semantics.DOMSchema
}

// localKeyPrefix is the ResourceKey refindex.FromModule mints for a
// scope-graph local (spec.md §4.I has no catalog entry for these — they
// never reach the ResourceCatalog, only the scope graph).
const localKeyPrefix = "local:"

func isLocalKey(key string) bool { return strings.HasPrefix(key, localKeyPrefix) }

// HoverResult is the formatted signature returned for a hovered position.
type HoverResult struct {
	Signature string
	Key       string // ResourceCatalog key, or "" for a scope-local / unresolved member
}

// Hover resolves offset in uri to an entity and formats its signature.
// Two paths, per spec.md §4.J: a direct refindex site (tag/attribute
// name, expression identifier, pipe, behavior) resolves immediately;
// failing that, a provenance edge covering the position (an arbitrary
// member-access offset inside an expression, e.g. the `.name` of
// `user.name`) is projected to recover the accessed path. No edge and no
// site covering the offset is the `unknown` case spec.md §4.J names.
func (e *Engine) Hover(uri ids.DocumentURI, offset int) (HoverResult, bool) {
	if site, ok := e.RefIndex.SiteAt(uri, offset); ok {
		return e.formatSite(site), true
	}
	if e.Provenance == nil {
		return HoverResult{}, false
	}
	file, ok := e.RefIndex.FileForURI(uri)
	if !ok {
		return HoverResult{}, false
	}
	q := span.Span{File: file, Start: offset, End: offset + 1}
	result, ok := e.Provenance.Project(uri, q, provenance.SideTo, false)
	if !ok {
		return HoverResult{}, false
	}
	tag := result.Edge.Tag
	if tag == "" {
		tag = result.DeepestMemberTag
	}
	if tag == "" {
		return HoverResult{}, false
	}
	return HoverResult{Signature: fmt.Sprintf("(member) %s", tag)}, true
}

func (e *Engine) formatSite(site refindex.TextReferenceSite) HoverResult {
	if isLocalKey(site.ResourceKey) {
		return HoverResult{Signature: fmt.Sprintf("(local) %s", site.NameForm)}
	}
	def, ok := e.Catalog.LookupKey(ownerKey(site.ResourceKey))
	if !ok {
		return HoverResult{Signature: site.NameForm}
	}
	return HoverResult{Signature: formatSignature(def, site.ResourceKey), Key: site.ResourceKey}
}

// ownerKey strips a BindableKey ("<kind>:<name>:bindable:<prop>") down
// to its owning resource's plain Key ("<kind>:<name>").
func ownerKey(key string) string {
	if idx := strings.Index(key, ":bindable:"); idx >= 0 {
		return key[:idx]
	}
	return key
}

func formatSignature(def semantics.ResourceDef, key string) string {
	if idx := strings.Index(key, ":bindable:"); idx >= 0 {
		prop := key[idx+len(":bindable:"):]
		for _, b := range def.Bindables {
			if b.PropertyName == prop {
				return fmt.Sprintf("%s.%s: %s", def.Name.Value, b.PropertyName, string(b.Mode.Value))
			}
		}
		return fmt.Sprintf("%s.%s", def.Name.Value, prop)
	}
	return fmt.Sprintf("%s %s", def.Kind, def.Name.Value)
}

// DefinitionResult is a declaration's location.
type DefinitionResult struct {
	URI  ids.DocumentURI
	Span span.Span
}

// Definition resolves offset to its declaring file + span: ResourceDef's
// own NameLoc for an element/attribute/controller/converter/behavior, or
// (for a bindable) the declaring element's own NameLoc, per spec.md
// §4.J. Scope-graph locals (repeat/let locals) have no recorded
// declaration span in this IR and are a documented gap, not resolved
// here.
func (e *Engine) Definition(uri ids.DocumentURI, offset int) (DefinitionResult, bool) {
	site, ok := e.RefIndex.SiteAt(uri, offset)
	if !ok || isLocalKey(site.ResourceKey) {
		return DefinitionResult{}, false
	}
	def, ok := e.Catalog.LookupKey(ownerKey(site.ResourceKey))
	if !ok || def.NameLoc == nil {
		return DefinitionResult{}, false
	}
	defURI, ok := e.Files.URIForFile(def.NameLoc.File)
	if !ok {
		return DefinitionResult{}, false
	}
	return DefinitionResult{URI: defURI, Span: def.NameLoc.Span}, true
}
