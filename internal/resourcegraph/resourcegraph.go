// Package resourcegraph implements component F of spec.md §2: the scope
// tree (root, per-component local scopes, per-local-template scopes) and
// its materialization rule. Grounded on the teacher's pkg/engine values
// overlay resolution, generalized from chart-value layering to resource
// visibility layering; the "root ∪ target, no ancestor walk" rule
// (spec.md §4.F) is this package's one deliberate departure from that
// model.
package resourcegraph

import (
	"sort"

	"github.com/aurelia-tools/aurelia-ls/internal/discovery"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

// Scope is one node of the resource graph's scope tree.
type Scope struct {
	ID        ids.ResourceScopeID
	Parent    ids.ResourceScopeID // "" for the root scope
	Label     string
	Resources semantics.Collections
}

// Graph is the full resource graph for one project snapshot, versioned so
// the workspace can detect staleness after a rebuild (spec.md §5
// "resource-graph version").
type Graph struct {
	Version int
	Root    ids.ResourceScopeID
	Scopes  map[ids.ResourceScopeID]*Scope
}

// Build assembles a Graph from the materialized base semantics and the
// import directives discovery produced. Every component file gets a
// `local:<file>` scope parented to root; every local-template definition
// gets a `local-template:<owner>::<name>` scope parented to its owner's
// local scope (spec.md §4.F).
func Build(version int, base *semantics.MaterializedSemantics, imports []discovery.ImportDirective, componentFiles []ids.DocumentURI, localTemplates map[ids.DocumentURI][]string) *Graph {
	g := &Graph{
		Version: version,
		Root:    ids.RootScopeID,
		Scopes:  map[ids.ResourceScopeID]*Scope{},
	}
	g.Scopes[ids.RootScopeID] = &Scope{
		ID:        ids.RootScopeID,
		Resources: base.Resources,
	}

	for _, uri := range componentFiles {
		scopeID := ids.LocalScopeID(uri)
		g.Scopes[scopeID] = &Scope{
			ID:        scopeID,
			Parent:    ids.RootScopeID,
			Label:     string(uri),
			Resources: semantics.NewCollections(),
		}
	}
	for uri, names := range localTemplates {
		ownerScope := ids.LocalScopeID(uri)
		for _, name := range names {
			scopeID := ids.LocalTemplateScopeID(uri, name)
			g.Scopes[scopeID] = &Scope{
				ID:        scopeID,
				Parent:    ownerScope,
				Label:     name,
				Resources: semantics.NewCollections(),
			}
		}
	}

	for _, imp := range imports {
		scope, ok := g.Scopes[imp.OwnerScope]
		if !ok {
			continue // owner scope not yet registered; caller's componentFiles/localTemplates was incomplete
		}
		if imp.ResourceName == "" {
			continue // unresolved import; surfaced as a discovery gap, not a graph edge
		}
		def, ok := base.Resources.Get(imp.ResourceKind, imp.ResourceName)
		if !ok {
			def = semantics.ResourceDef{Kind: imp.ResourceKind, Name: semantics.NewSourced(imp.ResourceName, semantics.OriginSource, nil), IsStub: true}
		}
		if imp.As != "" {
			def.Name = semantics.NewSourced(imp.As, def.Name.Origin, def.Name.Location)
		}
		scope.Resources.Put(def)
	}

	return g
}

// Materialize implements spec.md §4.F's departure from classical
// ancestor-chain inheritance: a target scope's visible resources are
// (root ∪ target) only — intermediate ancestors between root and target
// (e.g. a local-template's owning component scope) are never consulted.
// This mirrors the framework's runtime container resolution and is the
// single invariant spec.md §8.6 tests directly.
func Materialize(g *Graph, target ids.ResourceScopeID) semantics.Collections {
	root := g.Scopes[g.Root]
	if root == nil {
		return semantics.NewCollections()
	}
	if target == g.Root {
		return semantics.CloneOverlay(root.Resources, semantics.NewCollections())
	}
	targetScope, ok := g.Scopes[target]
	if !ok {
		return semantics.CloneOverlay(root.Resources, semantics.NewCollections())
	}
	return semantics.CloneOverlay(root.Resources, targetScope.Resources)
}

// ScopeIDs returns every scope id in the graph, sorted, for deterministic
// iteration (spec.md §9 "Deterministic output").
func (g *Graph) ScopeIDs() []ids.ResourceScopeID {
	out := make([]ids.ResourceScopeID, 0, len(g.Scopes))
	for id := range g.Scopes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Ancestors reports the (parent, grandparent, ...) chain above scope,
// ending at root. It exists for diagnostics and the query layer's
// "where would this resource be visible from" explanations, not for
// materialization, which never walks this chain (see Materialize).
func (g *Graph) Ancestors(scope ids.ResourceScopeID) []ids.ResourceScopeID {
	var out []ids.ResourceScopeID
	cur := scope
	for {
		s, ok := g.Scopes[cur]
		if !ok || s.Parent == "" {
			return out
		}
		out = append(out, s.Parent)
		cur = s.Parent
	}
}
