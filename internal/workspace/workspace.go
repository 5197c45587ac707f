// Package workspace implements component K of spec.md §2: the
// incremental engine owning the document store, the resource graph's
// lifecycle, and the compiled-artifact caches, exposed to hosts through
// a deterministic command envelope (internal/workspace/envelope.go).
// Grounded on the teacher's pkg/action.Configuration: one long-lived
// object the CLI commands share, holding the "connected" state (there,
// a Kubernetes client and release storage; here, the resource graph,
// catalog, and indices) so each command only has to thread through
// what it actually needs.
//
// Scheduling follows spec.md §5: single-threaded cooperative per
// workspace. mu is held for the duration of every exported method —
// not a concurrency primitive in the usual sense (nothing here runs
// two compiles at once), but the guard against a host accidentally
// calling the engine from two goroutines at once, the same role
// pkg/action.Configuration's caller-supplied locking convention plays
// for the teacher's release storage.
package workspace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/aurelia-tools/aurelia-ls/internal/convergence"
	"github.com/aurelia-tools/aurelia-ls/internal/diag"
	"github.com/aurelia-tools/aurelia-ls/internal/discovery"
	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/bind"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/link"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/lower"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/plan"
	"github.com/aurelia-tools/aurelia-ls/internal/pipeline/typecheck"
	"github.com/aurelia-tools/aurelia-ls/internal/provenance"
	"github.com/aurelia-tools/aurelia-ls/internal/query"
	"github.com/aurelia-tools/aurelia-ls/internal/refindex"
	"github.com/aurelia-tools/aurelia-ls/internal/resourcegraph"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// Host bundles the host-supplied capability seams the engine needs
// beyond pure computation: markup/expression parsing, view-model
// reflection, and the type checker overlay calls drive. A production
// host wires its real LSP/compiler integration here; tests supply
// hostiface's default/fake implementations.
type Host struct {
	Markup      hostiface.MarkupParser
	Expr        hostiface.ExpressionParser
	Checker     hostiface.TypeChecker // nil is allowed: typecheck is then skipped and the document's envelopes report degraded
	VM          hostiface.VmReflection
	Recognizers []discovery.Recognizer
}

// document is the workspace's record for one open URI.
type document struct {
	uri     ids.DocumentURI
	file    ids.SourceFileID
	text    string
	version int
}

// compiledDoc is the cached pipeline output for one document at one
// (text, resource-graph version) pair.
type compiledDoc struct {
	contentHash      string
	graphVersion     int
	module           *ir.IrModule
	scope            *ir.ScopeModule
	modulePlan       *plan.ModulePlan
	diagnostics      []diag.Diagnostic
	gaps             []semantics.Gap
	unresolvedGaps   []string // CheckGapConservation's output, should be empty
	typecheckSkipped bool
}

// Engine is the single writer for semantics/catalog/graph/indices
// (spec.md §5 "Shared resources"); every other operation reads a
// consistent snapshot of it.
type Engine struct {
	mu sync.Mutex

	host   Host
	syntax *semantics.TemplateSyntaxRegistry

	graph            *resourcegraph.Graph
	graphVersion     int
	baseCatalog      *semantics.ResourceCatalog // whole-project catalog, for completions/diagnostics spanning every scope
	graphDiagnostics []diag.Diagnostic          // convergence-conflict diagnostics from the last rebuild (spec.md §4.E.3)

	docs      map[ids.DocumentURI]*document
	fileToURI map[ids.SourceFileID]ids.DocumentURI
	nextFile  ids.SourceFileID

	compiled map[ids.DocumentURI]*compiledDoc
	cache    *compileCache

	refIndex   *refindex.Index
	provenance *provenance.Index

	commandSeq uint64
}

// NewEngine constructs an empty engine. Call RebuildResourceGraph before
// opening any document — an engine with no resource graph treats every
// custom element/attribute/controller as unknown.
func NewEngine(host Host) *Engine {
	return &Engine{
		host:       host,
		syntax:     semantics.BuiltinTemplateSyntax(),
		docs:       map[ids.DocumentURI]*document{},
		fileToURI:  map[ids.SourceFileID]ids.DocumentURI{},
		compiled:   map[ids.DocumentURI]*compiledDoc{},
		cache:      newCompileCache(),
		refIndex:   refindex.NewIndex(),
		provenance: provenance.NewIndex(),
		nextFile:   1,
	}
}

// URIForFile implements query.FileLocator against the engine's own
// document table.
func (e *Engine) URIForFile(file ids.SourceFileID) (ids.DocumentURI, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	uri, ok := e.fileToURI[file]
	return uri, ok
}

// RebuildResourceGraph runs discovery + convergence + graph assembly
// over project and replaces the engine's resource graph, bumping its
// version. Per spec.md §5 "Ordering guarantees": after this call every
// open document is stale until its next query triggers a recompile.
func (e *Engine) RebuildResourceGraph(ctx context.Context, project discovery.Project, componentFiles []ids.DocumentURI, localTemplates map[ids.DocumentURI][]string) (convergence.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	disc, err := discovery.Run(ctx, project, e.host.Recognizers)
	if err != nil {
		return convergence.Result{}, err
	}
	conv := convergence.Assemble(semantics.Builtin(), disc)
	e.graphVersion++
	e.graph = resourcegraph.Build(e.graphVersion, conv.Materialized, disc.Imports, componentFiles, localTemplates)
	e.baseCatalog = conv.Catalog
	e.syntax = conv.Syntax
	e.graphDiagnostics = convergenceDiagnostics(conv.Records)
	return conv, nil
}

// convergenceDiagnostics adapts convergence's field-disagreement records
// into diag.Diagnostics (spec.md §7 "Convergence conflicts → emit
// definition-convergence diagnostic with field + candidates"). These are
// project-wide, not per-document, so every document's Check result
// carries the same set until the next rebuild.
func convergenceDiagnostics(records []convergence.DefinitionConvergenceRecord) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(records))
	for _, r := range records {
		out = append(out, diag.FromConvergence(diag.ConvergenceRecord{
			ResourceKind: string(r.ResourceKind),
			ResourceName: r.ResourceName,
			Field:        r.Field,
			Severity:     r.Severity,
			Reasons:      r.Reasons,
			Where:        r.Where,
		}))
	}
	return out
}

// OpenDoc registers uri at version v with the given text, allocating a
// SourceFileID the document keeps for its whole lifetime (spec.md §4.K
// "document store keyed by URI").
func (e *Engine) OpenDoc(uri ids.DocumentURI, text string, v int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.docs[uri]; exists {
		return
	}
	file := e.nextFile
	e.nextFile++
	e.docs[uri] = &document{uri: uri, file: file, text: text, version: v}
	e.fileToURI[file] = uri
}

// UpdateDoc applies a new version's text, invalidating the document's
// compiled artifacts and its referential-index sites (spec.md §4.K).
// Provenance edges already recorded for uri are not removed. A stale version (v <= current) is ignored — backpressure
// coalescing (spec.md §5) means only the latest version per URI ever
// reaches the pipeline.
func (e *Engine) UpdateDoc(uri ids.DocumentURI, text string, v int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, ok := e.docs[uri]
	if !ok {
		file := e.nextFile
		e.nextFile++
		e.docs[uri] = &document{uri: uri, file: file, text: text, version: v}
		e.fileToURI[file] = uri
		return
	}
	if v <= doc.version {
		return
	}
	doc.text = text
	doc.version = v
	delete(e.compiled, uri)
	e.refIndex.RemoveURI(uri)
}

// CloseDoc evicts uri's document state and compiled artifacts. The
// SourceFileID is not reused.
func (e *Engine) CloseDoc(uri ids.DocumentURI) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.docs, uri)
	delete(e.compiled, uri)
	e.refIndex.RemoveURI(uri)
}

// ensureCompiled returns uri's compiled artifacts, recompiling if the
// text changed, the resource graph bumped, or this is the first query
// (spec.md §4.K "per-document recompile triggers"). The caller must
// already hold e.mu.
func (e *Engine) ensureCompiled(ctx context.Context, uri ids.DocumentURI) (cd *compiledDoc, cacheHit bool, found bool) {
	doc, ok := e.docs[uri]
	if !ok {
		return nil, false, false
	}
	hash := contentHash(doc.text)
	if cd, ok := e.compiled[uri]; ok && cd.contentHash == hash && cd.graphVersion == e.graphVersion {
		return cd, true, true
	}
	if cached, hit := e.cache.get(hash, e.graphVersion); hit {
		e.compiled[uri] = cached
		e.reindex(uri, cached)
		return cached, true, true
	}

	fresh := e.compile(ctx, doc)
	fresh.contentHash = hash
	fresh.graphVersion = e.graphVersion
	e.compiled[uri] = fresh
	e.cache.put(hash, e.graphVersion, fresh)
	e.reindex(uri, fresh)
	return fresh, false, true
}

func (e *Engine) scopedCatalog(uri ids.DocumentURI) *semantics.ResourceCatalog {
	if e.graph == nil || e.baseCatalog == nil {
		return semantics.NewResourceCatalog()
	}
	resources := resourcegraph.Materialize(e.graph, ids.LocalScopeID(uri))
	scoped := semantics.NewResourceCatalog()
	putAll := func(defs map[string]semantics.ResourceDef) {
		for _, def := range defs {
			scoped.Put(def)
			for _, g := range e.baseCatalog.Gaps(def.Key()) {
				scoped.AddGap(def.Key(), g)
			}
		}
	}
	putAll(resources.Elements)
	putAll(resources.Attributes)
	putAll(resources.Controllers)
	putAll(resources.ValueConverters)
	putAll(resources.BindingBehaviors)
	return scoped
}

func (e *Engine) compile(ctx context.Context, doc *document) *compiledDoc {
	catalog := e.scopedCatalog(doc.uri)
	mat := &semantics.MaterializedSemantics{Base: semantics.Builtin()}

	collector := &diag.Collector{}
	mod, err := lower.Lower(doc.file, doc.text, e.host.Markup, e.host.Expr, catalog, e.syntax)
	if err != nil {
		collector.Add(diag.New("aurelia/ir-error", diag.SeverityError, doc.file, span.Span{File: doc.file}, err.Error(), nil))
		return &compiledDoc{diagnostics: collector.Sorted()}
	}
	link.Link(mod, mat, catalog, e.syntax)
	sm := bind.Bind(mod, catalog)
	// Lower and Link both append to mod.Diagnostics; collect once both
	// stages have run so neither stage's findings are missed.
	collector.AddAll(diag.FromIR(doc.file, mod.Diagnostics))

	skippedTypecheck := e.host.Checker == nil || e.host.VM == nil
	if !skippedTypecheck {
		for i := range mod.Templates {
			tpl := &mod.Templates[i]
			tds, err := typecheck.CheckTemplate(ctx, mod, tpl, e.host.Checker, e.host.VM, e.provenance, doc.uri)
			if err != nil {
				skippedTypecheck = true
				break
			}
			collector.AddAll(diag.FromIR(doc.file, tds))
		}
	}

	modPlan := plan.Plan(mod, plan.Options{})

	gaps := catalog.AllGaps()
	unresolved := diag.CheckGapConservation(gaps, collector.Sorted())

	return &compiledDoc{
		module:           mod,
		scope:            sm,
		modulePlan:       modPlan,
		diagnostics:      collector.Sorted(),
		gaps:             gaps,
		unresolvedGaps:   unresolved,
		typecheckSkipped: skippedTypecheck,
	}
}

func (e *Engine) reindex(uri ids.DocumentURI, cd *compiledDoc) {
	e.refIndex.RemoveURI(uri)
	if cd.module == nil || cd.scope == nil {
		return
	}
	fresh := refindex.FromModule(cd.module, cd.scope, uri)
	for _, s := range fresh.AllSites() {
		e.refIndex.Add(s)
	}
}

// queryEngine builds a query.Engine snapshot over uri's current scope.
// Must be called with e.mu held.
func (e *Engine) queryEngine(uri ids.DocumentURI) *query.Engine {
	catalog := e.scopedCatalog(uri)
	var dom semantics.DOMSchema
	if base := semantics.Builtin(); base != nil {
		dom = base.DOM
	}
	return &query.Engine{
		Catalog:    catalog,
		RefIndex:   e.refIndex,
		Provenance: e.provenance,
		Files:      e,
		Syntax:     e.syntax,
		DOM:        dom,
	}
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (e *Engine) nextCommandID() string {
	e.commandSeq++
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("cmd-%d", e.commandSeq))).String()
}

// sortedDiagKinds returns a sorted copy of the unresolved
// gap-conservation entries, used by commands.go for
// CheckResult.UnresolvedGaps.
func sortedDiagKinds(unresolved []string) []string {
	out := append([]string(nil), unresolved...)
	sort.Strings(out)
	return out
}
