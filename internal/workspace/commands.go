package workspace

import (
	"context"
	"runtime"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/query"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

func memoryUsed() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}

func (e *Engine) cacheMeta(hit bool) CacheMeta {
	tier := "miss"
	if hit {
		tier = "memory"
	}
	return CacheMeta{Hit: hit, Tier: tier}
}

func (e *Engine) notFoundEnvelope(commandID, reason string) Envelope {
	return Envelope{
		SchemaVersion: schemaVersion,
		Status:        StatusError,
		Epistemic:     Epistemic{Confidence: semantics.ConfidenceUnknown, UnknownReason: reason, Gaps: []string{}},
		Meta:          Meta{CommandID: commandID, Memory: memoryUsed(), Cache: e.cacheMeta(false)},
	}
}

// envelopeFor wraps result using cd's diagnostics/gaps to derive status
// and epistemic confidence, per spec.md §4.K.
func (e *Engine) envelopeFor(cd *compiledDoc, cacheHit bool, commandID string, result any, unknownReason string) Envelope {
	confidence := semantics.RollupConfidence(cd.gaps)
	status := StatusOK
	switch {
	case result == nil && unknownReason != "":
		status = StatusError
		confidence = semantics.ConfidenceUnknown
	case cd.typecheckSkipped, len(cd.unresolvedGaps) > 0, confidence != semantics.ConfidenceExact:
		status = StatusDegraded
	}
	return Envelope{
		SchemaVersion: schemaVersion,
		Status:        status,
		Result:        result,
		Epistemic: Epistemic{
			Confidence:    confidence,
			UnknownReason: unknownReason,
			Gaps:          gapStrings(cd.gaps),
		},
		Meta: Meta{CommandID: commandID, Memory: memoryUsed(), Cache: e.cacheMeta(cacheHit)},
	}
}

// Hover answers a hover command at (uri, offset).
func (e *Engine) Hover(ctx context.Context, uri ids.DocumentURI, offset int) Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()
	commandID := e.nextCommandID()
	cd, hit, found := e.ensureCompiled(ctx, uri)
	if !found {
		return e.notFoundEnvelope(commandID, "document not open")
	}
	qe := e.queryEngine(uri)
	result, ok := qe.Hover(uri, offset)
	if !ok {
		return e.envelopeFor(cd, hit, commandID, nil, "no entity at position")
	}
	return e.envelopeFor(cd, hit, commandID, result, "")
}

// Definition answers a go-to-definition command at (uri, offset).
func (e *Engine) Definition(ctx context.Context, uri ids.DocumentURI, offset int) Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()
	commandID := e.nextCommandID()
	cd, hit, found := e.ensureCompiled(ctx, uri)
	if !found {
		return e.notFoundEnvelope(commandID, "document not open")
	}
	qe := e.queryEngine(uri)
	result, ok := qe.Definition(uri, offset)
	if !ok {
		return e.envelopeFor(cd, hit, commandID, nil, "no declaration resolvable at position")
	}
	return e.envelopeFor(cd, hit, commandID, result, "")
}

// References answers a find-references command at (uri, offset).
func (e *Engine) References(ctx context.Context, uri ids.DocumentURI, offset int) Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()
	commandID := e.nextCommandID()
	cd, hit, found := e.ensureCompiled(ctx, uri)
	if !found {
		return e.notFoundEnvelope(commandID, "document not open")
	}
	qe := e.queryEngine(uri)
	result, ok := qe.References(uri, offset)
	if !ok {
		return e.envelopeFor(cd, hit, commandID, nil, "no entity at position")
	}
	return e.envelopeFor(cd, hit, commandID, result, "")
}

// Rename answers a rename command at (uri, offset) proposing newName.
func (e *Engine) Rename(ctx context.Context, uri ids.DocumentURI, offset int, newName string) Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()
	commandID := e.nextCommandID()
	cd, hit, found := e.ensureCompiled(ctx, uri)
	if !found {
		return e.notFoundEnvelope(commandID, "document not open")
	}
	qe := e.queryEngine(uri)
	result, ok := qe.Rename(uri, offset, newName)
	if !ok {
		return e.envelopeFor(cd, hit, commandID, nil, "no entity at position")
	}
	return e.envelopeFor(cd, hit, commandID, result, "")
}

// Completions answers a completion command for ctx at uri.
func (e *Engine) Completions(parent context.Context, uri ids.DocumentURI, ctx query.CompletionContext) Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()
	commandID := e.nextCommandID()
	cd, hit, found := e.ensureCompiled(parent, uri)
	if !found {
		return e.notFoundEnvelope(commandID, "document not open")
	}
	qe := e.queryEngine(uri)
	result := qe.Completions(ctx)
	return e.envelopeFor(cd, hit, commandID, result, "")
}

// SemanticTokens answers a semantic-tokens command for all of uri.
func (e *Engine) SemanticTokens(ctx context.Context, uri ids.DocumentURI) Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()
	commandID := e.nextCommandID()
	cd, hit, found := e.ensureCompiled(ctx, uri)
	if !found {
		return e.notFoundEnvelope(commandID, "document not open")
	}
	if cd.module == nil {
		return e.envelopeFor(cd, hit, commandID, nil, "document failed to compile")
	}
	scoped := e.scopedCatalog(uri)
	result := query.SemanticTokens(cd.module, scoped, e.syntax)
	return e.envelopeFor(cd, hit, commandID, result, "")
}

// CheckResult is the result payload for the Check command: the full
// diagnostic sweep for one document.
type CheckResult struct {
	Diagnostics    []string `json:"diagnostics"`
	TypecheckRan   bool     `json:"typecheckRan"`
	UnresolvedGaps []string `json:"unresolvedGaps,omitempty"`
}

// Check runs (or reuses) the full compile for uri and reports its
// diagnostic sweep, per spec.md §4.K's degraded/error status rules: any
// unresolved gap-conservation violation or skipped typecheck stage
// degrades the envelope even though the compile itself succeeded.
func (e *Engine) Check(ctx context.Context, uri ids.DocumentURI) Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()
	commandID := e.nextCommandID()
	cd, hit, found := e.ensureCompiled(ctx, uri)
	if !found {
		return e.notFoundEnvelope(commandID, "document not open")
	}
	msgs := make([]string, 0, len(e.graphDiagnostics)+len(cd.diagnostics))
	for _, d := range e.graphDiagnostics {
		msgs = append(msgs, string(d.Severity)+" "+d.Code+": "+d.Message)
	}
	for _, d := range cd.diagnostics {
		msgs = append(msgs, string(d.Severity)+" "+d.Code+": "+d.Message)
	}
	result := CheckResult{
		Diagnostics:    msgs,
		TypecheckRan:   !cd.typecheckSkipped,
		UnresolvedGaps: sortedDiagKinds(cd.unresolvedGaps),
	}
	return e.envelopeFor(cd, hit, commandID, result, "")
}
