// Package diag is the diagnostics runtime (component L of spec.md §2): a
// staged emitter that collects Diagnostics from every pipeline stage,
// deduplicates and sorts them, and enforces gap conservation (spec.md §8
// invariant 5 — every Gap must surface as a diagnostic unless explicitly
// suppressed). Grounded on the teacher's pkg/lint/support.Linter: an
// accumulator that tracks messages plus a running highest-severity
// rollup, generalized here from chart-lint messages to pipeline
// diagnostics with structured data and legacy numeric codes.
package diag

import (
	"sort"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// Severity is the user-visible severity scale (spec.md §7).
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

var severityRank = map[Severity]int{
	SeverityHint:    0,
	SeverityInfo:    1,
	SeverityWarning: 2,
	SeverityError:   3,
}

// Diagnostic is the fully-resolved, host-facing finding shape: every
// pipeline stage's output converges here.
type Diagnostic struct {
	Code     string
	Severity Severity
	File     ids.SourceFileID
	Span     span.Span
	Message  string
	Data     map[string]any
	Recovery bool // set when this diagnostic accompanies a recoverable BadExpression
}

// legacyNumericCodes maps the namespaced code used internally onto the
// framework's historical AUR0xxx codes, carried in Data.legacyCode for
// hosts that still key off the old scheme (spec.md §6 "Diagnostic
// codes").
var legacyNumericCodes = map[string]string{
	"aurelia/unknown-element":    "AUR0701",
	"aurelia/unknown-attribute":  "AUR0702",
	"aurelia/unknown-controller": "AUR0703",
	"aurelia/unknown-bindable":   "AUR0704",
	"aurelia/unknown-command":    "AUR0705",
	"aurelia/unknown-converter":  "AUR0706",
	"aurelia/unknown-behavior":   "AUR0707",
	"aurelia/invalid-binding-pattern": "AUR0101",
	"aurelia/expr-parse-error":        "AUR0102",
	"aurelia/expr-type-mismatch":      "AUR0103",
	"aurelia/ir-error":                "AUR0106",
}

func withLegacyCode(code string, data map[string]any) map[string]any {
	legacy, ok := legacyNumericCodes[code]
	if !ok {
		return data
	}
	if data == nil {
		data = map[string]any{}
	}
	data["legacyCode"] = legacy
	return data
}

// New constructs a Diagnostic, attaching the legacy numeric code to Data
// when the code is one spec.md §6 names.
func New(code string, severity Severity, file ids.SourceFileID, sp span.Span, message string, data map[string]any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: severity,
		File:     file,
		Span:     sp,
		Message:  message,
		Data:     withLegacyCode(code, data),
	}
}

// FromIR converts one stage's local ir.Diagnostic entries (from lowering
// and link) into the runtime's Diagnostic shape.
// ir cannot import diag (would cycle back through convergence's use of
// gaps), so this conversion function is the seam (see ir.Diagnostic's
// doc comment).
func FromIR(file ids.SourceFileID, irDiags []ir.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(irDiags))
	for _, d := range irDiags {
		out = append(out, Diagnostic{
			Code:     d.Code,
			Severity: Severity(d.Severity),
			File:     file,
			Span:     d.Span,
			Message:  d.Message,
			Data:     withLegacyCode(d.Code, d.Data),
			Recovery: d.Recovery,
		})
	}
	return out
}

// FromGap translates a semantics.Gap into its diagnostic form. Gaps with
// an explicit Code use it verbatim; otherwise the generic
// "aurelia/gap/<why>" fallback applies (spec.md §4.D "Gap contract").
// Gaps with Suppressed set are still converted (callers filter them out
// of the host-facing stream but keep them for the gap-conservation
// check, which must see the suppression reason, not an absence).
func FromGap(file ids.SourceFileID, g semantics.Gap) Diagnostic {
	code := g.Code
	if code == "" {
		code = "aurelia/gap/" + string(g.Why)
	}
	sp := span.Span{File: file}
	if g.Where != nil {
		sp = *g.Where
	}
	data := map[string]any{"gapKind": string(g.Why)}
	if g.Resource != nil {
		data["resourceKind"] = string(g.Resource.Kind)
		data["resourceName"] = g.Resource.Name
	}
	if g.Suppressed {
		data["suppressed"] = true
		data["suppressedReason"] = g.SuppressedReason
	}
	sev := SeverityWarning
	if g.Why == semantics.GapConservative {
		sev = SeverityInfo
	}
	return Diagnostic{
		Code:     code,
		Severity: sev,
		File:     sp.File,
		Span:     sp,
		Message:  g.What,
		Data:     withLegacyCode(code, data),
	}
}

// ConvergenceRecord is the minimal shape diag needs from a
// convergence.DefinitionConvergenceRecord, restated locally so this
// package does not need to import internal/convergence (which would be
// the only non-leaf import diag has; keeping diag a leaf consumer of
// plain data keeps every stage package free to import diag without
// risking a cycle).
type ConvergenceRecord struct {
	ResourceKind string
	ResourceName string
	Field        string
	Severity     string
	Reasons      []string
	Where        *span.Span
}

// FromConvergence translates a convergence record into the
// `aurelia/project/definition-convergence` diagnostic spec.md §4.E names.
func FromConvergence(r ConvergenceRecord) Diagnostic {
	sp := span.Span{}
	if r.Where != nil {
		sp = *r.Where
	}
	return Diagnostic{
		Code:     "aurelia/project/definition-convergence",
		Severity: Severity(r.Severity),
		File:     sp.File,
		Span:     sp,
		Message:  "convergence conflict on " + r.ResourceKind + ":" + r.ResourceName + "." + r.Field,
		Data: map[string]any{
			"resourceKind": r.ResourceKind,
			"resourceName": r.ResourceName,
			"field":        r.Field,
			"reasons":      r.Reasons,
		},
	}
}

// Collector accumulates diagnostics across every pipeline stage for one
// compile, tracking a running highest-severity rollup the way the
// teacher's support.Linter tracks HighestSeverity across lint rules.
type Collector struct {
	Diagnostics     []Diagnostic
	HighestSeverity Severity
}

// Add appends d and updates the running highest-severity rollup.
func (c *Collector) Add(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
	if severityRank[d.Severity] > severityRank[c.HighestSeverity] {
		c.HighestSeverity = d.Severity
	}
}

// AddAll appends every diagnostic in ds.
func (c *Collector) AddAll(ds []Diagnostic) {
	for _, d := range ds {
		c.Add(d)
	}
}

// Sorted returns c's diagnostics ordered by (file, span.start, code), the
// deterministic order spec.md §9 requires for reproducible output.
func (c *Collector) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(c.Diagnostics))
	copy(out, c.Diagnostics)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		return a.Code < b.Code
	})
	return out
}

// CheckGapConservation verifies spec.md §8 invariant 5: every gap in
// gaps has a matching diagnostic in diags (by gapKind in Data) unless the
// gap is itself marked Suppressed. Returns one message per violation; an
// empty result means the invariant held.
func CheckGapConservation(gaps []semantics.Gap, diags []Diagnostic) []string {
	seen := map[string]bool{}
	for _, d := range diags {
		if kind, ok := d.Data["gapKind"].(string); ok {
			seen[kind] = true
		}
	}
	var violations []string
	for _, g := range gaps {
		if g.Suppressed {
			continue
		}
		if !seen[string(g.Why)] {
			violations = append(violations, "gap "+g.What+" ("+string(g.Why)+") has no matching diagnostic")
		}
	}
	return violations
}
