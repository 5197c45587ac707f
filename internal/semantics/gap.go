package semantics

import "github.com/aurelia-tools/aurelia-ls/internal/span"

// GapWhyKind partitions gap causes into the three buckets that drive
// catalog confidence rollup (spec.md §4.D "Gap contract").
type GapWhyKind string

const (
	GapConservative GapWhyKind = "conservative"
	GapPartialEval  GapWhyKind = "partial-eval"
	GapCacheCorrupt GapWhyKind = "cache-corrupt"
)

// GapResource identifies, when known, which resource a gap concerns.
type GapResource struct {
	Kind ResourceKind
	Name string
}

// Gap is a structured record of a fact a recognizer could not determine.
// Gaps are never swallowed: every gap must surface as a diagnostic
// (conserved across pipeline stages, spec.md §8 invariant 5) unless
// explicitly suppressed by policy, which is itself recorded, not silent.
type Gap struct {
	What       string
	Why        GapWhyKind
	Where      *span.Span
	Suggestion string
	Resource   *GapResource
	// Code, when set, is the specific `aurelia/...` diagnostic code this
	// gap must surface as (e.g. "aurelia/template-import-owner-ambiguous").
	// When empty, the diag package falls back to a generic
	// "aurelia/gap/<why>" code.
	Code string
	// Suppressed records an explicit policy decision to not surface this
	// gap as a diagnostic (e.g. a project config opted out of a
	// third-party-package scan). When false (the default) the gap must
	// appear in the aggregated diagnostics.
	Suppressed       bool
	SuppressedReason string
}

// Confidence is the catalog-wide or per-resource confidence rollup
// derived from a resource's gap set (spec.md §4.E).
type Confidence string

const (
	ConfidenceExact        Confidence = "exact"
	ConfidenceHigh         Confidence = "high"
	ConfidencePartial      Confidence = "partial"
	ConfidenceLow          Confidence = "low"
	ConfidenceConservative Confidence = "conservative"
	ConfidenceUnknown      Confidence = "unknown"
)

// RollupConfidence implements the catalog confidence rule: any
// conservative gap wins, else any partial-eval gap, else exact.
func RollupConfidence(gaps []Gap) Confidence {
	sawPartial := false
	for _, g := range gaps {
		if g.Suppressed {
			continue
		}
		switch g.Why {
		case GapConservative:
			return ConfidenceConservative
		case GapPartialEval:
			sawPartial = true
		}
	}
	if sawPartial {
		return ConfidencePartial
	}
	return ConfidenceExact
}

// ItemConfidence maps a rollup confidence onto the four-grade scale the
// query layer's completion items expose (spec.md §4.J).
func ItemConfidence(c Confidence) string {
	switch c {
	case ConfidenceExact:
		return "exact"
	case ConfidencePartial:
		return "partial"
	case ConfidenceConservative, ConfidenceLow:
		return "low"
	case ConfidenceHigh:
		return "high"
	default:
		return "unknown"
	}
}
