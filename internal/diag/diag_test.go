package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

func TestCollectorTracksHighestSeverity(t *testing.T) {
	var c Collector
	c.Add(Diagnostic{Severity: SeverityInfo})
	assert.Equal(t, SeverityInfo, c.HighestSeverity)
	c.Add(Diagnostic{Severity: SeverityWarning})
	assert.Equal(t, SeverityWarning, c.HighestSeverity)
	c.Add(Diagnostic{Severity: SeverityHint})
	assert.Equal(t, SeverityWarning, c.HighestSeverity, "a lower-severity diagnostic must not downgrade the rollup")
	c.Add(Diagnostic{Severity: SeverityError})
	assert.Equal(t, SeverityError, c.HighestSeverity)
}

func TestSortedOrdersByFileThenSpanThenCode(t *testing.T) {
	var c Collector
	c.Add(Diagnostic{Code: "z", File: 1, Span: span.Span{Start: 5}})
	c.Add(Diagnostic{Code: "a", File: 1, Span: span.Span{Start: 5}})
	c.Add(Diagnostic{Code: "a", File: 0, Span: span.Span{Start: 10}})

	sorted := c.Sorted()
	assert.Equal(t, 0, int(sorted[0].File))
	assert.Equal(t, "a", sorted[1].Code)
	assert.Equal(t, "z", sorted[2].Code)
}

func TestFromGapFallsBackToGenericCode(t *testing.T) {
	g := semantics.Gap{What: "no sibling template", Why: semantics.GapPartialEval}
	d := FromGap(0, g)
	assert.Equal(t, "aurelia/gap/partial-eval", d.Code)
}

func TestFromGapHonorsExplicitCode(t *testing.T) {
	g := semantics.Gap{What: "ambiguous owner", Why: semantics.GapConservative, Code: "aurelia/template-import-owner-ambiguous"}
	d := FromGap(0, g)
	assert.Equal(t, "aurelia/template-import-owner-ambiguous", d.Code)
}

func TestCheckGapConservationFlagsMissingDiagnostic(t *testing.T) {
	gaps := []semantics.Gap{{What: "x", Why: semantics.GapCacheCorrupt}}
	violations := CheckGapConservation(gaps, nil)
	assert.Len(t, violations, 1)
}

func TestCheckGapConservationIgnoresSuppressedGaps(t *testing.T) {
	gaps := []semantics.Gap{{What: "x", Why: semantics.GapCacheCorrupt, Suppressed: true}}
	violations := CheckGapConservation(gaps, nil)
	assert.Empty(t, violations)
}

func TestNewAttachesLegacyCode(t *testing.T) {
	d := New("aurelia/unknown-bindable", SeverityError, 0, span.Span{}, "unknown bindable foo", nil)
	assert.Equal(t, "AUR0704", d.Data["legacyCode"])
}
