package discovery

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

// PrecedenceRank orders candidates for the convergence assembler: lower
// rank wins a field-level conflict (spec.md §4.E.1). Order:
// config < decorator < define < static-class-members < convention <
// sibling-template < plugin-activation < builtin.
type PrecedenceRank int

const (
	RankConfig PrecedenceRank = iota
	RankDecorator
	RankDefine
	RankStaticMembers
	RankConvention
	RankSiblingTemplate
	RankPluginActivation
	RankBuiltin
)

// Candidate is one recognizer's proposed definition for a resource,
// tagged with the recognizer family that produced it (for convergence
// diagnostics) and its precedence rank.
type Candidate struct {
	Def       semantics.ResourceDef
	Recognizer string
	Rank      PrecedenceRank
}

// Recognizer is implemented once per pattern family (spec.md §4.D).
// Recognize must be side-effect free beyond the returned candidates and
// gaps: it never mutates Project.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, project Project) ([]Candidate, []semantics.Gap)
}

// Result is the aggregate output of a full discovery pass: every
// recognizer's candidates and gaps, concatenated in recognizer order
// (stable; convergence folding makes the actual precedence explicit, so
// this order only matters for reproducible gap ordering).
type Result struct {
	Candidates []Candidate
	Gaps       []semantics.Gap
	Imports    []ImportDirective
}

// ImportProducer is an optional capability a Recognizer implements when
// it also discovers visibility-only ImportDirectives (sibling-template
// imports, local-template registrations) rather than new ResourceDefs.
type ImportProducer interface {
	RecognizeImports(project Project) []ImportDirective
}

// Run executes every recognizer over project. Recognizers run
// concurrently (an errgroup bounds the fan-out per spec.md §5 "Scheduling
// model": background discovery scans run on a task executor), but
// results are merged back in recognizer-list order for determinism
// (spec.md §9 "Deterministic output").
func Run(ctx context.Context, project Project, recognizers []Recognizer) (Result, error) {
	candidateSets := make([][]Candidate, len(recognizers))
	gapSets := make([][]semantics.Gap, len(recognizers))

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range recognizers {
		i, r := i, r
		g.Go(func() error {
			cands, gaps := r.Recognize(gctx, project)
			candidateSets[i] = cands
			gapSets[i] = gaps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var result Result
	for i, r := range recognizers {
		result.Candidates = append(result.Candidates, candidateSets[i]...)
		result.Gaps = append(result.Gaps, gapSets[i]...)
		if p, ok := r.(ImportProducer); ok {
			result.Imports = append(result.Imports, p.RecognizeImports(project)...)
		}
	}
	return result, nil
}

// DefaultRecognizers returns the six built-in recognizer families in the
// precedence order spec.md §4.D lists them (decorator, define,
// convention, sibling-template, plugin-activation, third-party-package).
// cache is handed to NewThirdPartyRecognizer; when it is nil, that
// recognizer falls back to a FileCache rooted at the project.
func DefaultRecognizers(cache ThirdPartyCache) []Recognizer {
	return []Recognizer{
		NewDecoratorRecognizer(),
		NewDefineRecognizer(),
		NewConventionRecognizer(),
		NewSiblingTemplateRecognizer(),
		NewPluginActivationRecognizer(),
		NewThirdPartyRecognizer(cache),
	}
}
