// Package plan implements the fifth and final template-compilation stage
// (spec.md §4.G.5): fix the deterministic instruction ordering, collect
// hydration targets, and emit both the AOT instruction/expression tables
// and the two HTML renderings (production markers, editor overlay).
package plan

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
)

// Options controls the production-mode serialization tradeoffs spec.md
// §4.G.5 calls out: "optional span-stripping and expression dedup for
// production builds".
type Options struct {
	Production bool
}

// ExprEntry is one row of the expression table. Span is omitted (left at
// its zero value) in production mode.
type ExprEntry struct {
	ID   ids.ExprID `yaml:"id"`
	Text string     `yaml:"text"`
	Span *exprSpan  `yaml:"span,omitempty"`
}

type exprSpan struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// TargetPlan is one hydration target: a node plus the ordered
// instructions that apply to it.
type TargetPlan struct {
	Index        int             `yaml:"index"`
	Node         ids.NodeID      `yaml:"node"`
	Instructions []ir.Instruction `yaml:"instructions"`
}

// TemplatePlan is the planned, serializable form of one TemplateIR.
type TemplatePlan struct {
	TemplateID  ids.TemplateID `yaml:"templateId"`
	Targets     []TargetPlan   `yaml:"targets"`
	Exprs       []ExprEntry    `yaml:"exprs"`
	HTML        string         `yaml:"html"`
	OverlayHTML string         `yaml:"overlayHtml"`
}

// ModulePlan is the planned form of an entire IrModule: one TemplatePlan
// per TemplateIR, indexed identically to IrModule.Templates (root is
// always index 0), so an InstrHydrateController's Def.NestedTemplateIdx
// (resolved already at lower time, spec.md §4.G.1) indexes directly into
// this slice — plan does not renumber templates, it only finalizes each
// one's own instruction/target/expression ordering and rendering.
type ModulePlan struct {
	Templates []TemplatePlan `yaml:"templates"`
}

// Plan computes the deterministic, serializable compilation output for
// mod. Calling Plan twice on the same linked+scoped IrModule produces
// byte-identical YAML (spec.md §4.G.5's "Deterministic" requirement) —
// rows are stable-sorted by target node id here as well, rather than
// relying on the order lower's finalize already produces.
func Plan(mod *ir.IrModule, opts Options) *ModulePlan {
	out := &ModulePlan{Templates: make([]TemplatePlan, len(mod.Templates))}
	for i := range mod.Templates {
		out.Templates[i] = planTemplate(mod, &mod.Templates[i], opts)
	}
	return out
}

func planTemplate(mod *ir.IrModule, tpl *ir.TemplateIR, opts Options) TemplatePlan {
	rows := make([]ir.InstructionRow, len(tpl.Rows))
	copy(rows, tpl.Rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Target < rows[j].Target })

	targets := make([]TargetPlan, 0, len(rows))
	exprIDs := map[ids.ExprID]bool{}
	for _, row := range rows {
		if len(row.Instructions) == 0 {
			continue
		}
		targets = append(targets, TargetPlan{Index: len(targets), Node: row.Target, Instructions: row.Instructions})
		for _, instr := range row.Instructions {
			collectExprIDs(instr, exprIDs)
		}
	}

	exprs := buildExprTable(mod, exprIDs, opts)

	html := renderHTML(tpl.Root, true)
	overlay := renderHTML(tpl.Root, false)

	return TemplatePlan{TemplateID: tpl.ID, Targets: targets, Exprs: exprs, HTML: html, OverlayHTML: overlay}
}

func collectExprIDs(instr ir.Instruction, seen map[ids.ExprID]bool) {
	collectSource := func(src ir.BindingSource) {
		switch src.Kind {
		case ir.BindingSourceExpr:
			if src.Expr != nil {
				seen[src.Expr.ID] = true
			}
		case ir.BindingSourceInterp:
			if src.Interp != nil {
				for _, e := range src.Interp.Exprs {
					seen[e.ID] = true
				}
			}
		}
	}
	collectSource(instr.From)
	collectSource(instr.TranslationKey)
	if instr.Iterator != nil {
		collectSource(instr.Iterator.Iterable)
	}
	for _, p := range instr.ElementProps {
		collectExprIDs(p, seen)
	}
	for _, p := range instr.AttrProps {
		collectExprIDs(p, seen)
	}
	for _, p := range instr.ControllerProps {
		collectExprIDs(p, seen)
	}
}

// buildExprTable renders mod.Exprs down to the ids touched by this
// template's rows, sorted by id for determinism. Production mode strips
// spans and keeps only the lowest-id row for each distinct Text. Ids are
// not remapped: an instruction that references a dropped id keeps that
// id, which then has no row of its own in the production table.
func buildExprTable(mod *ir.IrModule, want map[ids.ExprID]bool, opts Options) []ExprEntry {
	idList := make([]ids.ExprID, 0, len(want))
	for id := range want {
		idList = append(idList, id)
	}
	sort.Slice(idList, func(i, j int) bool { return idList[i] < idList[j] })

	var out []ExprEntry
	seenText := map[string]bool{}
	for _, id := range idList {
		ast, ok := mod.Exprs.Get(id)
		if !ok {
			continue
		}
		if opts.Production {
			if seenText[ast.Text] {
				continue
			}
			seenText[ast.Text] = true
			out = append(out, ExprEntry{ID: id, Text: ast.Text})
			continue
		}
		out = append(out, ExprEntry{ID: id, Text: ast.Text, Span: &exprSpan{Start: ast.Span.Start, End: ast.Span.End}})
	}
	return out
}

// renderHTML walks a TemplateIR's DOM tree into markup text. When
// markers is true (the production rendering), template-controller host
// comments collapse to the canonical `<!--au-->` sentinel and interpolated
// text nodes render as an empty run followed by the same sentinel —
// plan does not split an interpolation into its static/dynamic parts, so
// one marker covers the whole text node's dynamic content, not one per
// expression. When markers is false (the overlay rendering used by
// editor queries), comments and text keep their authored debug text so a
// reader can see which controller/expression produced a given node.
//
// AttrSpan carries only name/value *spans* into the original source (for
// diagnostics and provenance), never the literal value text, so a static
// attribute is rendered name-only here — this package has no access to
// the raw source bytes to re-slice an exact value from.
func renderHTML(node *ir.DOMNode, markers bool) string {
	if node == nil {
		return ""
	}
	switch node.Kind {
	case ir.NodeFragmentRoot:
		var sb strings.Builder
		for _, c := range node.Children {
			sb.WriteString(renderHTML(c, markers))
		}
		return sb.String()
	case ir.NodeComment:
		if markers {
			return "<!--au-->"
		}
		return "<!--" + node.Text + "-->"
	case ir.NodeText:
		if node.TextSource != nil {
			if markers {
				return "<!--au-->"
			}
			return node.Text + "<!--au-->"
		}
		return node.Text
	case ir.NodeElement:
		var sb strings.Builder
		sb.WriteString("<")
		sb.WriteString(node.Tag)
		for _, a := range node.Attrs {
			sb.WriteString(" ")
			sb.WriteString(a.Name)
		}
		sb.WriteString(">")
		for _, c := range node.Children {
			sb.WriteString(renderHTML(c, markers))
		}
		sb.WriteString("</")
		sb.WriteString(node.Tag)
		sb.WriteString(">")
		return sb.String()
	default:
		return ""
	}
}

// MarshalYAML serializes the plan to the compact instruction/expression
// table format spec.md §4.G.5 asks for, using the project's own
// serialization library rather than encoding/json so the emitted table
// reads like every other configuration artifact in this codebase.
func MarshalYAML(p *ModulePlan) ([]byte, error) {
	return yaml.Marshal(p)
}
