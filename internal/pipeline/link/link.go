// Package link implements the second template-compilation stage
// (spec.md §4.G.2): it resolves lower's coarse IR against the
// materialized semantics and resource catalog — naming normalization,
// effective binding-mode resolution, and the aurelia/unknown-* family of
// diagnostics — without re-parsing any markup or expression.
package link

import (
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// Link mutates mod in place, resolving every instruction's effective
// To/Mode and appending unknown-resource diagnostics, and returns mod for
// chaining into the bind stage.
func Link(mod *ir.IrModule, mat *semantics.MaterializedSemantics, catalog *semantics.ResourceCatalog, syntax *semantics.TemplateSyntaxRegistry) *ir.IrModule {
	l := &linker{mod: mod, mat: mat, catalog: catalog, syntax: syntax}
	for i := range mod.Templates {
		l.linkTemplate(&mod.Templates[i])
	}
	return mod
}

type linker struct {
	mod     *ir.IrModule
	mat     *semantics.MaterializedSemantics
	catalog *semantics.ResourceCatalog
	syntax  *semantics.TemplateSyntaxRegistry
}

func (l *linker) linkTemplate(tpl *ir.TemplateIR) {
	nodes := map[ids.NodeID]*ir.DOMNode{}
	collectNodes(tpl.Root, nodes)

	for i := range tpl.Rows {
		row := &tpl.Rows[i]
		node := nodes[row.Target]
		tag := ""
		if node != nil {
			tag = node.Tag
		}
		l.checkUnknownElement(node)
		staticAttrs := collectStaticAttrs(row)
		for j := range row.Instructions {
			l.linkInstruction(&row.Instructions[j], tag, node, staticAttrs)
		}
	}
}

func collectNodes(n *ir.DOMNode, out map[ids.NodeID]*ir.DOMNode) {
	if n == nil {
		return
	}
	out[n.ID] = n
	for _, c := range n.Children {
		collectNodes(c, out)
	}
}

func collectStaticAttrs(row *ir.InstructionRow) map[string]string {
	out := map[string]string{}
	for _, instr := range row.Instructions {
		if instr.Kind == ir.InstrSetAttribute {
			out[instr.To] = instr.StaticValue
		}
	}
	return out
}

// checkUnknownElement flags a hyphenated tag (the Web Components /
// Aurelia custom-element convention) that lower never hydrated because
// the catalog had no matching definition — the one unknown-element case
// lower itself cannot detect, since it only ever builds a hydrateElement
// instruction for a tag the catalog already resolved.
func (l *linker) checkUnknownElement(node *ir.DOMNode) {
	if node == nil || node.Kind != ir.NodeElement || !strings.Contains(node.Tag, "-") {
		return
	}
	if _, ok := l.catalog.Lookup(semantics.KindCustomElement, strings.ToLower(node.Tag)); ok {
		return
	}
	l.mod.Diagnostics = append(l.mod.Diagnostics, ir.Diagnostic{
		Code: "aurelia/unknown-element", Severity: "error", Span: node.TagSpan,
		Message: "unknown custom element \"" + node.Tag + "\"",
	})
}

func (l *linker) linkInstruction(instr *ir.Instruction, tag string, node *ir.DOMNode, staticAttrs map[string]string) {
	switch instr.Kind {
	case ir.InstrHydrateElement, ir.InstrHydrateAttribute:
		l.linkHydrateChildren(instr, node)
	case ir.InstrHydrateLet:
		for i := range instr.ElementProps {
			l.checkExprRefs(instr.ElementProps[i].From)
		}
	case ir.InstrPropertyBinding:
		l.resolvePropertyBinding(instr, tag, node, staticAttrs)
	case ir.InstrListenerBinding:
		l.checkEventName(instr, node)
		l.checkExprRefs(instr.From)
	case ir.InstrIteratorBinding:
		if instr.Iterator != nil {
			l.checkExprRefs(instr.Iterator.Iterable)
		}
	case ir.InstrHydrateController:
		l.linkHydrateChildren(instr, node)
		l.checkExprRefs(instr.From)
		if instr.Iterator != nil {
			l.checkExprRefs(instr.Iterator.Iterable)
		}
	default:
		l.checkExprRefs(instr.From)
	}
}

// resolvePropertyBinding is the generic `.bind`/shorthand path onto a
// plain DOM element: recompute the authored target/command from Raw (the
// classification lower already did, kept coarse so link is the one place
// that owns naming/mode resolution), normalize To via the naming chain
// (per-tag > element attrToProp > global attrToProp > camelCase), and
// resolve an unset Mode through the two-way-default chain before falling
// back to toView (spec.md §4.G.2).
func (l *linker) resolvePropertyBinding(instr *ir.Instruction, tag string, node *ir.DOMNode, staticAttrs map[string]string) {
	target, command := splitCommand(instr.Raw)
	if command != "" {
		if _, ok := l.syntax.Commands[command]; !ok {
			l.emitAttrDiag("aurelia/unknown-command", "error", node, instr.Raw, "unknown binding command \""+command+"\"")
		}
	}

	var elementAttrToProp map[string]string
	if tag != "" {
		elementAttrToProp = l.mat.Base.DOM.AttrToProp[tag]
	}
	instr.To = l.mat.Base.Naming.Normalize(tag, target, elementAttrToProp)

	if instr.Mode == ir.ModeDefault {
		if tag != "" && l.mat.Base.TwoWay.IsTwoWayByDefault(tag, instr.To, staticAttrs) {
			instr.Mode = ir.ModeTwoWay
		} else {
			instr.Mode = ir.ModeToView
		}
	}

	l.checkExprRefs(instr.From)
}

func (l *linker) checkEventName(instr *ir.Instruction, node *ir.DOMNode) {
	if l.mat.Base.Events.IsKnown(instr.To) {
		return
	}
	l.emitAttrDiag("aurelia/unknown-event", "hint", node, instr.Raw, "\""+instr.To+"\" is not a recognized native event")
}

// linkHydrateChildren resolves a hydrated custom element/attribute's own
// bindable properties: each child instruction's To/Mode comes from the
// resource's declared BindableDef rather than the generic naming chain,
// since bindables declare their own attribute spelling and default mode.
func (l *linker) linkHydrateChildren(instr *ir.Instruction, node *ir.DOMNode) {
	var bindables []semantics.BindableDef
	if instr.Def != nil {
		if def, ok := l.catalog.Lookup(semantics.ResourceKind(instr.Def.Kind), instr.Def.Name); ok {
			bindables = def.Bindables
		}
	}
	l.linkBindableProps(instr.ElementProps, bindables, node)
	l.linkBindableProps(instr.AttrProps, bindables, node)
	l.linkBindableProps(instr.ControllerProps, bindables, node)
}

func (l *linker) linkBindableProps(props []ir.Instruction, bindables []semantics.BindableDef, node *ir.DOMNode) {
	for i := range props {
		p := &props[i]
		if p.Kind != ir.InstrPropertyBinding {
			l.checkExprRefs(p.From)
			continue
		}
		target, command := splitCommand(p.Raw)
		if command != "" {
			if _, ok := l.syntax.Commands[command]; !ok {
				l.emitAttrDiag("aurelia/unknown-command", "error", node, p.Raw, "unknown binding command \""+command+"\"")
			}
		}

		bd := findBindable(bindables, target)
		switch {
		case bd != nil:
			p.To = bd.PropertyName
			if p.Mode == ir.ModeDefault {
				p.Mode = ir.BindingMode(bd.Mode.Value)
			}
		case len(bindables) > 0:
			l.emitAttrDiag("aurelia/unknown-bindable", "warning", node, p.Raw, "unknown bindable property \""+target+"\"")
			p.To = semantics.CamelCase(target)
		default:
			p.To = semantics.CamelCase(target)
		}
		if p.Mode == ir.ModeDefault || p.Mode == "" {
			p.Mode = ir.ModeToView
		}

		l.checkExprRefs(p.From)
	}
}

func findBindable(bindables []semantics.BindableDef, target string) *semantics.BindableDef {
	camel := semantics.CamelCase(target)
	for i := range bindables {
		bd := &bindables[i]
		if bd.AttributeName == target || bd.PropertyName == target || bd.PropertyName == camel {
			return bd
		}
	}
	return nil
}

// checkExprRefs walks the expressions reachable from src (a single
// expression or every part of an interpolation) and flags any pipe/
// behavior use that does not resolve in the catalog.
func (l *linker) checkExprRefs(src ir.BindingSource) {
	switch src.Kind {
	case ir.BindingSourceExpr:
		if src.Expr != nil {
			l.checkExprID(src.Expr.ID)
		}
	case ir.BindingSourceInterp:
		if src.Interp != nil {
			for _, e := range src.Interp.Exprs {
				l.checkExprID(e.ID)
			}
		}
	}
}

func (l *linker) checkExprID(id ids.ExprID) {
	ast, ok := l.mod.Exprs.Get(id)
	if !ok || ast.Kind != ir.ExprNodeValid {
		return
	}
	for _, p := range ast.Pipes {
		if _, ok := l.catalog.Lookup(semantics.KindValueConverter, p.Name); !ok {
			l.mod.Diagnostics = append(l.mod.Diagnostics, ir.Diagnostic{
				Code: "aurelia/unknown-converter", Severity: "warning", Span: p.Span,
				Message: "unknown value converter \"" + p.Name + "\"",
			})
		}
	}
	for _, b := range ast.Behavior {
		if _, ok := l.catalog.Lookup(semantics.KindBindingBehavior, b.Name); !ok {
			l.mod.Diagnostics = append(l.mod.Diagnostics, ir.Diagnostic{
				Code: "aurelia/unknown-behavior", Severity: "warning", Span: b.Span,
				Message: "unknown binding behavior \"" + b.Name + "\"",
			})
		}
	}
}

func (l *linker) emitAttrDiag(code, severity string, node *ir.DOMNode, raw, message string) {
	l.mod.Diagnostics = append(l.mod.Diagnostics, ir.Diagnostic{
		Code: code, Severity: severity, Span: attrSpan(node, raw), Message: message,
	})
}

func attrSpan(node *ir.DOMNode, raw string) span.Span {
	if node == nil {
		return span.Span{}
	}
	for _, a := range node.Attrs {
		if a.Name == raw {
			return a.NameSpan
		}
	}
	return node.TagSpan
}

// splitCommand re-derives the (target, command) split lower's
// classifyAttr performed, from the authored attribute name alone, so
// link never needs lower to thread extra state through Instruction.
func splitCommand(name string) (target, command string) {
	switch {
	case name == "ref":
		return "element", "ref"
	case strings.IndexByte(name, '.') >= 0:
		dot := strings.IndexByte(name, '.')
		return name[:dot], name[dot+1:]
	default:
		return name, ""
	}
}
