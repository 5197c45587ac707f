package refindex

import (
	"fmt"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// FromModule walks a linked IrModule (plus its bound ScopeModule, for
// expression-identifier resolution against scope locals) and returns a
// populated Index. Run as a dedicated post-pass over the already-produced
// IR rather than threaded into lower/link's own traversals — the pass
// needs both the DOM tree (tag/attribute spans) and the scope graph
// (local resolution) together, and neither lower nor link alone has both.
//
// Not every spec.md §3 ReferenceKind is populated here. `ir.Instruction`
// carries no span of its own (only its BindingSource's ExprRef/InterpIR
// do), and a template-controller's own attribute name span is discarded
// once `lower.wrapControllers` replaces the host element with a marker
// comment (spec.md §4.G.1) — the original element's AttrSpan never
// transfers to the marker. So `attribute-name` sites are populated for
// every ordinary bindable/custom-attribute binding (those instructions
// still target their real element node, whose AttrSpan survives), but not
// for the controller attribute itself. The four decorator/import/
// dependencies/class-name kinds describe view-model *source* text this
// pipeline never parses (it only consumes `hostiface.ModuleResolver` /
// `VmReflection` facts about a view-model, never its body) — a view-model
// source scanner is out of this repo's reach, not an oversight.
func FromModule(mod *ir.IrModule, sm *ir.ScopeModule, uri ids.DocumentURI) *Index {
	idx := NewIndex()
	for i := range mod.Templates {
		tpl := &mod.Templates[i]
		nodes := indexNodes(tpl.Root)
		collectTagSites(idx, tpl, nodes, uri)
		for _, row := range tpl.Rows {
			node := nodes[row.Target]
			var attrs map[string]ir.AttrSpan
			if node != nil {
				attrs = attrSpansByName(node)
			}
			for _, instr := range row.Instructions {
				collectAttributeSites(idx, instr, nil, attrs, uri)
				collectExprSites(idx, instr, mod, sm, tpl.ID, uri)
			}
		}
	}
	return idx
}

func indexNodes(root *ir.DOMNode) map[ids.NodeID]*ir.DOMNode {
	out := map[ids.NodeID]*ir.DOMNode{}
	var walk func(n *ir.DOMNode)
	walk = func(n *ir.DOMNode) {
		if n == nil {
			return
		}
		out[n.ID] = n
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

func attrSpansByName(node *ir.DOMNode) map[string]ir.AttrSpan {
	out := map[string]ir.AttrSpan{}
	for _, a := range node.Attrs {
		out[a.Name] = a
	}
	return out
}

// collectTagSites emits tag-name/close-tag-name sites for every element
// node that an InstrHydrateElement targets — a plain host element (a
// `<div>`) has no catalog resource to key a reverse lookup against, so it
// contributes no site (spec.md §8 invariant 3 requires every site to
// resolve to a resource).
func collectTagSites(idx *Index, tpl *ir.TemplateIR, nodes map[ids.NodeID]*ir.DOMNode, uri ids.DocumentURI) {
	for _, row := range tpl.Rows {
		node := nodes[row.Target]
		if node == nil || node.Kind != ir.NodeElement {
			continue
		}
		for _, instr := range row.Instructions {
			if instr.Kind != ir.InstrHydrateElement || instr.Def == nil {
				continue
			}
			key := instr.Def.Kind + ":" + instr.Def.Name
			idx.Add(TextReferenceSite{
				Domain: DomainTemplate, ReferenceKind: KindTagName,
				File: node.TagSpan.File, URI: uri, Span: node.TagSpan,
				NameForm: node.Tag, ResourceKey: key,
			})
			if node.CloseTagSpan.Valid() {
				idx.Add(TextReferenceSite{
					Domain: DomainTemplate, ReferenceKind: KindCloseTagName,
					File: node.CloseTagSpan.File, URI: uri, Span: node.CloseTagSpan,
					NameForm: node.Tag, ResourceKey: key,
				})
			}
		}
	}
}

// collectAttributeSites recurses instr's hydrate-children prop lists,
// matching each leaf binding's authored Raw name against attrs (the
// owning node's own AttrSpan-by-name map) to recover a span. enclosing is
// the nearest ancestor hydrate instruction's HydrateDef, used to build
// the BindableKey for a leaf binding.
func collectAttributeSites(idx *Index, instr ir.Instruction, enclosing *ir.HydrateDef, attrs map[string]ir.AttrSpan, uri ids.DocumentURI) {
	switch instr.Kind {
	case ir.InstrHydrateAttribute:
		if instr.Def != nil {
			addAttrSite(idx, attrs, instr.Raw, instr.Def.Kind+":"+instr.Def.Name, uri)
		}
	case ir.InstrHydrateElement, ir.InstrHydrateController, ir.InstrHydrateLet:
		// Tag occurrences are handled by collectTagSites; controllers'
		// own attribute span is unrecoverable (see FromModule's doc).
	default:
		if enclosing != nil && instr.To != "" {
			addAttrSite(idx, attrs, instr.Raw, enclosing.Kind+":"+enclosing.Name+":bindable:"+instr.To, uri)
		}
	}

	nextEnclosing := enclosing
	if instr.Def != nil {
		nextEnclosing = instr.Def
	}
	for _, p := range instr.ElementProps {
		collectAttributeSites(idx, p, nextEnclosing, attrs, uri)
	}
	for _, p := range instr.AttrProps {
		collectAttributeSites(idx, p, nextEnclosing, attrs, uri)
	}
	for _, p := range instr.ControllerProps {
		collectAttributeSites(idx, p, nextEnclosing, attrs, uri)
	}
}

func addAttrSite(idx *Index, attrs map[string]ir.AttrSpan, raw, resourceKey string, uri ids.DocumentURI) {
	a, ok := attrs[raw]
	if !ok || !a.NameSpan.Valid() {
		return
	}
	idx.Add(TextReferenceSite{
		Domain: DomainTemplate, ReferenceKind: KindAttributeName,
		File: a.NameSpan.File, URI: uri, Span: a.NameSpan,
		NameForm: a.Name, ResourceKey: resourceKey,
	})
}

// collectExprSites walks instr's binding sources for pipe/behavior usage
// and for leading identifiers that resolve to a scope-graph local.
func collectExprSites(idx *Index, instr ir.Instruction, mod *ir.IrModule, sm *ir.ScopeModule, tpl ids.TemplateID, uri ids.DocumentURI) {
	visit := func(src ir.BindingSource) {
		switch src.Kind {
		case ir.BindingSourceExpr:
			if src.Expr != nil {
				collectOneExpr(idx, *src.Expr, mod, sm, tpl, uri)
			}
		case ir.BindingSourceInterp:
			if src.Interp != nil {
				for _, e := range src.Interp.Exprs {
					collectOneExpr(idx, e, mod, sm, tpl, uri)
				}
			}
		}
	}
	visit(instr.From)
	visit(instr.TranslationKey)
	if instr.Iterator != nil {
		visit(instr.Iterator.Iterable)
	}
	for _, p := range instr.ElementProps {
		collectExprSites(idx, p, mod, sm, tpl, uri)
	}
	for _, p := range instr.AttrProps {
		collectExprSites(idx, p, mod, sm, tpl, uri)
	}
	for _, p := range instr.ControllerProps {
		collectExprSites(idx, p, mod, sm, tpl, uri)
	}
}

func collectOneExpr(idx *Index, e ir.ExprRef, mod *ir.IrModule, sm *ir.ScopeModule, tpl ids.TemplateID, uri ids.DocumentURI) {
	if leading := leadingIdentifier(e.Text); leading != "" && sm != nil {
		if _, declTpl, ok := sm.Resolve(tpl, leading); ok {
			idx.Add(TextReferenceSite{
				Domain: DomainTemplate, ReferenceKind: KindExpressionIdentifier,
				File: e.Span.File, URI: uri,
				Span:     span.Span{File: e.Span.File, Start: e.Span.Start, End: e.Span.Start + len(leading)},
				NameForm: leading, ResourceKey: fmt.Sprintf("local:%d:%s", declTpl, leading),
			})
		}
	}

	ast, ok := mod.Exprs.Get(e.ID)
	if !ok {
		return
	}
	for _, p := range ast.Pipes {
		idx.Add(TextReferenceSite{
			Domain: DomainTemplate, ReferenceKind: KindExpressionPipe,
			File: p.Span.File, URI: uri, Span: p.Span,
			NameForm: p.Name, ResourceKey: "value-converter:" + p.Name,
		})
	}
	for _, b := range ast.Behavior {
		idx.Add(TextReferenceSite{
			Domain: DomainTemplate, ReferenceKind: KindExpressionBehavior,
			File: b.Span.File, URI: uri, Span: b.Span,
			NameForm: b.Name, ResourceKey: "binding-behavior:" + b.Name,
		})
	}
}

func leadingIdentifier(text string) string {
	i := 0
	for i < len(text) && isIdentChar(text[i]) {
		i++
	}
	return text[:i]
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
