// Package bind implements the third template-compilation stage (spec.md
// §4.G.3): it walks a linked IrModule and produces the scope graph —
// one ScopeFrame per TemplateIR, the symbols that frame introduces
// (`<let>` locals, `repeat.for` iterator locals and contextuals,
// promise/then/catch aliases, `with`'s implicit member base), and the
// map from every expression occurrence to the frame it evaluates in.
//
// Scope-opening is pattern-based, never name-based: a template-controller
// ResourceDef's ControllerFacts (Scope/Pattern/Injects) decides whether
// and how its template opens a frame, so a custom controller sharing a
// built-in's facts gets the built-in's bind behavior for free.
package bind

import (
	"strings"
	"unicode"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

// Bind produces the scope graph for mod, one ScopeTemplate per TemplateIR.
func Bind(mod *ir.IrModule, catalog *semantics.ResourceCatalog) *ir.ScopeModule {
	sm := &ir.ScopeModule{Templates: make([]ir.ScopeTemplate, len(mod.Templates))}
	for i := range mod.Templates {
		sm.Templates[i] = bindTemplate(mod, &mod.Templates[i], catalog)
	}
	return sm
}

func bindTemplate(mod *ir.IrModule, tpl *ir.TemplateIR, catalog *semantics.ResourceCatalog) ir.ScopeTemplate {
	st := ir.ScopeTemplate{
		TemplateID:     tpl.ID,
		ParentTemplate: ids.NoTemplate,
		ExprFrame:      map[ids.ExprID]ids.FrameID{},
	}
	frame := ir.ScopeFrame{ID: 0, Kind: ir.FrameRoot}

	if tpl.Origin != nil {
		st.ParentTemplate = tpl.Origin.ParentTemplate
		parent, _ := mod.Template(tpl.Origin.ParentTemplate)
		host := findHostInstruction(parent, tpl.Origin.HostNode)
		if facts := controllerFacts(catalog, tpl.Origin.ControllerName); facts != nil {
			frame.Origin = &ir.FrameOrigin{
				Pattern:        string(facts.Pattern),
				HostNode:       tpl.Origin.HostNode,
				ControllerName: tpl.Origin.ControllerName,
			}
			if facts.Scope == semantics.ScopeOverlay {
				frame.Kind = ir.FrameOverlay
				bindOverlaySymbols(&frame, facts, host)
			}
		}
	}

	collectLetSymbols(tpl, &frame)
	collectExprFrames(tpl, st.ExprFrame, frame.ID)

	st.Frame = frame
	return st
}

func controllerFacts(catalog *semantics.ResourceCatalog, name string) *semantics.ControllerFacts {
	def, ok := catalog.Lookup(semantics.KindTemplateController, name)
	if !ok {
		return nil
	}
	return def.Controller
}

// findHostInstruction locates the hydrateTemplateController instruction in
// parent that produced the nested template host names — the same marker
// node link.go and lower.go both key instruction lookups off of.
func findHostInstruction(parent *ir.TemplateIR, host ids.NodeID) *ir.Instruction {
	if parent == nil {
		return nil
	}
	for ri := range parent.Rows {
		row := &parent.Rows[ri]
		if row.Target != host {
			continue
		}
		for ii := range row.Instructions {
			if row.Instructions[ii].Kind == ir.InstrHydrateController {
				return &row.Instructions[ii]
			}
		}
	}
	return nil
}

// bindOverlaySymbols populates the symbols an overlay frame introduces,
// branching on the controller's FrameOriginPattern rather than its name.
func bindOverlaySymbols(frame *ir.ScopeFrame, facts *semantics.ControllerFacts, host *ir.Instruction) {
	if host == nil {
		return
	}
	switch facts.Pattern {
	case semantics.PatternIterator:
		if host.Iterator != nil {
			frame.Symbols = append(frame.Symbols, destructureSymbols(host.Iterator.Declaration)...)
		}
		for _, name := range facts.Injects {
			frame.Symbols = append(frame.Symbols, ir.ScopeSymbol{Kind: ir.SymbolContextual, Name: name, ValueExpr: ids.NoExpr})
		}
	case semantics.PatternValueOverlay:
		base := host.From
		frame.OverlayBase = &base
	case semantics.PatternPromiseValue:
		// promise itself introduces no symbol; its then/catch branches
		// alias the settled value.
	case semantics.PatternPromiseBranch:
		if name, exprID, ok := bareIdentifierAlias(host.From); ok {
			frame.Symbols = append(frame.Symbols, ir.ScopeSymbol{Kind: ir.SymbolAlias, Name: name, ValueExpr: exprID})
		}
	}
}

// destructureSymbols flattens a repeat.for declaration (plain identifier,
// array destructure, or object destructure) into its bound locals.
func destructureSymbols(p ir.DestructurePattern) []ir.ScopeSymbol {
	switch p.Kind {
	case ir.PatternIdentifier:
		if p.Name == "" {
			return nil
		}
		return []ir.ScopeSymbol{{Kind: ir.SymbolIteratorLocal, Name: p.Name, ValueExpr: ids.NoExpr}}
	case ir.PatternArray:
		var out []ir.ScopeSymbol
		for _, e := range p.Elements {
			out = append(out, destructureSymbols(e)...)
		}
		return out
	case ir.PatternObject:
		var out []ir.ScopeSymbol
		for _, f := range p.Fields {
			name := f.Alias
			if name == "" {
				name = f.Key
			}
			out = append(out, ir.ScopeSymbol{Kind: ir.SymbolIteratorLocal, Name: name, ValueExpr: ids.NoExpr})
		}
		return out
	default:
		return nil
	}
}

// bareIdentifierAlias recognizes `then.from-view="data"`/`catch.from-view="err"`:
// the controller's own From expression is, syntactically, a bare
// identifier naming the alias rather than a value-producing expression.
func bareIdentifierAlias(src ir.BindingSource) (string, ids.ExprID, bool) {
	if src.Kind != ir.BindingSourceExpr || src.Expr == nil {
		return "", ids.NoExpr, false
	}
	text := strings.TrimSpace(src.Expr.Text)
	if text == "" || !isIdentifier(text) {
		return "", ids.NoExpr, false
	}
	return text, src.Expr.ID, true
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_' || r == '$':
			continue
		case i > 0 && unicode.IsDigit(r):
			continue
		default:
			return false
		}
	}
	return true
}

// collectLetSymbols appends one ScopeSymbol per `<let>` local anywhere in
// tpl's own rows into frame — the enclosing frame, per spec.md §4.G.3,
// since lower never opens a nested template for a `<let>` element.
func collectLetSymbols(tpl *ir.TemplateIR, frame *ir.ScopeFrame) {
	for ri := range tpl.Rows {
		for _, instr := range tpl.Rows[ri].Instructions {
			if instr.Kind != ir.InstrHydrateLet {
				continue
			}
			for _, local := range instr.ElementProps {
				exprID := ids.NoExpr
				if local.From.Kind == ir.BindingSourceExpr && local.From.Expr != nil {
					exprID = local.From.Expr.ID
				}
				frame.Symbols = append(frame.Symbols, ir.ScopeSymbol{Kind: ir.SymbolLet, Name: local.To, ValueExpr: exprID})
			}
		}
	}
}

// collectExprFrames maps every expression occurrence reachable from tpl's
// own rows (never descending into a nested TemplateIR, which owns its own
// frame) to frame.
func collectExprFrames(tpl *ir.TemplateIR, out map[ids.ExprID]ids.FrameID, frame ids.FrameID) {
	for ri := range tpl.Rows {
		for _, instr := range tpl.Rows[ri].Instructions {
			mapInstructionExprs(instr, out, frame)
		}
	}
}

func mapInstructionExprs(instr ir.Instruction, out map[ids.ExprID]ids.FrameID, frame ids.FrameID) {
	mapSource(instr.From, out, frame)
	mapSource(instr.TranslationKey, out, frame)
	if instr.Iterator != nil {
		mapSource(instr.Iterator.Iterable, out, frame)
	}
	for _, p := range instr.ElementProps {
		mapInstructionExprs(p, out, frame)
	}
	for _, p := range instr.AttrProps {
		mapInstructionExprs(p, out, frame)
	}
	for _, p := range instr.ControllerProps {
		mapInstructionExprs(p, out, frame)
	}
}

func mapSource(src ir.BindingSource, out map[ids.ExprID]ids.FrameID, frame ids.FrameID) {
	switch src.Kind {
	case ir.BindingSourceExpr:
		if src.Expr != nil {
			out[src.Expr.ID] = frame
		}
	case ir.BindingSourceInterp:
		if src.Interp != nil {
			for _, e := range src.Interp.Exprs {
				out[e.ID] = frame
			}
		}
	}
}
