package query

import (
	"sort"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// TokenType is one of the six resource token types spec.md §4.J names,
// plus the expression-delimiter type.
type TokenType string

const (
	TokenElement    TokenType = "aureliaElement"
	TokenAttribute  TokenType = "aureliaAttribute"
	TokenController TokenType = "aureliaController"
	TokenCommand    TokenType = "aureliaCommand"
	TokenConverter  TokenType = "aureliaConverter"
	TokenBehavior   TokenType = "aureliaBehavior"
	TokenExpression TokenType = "aureliaExpression"
)

// ModifierDefaultLibrary / ModifierDeclaration are the two semantic
// token modifiers spec.md §4.J names.
const (
	ModifierDefaultLibrary = "defaultLibrary"
	ModifierDeclaration    = "declaration"
)

// Token is one semantic-token span.
type Token struct {
	Kind      TokenType
	Span      span.Span
	Modifiers []string
}

// SemanticTokens walks mod's templates and emits tokens in strict,
// non-overlapping span order. Grounded directly on internal/refindex's
// own DOM/instruction traversal (same tree, same instruction shapes) —
// kept as its own walk rather than built from refindex.Index sites
// because a command token requires splitting one AttrSpan into a
// name-part and a command-part sub-span, finer-grained than any single
// refindex.TextReferenceSite.
//
// Carries the same documented gap refindex does: a template-controller's
// own attribute name/command span is discarded once lower's
// wrapControllers replaces the host element with a marker comment, so no
// aureliaController/aureliaCommand token is produced for the controller
// attribute itself — only for ordinary bindable/custom-attribute
// bindings, whose owning element node keeps its AttrSpan. This pipeline
// also never tokenizes view-model source, so no token here ever carries
// the `declaration` modifier; declaration sites live outside every
// template this package tokenizes.
func SemanticTokens(mod *ir.IrModule, catalog *semantics.ResourceCatalog, syntax *semantics.TemplateSyntaxRegistry) []Token {
	var out []Token
	for i := range mod.Templates {
		tpl := &mod.Templates[i]
		out = append(out, tagTokens(tpl, catalog)...)
		attrs := attrSpansByNode(tpl.Root)
		for _, row := range tpl.Rows {
			nodeAttrs := attrs[row.Target]
			for _, instr := range row.Instructions {
				out = append(out, attributeTokens(instr, nodeAttrs, catalog, syntax)...)
				out = append(out, expressionTokens(instr, mod, catalog, syntax)...)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return dropOverlapping(out)
}

func dropOverlapping(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	cursor := -1
	for _, tok := range tokens {
		if !tok.Span.Valid() || tok.Span.Start < cursor {
			continue
		}
		out = append(out, tok)
		cursor = tok.Span.End
	}
	return out
}

func attrSpansByNode(root *ir.DOMNode) map[ids.NodeID]map[string]ir.AttrSpan {
	out := map[ids.NodeID]map[string]ir.AttrSpan{}
	var walk func(n *ir.DOMNode)
	walk = func(n *ir.DOMNode) {
		if n == nil {
			return
		}
		m := map[string]ir.AttrSpan{}
		for _, a := range n.Attrs {
			m[a.Name] = a
		}
		out[ids.NodeID(n.ID)] = m
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

func tagTokens(tpl *ir.TemplateIR, catalog *semantics.ResourceCatalog) []Token {
	var out []Token
	nodesByID := map[ids.NodeID]*ir.DOMNode{}
	var collect func(n *ir.DOMNode)
	collect = func(n *ir.DOMNode) {
		if n == nil {
			return
		}
		nodesByID[ids.NodeID(n.ID)] = n
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(tpl.Root)

	for _, row := range tpl.Rows {
		node := nodesByID[ids.NodeID(row.Target)]
		if node == nil || node.Kind != ir.NodeElement {
			continue
		}
		for _, instr := range row.Instructions {
			if instr.Kind != ir.InstrHydrateElement || instr.Def == nil {
				continue
			}
			mods := builtinModifiers(catalog, instr.Def.Kind+":"+instr.Def.Name)
			out = append(out, Token{Kind: TokenElement, Span: node.TagSpan, Modifiers: mods})
			if node.CloseTagSpan.Valid() {
				out = append(out, Token{Kind: TokenElement, Span: node.CloseTagSpan, Modifiers: mods})
			}
		}
	}
	return out
}

func attributeTokens(instr ir.Instruction, attrs map[string]ir.AttrSpan, catalog *semantics.ResourceCatalog, syntax *semantics.TemplateSyntaxRegistry) []Token {
	var out []Token
	if instr.Kind == ir.InstrHydrateAttribute && instr.Def != nil {
		out = append(out, splitAttrToken(attrs[instr.Raw], instr.Def.Kind+":"+instr.Def.Name, TokenAttribute, catalog, syntax)...)
	}
	for _, p := range instr.ElementProps {
		out = append(out, attributeTokens(p, attrs, catalog, syntax)...)
	}
	for _, p := range instr.AttrProps {
		out = append(out, attributeTokens(p, attrs, catalog, syntax)...)
	}
	for _, p := range instr.ControllerProps {
		out = append(out, attributeTokens(p, attrs, catalog, syntax)...)
	}
	return out
}

// splitAttrToken splits an authored "name.command" attribute span into a
// name-part token and (when present) a command-part token, computed by
// character offset since AttrSpan.Name's length always equals
// NameSpan.Len() (lower never rewrites the authored text).
func splitAttrToken(a ir.AttrSpan, resourceKey string, kind TokenType, catalog *semantics.ResourceCatalog, syntax *semantics.TemplateSyntaxRegistry) []Token {
	if !a.NameSpan.Valid() {
		return nil
	}
	dot := strings.IndexByte(a.Name, '.')
	if dot < 0 {
		return []Token{{Kind: kind, Span: a.NameSpan, Modifiers: builtinModifiers(catalog, resourceKey)}}
	}
	nameSpan := span.Span{File: a.NameSpan.File, Start: a.NameSpan.Start, End: a.NameSpan.Start + dot}
	cmdSpan := span.Span{File: a.NameSpan.File, Start: a.NameSpan.Start + dot + 1, End: a.NameSpan.End}
	out := []Token{{Kind: kind, Span: nameSpan, Modifiers: builtinModifiers(catalog, resourceKey)}}
	if cmdSpan.Valid() {
		cmdMods := []string(nil)
		if syntax != nil {
			if _, ok := syntax.Commands[a.Name[dot+1:]]; ok {
				cmdMods = []string{ModifierDefaultLibrary}
			}
		}
		out = append(out, Token{Kind: TokenCommand, Span: cmdSpan, Modifiers: cmdMods})
	}
	return out
}

func expressionTokens(instr ir.Instruction, mod *ir.IrModule, catalog *semantics.ResourceCatalog, syntax *semantics.TemplateSyntaxRegistry) []Token {
	var out []Token
	visit := func(src ir.BindingSource) {
		switch src.Kind {
		case ir.BindingSourceExpr:
			if src.Expr != nil {
				out = append(out, exprTokens(*src.Expr, mod, catalog, syntax)...)
			}
		case ir.BindingSourceInterp:
			if src.Interp != nil {
				for _, e := range src.Interp.Exprs {
					out = append(out, interpDelimiterTokens(e, syntax)...)
					out = append(out, exprTokens(e, mod, catalog, syntax)...)
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
		out = append(out, expressionTokens(p, mod, catalog, syntax)...)
	}
	for _, p := range instr.AttrProps {
		out = append(out, expressionTokens(p, mod, catalog, syntax)...)
	}
	for _, p := range instr.ControllerProps {
		out = append(out, expressionTokens(p, mod, catalog, syntax)...)
	}
	return out
}

func interpDelimiterTokens(e ir.ExprRef, syntax *semantics.TemplateSyntaxRegistry) []Token {
	if syntax == nil {
		return nil
	}
	startLen, endLen := len(syntax.InterpolationStart), len(syntax.InterpolationEnd)
	start := span.Span{File: e.Span.File, Start: e.Span.Start - startLen, End: e.Span.Start}
	end := span.Span{File: e.Span.File, Start: e.Span.End, End: e.Span.End + endLen}
	var out []Token
	if start.Valid() {
		out = append(out, Token{Kind: TokenExpression, Span: start})
	}
	if end.Valid() {
		out = append(out, Token{Kind: TokenExpression, Span: end})
	}
	return out
}

func exprTokens(e ir.ExprRef, mod *ir.IrModule, catalog *semantics.ResourceCatalog, syntax *semantics.TemplateSyntaxRegistry) []Token {
	ast, ok := mod.Exprs.Get(e.ID)
	if !ok {
		return nil
	}
	var out []Token
	for _, p := range ast.Pipes {
		out = append(out, Token{Kind: TokenConverter, Span: p.Span, Modifiers: builtinModifiers(catalog, "value-converter:"+p.Name)})
	}
	for _, b := range ast.Behavior {
		out = append(out, Token{Kind: TokenBehavior, Span: b.Span, Modifiers: builtinModifiers(catalog, "binding-behavior:"+b.Name)})
	}
	return out
}

func builtinModifiers(catalog *semantics.ResourceCatalog, key string) []string {
	def, ok := catalog.LookupKey(key)
	if !ok || def.Name.Origin != semantics.OriginBuiltin {
		return nil
	}
	return []string{ModifierDefaultLibrary}
}
