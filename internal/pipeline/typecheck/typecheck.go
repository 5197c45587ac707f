// Package typecheck implements the fourth template-compilation stage
// (spec.md §4.G.4): synthesize an overlay program that re-expresses every
// bound expression as a statement in the host's type system, feed it to
// hostiface.TypeChecker, and translate the resulting diagnostics back
// onto template spans through internal/provenance.
//
// Every authored expression is copied into the overlay VERBATIM — never
// rewritten to qualify bare identifiers against the synthetic root —
// because the host type-checker receives the root view-model's type
// expression as its own argument (hostiface.TypeChecker.CheckOverlay's
// rootVmTypeExpr) and is responsible for resolving identifiers against
// it. Keeping the text verbatim is what makes "each expression becomes a
// statement whose source spans are mirrored one-to-one" (spec.md §4.G.4)
// a byte-offset identity rather than a translation.
package typecheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/provenance"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// CheckTemplate synthesizes tpl's overlay program, type-checks it, and
// returns the host's diagnostics projected back onto template spans.
// Every edge the synthesis produces is registered on idx, and the overlay
// source/edges are cached under tpl.ID for reuse by query operations
// (hover/definition against an uncommitted overlay diagnostic).
func CheckTemplate(ctx context.Context, mod *ir.IrModule, tpl *ir.TemplateIR, checker hostiface.TypeChecker, vm hostiface.VmReflection, idx *provenance.Index, templateURI ids.DocumentURI) ([]ir.Diagnostic, error) {
	b := &overlayBuilder{
		mod: mod, tpl: tpl, vm: vm,
		file:        overlayFileID(tpl.ID),
		overlayURI:  overlayDocumentURI(templateURI, tpl.ID),
		templateURI: templateURI,
	}
	b.build()

	idx.CacheOverlay(tpl.ID, b.sb.String(), b.edges)
	for _, e := range b.edges {
		idx.Add(e)
	}

	typeDiags, err := checker.CheckOverlay(ctx, b.sb.String(), vm.RootVmTypeExpr(mod.File))
	if err != nil {
		return nil, err
	}

	out := make([]ir.Diagnostic, 0, len(typeDiags))
	for _, td := range typeDiags {
		q := span.Span{File: b.file, Start: td.OverlayStart, End: td.OverlayEnd}
		target := q
		if result, ok := idx.Project(b.overlayURI, q, provenance.SideFrom, false); ok {
			target = result.Span
		}
		code := td.Code
		if code == "" {
			code = "aurelia/type-error"
		}
		out = append(out, ir.Diagnostic{Code: code, Severity: td.Severity, Message: td.Message, Span: target})
	}
	return out, nil
}

// overlayFileID mints a stable synthetic ids.SourceFileID for a
// template's overlay program, outside the range any real project file id
// could occupy (negative, keyed by template id so repeated synthesis for
// the same template is idempotent).
func overlayFileID(tpl ids.TemplateID) ids.SourceFileID {
	return ids.SourceFileID(-1000 - int(tpl))
}

func overlayDocumentURI(templateURI ids.DocumentURI, tpl ids.TemplateID) ids.DocumentURI {
	return ids.DocumentURI(fmt.Sprintf("%s?overlay=%d", templateURI, tpl))
}

type overlayBuilder struct {
	mod         *ir.IrModule
	tpl         *ir.TemplateIR
	vm          hostiface.VmReflection
	file        ids.SourceFileID
	overlayURI  ids.DocumentURI
	templateURI ids.DocumentURI

	sb     strings.Builder
	offset int
	edges  []provenance.Edge
}

func (b *overlayBuilder) build() {
	b.writeLine(fmt.Sprintf("declare const %s: %s;", b.vm.SyntheticPrefix(), b.vm.RootVmTypeExpr(b.mod.File)))
	for ri := range b.tpl.Rows {
		for _, instr := range b.tpl.Rows[ri].Instructions {
			b.emitInstruction(instr)
		}
	}
}

func (b *overlayBuilder) writeLine(line string) {
	b.sb.WriteString(line)
	b.sb.WriteByte('\n')
	b.offset += len(line) + 1
}

// emitInstruction walks every expression an instruction (and its nested
// hydrate-children props) can carry. coercePolicy decides, per spec.md
// §4.G.4's "Coercion policy", whether this instruction's From expression
// is evaluated in a primitive-boolean context: the one concrete example
// the spec names is `if.bind`, so this checks the hosting
// template-controller's own name directly rather than routing through
// ControllerFacts — a narrow, spec-cited exception to bind's
// name-independent dispatch, scoped to this one coercion decision.
func (b *overlayBuilder) emitInstruction(instr ir.Instruction) {
	coerceBoolean := instr.Kind == ir.InstrHydrateController && (instr.Res == "if" || instr.Res == "else")
	b.emitSource(instr.From, coerceBoolean)
	b.emitSource(instr.TranslationKey, false)
	if instr.Iterator != nil {
		b.emitSource(instr.Iterator.Iterable, false)
	}
	for _, p := range instr.ElementProps {
		b.emitInstruction(p)
	}
	for _, p := range instr.AttrProps {
		b.emitInstruction(p)
	}
	for _, p := range instr.ControllerProps {
		b.emitInstruction(p)
	}
}

func (b *overlayBuilder) emitSource(src ir.BindingSource, coerceBoolean bool) {
	switch src.Kind {
	case ir.BindingSourceExpr:
		if src.Expr != nil {
			b.emitExpr(*src.Expr, coerceBoolean)
		}
	case ir.BindingSourceInterp:
		if src.Interp != nil {
			for _, e := range src.Interp.Exprs {
				b.emitExpr(e, false)
			}
		}
	}
}

// emitExpr appends one overlay statement for e and records the
// overlayExpr edge (plus overlayMember edges for its dotted-identifier
// prefixes) back to e's template span.
func (b *overlayBuilder) emitExpr(e ir.ExprRef, coerceBoolean bool) {
	ast, ok := b.mod.Exprs.Get(e.ID)
	if !ok || ast.Kind != ir.ExprNodeValid {
		return
	}

	body := e.Text
	stmt := body
	bodyOffset := 0
	if coerceBoolean {
		stmt = "!!(" + body + ")"
		bodyOffset = len("!!(")
	}

	lineStart := b.offset
	b.writeLine("  " + stmt + ";")
	exprStart := lineStart + 2 + bodyOffset
	exprEnd := exprStart + len(body)

	overlaySpan := span.Span{File: b.file, Start: exprStart, End: exprEnd}
	b.edges = append(b.edges, provenance.Edge{
		Kind: provenance.EdgeOverlayExpr,
		From: provenance.Endpoint{URI: b.overlayURI, Span: overlaySpan},
		To:   provenance.Endpoint{URI: b.templateURI, Span: e.Span},
	})

	for _, seg := range splitMemberChain(body) {
		b.edges = append(b.edges, provenance.Edge{
			Kind: provenance.EdgeOverlayMember,
			From: provenance.Endpoint{URI: b.overlayURI, Span: span.Span{File: b.file, Start: exprStart + seg.Start, End: exprStart + seg.End}},
			To:   provenance.Endpoint{URI: b.templateURI, Span: span.Span{File: e.Span.File, Start: e.Span.Start + seg.Start, End: e.Span.Start + seg.End}},
			Tag:  seg.Tag,
		})
	}
}

type memberSeg struct {
	Tag        string
	Start, End int
}

// splitMemberChain recovers the dotted member-access prefixes of a
// leading identifier chain ("user.name.first" -> "user", "user.name",
// "user.name.first") by direct text scanning, since hostiface's parsed
// expression AST is an opaque `any` and the pack carries no exposed
// member-path structure to walk instead — the same text-scanning
// tradeoff lower.go's repeat.for destructure splitter already makes for
// syntax the opaque AST doesn't expose. A bare identifier (no second
// segment) returns nil: there is no member path to distinguish from the
// whole expression.
func splitMemberChain(text string) []memberSeg {
	var segs []memberSeg
	var parts []string
	i, n := 0, len(text)
	for i < n {
		start := i
		for i < n && isIdentChar(text[i]) {
			i++
		}
		if i == start {
			break
		}
		parts = append(parts, text[start:i])
		segs = append(segs, memberSeg{Tag: strings.Join(parts, "."), Start: 0, End: i})
		if i < n && text[i] == '.' {
			i++
			continue
		}
		break
	}
	if len(segs) < 2 {
		return nil
	}
	return segs
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
